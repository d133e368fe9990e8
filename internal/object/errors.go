package object

import "fmt"

// PyError is the Go error carrying a raised exception instance through
// every fallible object-level operation and the VM's unwind machinery.
// This is the explicit-result-type replacement for the source
// material's ambient thread-local exception indicator: instead of a
// global pyerr_set/pyerr_check/pyerr_clear channel, every call that can
// raise returns (Value, error), and a non-nil error unwraps to the
// raised instance via AsPyError.
type PyError struct {
	Exc Value
}

func (e *PyError) Error() string {
	msg := ""
	if inst, ok := e.Exc.(*Instance); ok {
		if m, ok := inst.Dict.GetStr("message"); ok {
			msg = Repr(m)
		}
	}
	if msg == "" {
		return e.Exc.TypeOf().Name
	}
	return fmt.Sprintf("%s: %s", e.Exc.TypeOf().Name, msg)
}

// AsPyError extracts the raised exception instance from err, if err
// originated from raising one.
func AsPyError(err error) (Value, bool) {
	pe, ok := err.(*PyError)
	if !ok {
		return nil, false
	}
	return pe.Exc, true
}

// IsStopIteration reports whether err is a PyError carrying a StopIteration,
// used to translate a raising __next__ into ForIter's exhausted signal.
func IsStopIteration(err error) bool {
	exc, ok := AsPyError(err)
	if !ok {
		return false
	}
	return exc.TypeOf().IsSubclass(StopIterationType)
}

// Exception type hierarchy. BaseExceptionType anchors every raisable
// value; Exception subclasses it, and the rest subclass Exception
// directly, a flat hierarchy with no OSError/ArithmeticError tiers.
var (
	BaseExceptionType *Type
	ExceptionType     *Type // the name source programs see as `Exception`
	TypeErrorType     *Type
	AttributeErrorType *Type
	IndexErrorType    *Type
	KeyErrorType      *Type
	NameErrorType     *Type
	AssertionErrorType *Type
	StopIterationType *Type
)

// initExceptionTypes builds the exception hierarchy. Called once from
// mro.go's init, after the two root types exist.
func initExceptionTypes() {
	BaseExceptionType = newBuiltinType("BaseException", nil)
	BaseExceptionType.Dict.SetStr("__init__", &NativeFunction{Name: "__init__", Fn: func(self Value, args []Value) (Value, error) {
		inst := self.(*Instance)
		inst.Dict.SetStr("args", NewList(append([]Value{}, args...)))
		if len(args) > 0 {
			inst.Dict.SetStr("message", args[0])
		} else {
			inst.Dict.SetStr("message", NewStr(""))
		}
		return None, nil
	}})
	mustReady(BaseExceptionType)

	ExceptionType = newBuiltinType("Exception", []*Type{BaseExceptionType})
	mustReady(ExceptionType)

	TypeErrorType = newBuiltinType("TypeError", []*Type{ExceptionType})
	mustReady(TypeErrorType)
	AttributeErrorType = newBuiltinType("AttributeError", []*Type{ExceptionType})
	mustReady(AttributeErrorType)
	IndexErrorType = newBuiltinType("IndexError", []*Type{ExceptionType})
	mustReady(IndexErrorType)
	KeyErrorType = newBuiltinType("KeyError", []*Type{ExceptionType})
	mustReady(KeyErrorType)
	NameErrorType = newBuiltinType("NameError", []*Type{ExceptionType})
	mustReady(NameErrorType)
	AssertionErrorType = newBuiltinType("AssertionError", []*Type{ExceptionType})
	mustReady(AssertionErrorType)
	StopIterationType = newBuiltinType("StopIteration", []*Type{ExceptionType})
	mustReady(StopIterationType)
}

func newBuiltinType(name string, bases []*Type) *Type {
	return &Type{DebugID: allocDebugID(), Name: name, Bases: bases, Dict: NewDict()}
}

func mustReady(t *Type) {
	if err := Ready(t); err != nil {
		panic(err)
	}
}

// raise constructs an instance of t by calling its constructor protocol
// with msg as its sole argument, the same path a source-level
// `raise TypeError("...")` would take, and wraps it as a *PyError.
func raise(t *Type, msg string) error {
	inst, err := CallValue(t, []Value{NewStr(msg)})
	if err != nil {
		return err
	}
	return &PyError{Exc: inst}
}

func NewTypeError(msg string) error      { return raise(TypeErrorType, msg) }
func NewAttributeError(msg string) error { return raise(AttributeErrorType, msg) }
func NewIndexError(msg string) error     { return raise(IndexErrorType, msg) }
func NewKeyError(msg string) error       { return raise(KeyErrorType, msg) }
func NewNameError(msg string) error      { return raise(NameErrorType, msg) }
func NewAssertionError(msg string) error { return raise(AssertionErrorType, msg) }
func NewStopIteration() error            { return raise(StopIterationType, "") }
