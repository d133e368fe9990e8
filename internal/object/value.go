// Package object implements the dynamic value representation, the type
// descriptor and its readiness protocol, the insertion-ordered hashmap,
// the lexical environment, and the object-level operations (call,
// attribute access, subscript, iteration) that the bytecode VM invokes.
//
// Every concrete value type satisfies Value by reporting the *Type that
// describes it; user-defined classes and their instances are built from
// the exact same Type/Instance pair the native types use, so attribute
// lookup, method binding and slot dispatch never need to special-case
// "builtin" vs "user" values.
package object

import "fmt"

// Value is satisfied by every runtime value. Its type's slots (see
// type.go) are what give a value its behavior for arithmetic, comparison,
// truthiness, hashing and calls. Attribute access, subscripting and
// iteration in ops.go switch on the concrete value type first.
type Value interface {
	TypeOf() *Type
}

// Int is a signed 32-bit integer value.
type Int struct {
	Value int32
}

func (i *Int) TypeOf() *Type { return IntType }

// NewInt allocates an Int value.
func NewInt(v int32) *Int { return &Int{Value: v} }

// Bool is a boolean value. Per the data model, bool is a subclass of int,
// so BoolType.Base == IntType and Bool values inherit int's arithmetic.
type Bool struct {
	Value bool
}

func (b *Bool) TypeOf() *Type { return BoolType }

// True and False are the two Bool singletons; boolean values are never
// allocated fresh so identity comparison ("is") would behave correctly
// even though this interpreter doesn't expose "is" to source programs.
var (
	True  = &Bool{Value: true}
	False = &Bool{Value: false}
)

// NewBool returns the canonical True or False singleton for v.
func NewBool(v bool) *Bool {
	if v {
		return True
	}
	return False
}

// Str is a string value.
type Str struct {
	Value string
}

func (s *Str) TypeOf() *Type { return StrType }

// NewStr allocates a Str value.
func NewStr(v string) *Str { return &Str{Value: v} }

// NoneValue is the singleton None value.
type NoneValue struct{}

func (n *NoneValue) TypeOf() *Type { return NoneType }

// None is the sole instance of NoneValue.
var None = &NoneValue{}

// List is a mutable, ordered sequence of values.
type List struct {
	Elements []Value
}

func (l *List) TypeOf() *Type { return ListType }

// NewList allocates a List wrapping the given elements (no copy).
func NewList(elems []Value) *List { return &List{Elements: elems} }

// Code is the immutable compiled form of a function or module body: a
// flat opcode vector, the constant pool it indexes into, and the
// positional-only parameter names a call binds against.
type Code struct {
	Name         string
	Params       []string
	Instructions []Instruction
	Consts       []Value
	ExceptTable  []ExceptClause
}

func (c *Code) TypeOf() *Type { return CodeType }

// Function pairs a Code object with the lexical Environment captured at
// the point of its `def`.
type Function struct {
	Code *Code
	Env  *Environment
}

func (f *Function) TypeOf() *Type { return FunctionType }

// BoundMethod is a Function or NativeFunction together with the `self`
// value attribute lookup bound it to.
type BoundMethod struct {
	Callable Value
	Self     Value
}

func (m *BoundMethod) TypeOf() *Type { return BoundMethodType }

// NativeGoFunc is the Go-side implementation behind a NativeFunction,
// given the `self` it was bound to and the remaining positional arguments.
// When the NativeFunction is unbound, the first argument is passed as
// `self` and the rest as args.
type NativeGoFunc func(self Value, args []Value) (Value, error)

// NativeFunction wraps a builtin implemented in Go.
type NativeFunction struct {
	Name string
	Fn   NativeGoFunc
	Self Value // nil when unbound
}

func (n *NativeFunction) TypeOf() *Type { return NativeFunctionType }

// Bind returns a clone of n with Self set. Attribute lookup does not use
// it: GetAttr wraps a native function found on an instance's class in a
// BoundMethod instead.
func (n *NativeFunction) Bind(self Value) *NativeFunction {
	return &NativeFunction{Name: n.Name, Fn: n.Fn, Self: self}
}

// Instance is a user-class (or exception) instance: a class pointer plus
// its own attribute dict.
type Instance struct {
	Class *Type
	Dict  *Dict
}

func (o *Instance) TypeOf() *Type { return o.Class }

// NewInstance allocates a bare instance of class c with an empty
// instance dict. It does not run __new__ or __init__; see constructInstance
// in builtin_types.go for the full constructor protocol.
func NewInstance(c *Type) *Instance {
	return &Instance{Class: c, Dict: NewDict()}
}

// Repr produces a best-effort human-readable rendering of any Value,
// used by the JSON dump, error messages and tests. It never fails: values
// without a custom rendering fall back to their type name.
func Repr(v Value) string {
	switch t := v.(type) {
	case *Int:
		return fmt.Sprintf("%d", t.Value)
	case *Bool:
		if t.Value {
			return "True"
		}
		return "False"
	case *Str:
		return t.Value
	case *NoneValue:
		return "None"
	case *List:
		s := "["
		for i, e := range t.Elements {
			if i > 0 {
				s += ", "
			}
			s += Repr(e)
		}
		return s + "]"
	case *Dict:
		return t.Repr()
	case *Type:
		return "<class '" + t.Name + "'>"
	case *Function:
		return "<function " + t.Code.Name + ">"
	case *BoundMethod:
		return "<bound method>"
	case *NativeFunction:
		return "<native function " + t.Name + ">"
	case *Instance:
		return "<" + t.Class.Name + " object>"
	default:
		return "<value>"
	}
}
