// Package builtins populates a fresh root environment with the names every
// program can see without an import: the len/type/int/bool/Exception family
// from the external interface contract, plus the exception type hierarchy
// that assert statements and except clauses resolve by name at runtime.
package builtins

import "github.com/cwbudde/go-pyvm/internal/object"

// NewGlobalEnvironment builds a root environment with every builtin name
// bound. Loading builtins into a fresh environment is idempotent in
// observable behavior: each call produces an independent environment with
// the same bindings, so calling it twice and discarding one copy changes
// nothing a program can observe.
func NewGlobalEnvironment() *object.Environment {
	env := object.NewEnvironment()

	env.SetLocal("len", &object.NativeFunction{Name: "len", Fn: builtinLen})
	env.SetLocal("type", &object.NativeFunction{Name: "type", Fn: builtinType})
	env.SetLocal("int", object.IntType)
	env.SetLocal("bool", object.BoolType)

	env.SetLocal("BaseException", object.BaseExceptionType)
	env.SetLocal("Exception", object.ExceptionType)
	env.SetLocal("TypeError", object.TypeErrorType)
	env.SetLocal("AttributeError", object.AttributeErrorType)
	env.SetLocal("IndexError", object.IndexErrorType)
	env.SetLocal("KeyError", object.KeyErrorType)
	env.SetLocal("NameError", object.NameErrorType)
	env.SetLocal("AssertionError", object.AssertionErrorType)
	env.SetLocal("StopIteration", object.StopIterationType)

	return env
}

// builtinLen implements len(x): NativeFunctionType's unbound call
// convention treats the first positional argument as self, so len is
// registered exactly like a method with no bound receiver.
func builtinLen(self object.Value, args []object.Value) (object.Value, error) {
	n, err := object.Len(self)
	if err != nil {
		return nil, err
	}
	return object.NewInt(int32(n)), nil
}

// builtinType implements both forms of type(): one argument returns the
// argument's class; three arguments (name, bases, namespace dict) build and
// ready a fresh class, the same construction a `class` statement compiles
// down to.
func builtinType(self object.Value, args []object.Value) (object.Value, error) {
	if len(args) == 0 {
		return self.TypeOf(), nil
	}
	if len(args) != 2 {
		return nil, object.NewTypeError("type() takes 1 or 3 arguments")
	}
	name, ok := self.(*object.Str)
	if !ok {
		return nil, object.NewTypeError("type() argument 1 must be str")
	}
	basesList, ok := args[0].(*object.List)
	if !ok {
		return nil, object.NewTypeError("type() argument 2 must be list")
	}
	dict, ok := args[1].(*object.Dict)
	if !ok {
		return nil, object.NewTypeError("type() argument 3 must be dict")
	}
	bases := make([]*object.Type, 0, len(basesList.Elements))
	for _, b := range basesList.Elements {
		bt, ok := b.(*object.Type)
		if !ok {
			return nil, object.NewTypeError("type() bases must be types")
		}
		bases = append(bases, bt)
	}
	return object.NewUserType(name.Value, bases, dict)
}
