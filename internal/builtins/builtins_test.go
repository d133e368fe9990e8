package builtins

import (
	"testing"

	"github.com/cwbudde/go-pyvm/internal/object"
)

func TestNewGlobalEnvironmentBindsBuiltinNames(t *testing.T) {
	env := NewGlobalEnvironment()
	names := []string{
		"len", "type", "int", "bool",
		"BaseException", "Exception", "TypeError", "AttributeError",
		"IndexError", "KeyError", "NameError", "AssertionError", "StopIteration",
	}
	for _, name := range names {
		if _, err := env.Get(name); err != nil {
			t.Fatalf("expected builtin %q to be bound: %v", name, err)
		}
	}
}

func TestNewGlobalEnvironmentIsIndependentPerCall(t *testing.T) {
	a := NewGlobalEnvironment()
	a.SetLocal("x", object.NewInt(1))

	b := NewGlobalEnvironment()
	if _, err := b.Get("x"); err == nil {
		t.Fatalf("expected a fresh environment to not see bindings made on another")
	}
}

func TestBuiltinLenDispatchesThroughLenSlot(t *testing.T) {
	list := object.NewList([]object.Value{object.NewInt(1), object.NewInt(2), object.NewInt(3)})
	v, err := builtinLen(list, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, ok := v.(*object.Int)
	if !ok || n.Value != 3 {
		t.Fatalf("expected len 3, got %v", v)
	}
}

func TestBuiltinLenRejectsUnsizedType(t *testing.T) {
	if _, err := builtinLen(object.NewInt(5), nil); err == nil {
		t.Fatalf("expected an error calling len() on an int")
	}
}

func TestBuiltinTypeWithOneArgumentReturnsClass(t *testing.T) {
	v, err := builtinType(object.NewInt(5), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ty, ok := v.(*object.Type)
	if !ok || ty != object.IntType {
		t.Fatalf("expected type(5) to return IntType, got %v", v)
	}
}

func TestBuiltinTypeWithThreeArgumentsBuildsClass(t *testing.T) {
	bases := object.NewList(nil)
	ns := object.NewDict()
	v, err := builtinType(object.NewStr("Widget"), []object.Value{bases, ns})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ty, ok := v.(*object.Type)
	if !ok || ty.Name != "Widget" {
		t.Fatalf("expected a new type named Widget, got %v", v)
	}
}

func TestBuiltinTypeRejectsWrongArity(t *testing.T) {
	if _, err := builtinType(object.NewInt(1), []object.Value{object.NewInt(2)}); err == nil {
		t.Fatalf("expected an error for type() called with 2 total arguments")
	}
}
