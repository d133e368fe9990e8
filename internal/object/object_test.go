package object

import "testing"

func TestIntArithmeticAndComparison(t *testing.T) {
	a, b := NewInt(3), NewInt(4)
	sum, err := a.TypeOf().AddSlot(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.(*Int).Value != 7 {
		t.Fatalf("expected 7, got %d", sum.(*Int).Value)
	}
	lt, err := a.TypeOf().LtSlot(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !lt.(*Bool).Value {
		t.Fatalf("expected 3 < 4 to be true")
	}
}

func TestBoolIsIntSubclass(t *testing.T) {
	if !BoolType.IsSubclass(IntType) {
		t.Fatalf("expected bool to be a subclass of int")
	}
	sum, err := True.TypeOf().AddSlot(True, NewInt(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.(*Int).Value != 2 {
		t.Fatalf("expected True + 1 == 2, got %d", sum.(*Int).Value)
	}
}

func TestDictSetGetPreservesOrder(t *testing.T) {
	d := NewDict()
	d.SetStr("a", NewInt(1))
	d.SetStr("b", NewInt(2))
	d.SetStr("a", NewInt(3))
	keys := d.Keys()
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys after overwrite, got %d", len(keys))
	}
	v, ok := d.GetStr("a")
	if !ok || v.(*Int).Value != 3 {
		t.Fatalf("expected overwritten value 3, got %v ok=%v", v, ok)
	}
}

func TestDiamondMRO(t *testing.T) {
	// class A: ...
	// class B(A): ...
	// class C(A): ...
	// class D(B, C): ...
	a := newBuiltinType("A", []*Type{ObjectBaseType})
	mustReadyTest(t, a)
	b := newBuiltinType("B", []*Type{a})
	mustReadyTest(t, b)
	c := newBuiltinType("C", []*Type{a})
	mustReadyTest(t, c)
	d := newBuiltinType("D", []*Type{b, c})
	mustReadyTest(t, d)

	want := []*Type{d, b, c, a, ObjectBaseType}
	if len(d.MRO) != len(want) {
		t.Fatalf("expected MRO length %d, got %d: %v", len(want), len(d.MRO), mroNames(d.MRO))
	}
	for i, ty := range want {
		if d.MRO[i] != ty {
			t.Fatalf("MRO mismatch at %d: want %s got %s (full: %v)", i, ty.Name, d.MRO[i].Name, mroNames(d.MRO))
		}
	}
}

func mustReadyTest(t *testing.T, ty *Type) {
	t.Helper()
	if err := Ready(ty); err != nil {
		t.Fatalf("Ready(%s): %v", ty.Name, err)
	}
}

func mroNames(ts []*Type) []string {
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = t.Name
	}
	return names
}

func TestInconsistentMROFails(t *testing.T) {
	a := newBuiltinType("A", []*Type{ObjectBaseType})
	mustReadyTest(t, a)
	b := newBuiltinType("B", []*Type{ObjectBaseType})
	mustReadyTest(t, b)
	// class C(A, B): ...
	c := newBuiltinType("C", []*Type{a, b})
	mustReadyTest(t, c)
	// class D(B, A): ... conflicts with C's established order if
	// combined as bases of a further type E(C, D).
	d := newBuiltinType("D", []*Type{b, a})
	mustReadyTest(t, d)
	e := newBuiltinType("E", []*Type{c, d})
	if err := Ready(e); err == nil {
		t.Fatalf("expected an inconsistent MRO error for E(C, D)")
	}
}

func TestUserClassMethodDispatchViaSlot(t *testing.T) {
	// class Greeter:
	//     def __eq__(self, other):
	//         return True
	greeter := newBuiltinType("Greeter", nil)
	greeter.Dict.SetStr("__eq__", &NativeFunction{Name: "__eq__", Fn: func(self Value, args []Value) (Value, error) {
		return True, nil
	}})
	mustReadyTest(t, greeter)

	inst := NewInstance(greeter)
	other := NewInt(5)
	eq, err := Equal(inst, other)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !eq {
		t.Fatalf("expected custom __eq__ to report equal")
	}
}

func TestConstructorProtocolRunsInit(t *testing.T) {
	point := newBuiltinType("Point", nil)
	point.Dict.SetStr("__init__", &NativeFunction{Name: "__init__", Fn: func(self Value, args []Value) (Value, error) {
		inst := self.(*Instance)
		inst.Dict.SetStr("x", args[0])
		return None, nil
	}})
	mustReadyTest(t, point)

	v, err := CallValue(point, []Value{NewInt(42)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	inst, ok := v.(*Instance)
	if !ok {
		t.Fatalf("expected an Instance, got %T", v)
	}
	x, ok := inst.Dict.GetStr("x")
	if !ok || x.(*Int).Value != 42 {
		t.Fatalf("expected x=42, got %v ok=%v", x, ok)
	}
}

func TestRaiseAndCatchByMRO(t *testing.T) {
	err := NewKeyError("missing")
	exc, ok := AsPyError(err)
	if !ok {
		t.Fatalf("expected a PyError")
	}
	if !exc.TypeOf().IsSubclass(ExceptionType) {
		t.Fatalf("expected KeyError to be a subclass of Exception")
	}
}

func TestListIterationProtocol(t *testing.T) {
	list := NewList([]Value{NewInt(1), NewInt(2), NewInt(3)})
	it, err := GetIter(list)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var sum int32
	for {
		v, ok, err := IterNext(it)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ok {
			break
		}
		sum += v.(*Int).Value
	}
	if sum != 6 {
		t.Fatalf("expected sum 6, got %d", sum)
	}
}

func TestAttributeGetSetOnInstance(t *testing.T) {
	cls := newBuiltinType("Box", nil)
	mustReadyTest(t, cls)
	inst := NewInstance(cls)
	if err := SetAttr(inst, "value", NewInt(10)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, err := GetAttr(inst, "value")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.(*Int).Value != 10 {
		t.Fatalf("expected 10, got %d", v.(*Int).Value)
	}
	if _, err := GetAttr(inst, "missing"); err == nil {
		t.Fatalf("expected AttributeError for missing attribute")
	}
}

func TestSubscriptListAndDict(t *testing.T) {
	list := NewList([]Value{NewInt(1), NewInt(2)})
	v, err := Subscript(list, NewInt(-1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.(*Int).Value != 2 {
		t.Fatalf("expected negative index to wrap to last element, got %d", v.(*Int).Value)
	}

	d := NewDict()
	h, _ := HashOf(NewStr("k"))
	d.Set(NewStr("k"), h, NewInt(99))
	v, err = Subscript(d, NewStr("k"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.(*Int).Value != 99 {
		t.Fatalf("expected 99, got %d", v.(*Int).Value)
	}
	if _, err := Subscript(d, NewStr("missing")); err == nil {
		t.Fatalf("expected KeyError for missing dict key")
	}
}
