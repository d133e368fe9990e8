package object

// findDunder searches t's own dict, then its MRO ancestors in order, for
// a method named name, returning the first hit. Builtin types install
// their native implementations into their own Dict under these same
// names, so this single lookup path serves both builtin and user
// classes uniformly.
func findDunder(t *Type, name string) (Value, bool) {
	if t.Dict != nil {
		if v, ok := t.Dict.GetStr(name); ok {
			return v, true
		}
	}
	for _, anc := range t.MRO {
		if anc == t {
			continue
		}
		if anc.Dict == nil {
			continue
		}
		if v, ok := anc.Dict.GetStr(name); ok {
			return v, true
		}
	}
	return nil, false
}

// resolveSlot looks up a dunder by name on t's MRO and, if found, wraps
// it with wrap to produce the slot's native Go signature. If no dunder
// is defined anywhere in the MRO, it falls back to fallback (which may
// itself be nil, meaning the operation is simply unsupported).
func resolveSlot[T any](t *Type, name string, wrap func(Value) T, fallback T) T {
	if fn, ok := findDunder(t, name); ok {
		return wrap(fn)
	}
	return fallback
}

func slotHash(v Value) (uint64, error) {
	switch x := v.(type) {
	case *Int:
		return uint64(uint32(x.Value)), nil
	case *Bool:
		if x.Value {
			return 1, nil
		}
		return 0, nil
	case *Str:
		return uint64(fnv1a(x.Value)), nil
	case *NoneValue:
		return 0, nil
	case *List, *Dict:
		return 0, NewTypeError("unhashable type: '" + v.TypeOf().Name + "'")
	default:
		return uint64(identityHash(v)), nil
	}
}

// identityHash gives Instances, Types, Functions and the like a hash
// stable for the life of the process, used as the default __hash__ for
// every reference type that doesn't define value equality.
var identityHashes = map[Value]int64{}
var nextIdentityHash int64

func identityHash(v Value) int64 {
	if h, ok := identityHashes[v]; ok {
		return h
	}
	nextIdentityHash++
	identityHashes[v] = nextIdentityHash
	return nextIdentityHash
}

func slotBool(v Value) (bool, error) {
	switch x := v.(type) {
	case *Bool:
		return x.Value, nil
	case *Int:
		return x.Value != 0, nil
	case *NoneValue:
		return false, nil
	case *Str:
		return len(x.Value) != 0, nil
	case *List:
		return len(x.Elements) != 0, nil
	case *Dict:
		return x.Len() != 0, nil
	default:
		t := v.TypeOf()
		if _, ok := findDunder(t, "__len__"); ok {
			n, err := t.LenSlot(v)
			if err != nil {
				return false, err
			}
			return n != 0, nil
		}
		return true, nil
	}
}

func slotAdd(a, b Value) (Value, error) {
	switch x := a.(type) {
	case *Int:
		y, ok := asInt(b)
		if !ok {
			return nil, NewTypeError("unsupported operand type(s) for +: 'int' and '" + b.TypeOf().Name + "'")
		}
		return NewInt(x.Value + y), nil
	case *Bool:
		y, ok := asInt(b)
		if !ok {
			return nil, NewTypeError("unsupported operand type(s) for +: 'bool' and '" + b.TypeOf().Name + "'")
		}
		return NewInt(boolToInt(x) + y), nil
	case *Str:
		y, ok := b.(*Str)
		if !ok {
			return nil, NewTypeError("can only concatenate str (not '" + b.TypeOf().Name + "') to str")
		}
		return NewStr(x.Value + y.Value), nil
	case *List:
		y, ok := b.(*List)
		if !ok {
			return nil, NewTypeError("can only concatenate list (not '" + b.TypeOf().Name + "') to list")
		}
		out := make([]Value, 0, len(x.Elements)+len(y.Elements))
		out = append(out, x.Elements...)
		out = append(out, y.Elements...)
		return NewList(out), nil
	default:
		return nil, NewTypeError("unsupported operand type(s) for +: '" + a.TypeOf().Name + "' and '" + b.TypeOf().Name + "'")
	}
}

func asInt(v Value) (int32, bool) {
	switch x := v.(type) {
	case *Int:
		return x.Value, true
	case *Bool:
		return boolToInt(x), true
	default:
		return 0, false
	}
}

func boolToInt(b *Bool) int32 {
	if b.Value {
		return 1
	}
	return 0
}

func slotLt(a, b Value) (Value, error) {
	switch x := a.(type) {
	case *Int:
		y, ok := asInt(b)
		if !ok {
			return nil, NewTypeError("'<' not supported between instances of 'int' and '" + b.TypeOf().Name + "'")
		}
		return NewBool(x.Value < y), nil
	case *Bool:
		y, ok := asInt(b)
		if !ok {
			return nil, NewTypeError("'<' not supported between instances of 'bool' and '" + b.TypeOf().Name + "'")
		}
		return NewBool(boolToInt(x) < y), nil
	case *Str:
		y, ok := b.(*Str)
		if !ok {
			return nil, NewTypeError("'<' not supported between instances of 'str' and '" + b.TypeOf().Name + "'")
		}
		return NewBool(x.Value < y.Value), nil
	default:
		return nil, NewTypeError("'<' not supported between instances of '" + a.TypeOf().Name + "' and '" + b.TypeOf().Name + "'")
	}
}

func slotEq(a, b Value) (Value, error) {
	switch x := a.(type) {
	case *Int:
		y, ok := asInt(b)
		return NewBool(ok && x.Value == y), nil
	case *Bool:
		y, ok := asInt(b)
		return NewBool(ok && boolToInt(x) == y), nil
	case *Str:
		y, ok := b.(*Str)
		return NewBool(ok && x.Value == y.Value), nil
	case *NoneValue:
		_, ok := b.(*NoneValue)
		return NewBool(ok), nil
	case *List:
		y, ok := b.(*List)
		if !ok || len(x.Elements) != len(y.Elements) {
			return NewBool(false), nil
		}
		for i := range x.Elements {
			eq, err := Equal(x.Elements[i], y.Elements[i])
			if err != nil {
				return nil, err
			}
			if !eq {
				return NewBool(false), nil
			}
		}
		return NewBool(true), nil
	default:
		return NewBool(a == b), nil
	}
}

func slotLen(v Value) (int, error) {
	switch x := v.(type) {
	case *Str:
		return len([]rune(x.Value)), nil
	case *List:
		return len(x.Elements), nil
	case *Dict:
		return x.Len(), nil
	default:
		return 0, NewTypeError("object of type '" + v.TypeOf().Name + "' has no len()")
	}
}

func slotCall(callable Value, args []Value) (Value, error) {
	return nil, NewTypeError("'" + callable.TypeOf().Name + "' object is not callable")
}

func slotIter(v Value) (Value, error) {
	return nil, NewTypeError("'" + v.TypeOf().Name + "' object is not iterable")
}

func slotIterNext(it Value) (Value, bool, error) {
	return nil, false, NewTypeError("'" + it.TypeOf().Name + "' object is not an iterator")
}

func slotNew(t *Type, args []Value) (Value, error) {
	inst := NewInstance(t)
	for i := len(t.MRO) - 1; i >= 0; i-- {
		for _, ad := range t.MRO[i].AttrDefaults {
			inst.Dict.SetStr(ad.Name, ad.Value)
		}
	}
	return inst, nil
}

func slotInit(v Value, args []Value) error { return nil }

// Equal dispatches binary `==` through the left operand's Eq slot,
// matching BinaryEq's compiler contract.
func Equal(a, b Value) (bool, error) {
	v, err := a.TypeOf().EqSlot(a, b)
	if err != nil {
		return false, err
	}
	truthy, err := Truthy(v)
	if err != nil {
		return false, err
	}
	return truthy, nil
}
