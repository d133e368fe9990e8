package object

// CallFunction is the hook the bytecode package installs at startup so
// that calling a Function value (whose body is a Code object this
// package knows nothing about executing) re-enters the VM. Keeping the
// hook here, rather than importing the VM, keeps the dependency a
// single direction: bytecode depends on object, never the reverse.
var CallFunction func(fn *Function, args []Value) (Value, error)

// CallValue is the single entry point every call site (the VM's
// CallFunction opcode, the constructor protocol, builtin dispatch) uses
// to invoke any callable Value. It dispatches through the callee's own
// type slot, so Function, NativeFunction, BoundMethod, Type (the
// constructor protocol) and any user instance defining __call__ are all
// handled uniformly.
func CallValue(callee Value, args []Value) (Value, error) {
	t := callee.TypeOf()
	if t.CallSlot == nil {
		return nil, NewTypeError("'" + t.Name + "' object is not callable")
	}
	return t.CallSlot(callee, args)
}

// Add dispatches `a + b` through a's Add slot.
func Add(a, b Value) (Value, error) {
	t := a.TypeOf()
	if t.AddSlot == nil {
		return nil, NewTypeError("unsupported operand type(s) for +: '" + t.Name + "' and '" + b.TypeOf().Name + "'")
	}
	return t.AddSlot(a, b)
}

// Lt dispatches `a < b` through a's Lt slot.
func Lt(a, b Value) (Value, error) {
	t := a.TypeOf()
	if t.LtSlot == nil {
		return nil, NewTypeError("'<' not supported between instances of '" + t.Name + "' and '" + b.TypeOf().Name + "'")
	}
	return t.LtSlot(a, b)
}

// NewUserType builds and readies a class declared by a `class` statement:
// name, its declared bases (left to right) and the namespace dict
// synthesized from running its body.
func NewUserType(name string, bases []*Type, dict *Dict) (*Type, error) {
	t := &Type{DebugID: allocDebugID(), Name: name, Bases: bases, Dict: dict}
	if err := Ready(t); err != nil {
		return nil, err
	}
	for _, attr := range dict.Items() {
		key, ok := attr[0].(*Str)
		if !ok {
			continue
		}
		if _, isCallable := isDunderOrMethod(attr[1]); !isCallable {
			t.AttrDefaults = append(t.AttrDefaults, AttrDefault{Name: key.Value, Value: attr[1]})
		}
	}
	return t, nil
}

func isDunderOrMethod(v Value) (Value, bool) {
	switch v.(type) {
	case *Function, *NativeFunction, *BoundMethod:
		return v, true
	default:
		return v, false
	}
}

// Truthy dispatches through a value's Bool slot.
func Truthy(v Value) (bool, error) {
	t := v.TypeOf()
	if t.BoolSlot == nil {
		return true, nil
	}
	return t.BoolSlot(v)
}

// HashOf dispatches through a value's Hash slot, used by BuildMap and
// StoreSubScr/BinarySubScr on dict values.
func HashOf(v Value) (uint64, error) {
	t := v.TypeOf()
	if t.HashSlot == nil {
		return 0, NewTypeError("unhashable type: '" + t.Name + "'")
	}
	return t.HashSlot(v)
}

// Len dispatches through a value's Len slot, backing the len() builtin.
func Len(v Value) (int, error) {
	t := v.TypeOf()
	if t.LenSlot == nil {
		return 0, NewTypeError("object of type '" + t.Name + "' has no len()")
	}
	return t.LenSlot(v)
}

// bindIfCallable wraps a value found via class-dict/MRO lookup into a
// BoundMethod when it is itself callable, so `instance.method` yields
// something CallValue can invoke with only the remaining arguments. Plain
// data attributes (ints, strs, ...) pass through unchanged.
func bindIfCallable(v Value, self Value) Value {
	switch v.(type) {
	case *Function, *NativeFunction, *BoundMethod:
		return &BoundMethod{Callable: v, Self: self}
	default:
		return v
	}
}

// GetAttr implements LoadAttr's generic attribute-get contract. Classes
// (*Type values) resolve through their own MRO; instances check their
// own dict first, then their class's MRO, binding callables as methods;
// every other value type carries no attributes.
func GetAttr(v Value, name string) (Value, error) {
	switch x := v.(type) {
	case *Type:
		if val, ok := x.LookupMRO(name); ok {
			return val, nil
		}
		return nil, NewAttributeError("type object '" + x.Name + "' has no attribute '" + name + "'")
	case *Instance:
		if val, ok := x.Dict.GetStr(name); ok {
			return val, nil
		}
		if val, ok := x.Class.LookupMRO(name); ok {
			return bindIfCallable(val, v), nil
		}
		return nil, NewAttributeError("'" + x.Class.Name + "' object has no attribute '" + name + "'")
	default:
		return nil, NewAttributeError("'" + v.TypeOf().Name + "' object has no attribute '" + name + "'")
	}
}

// SetAttr implements StoreAttr. Instances carry a mutable instance
// dict; types carry a mutable class dict and additionally resync the
// slot table of themselves and every subclass that doesn't shadow the
// changed name, since `C.__add__ = f` must take effect on the next
// dunder dispatch. Every other value type rejects attribute assignment.
func SetAttr(v Value, name string, val Value) error {
	switch x := v.(type) {
	case *Instance:
		x.Dict.SetStr(name, val)
		return nil
	case *Type:
		x.Dict.SetStr(name, val)
		OnDictChanged(x)
		return nil
	default:
		return NewAttributeError("'" + v.TypeOf().Name + "' object has no attribute '" + name + "'")
	}
}

// Subscript implements BinarySubScr: container[index].
func Subscript(container, index Value) (Value, error) {
	switch c := container.(type) {
	case *List:
		i, ok := asInt(index)
		if !ok {
			return nil, NewTypeError("list indices must be integers")
		}
		idx := normalizeIndex(i, len(c.Elements))
		if idx < 0 || idx >= len(c.Elements) {
			return nil, NewIndexError("list index out of range")
		}
		return c.Elements[idx], nil
	case *Dict:
		h, err := HashOf(index)
		if err != nil {
			return nil, err
		}
		v, ok := c.Get(index, h)
		if !ok {
			return nil, NewKeyError(Repr(index))
		}
		return v, nil
	case *Str:
		i, ok := asInt(index)
		if !ok {
			return nil, NewTypeError("string indices must be integers")
		}
		runes := []rune(c.Value)
		idx := normalizeIndex(i, len(runes))
		if idx < 0 || idx >= len(runes) {
			return nil, NewIndexError("string index out of range")
		}
		return NewStr(string(runes[idx])), nil
	default:
		return nil, NewTypeError("'" + container.TypeOf().Name + "' object is not subscriptable")
	}
}

func normalizeIndex(i int32, n int) int {
	idx := int(i)
	if idx < 0 {
		idx += n
	}
	return idx
}

// StoreSubscript implements container[index] = value.
func StoreSubscript(container, index, val Value) error {
	switch c := container.(type) {
	case *List:
		i, ok := asInt(index)
		if !ok {
			return NewTypeError("list indices must be integers")
		}
		idx := normalizeIndex(i, len(c.Elements))
		if idx < 0 || idx >= len(c.Elements) {
			return NewIndexError("list assignment index out of range")
		}
		c.Elements[idx] = val
		return nil
	case *Dict:
		h, err := HashOf(index)
		if err != nil {
			return err
		}
		c.Set(index, h, val)
		return nil
	default:
		return NewTypeError("'" + container.TypeOf().Name + "' object does not support item assignment")
	}
}

// listIterator and dictIterator are the internal cursor values returned
// by GetIter over a List/Dict; they are not reachable from source as a
// named type, only through the for-loop's GetIter/ForIter sequence.
type listIterator struct {
	list *List
	pos  int
}

func (it *listIterator) TypeOf() *Type { return ListIteratorType }

type dictIterator struct {
	keys []Value
	pos  int
}

func (it *dictIterator) TypeOf() *Type { return DictIteratorType }

// GetIter implements the GetIter opcode.
func GetIter(v Value) (Value, error) {
	switch x := v.(type) {
	case *List:
		return &listIterator{list: x}, nil
	case *Dict:
		return &dictIterator{keys: x.Keys()}, nil
	default:
		t := v.TypeOf()
		if t.IterSlot == nil {
			return nil, NewTypeError("'" + t.Name + "' object is not iterable")
		}
		return t.IterSlot(v)
	}
}

// IterNext implements the ForIter opcode: (value, hasValue, error). A
// false hasValue with a nil error means the iterator is exhausted.
func IterNext(it Value) (Value, bool, error) {
	switch x := it.(type) {
	case *listIterator:
		if x.pos >= len(x.list.Elements) {
			return nil, false, nil
		}
		v := x.list.Elements[x.pos]
		x.pos++
		return v, true, nil
	case *dictIterator:
		if x.pos >= len(x.keys) {
			return nil, false, nil
		}
		v := x.keys[x.pos]
		x.pos++
		return v, true, nil
	default:
		t := it.TypeOf()
		if t.IterNextSlot == nil {
			return nil, false, NewTypeError("'" + t.Name + "' object is not an iterator")
		}
		return t.IterNextSlot(it)
	}
}

func instOf(v Value, t *Type) bool {
	return v.TypeOf().IsSubclass(t)
}

// wrap* adapt a dunder Value (found via findDunder, always a Function,
// NativeFunction or BoundMethod) into the Go signature a Type slot
// needs. Every dunder call goes back through CallValue, so user-defined
// dunders written in source work exactly like native ones.

func wrapHash(fn Value) func(Value) (uint64, error) {
	return func(v Value) (uint64, error) {
		r, err := CallValue(fn, []Value{v})
		if err != nil {
			return 0, err
		}
		i, ok := asInt(r)
		if !ok {
			return 0, NewTypeError("__hash__ method should return an integer")
		}
		return uint64(uint32(i)), nil
	}
}

func wrapBool(fn Value) func(Value) (bool, error) {
	return func(v Value) (bool, error) {
		r, err := CallValue(fn, []Value{v})
		if err != nil {
			return false, err
		}
		return Truthy(r)
	}
}

func wrapBinary(fn Value) func(Value, Value) (Value, error) {
	return func(a, b Value) (Value, error) {
		return CallValue(fn, []Value{a, b})
	}
}

func wrapLen(fn Value) func(Value) (int, error) {
	return func(v Value) (int, error) {
		r, err := CallValue(fn, []Value{v})
		if err != nil {
			return 0, err
		}
		i, ok := asInt(r)
		if !ok {
			return 0, NewTypeError("__len__ method should return an integer")
		}
		return int(i), nil
	}
}

func wrapCall(fn Value) func(Value, []Value) (Value, error) {
	return func(self Value, args []Value) (Value, error) {
		full := append([]Value{self}, args...)
		return CallValue(fn, full)
	}
}

func wrapGetAttr(fn Value) func(Value, string) (Value, error) {
	return func(v Value, name string) (Value, error) {
		return CallValue(fn, []Value{v, NewStr(name)})
	}
}

func wrapSetAttr(fn Value) func(Value, string, Value) error {
	return func(v Value, name string, val Value) error {
		_, err := CallValue(fn, []Value{v, NewStr(name), val})
		return err
	}
}

func wrapIter(fn Value) func(Value) (Value, error) {
	return func(v Value) (Value, error) {
		return CallValue(fn, []Value{v})
	}
}

func wrapIterNext(fn Value) func(Value) (Value, bool, error) {
	return func(v Value) (Value, bool, error) {
		r, err := CallValue(fn, []Value{v})
		if err != nil {
			if IsStopIteration(err) {
				return nil, false, nil
			}
			return nil, false, err
		}
		return r, true, nil
	}
}

func wrapNew(fn Value) func(*Type, []Value) (Value, error) {
	return func(t *Type, args []Value) (Value, error) {
		full := append([]Value{t}, args...)
		return CallValue(fn, full)
	}
}

func wrapInit(fn Value) func(Value, []Value) error {
	return func(v Value, args []Value) error {
		full := append([]Value{v}, args...)
		_, err := CallValue(fn, full)
		return err
	}
}
