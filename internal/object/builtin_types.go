package object

// Native value types. Each gets a Type descriptor readied through the
// same protocol user classes go through; the few that need behavior
// beyond what the default slot fallbacks in slots.go provide (calling a
// Function, iterating a List, converting with int()/bool()) register it
// either as a dunder entry in their own Dict (so the normal dunder
// lookup in mro.go's populateSlots finds it) or, for the handful of
// slots that are inherently native and never user-overridable (calling
// a Function re-enters the VM; a Type's own __call__ runs the
// constructor protocol), by overriding the slot directly after Ready.
var (
	IntType            *Type
	BoolType           *Type
	StrType            *Type
	NoneType           *Type
	ListType           *Type
	DictType           *Type
	CodeType           *Type
	FunctionType       *Type
	BoundMethodType    *Type
	NativeFunctionType *Type
	ListIteratorType   *Type
	DictIteratorType   *Type
)

// initBuiltinTypes builds every native non-exception type. Called once
// from mro.go's init, after the exception hierarchy exists (int()'s
// error paths construct TypeError instances).
func initBuiltinTypes() {
	IntType = newBuiltinType("int", []*Type{ObjectBaseType})
	IntType.Dict.SetStr("__new__", &NativeFunction{Name: "__new__", Fn: nativeIntNew})
	mustReady(IntType)

	BoolType = newBuiltinType("bool", []*Type{IntType})
	BoolType.Dict.SetStr("__new__", &NativeFunction{Name: "__new__", Fn: nativeBoolNew})
	mustReady(BoolType)

	StrType = newBuiltinType("str", []*Type{ObjectBaseType})
	mustReady(StrType)

	NoneType = newBuiltinType("NoneType", []*Type{ObjectBaseType})
	mustReady(NoneType)

	ListType = newBuiltinType("list", []*Type{ObjectBaseType})
	ListType.Dict.SetStr("__iter__", &NativeFunction{Name: "__iter__", Fn: func(self Value, args []Value) (Value, error) {
		return GetIter(self)
	}})
	mustReady(ListType)

	DictType = newBuiltinType("dict", []*Type{ObjectBaseType})
	DictType.Dict.SetStr("__iter__", &NativeFunction{Name: "__iter__", Fn: func(self Value, args []Value) (Value, error) {
		return GetIter(self)
	}})
	mustReady(DictType)

	CodeType = newBuiltinType("code", []*Type{ObjectBaseType})
	mustReady(CodeType)

	FunctionType = newBuiltinType("function", []*Type{ObjectBaseType})
	mustReady(FunctionType)
	FunctionType.CallSlot = func(callee Value, args []Value) (Value, error) {
		fn := callee.(*Function)
		if CallFunction == nil {
			return nil, NewTypeError("no interpreter bound to execute function bodies")
		}
		return CallFunction(fn, args)
	}

	NativeFunctionType = newBuiltinType("native_function", []*Type{ObjectBaseType})
	mustReady(NativeFunctionType)
	NativeFunctionType.CallSlot = func(callee Value, args []Value) (Value, error) {
		nf := callee.(*NativeFunction)
		if nf.Self != nil {
			return nf.Fn(nf.Self, args)
		}
		if len(args) == 0 {
			return nil, NewTypeError(nf.Name + "() missing required argument: 'self'")
		}
		return nf.Fn(args[0], args[1:])
	}

	BoundMethodType = newBuiltinType("bound_method", []*Type{ObjectBaseType})
	mustReady(BoundMethodType)
	BoundMethodType.CallSlot = func(callee Value, args []Value) (Value, error) {
		bm := callee.(*BoundMethod)
		full := append([]Value{bm.Self}, args...)
		return CallValue(bm.Callable, full)
	}

	ListIteratorType = newBuiltinType("list_iterator", []*Type{ObjectBaseType})
	mustReady(ListIteratorType)
	ListIteratorType.IterNextSlot = func(it Value) (Value, bool, error) { return IterNext(it) }

	DictIteratorType = newBuiltinType("dict_iterator", []*Type{ObjectBaseType})
	mustReady(DictIteratorType)
	DictIteratorType.IterNextSlot = func(it Value) (Value, bool, error) { return IterNext(it) }

	// TypeType's own call protocol is the constructor protocol: calling
	// a class invokes its __new__ slot and, unless __new__ returned a
	// value that is not an instance of the class being constructed (the
	// metaclass-call escape hatch), its __init__ slot too.
	TypeType.CallSlot = constructInstance
}

func constructInstance(callee Value, args []Value) (Value, error) {
	cls := callee.(*Type)
	newFn := cls.NewSlot
	if newFn == nil {
		newFn = slotNew
	}
	inst, err := newFn(cls, args)
	if err != nil {
		return nil, err
	}
	if instOf(inst, cls) {
		if initFn := cls.InitSlot; initFn != nil {
			if err := initFn(inst, args); err != nil {
				return nil, err
			}
		}
	}
	return inst, nil
}

func nativeIntNew(self Value, args []Value) (Value, error) {
	if len(args) == 0 {
		return NewInt(0), nil
	}
	switch v := args[0].(type) {
	case *Int:
		return NewInt(v.Value), nil
	case *Bool:
		return NewInt(boolToInt(v)), nil
	case *Str:
		n, err := parseIntLiteral(v.Value)
		if err != nil {
			return nil, NewTypeError("invalid literal for int(): '" + v.Value + "'")
		}
		return NewInt(n), nil
	default:
		return nil, NewTypeError("int() argument must be a string, a bytes-like object or a number, not '" + v.TypeOf().Name + "'")
	}
}

func parseIntLiteral(s string) (int32, error) {
	neg := false
	i := 0
	if len(s) > 0 && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		i = 1
	}
	if i == len(s) {
		return 0, NewTypeError("invalid literal for int()")
	}
	var n int32
	for ; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, NewTypeError("invalid literal for int()")
		}
		n = n*10 + int32(s[i]-'0')
	}
	if neg {
		n = -n
	}
	return n, nil
}

func nativeBoolNew(self Value, args []Value) (Value, error) {
	if len(args) == 0 {
		return False, nil
	}
	t, err := Truthy(args[0])
	if err != nil {
		return nil, err
	}
	return NewBool(t), nil
}
