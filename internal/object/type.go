package object

// nextDebugID hands out small, monotonically increasing identifiers to
// new Type objects. Nothing in the repository reads DebugID; the JSON
// dump does not render it.
var nextDebugID int64

func allocDebugID() int64 {
	nextDebugID++
	return nextDebugID
}

// Type is the runtime type descriptor. Every Value's TypeOf() returns
// one of these; a Type's behavior is entirely determined by its slots,
// which are populated (and kept in sync with Dict) by the readiness
// protocol in mro.go.
//
// The thirteen slots below mirror the dunder methods a class dict can
// define: __hash__, __bool__, __add__, __lt__, __eq__, __len__,
// __call__, __getattr__, __setattr__, __iter__,
// __next__, __new__ and __init__.
type Type struct {
	DebugID int64
	Name    string

	Base  *Type   // primary base; nil only for the root object type
	Bases []*Type // declared bases, left to right, as written in `class C(A, B):`
	MRO   []*Type // C3-linearized method resolution order, self first

	Subclasses []*Type // types whose MRO was computed with this type as an ancestor

	Dict *Dict // the class namespace: methods and class attributes

	// AttrDefaults holds (name, value) pairs that NewUserType collects from
	// a class body's plain (non-callable) attributes and that slotNew
	// installs into every fresh Instance's dict.
	AttrDefaults []AttrDefault

	ready bool

	HashSlot     func(v Value) (uint64, error)
	BoolSlot     func(v Value) (bool, error)
	AddSlot      func(a, b Value) (Value, error)
	LtSlot       func(a, b Value) (Value, error)
	EqSlot       func(a, b Value) (Value, error)
	LenSlot      func(v Value) (int, error)
	CallSlot     func(callable Value, args []Value) (Value, error)
	GetAttrSlot  func(v Value, name string) (Value, error)
	SetAttrSlot  func(v Value, name string, val Value) error
	IterSlot     func(v Value) (Value, error)
	IterNextSlot func(it Value) (Value, bool, error) // ok=false means exhausted, no error
	NewSlot      func(t *Type, args []Value) (Value, error)
	InitSlot     func(v Value, args []Value) error
}

func (t *Type) TypeOf() *Type { return TypeType }

// AttrDefault is one class-body assignment of the form `name = expr`
// that is not a `def`, installed onto every fresh instance.
type AttrDefault struct {
	Name  string
	Value Value
}

// IsSubclass reports whether t is c or a descendant of c in t's MRO.
func (t *Type) IsSubclass(c *Type) bool {
	for _, a := range t.MRO {
		if a == c {
			return true
		}
	}
	return false
}

// LookupMRO searches the dict of every type in t's MRO, in order, for
// name, returning the first hit. This is how method and class-attribute
// lookup works uniformly across single and multiple inheritance.
func (t *Type) LookupMRO(name string) (Value, bool) {
	for _, c := range t.MRO {
		if c.Dict == nil {
			continue
		}
		if v, ok := c.Dict.GetStr(name); ok {
			return v, true
		}
	}
	return nil, false
}
