package object

import "fmt"

// ObjectBaseType is the universal root: every class implicitly derives
// from it when no other base is given, the same way every Python class
// derives from `object`.
var ObjectBaseType *Type

// TypeType is the metatype: TypeOf() of every Type is TypeType, and
// TypeOf(TypeType) is itself.
var TypeType *Type

// init bootstraps the object system in dependency order: the two
// hand-built root types first (they cannot go through Ready(), since
// Ready() itself needs ObjectBaseType to exist as the default base),
// then the exception hierarchy (needed because slots.go's fallback
// implementations construct TypeError/IndexError/... on failure), then
// every other native type.
//
// This is a single init() precisely so file-alphabetical init ordering
// (which Go does not let us control otherwise) can't silently reorder
// these three dependency-ordered stages across files.
func init() {
	ObjectBaseType = &Type{DebugID: allocDebugID(), Name: "object", Dict: NewDict()}
	ObjectBaseType.Bases = nil
	ObjectBaseType.MRO = []*Type{ObjectBaseType}
	populateSlots(ObjectBaseType)
	ObjectBaseType.ready = true

	TypeType = &Type{DebugID: allocDebugID(), Name: "type", Dict: NewDict()}
	TypeType.Base = ObjectBaseType
	TypeType.Bases = []*Type{ObjectBaseType}
	TypeType.MRO = []*Type{TypeType, ObjectBaseType}
	ObjectBaseType.Subclasses = append(ObjectBaseType.Subclasses, TypeType)
	populateSlots(TypeType)
	TypeType.ready = true

	initExceptionTypes()
	initBuiltinTypes()
}

// mroMerge implements the C3 linearization merge step: repeatedly pick
// the head of some list that does not appear in the tail of any other
// list, append it to the result, and remove it from every list. It
// fails if no such head can ever be found, which means the declared
// bases have an inconsistent inheritance order.
func mroMerge(seqs [][]*Type) ([]*Type, error) {
	var result []*Type
	for {
		seqs = dropEmpty(seqs)
		if len(seqs) == 0 {
			return result, nil
		}
		var head *Type
		for _, seq := range seqs {
			cand := seq[0]
			if !inAnyTail(cand, seqs) {
				head = cand
				break
			}
		}
		if head == nil {
			return nil, fmt.Errorf("cannot create a consistent method resolution order")
		}
		result = append(result, head)
		for i, seq := range seqs {
			seqs[i] = removeFirstOccurrence(seq, head)
		}
	}
}

func dropEmpty(seqs [][]*Type) [][]*Type {
	out := seqs[:0]
	for _, s := range seqs {
		if len(s) > 0 {
			out = append(out, s)
		}
	}
	return out
}

func inAnyTail(t *Type, seqs [][]*Type) bool {
	for _, seq := range seqs {
		for _, c := range seq[1:] {
			if c == t {
				return true
			}
		}
	}
	return false
}

func removeFirstOccurrence(seq []*Type, t *Type) []*Type {
	if len(seq) > 0 && seq[0] == t {
		return seq[1:]
	}
	return seq
}

// mroCalc computes the C3 linearization of t from its declared Bases:
// merge(L[B1], ..., L[Bn], [B1, ..., Bn]) with t prepended.
func mroCalc(t *Type) ([]*Type, error) {
	if len(t.Bases) == 0 {
		return []*Type{t}, nil
	}
	var seqs [][]*Type
	for _, b := range t.Bases {
		seqs = append(seqs, append([]*Type{}, b.MRO...))
	}
	seqs = append(seqs, append([]*Type{}, t.Bases...))
	merged, err := mroMerge(seqs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", t.Name, err)
	}
	return append([]*Type{t}, merged...), nil
}

// Ready runs the full type-readiness protocol on a freshly-declared
// Type: default the base, compute its MRO, synthesize its class dict
// from what the class body already populated, fill in slots from dunder
// entries or by MRO inheritance, install attribute defaults, and
// register it as a subclass of every MRO ancestor. It is idempotent:
// calling it twice on an already-ready type is a no-op.
func Ready(t *Type) error {
	if t.ready {
		return nil
	}
	if len(t.Bases) == 0 {
		t.Bases = []*Type{ObjectBaseType}
	}
	t.Base = t.Bases[0]

	mro, err := mroCalc(t)
	if err != nil {
		return err
	}
	t.MRO = mro

	if t.Dict == nil {
		t.Dict = NewDict()
	}

	populateSlots(t)

	for _, anc := range t.MRO[1:] {
		anc.Subclasses = append(anc.Subclasses, t)
	}

	t.ready = true
	return nil
}

// populateSlots fills t's callable slots: a dunder defined directly on
// t's own dict takes precedence, otherwise the slot is inherited from
// the first MRO ancestor (after t itself) that defines it.
func populateSlots(t *Type) {
	t.HashSlot = resolveSlot(t, "__hash__", wrapHash, slotHash)
	t.BoolSlot = resolveSlot(t, "__bool__", wrapBool, slotBool)
	t.AddSlot = resolveSlot(t, "__add__", wrapBinary, slotAdd)
	t.LtSlot = resolveSlot(t, "__lt__", wrapBinary, slotLt)
	t.EqSlot = resolveSlot(t, "__eq__", wrapBinary, slotEq)
	t.LenSlot = resolveSlot(t, "__len__", wrapLen, slotLen)
	t.CallSlot = resolveSlot(t, "__call__", wrapCall, slotCall)
	t.GetAttrSlot = resolveSlot(t, "__getattr__", wrapGetAttr, GetAttr)
	t.SetAttrSlot = resolveSlot(t, "__setattr__", wrapSetAttr, SetAttr)
	t.IterSlot = resolveSlot(t, "__iter__", wrapIter, slotIter)
	t.IterNextSlot = resolveSlot(t, "__next__", wrapIterNext, slotIterNext)
	t.NewSlot = resolveSlot(t, "__new__", wrapNew, slotNew)
	t.InitSlot = resolveSlot(t, "__init__", wrapInit, slotInit)
}

// OnDictChanged re-runs slot population on t and, recursively, on every
// subclass that does not shadow the changed dunder itself. It is called
// whenever code assigns into a class's dict after the class was already
// made ready (e.g. `C.__eq__ = ...` from source), keeping slots in sync
// with the dict that defines them.
func OnDictChanged(t *Type) {
	populateSlots(t)
	for _, sub := range t.Subclasses {
		OnDictChanged(sub)
	}
}
