package object

import "fmt"

// dictEntry is one slot of a Dict: the original key value (for Repr) and
// its hash, alongside the payload. Entries are kept in insertion order in
// the Dict.rows slice.
type dictEntry struct {
	key   Value
	hash  uint64
	value Value
}

// Dict is an insertion-ordered hashmap, used both as the `dict` Value
// type and as the backing store for a Type's own namespace and every
// Instance's attribute table. Deletion is not part of the surface
// language's grammar so it is not exposed beyond attribute bookkeeping.
type Dict struct {
	index map[string]int // bucket key -> index into rows
	rows  []dictEntry
}

func (d *Dict) TypeOf() *Type { return DictType }

// NewDict allocates an empty Dict.
func NewDict() *Dict {
	return &Dict{index: make(map[string]int)}
}

func bucketKey(hash uint64, key Value) string {
	return fmt.Sprintf("%x:%s", hash, Repr(key))
}

// SetStr sets a string-keyed entry directly, bypassing Hash slot
// dispatch. This is the fast path used for attribute dicts and type
// namespaces, where keys are always plain Go strings.
func (d *Dict) SetStr(key string, val Value) {
	h := uint64(fnv1a(key))
	d.Set(NewStr(key), h, val)
}

// GetStr looks up a string key directly.
func (d *Dict) GetStr(key string) (Value, bool) {
	h := uint64(fnv1a(key))
	return d.Get(NewStr(key), h)
}

// DeleteStr removes a string key if present.
func (d *Dict) DeleteStr(key string) {
	h := uint64(fnv1a(key))
	d.Delete(NewStr(key), h)
}

// Set inserts or overwrites the entry for key, whose hash must have been
// computed via the key's Hash slot (HashOf in ops.go handles this for
// generic Values; callers with a known string key should use SetStr).
func (d *Dict) Set(key Value, hash uint64, val Value) {
	bk := bucketKey(hash, key)
	if i, ok := d.index[bk]; ok {
		d.rows[i].value = val
		return
	}
	d.index[bk] = len(d.rows)
	d.rows = append(d.rows, dictEntry{key: key, hash: hash, value: val})
}

// Get looks up an entry by its precomputed hash and original key value.
func (d *Dict) Get(key Value, hash uint64) (Value, bool) {
	bk := bucketKey(hash, key)
	if i, ok := d.index[bk]; ok {
		return d.rows[i].value, true
	}
	return nil, false
}

// Delete removes an entry if present, preserving the insertion order of
// the remaining entries.
func (d *Dict) Delete(key Value, hash uint64) {
	bk := bucketKey(hash, key)
	i, ok := d.index[bk]
	if !ok {
		return
	}
	delete(d.index, bk)
	d.rows = append(d.rows[:i], d.rows[i+1:]...)
	for k, v := range d.index {
		if v > i {
			d.index[k] = v - 1
		}
	}
}

// Len reports the number of entries.
func (d *Dict) Len() int { return len(d.rows) }

// Keys returns the dict's keys in insertion order.
func (d *Dict) Keys() []Value {
	keys := make([]Value, len(d.rows))
	for i, r := range d.rows {
		keys[i] = r.key
	}
	return keys
}

// Items returns (key, value) pairs in insertion order.
func (d *Dict) Items() [][2]Value {
	items := make([][2]Value, len(d.rows))
	for i, r := range d.rows {
		items[i] = [2]Value{r.key, r.value}
	}
	return items
}

// Repr renders the dict as "{k: v, ...}" in insertion order.
func (d *Dict) Repr() string {
	s := "{"
	for i, r := range d.rows {
		if i > 0 {
			s += ", "
		}
		s += Repr(r.key) + ": " + Repr(r.value)
	}
	return s + "}"
}

// fnv1a is the hash function backing string keys; it is also used as the
// Hash slot for Str.
func fnv1a(s string) uint32 {
	const prime = 16777619
	h := uint32(2166136261)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= prime
	}
	return h
}
