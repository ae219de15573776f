package host

import (
	"iter"
	"math"
)

// Array is an ordered associative container. Entries keep insertion order;
// updating an existing key keeps its position.
//
// The zero value is an empty array ready to use. An Array is not safe for
// concurrent mutation.
type Array struct {
	keys   []Key
	vals   []Value
	index  map[Key]int
	nextID int64
}

// NewArray returns an empty Array.
func NewArray() *Array {
	return &Array{}
}

// List builds a sequential Array holding vals under keys 0..n-1.
func List(vals ...Value) *Array {
	a := &Array{}
	for _, v := range vals {
		a.Append(v)
	}
	return a
}

// Len returns the number of entries.
func (a *Array) Len() int {
	if a == nil {
		return 0
	}
	return len(a.keys)
}

// Set stores v under k. A new key is appended at the end.
func (a *Array) Set(k Key, v Value) {
	if a.index == nil {
		a.index = make(map[Key]int)
	}
	if i, ok := a.index[k]; ok {
		a.vals[i] = v
		return
	}
	a.index[k] = len(a.keys)
	a.keys = append(a.keys, k)
	a.vals = append(a.vals, v)
	if n, ok := k.Int(); ok && n >= a.nextID && n < math.MaxInt64 {
		a.nextID = n + 1
	}
}

// SetString is shorthand for Set(StringKey(k), v).
func (a *Array) SetString(k string, v Value) {
	a.Set(StringKey(k), v)
}

// Append stores v under the next integer key: one past the largest integer
// key ever stored, or 0.
func (a *Array) Append(v Value) {
	a.Set(IntKey(a.nextID), v)
}

// Get returns the value stored under k.
func (a *Array) Get(k Key) (Value, bool) {
	if a == nil || a.index == nil {
		return Value{}, false
	}
	i, ok := a.index[k]
	if !ok {
		return Value{}, false
	}
	return a.vals[i], true
}

// Delete removes k, keeping the order of the remaining entries.
func (a *Array) Delete(k Key) bool {
	if a == nil || a.index == nil {
		return false
	}
	i, ok := a.index[k]
	if !ok {
		return false
	}
	a.keys = append(a.keys[:i], a.keys[i+1:]...)
	a.vals = append(a.vals[:i], a.vals[i+1:]...)
	delete(a.index, k)
	for j := i; j < len(a.keys); j++ {
		a.index[a.keys[j]] = j
	}
	return true
}

// Keys returns a copy of the keys in order.
func (a *Array) Keys() []Key {
	if a == nil {
		return nil
	}
	out := make([]Key, len(a.keys))
	copy(out, a.keys)
	return out
}

// All iterates entries in order.
func (a *Array) All() iter.Seq2[Key, Value] {
	return func(yield func(Key, Value) bool) {
		if a == nil {
			return
		}
		for i, k := range a.keys {
			if !yield(k, a.vals[i]) {
				return
			}
		}
	}
}

// Clone returns a deep copy.
func (a *Array) Clone() *Array {
	out := &Array{nextID: 0}
	if a == nil {
		return out
	}
	for i, k := range a.keys {
		out.Set(k, a.vals[i].Clone())
	}
	out.nextID = a.nextID
	return out
}
