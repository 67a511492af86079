// Package document holds the JSON tree that ipwatch persists on disk, the
// path mutator that edits it, and the store that reads and writes it.
//
// A Value is immutable from the outside: accessors hand out copies, and
// ApplyPath returns a new tree rather than editing its input.
package document

import (
	"math"
	"sort"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	Text
	Array
	Object
)

// String returns the string representation of Kind
func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case Text:
		return "text"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return "unknown"
	}
}

// Value is one node of a document tree. The zero Value is Null.
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
	arr  []Value
	obj  map[string]Value
}

// NullValue returns the null document.
func NullValue() Value { return Value{} }

// BoolValue wraps b.
func BoolValue(b bool) Value { return Value{kind: Bool, b: b} }

// NumberValue wraps n.
func NumberValue(n float64) Value { return Value{kind: Number, n: n} }

// TextValue wraps s.
func TextValue(s string) Value { return Value{kind: Text, s: s} }

// ArrayValue builds an array from items.
func ArrayValue(items ...Value) Value {
	arr := make([]Value, len(items))
	copy(arr, items)
	return Value{kind: Array, arr: arr}
}

// ObjectValue builds an object from fields. A nil map yields an empty object.
func ObjectValue(fields map[string]Value) Value {
	obj := make(map[string]Value, len(fields))
	for k, v := range fields {
		obj[k] = v
	}
	return Value{kind: Object, obj: obj}
}

// EmptyObject is shorthand for ObjectValue(nil).
func EmptyObject() Value { return ObjectValue(nil) }

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == Null }

// AsBool returns the boolean and whether v is a Bool.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == Bool }

// AsNumber returns the number and whether v is a Number.
func (v Value) AsNumber() (float64, bool) { return v.n, v.kind == Number }

// AsText returns the string and whether v is Text.
func (v Value) AsText() (string, bool) { return v.s, v.kind == Text }

// AsUint returns v as an unsigned integer. It fails for non-numbers,
// negative numbers, fractions and values beyond the float64 integer range.
func (v Value) AsUint() (uint64, bool) {
	if v.kind != Number {
		return 0, false
	}
	if v.n < 0 || v.n != math.Trunc(v.n) || v.n >= 1<<64 {
		return 0, false
	}
	return uint64(v.n), true
}

// Len returns the number of elements of an Array or fields of an Object.
func (v Value) Len() int {
	switch v.kind {
	case Array:
		return len(v.arr)
	case Object:
		return len(v.obj)
	default:
		return 0
	}
}

// Items returns a copy of the elements of an Array, or nil.
func (v Value) Items() []Value {
	if v.kind != Array {
		return nil
	}
	out := make([]Value, len(v.arr))
	copy(out, v.arr)
	return out
}

// Index returns element i of an Array.
func (v Value) Index(i int) (Value, bool) {
	if v.kind != Array || i < 0 || i >= len(v.arr) {
		return Value{}, false
	}
	return v.arr[i], true
}

// Get returns field key of an Object.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != Object {
		return Value{}, false
	}
	f, ok := v.obj[key]
	return f, ok
}

// Keys returns the field names of an Object in sorted order.
func (v Value) Keys() []string {
	if v.kind != Object {
		return nil
	}
	keys := make([]string, 0, len(v.obj))
	for k := range v.obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// With returns a copy of the Object v with key set to field. v must be an
// Object or Null; anything else is returned unchanged with ok false.
func (v Value) With(key string, field Value) (Value, bool) {
	switch v.kind {
	case Null:
		return ObjectValue(map[string]Value{key: field}), true
	case Object:
		out := ObjectValue(v.obj)
		out.obj[key] = field
		return out, true
	default:
		return v, false
	}
}

// Equal reports whether v and o are structurally equal.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case Null:
		return true
	case Bool:
		return v.b == o.b
	case Number:
		return v.n == o.n
	case Text:
		return v.s == o.s
	case Array:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	case Object:
		if len(v.obj) != len(o.obj) {
			return false
		}
		for k, f := range v.obj {
			g, ok := o.obj[k]
			if !ok || !f.Equal(g) {
				return false
			}
		}
		return true
	}
	return false
}
