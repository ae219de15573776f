// Package host models the values and callables of the embedding side of the
// bridge: a small dynamically-typed value with an ordered associative
// container, and a registry of callables addressed by name.
package host

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindArray
	// KindOpaque holds any Go value the bridge has no mapping for, such as
	// a file handle or a closure.
	KindOpaque
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindOpaque:
		return "opaque"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a host value. The zero Value is null.
type Value struct {
	kind   Kind
	b      bool
	i      int64
	f      float64
	s      string
	arr    *Array
	opaque any
}

func Null() Value { return Value{} }
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }
func Int(i int64) Value { return Value{kind: KindInt, i: i} }
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }
func String(s string) Value { return Value{kind: KindString, s: s} }
func Opaque(x any) Value { return Value{kind: KindOpaque, opaque: x} }
func ArrayOf(a *Array) Value {
	if a == nil {
		a = NewArray()
	}
	return Value{kind: KindArray, arr: a}
}

// ListOf is shorthand for ArrayOf(List(vals...)).
func ListOf(vals ...Value) Value {
	return ArrayOf(List(vals...))
}

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }
func (v Value) Bool() bool { return v.b }
func (v Value) Int() int64 { return v.i }
func (v Value) Float() float64 {
	if v.kind == KindInt {
		return float64(v.i)
	}
	return v.f
}
func (v Value) Str() string { return v.s }
func (v Value) Array() *Array { return v.arr }
func (v Value) Opaque() any { return v.opaque }

// Clone deep-copies arrays; other kinds are returned as is.
func (v Value) Clone() Value {
	if v.kind == KindArray {
		return ArrayOf(v.arr.Clone())
	}
	return v
}

// Equal reports deep equality. Floats compare by value with NaN equal to
// NaN; an Int never equals a Float.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindInt:
		return v.i == o.i
	case KindFloat:
		if math.IsNaN(v.f) && math.IsNaN(o.f) {
			return true
		}
		return v.f == o.f && math.Signbit(v.f) == math.Signbit(o.f)
	case KindString:
		return v.s == o.s
	case KindArray:
		if v.arr.Len() != o.arr.Len() {
			return false
		}
		ok := v.arr.Keys()
		for i, k := range o.arr.Keys() {
			if ok[i] != k {
				return false
			}
			a, _ := v.arr.Get(k)
			b, _ := o.arr.Get(k)
			if !a.Equal(b) {
				return false
			}
		}
		return true
	default:
		return opaqueEqual(v.opaque, o.opaque)
	}
}

func opaqueEqual(a, b any) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}

// String implements fmt.Stringer for debugging output.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return strconv.Quote(v.s)
	case KindArray:
		out := "["
		first := true
		for k, e := range v.arr.All() {
			if !first {
				out += ", "
			}
			first = false
			out += k.String() + ": " + e.String()
		}
		return out + "]"
	default:
		return fmt.Sprintf("opaque(%T)", v.opaque)
	}
}

// Interface converts v to plain Go values: nil, bool, int64, float64,
// string, []any for sequential arrays and map[string]any for the rest.
// Opaque values are returned unwrapped.
func (v Value) Interface() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindArray:
		if sequentialKeys(v.arr.Keys()) {
			out := make([]any, 0, v.arr.Len())
			for _, e := range v.arr.All() {
				out = append(out, e.Interface())
			}
			return out
		}
		out := make(map[string]any, v.arr.Len())
		for k, e := range v.arr.All() {
			out[k.String()] = e.Interface()
		}
		return out
	default:
		return v.opaque
	}
}

// sequentialKeys mirrors the engine-side shape test for Interface. The
// bridge itself classifies through internal/mirror.
func sequentialKeys(keys []Key) bool {
	for i, k := range keys {
		if n, ok := k.Int(); !ok || n != int64(i) {
			return false
		}
	}
	return true
}

var valueType = reflect.TypeOf(Value{})

// FromGo converts a native Go value. Maps with string keys become
// associative arrays with sorted keys; slices and arrays become sequential
// arrays; unsupported values become Opaque.
func FromGo(x any) Value {
	switch t := x.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case *Array:
		return ArrayOf(t)
	case bool:
		return Bool(t)
	case string:
		return String(t)
	case int:
		return Int(int64(t))
	case int64:
		return Int(t)
	case float64:
		return Float(t)
	}
	return fromReflect(reflect.ValueOf(x))
}

func fromReflect(rv reflect.Value) Value {
	switch rv.Kind() {
	case reflect.Bool:
		return Bool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return Float(float64(u))
		}
		return Int(int64(u))
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float())
	case reflect.String:
		return String(rv.String())
	case reflect.Slice:
		if rv.IsNil() {
			return Null()
		}
		fallthrough
	case reflect.Array:
		a := NewArray()
		for i := 0; i < rv.Len(); i++ {
			a.Append(FromGo(rv.Index(i).Interface()))
		}
		return ArrayOf(a)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return Opaque(rv.Interface())
		}
		if rv.IsNil() {
			return Null()
		}
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		a := NewArray()
		for _, k := range keys {
			a.SetString(k.String(), FromGo(rv.MapIndex(k).Interface()))
		}
		return ArrayOf(a)
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null()
		}
		if rv.Type() == reflect.PointerTo(valueType) {
			return rv.Elem().Interface().(Value)
		}
		return Opaque(rv.Interface())
	case reflect.Invalid:
		return Null()
	default:
		return Opaque(rv.Interface())
	}
}
