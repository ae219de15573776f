package host

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueEqual(t *testing.T) {
	assert.True(t, Float(math.NaN()).Equal(Float(math.NaN())))
	assert.False(t, Float(0).Equal(Float(math.Copysign(0, -1))))
	assert.False(t, Int(1).Equal(Float(1)))
	assert.True(t, ListOf(Int(1), String("a")).Equal(ListOf(Int(1), String("a"))))
	assert.False(t, ListOf(Int(1), String("a")).Equal(ListOf(String("a"), Int(1))))
	assert.False(t, Opaque(func() {}).Equal(Opaque(func() {})))
}

func TestFromGo(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want Value
	}{
		{"nil", nil, Null()},
		{"bool", true, Bool(true)},
		{"int8", int8(-3), Int(-3)},
		{"uint32", uint32(7), Int(7)},
		{"huge uint", uint64(math.MaxUint64), Float(float64(uint64(math.MaxUint64)))},
		{"float32", float32(1.5), Float(1.5)},
		{"string", "s", String("s")},
		{"slice", []int{1, 2}, ListOf(Int(1), Int(2))},
		{"nil slice", []int(nil), Null()},
		{"array", [2]string{"a", "b"}, ListOf(String("a"), String("b"))},
		{"value pointer", func() *Value { v := Int(4); return &v }(), Int(4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromGo(tt.in)
			assert.True(t, tt.want.Equal(got), "got %v, want %v", got, tt.want)
		})
	}
}

func TestFromGoMapSortsKeys(t *testing.T) {
	v := FromGo(map[string]int{"b": 2, "a": 1, "0": 0})
	assert.Equal(t, KindArray, v.Kind())
	assert.Equal(t, []string{"0", "a", "b"}, keyStrings(v.Array()))
}

func TestFromGoUnsupportedIsOpaque(t *testing.T) {
	ch := make(chan int)
	v := FromGo(ch)
	assert.Equal(t, KindOpaque, v.Kind())
	assert.Equal(t, ch, v.Opaque())
}

func TestInterface(t *testing.T) {
	assert.Equal(t, []any{int64(1), "x"}, ListOf(Int(1), String("x")).Interface())

	a := NewArray()
	a.SetString("k", Bool(true))
	a.Set(IntKey(5), Null())
	assert.Equal(t, map[string]any{"k": true, "5": nil}, ArrayOf(a).Interface())

	assert.Equal(t, []any{}, ArrayOf(NewArray()).Interface())
}

func TestValueString(t *testing.T) {
	a := NewArray()
	a.SetString("x", Int(1))
	a.Append(String("y"))
	assert.Equal(t, `[x: 1, 0: "y"]`, ArrayOf(a).String())
	assert.Equal(t, "null", Null().String())
}
