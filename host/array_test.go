package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keyStrings(a *Array) []string {
	var out []string
	for _, k := range a.Keys() {
		out = append(out, k.String())
	}
	return out
}

func TestArraySetKeepsPosition(t *testing.T) {
	a := NewArray()
	a.SetString("a", Int(1))
	a.SetString("b", Int(2))
	a.SetString("a", Int(3))

	assert.Equal(t, []string{"a", "b"}, keyStrings(a))
	v, ok := a.Get(StringKey("a"))
	require.True(t, ok)
	assert.Equal(t, int64(3), v.Int())
}

func TestArrayAppendUsesNextIntKey(t *testing.T) {
	a := NewArray()
	a.Append(String("x"))
	a.Set(IntKey(10), String("y"))
	a.SetString("name", String("z"))
	a.Append(String("w"))

	assert.Equal(t, []string{"0", "10", "name", "11"}, keyStrings(a))
}

func TestArrayDeleteKeepsOrder(t *testing.T) {
	a := List(Int(0), Int(1), Int(2), Int(3))
	require.True(t, a.Delete(IntKey(1)))
	assert.False(t, a.Delete(IntKey(1)))

	assert.Equal(t, []string{"0", "2", "3"}, keyStrings(a))
	v, ok := a.Get(IntKey(3))
	require.True(t, ok)
	assert.Equal(t, int64(3), v.Int())
}

func TestArrayCloneIsDeep(t *testing.T) {
	inner := List(Int(1))
	a := NewArray()
	a.SetString("inner", ArrayOf(inner))

	c := a.Clone()
	inner.Append(Int(2))

	v, _ := c.Get(StringKey("inner"))
	assert.Equal(t, 1, v.Array().Len())
}

func TestNilArrayIsEmpty(t *testing.T) {
	var a *Array
	assert.Equal(t, 0, a.Len())
	assert.Nil(t, a.Keys())
	_, ok := a.Get(IntKey(0))
	assert.False(t, ok)
	for range a.All() {
		t.Fatal("nil array yielded an entry")
	}
}
