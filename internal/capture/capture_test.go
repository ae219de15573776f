package capture

import (
	"testing"

	"github.com/cryguy/jsbridge/host"
	"github.com/cryguy/jsbridge/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureIsIndependentOfSource(t *testing.T) {
	src := host.List(host.Int(1))
	c := Capture(host.ArrayOf(src))
	src.Append(host.Int(2))

	require.Equal(t, Array, c.Kind)
	assert.Len(t, c.Items, 1)
	assert.Equal(t, "0", c.Items[0].Key)
}

func TestCaptureOpaqueIsNull(t *testing.T) {
	assert.Equal(t, Null, Capture(host.Opaque(struct{}{})).Kind)
}

func TestValueNodeClassification(t *testing.T) {
	assert.Equal(t, wire.TagArray, Capture(host.ArrayOf(host.NewArray())).Node().T)
	assert.Equal(t, wire.TagArray, Capture(host.ListOf(host.String("a"))).Node().T)

	a := host.NewArray()
	a.SetString("k", host.Int(1))
	n := Capture(host.ArrayOf(a)).Node()
	require.Equal(t, wire.TagObject, n.T)
	assert.Equal(t, "k", n.Props[0].K)
}

func TestCloneIsDeep(t *testing.T) {
	c := Capture(host.ListOf(host.ListOf(host.Int(1))))
	d := c.Clone()
	d.Items[0].Value.Items[0].Value.I = 99
	assert.Equal(t, int64(1), c.Items[0].Value.Items[0].Value.I)
}

func TestObjectSpecLaterWriteWinsAndMovesToEnd(t *testing.T) {
	var s ObjectSpec
	s.SetProperty("a", Capture(host.Int(1)))
	s.SetProperty("b", Capture(host.Int(2)))
	s.SetFunction("a", "upper")

	assert.Equal(t, []string{"b", "a"}, s.Names())
	m, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, FunctionRef, m.Kind)
	assert.Equal(t, "upper", m.Callable)
}

func TestObjectSpecNode(t *testing.T) {
	var empty ObjectSpec
	assert.Equal(t, wire.TagObject, empty.Node().T)

	var inner ObjectSpec
	inner.SetProperty("x", Capture(host.Int(1)))

	var s ObjectSpec
	s.SetProperty("list", Capture(host.ListOf()))
	s.SetFunction("f", "upper")
	s.SetObject("inner", &inner)
	inner.SetProperty("y", Capture(host.Int(2)))

	n := s.Node()
	require.Len(t, n.Props, 3)
	assert.Equal(t, wire.TagArray, n.Props[0].V.T)
	assert.Equal(t, wire.TagFunc, n.Props[1].V.T)
	assert.Equal(t, "upper", n.Props[1].V.S)
	assert.Equal(t, wire.TagObject, n.Props[2].V.T)
	assert.Len(t, n.Props[2].V.Props, 1, "nested spec is snapshotted")
}
