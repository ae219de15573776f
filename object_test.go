package jsbridge

import (
	"sync"
	"testing"

	"github.com/cryguy/jsbridge/host"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectOverwriteMovesToEnd(t *testing.T) {
	o := NewObject(host.NewRegistry())
	o.RegisterProperty("x", host.Int(1))
	o.RegisterProperty("y", host.Int(2))
	o.RegisterProperty("x", host.Int(3))

	assert.Equal(t, []string{"y", "x"}, o.Names())
	assert.Equal(t, 2, o.Len())
	assert.True(t, o.Has("x"))
	assert.False(t, o.Has("z"))

	s, _ := newTestSession(t)
	require.NoError(t, s.RegisterObject("obj", o))
	assert.Equal(t, "y,x:3", mustEval(t, s, `Object.keys(obj).join(",") + ":" + obj.x`).Str())
}

func TestObjectCapturesValues(t *testing.T) {
	o := NewObject(host.NewRegistry())
	list := host.List(host.Int(1))
	o.RegisterProperty("list", host.ArrayOf(list))
	list.Append(host.Int(2))

	s, _ := newTestSession(t)
	require.NoError(t, s.RegisterObject("obj", o))
	assert.Equal(t, int64(1), mustEval(t, s, `obj.list.length`).Int())
}

func TestObjectRegisterFunctionValidatesEagerly(t *testing.T) {
	reg := host.NewRegistry()
	o := NewObject(reg)
	err := o.RegisterFunction("f", "missing")
	assert.ErrorIs(t, err, ErrInvalidCallable)
	assert.ErrorIs(t, err, host.ErrNotFound)
	assert.Equal(t, 0, o.Len())
}

func TestObjectNilResolverUsesDefault(t *testing.T) {
	host.Default.Define("object_test_default", func([]host.Value) (host.Value, error) {
		return host.String("default"), nil
	})
	t.Cleanup(func() { host.Default.Undefine("object_test_default") })

	o := NewObject(nil)
	require.NoError(t, o.RegisterFunction("f", "object_test_default"))
}

func TestObjectMaterialization(t *testing.T) {
	reg := host.NewRegistry()
	require.NoError(t, reg.DefineFunc("greet", func(name string) string { return "hi " + name }))

	nested := NewObject(reg)
	nested.RegisterProperty("depth", host.Int(2))

	o := NewObject(reg)
	o.RegisterProperty("name", host.String("api"))
	o.RegisterProperty("empty", host.ArrayOf(host.NewArray()))
	require.NoError(t, o.RegisterFunction("greet", "greet"))
	o.RegisterObject("nested", nested)
	nested.RegisterProperty("late", host.Bool(true))

	s, reg2 := newTestSession(t)
	for _, name := range reg.Names() {
		fn, _ := reg.Resolve(name)
		reg2.Define(name, fn)
	}
	require.NoError(t, s.RegisterObject("api", o))

	got := mustEval(t, s, `[api.name, api.greet("bob"), api.nested.depth, "late" in api.nested, Array.isArray(api.empty)]`)
	want := host.ListOf(host.String("api"), host.String("hi bob"), host.Int(2), host.Bool(false), host.Bool(true))
	assert.True(t, want.Equal(got), "got %v", got)
}

func TestObjectMaterializesIndependently(t *testing.T) {
	o := NewObject(host.NewRegistry())
	o.RegisterProperty("n", host.Int(1))

	s, _ := newTestSession(t)
	require.NoError(t, s.RegisterObject("a", o))
	require.NoError(t, s.RegisterObject("b", o))
	assert.True(t, mustEval(t, s, `a.n = 5; a !== b && b.n === 1`).Bool())

	other, _ := newTestSession(t)
	require.NoError(t, other.RegisterObject("a", o))
	assert.Equal(t, int64(1), mustEval(t, other, `a.n`).Int())
}

func TestEmptyObjectMaterializesAsObject(t *testing.T) {
	s, _ := newTestSession(t)
	require.NoError(t, s.RegisterObject("e", NewObject(host.NewRegistry())))
	require.NoError(t, s.RegisterObject("n", nil))
	assert.Equal(t, "object,object", mustEval(t, s, `__jsbridge.typeOf(e) + "," + __jsbridge.typeOf(n)`).Str())
}

func TestObjectConcurrentRegistration(t *testing.T) {
	o := NewObject(host.NewRegistry())
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			o.RegisterProperty("shared", host.Int(int64(i)))
			_ = o.Names()
		}(i)
	}
	wg.Wait()
	assert.Equal(t, []string{"shared"}, o.Names())
}
