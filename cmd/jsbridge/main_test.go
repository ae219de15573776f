package main

import (
	"testing"

	"github.com/cryguy/jsbridge/host"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterBuiltins(t *testing.T) {
	reg := host.NewRegistry()
	require.NoError(t, registerBuiltins(reg))
	assert.Equal(t, []string{"lower", "upper", "uuid", "zstd_roundtrip"}, reg.Names())

	upper, err := reg.Resolve("upper")
	require.NoError(t, err)
	v, err := upper([]host.Value{host.String("abc")})
	require.NoError(t, err)
	assert.Equal(t, "ABC", v.Str())

	rt, err := reg.Resolve("zstd_roundtrip")
	require.NoError(t, err)
	v, err = rt([]host.Value{host.String("payload")})
	require.NoError(t, err)
	assert.Equal(t, "payload", v.Str())
}

func TestRunArguments(t *testing.T) {
	assert.Error(t, run(nil))
	assert.Error(t, run([]string{"a.js", "b.js"}))
	assert.NoError(t, run([]string{"-e", `upper("ok")`}))
	assert.Error(t, run([]string{"-e", `throw new Error("bad")`}))
}

func TestNewLogger(t *testing.T) {
	l, err := newLogger("debug", true)
	require.NoError(t, err)
	assert.NotNil(t, l)

	_, err = newLogger("loud", false)
	assert.Error(t, err)
}
