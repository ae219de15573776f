package jsbridge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("JSBRIDGE_MEMORY_LIMIT", "1048576")
	t.Setenv("JSBRIDGE_MAX_STACK_SIZE", "262144")
	t.Setenv("JSBRIDGE_POOL_SIZE", "8")
	t.Setenv("JSBRIDGE_EXECUTION_TIMEOUT", "2s")
	t.Setenv("JSBRIDGE_LOG_LEVEL", "debug")
	t.Setenv("JSBRIDGE_LOG_DEV", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, int64(1<<20), cfg.MemoryLimit)
	assert.Equal(t, int64(256<<10), cfg.MaxStackSize)
	assert.Equal(t, 8, cfg.PoolSize)
	assert.Equal(t, 2*time.Second, cfg.ExecutionTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.LogDevelopment)
}

func TestLoadConfigOrDefaultOnBadEnv(t *testing.T) {
	t.Setenv("JSBRIDGE_POOL_SIZE", "many")

	_, err := LoadConfig()
	assert.Error(t, err)
	assert.Equal(t, DefaultConfig(), LoadConfigOrDefault())
}

func TestWithConfigAppliesLimits(t *testing.T) {
	o := buildOptions([]Option{WithConfig(&Config{MemoryLimit: 10, MaxStackSize: 20, ExecutionTimeout: time.Second})})
	assert.Equal(t, int64(10), o.memoryLimit)
	assert.Equal(t, int64(20), o.maxStackSize)
	assert.Equal(t, time.Second, o.timeout)

	o = buildOptions([]Option{WithConfig(nil), WithResolver(nil), WithLogger(nil)})
	assert.NotNil(t, o.resolver)
	assert.NotNil(t, o.logger)
}
