package uid

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsV7(t *testing.T) {
	id, err := New()
	require.NoError(t, err)
	assert.Len(t, id, 36)

	v, err := Version(id)
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestNewIsTimeOrdered(t *testing.T) {
	ids := make([]string, 100)
	for i := range ids {
		ids[i] = Must()
	}
	assert.True(t, sort.StringsAreSorted(ids))
}

func TestParse(t *testing.T) {
	id := Must()
	got, err := Parse(strings.ToUpper(id))
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = Parse("not-a-uuid")
	assert.Error(t, err)
}
