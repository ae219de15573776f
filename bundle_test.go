package jsbridge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cryguy/jsbridge/host"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestBundleResolvesImports(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "lib.js", `export function double(x) { return x * 2; }`)
	entry := writeFile(t, dir, "main.js", `
import { double } from "./lib.js";
export const answer = double(21);
export function helper() {}
`)

	src, err := Bundle(entry)
	require.NoError(t, err)
	assert.Contains(t, src, BundleGlobal)
	assert.NotContains(t, src, "import ")

	s, _ := newTestSession(t)
	v, err := s.EvalBundle(entry)
	require.NoError(t, err)
	answer, ok := v.Array().Get(host.StringKey("answer"))
	require.True(t, ok)
	assert.Equal(t, int64(42), answer.Int())
	helper, _ := v.Array().Get(host.StringKey("helper"))
	assert.Equal(t, "[Function]", helper.Str())

	assert.Equal(t, int64(8), mustEval(t, s, BundleGlobal+`.answer - 34`).Int())
}

func TestBundleErrors(t *testing.T) {
	dir := t.TempDir()
	entry := writeFile(t, dir, "main.js", `import { nope } from "./missing.js"; export default nope;`)

	_, err := Bundle(entry)
	assert.Error(t, err)

	_, err = Bundle(filepath.Join(dir, "absent.js"))
	assert.Error(t, err)
}
