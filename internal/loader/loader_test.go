package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archlens/internal/model"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

const flatArch = `{"id":"checkout","name":"Checkout","components":[{"name":"Cart"},{"name":"Pricing"}]}`

func TestLoad_WalksDirectoriesInSortedOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.json"), `{"id":"beta","components":[{"name":"B"}]}`)
	writeFile(t, filepath.Join(dir, "a.json"), flatArch)
	writeFile(t, filepath.Join(dir, "nested", "c.json"), `{"id":"gamma","components":[{"name":"C"}]}`)
	writeFile(t, filepath.Join(dir, "notes.txt"), "not an input")
	writeFile(t, filepath.Join(dir, "testdata", "skipped.json"), flatArch)

	res, err := NewLoader().Load([]string{dir})
	require.NoError(t, err)

	require.Len(t, res.Inputs, 3)
	assert.Equal(t, filepath.Join(dir, "a.json"), res.Inputs[0].Path)
	assert.Equal(t, filepath.Join(dir, "b.json"), res.Inputs[1].Path)
	assert.Equal(t, filepath.Join(dir, "nested", "c.json"), res.Inputs[2].Path)

	require.Len(t, res.Architectures, 3)
	assert.Equal(t, "checkout", res.Architectures[0].ID)
	assert.Equal(t, 1, res.Inputs[0].Architectures)
}

func TestLoad_ExplicitFileSkipsExtensionFilter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arch.txt")
	writeFile(t, path, flatArch)

	res, err := NewLoader().Load([]string{path})
	require.NoError(t, err)
	require.Len(t, res.Architectures, 1)
	assert.Equal(t, "checkout", res.Architectures[0].ID)
}

func TestLoad_DuplicatePathsLoadOnce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.json")
	writeFile(t, path, flatArch)

	res, err := NewLoader().Load([]string{dir, path})
	require.NoError(t, err)
	assert.Len(t, res.Inputs, 1)
	assert.Len(t, res.Architectures, 1)
}

func TestLoad_BrokenFileBecomesCriticalSignal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "good.json"), flatArch)
	broken := filepath.Join(dir, "broken.json")
	writeFile(t, broken, "{not json")

	res, err := NewLoader().Load([]string{dir})
	require.NoError(t, err)

	assert.Len(t, res.Architectures, 1)
	require.Len(t, res.Inputs, 2)
	assert.Zero(t, res.Inputs[0].Architectures, "broken file contributes no architectures")

	var parseFailures []model.Warning
	for _, w := range res.Warnings {
		if w.Code == "parse_failed" {
			parseFailures = append(parseFailures, w)
		}
	}
	require.Len(t, parseFailures, 1)
	assert.Equal(t, broken, parseFailures[0].Source)
	assert.Equal(t, model.SeverityCritical, parseFailures[0].Severity)
}

func TestLoad_MissingPathFails(t *testing.T) {
	_, err := NewLoader().Load([]string{filepath.Join(t.TempDir(), "absent")})
	assert.Error(t, err)
}

func TestFileContents_KeysRawBytesByPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.json")
	writeFile(t, path, flatArch)

	res, err := NewLoader().Load([]string{dir})
	require.NoError(t, err)

	contents := res.FileContents()
	require.Contains(t, contents, path)
	assert.Equal(t, flatArch, string(contents[path]))
}
