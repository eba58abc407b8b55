package corpus

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeLevel(t *testing.T, root string, level int) {
	t.Helper()
	dir := filepath.Join(root, fmt.Sprintf("level%d", level))
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "level.yaml"), []byte("documents:\n  - doc0.json\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "doc0.json"), []byte(`{
		"text": "A before B.",
		"entities": [
			{"id": "e0", "text": "A", "start": 0, "end": 1, "kind": "interval"},
			{"id": "e1", "text": "B", "start": 10, "end": 11, "kind": "interval"}
		],
		"relations": [
			{"source": "start e0", "target": "start e1", "rel": "<"}
		]
	}`), 0o644))
}

func TestLoadReadsManifestAndDocuments(t *testing.T) {
	root := t.TempDir()
	writeLevel(t, root, 2)

	c, err := Load(root, 2)
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())

	doc := c.At(0)
	require.Equal(t, "A before B.", doc.Text)
	require.Len(t, doc.Entities, 2)
	require.Len(t, doc.Relations, 1)
}

func TestLoadMissingLevelErrors(t *testing.T) {
	root := t.TempDir()
	_, err := Load(root, 3)
	require.Error(t, err)
}

func TestSampleReturnsADocument(t *testing.T) {
	root := t.TempDir()
	writeLevel(t, root, 2)
	c, err := Load(root, 2)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(1))
	doc, err := c.Sample(rng)
	require.NoError(t, err)
	require.Equal(t, "A before B.", doc.Text)
}
