package hybridtrack

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLabels(t *testing.T) {

	path := filepath.Join(t.TempDir(), "labels.txt")
	require.NoError(t, os.WriteFile(path, []byte("person\n bicycle \n\ncar\n"), 0o644))

	labels, err := LoadLabels(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"person", "bicycle", "car"}, labels)
	assert.Equal(t, "car", Label(labels, 2))
	assert.Equal(t, "class7", Label(labels, 7))
	assert.Equal(t, "class-1", Label(labels, UnknownClass))
}

func TestLoadLabelsErrors(t *testing.T) {

	_, err := LoadLabels(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(path, []byte("\n\n"), 0o644))

	_, err = LoadLabels(path)
	assert.Error(t, err)
}
