package darknet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLabels(t *testing.T) {

	path := filepath.Join(t.TempDir(), "coco.names")
	require.NoError(t, os.WriteFile(path, []byte("person\n bicycle \r\ncar\n"), 0o644))

	labels, err := LoadLabels(path)
	require.NoError(t, err)

	assert.Equal(t, 3, labels.Len())
	assert.Equal(t, "bicycle", labels.Name(1))
	assert.Equal(t, []string{"person", "bicycle", "car"}, labels.Names())

	_, err = LoadLabels(filepath.Join(t.TempDir(), "missing.names"))
	require.ErrorIs(t, err, ErrIO)
}

func TestLabelsCopies(t *testing.T) {

	names := []string{"a", "b"}
	labels := NewLabels(names)

	names[0] = "z"
	assert.Equal(t, "a", labels.Name(0))

	out := labels.Names()
	out[1] = "z"
	assert.Equal(t, "b", labels.Name(1))

	assert.Panics(t, func() { labels.Name(2) })
}

func TestNilLabels(t *testing.T) {

	var labels *Labels

	assert.Equal(t, 0, labels.Len())
	assert.Nil(t, labels.Names())
}
