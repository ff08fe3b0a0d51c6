package skybox

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestLibraryCycle(t *testing.T) {
	lib := NewLibrary(DefaultSets(), nil)
	require.Equal(t, 2, lib.Len())
	assert.Equal(t, "default", lib.Current().Set().Name)
	assert.Equal(t, "alternate", lib.Next().Set().Name)
	assert.Equal(t, "default", lib.Next().Set().Name)

	assert.True(t, lib.Select("alternate"))
	assert.Equal(t, "alternate", lib.Current().Set().Name)
	assert.False(t, lib.Select("missing"))
	assert.Equal(t, "alternate", lib.Current().Set().Name)
}

func TestLibraryEmpty(t *testing.T) {
	lib := NewLibrary(nil, nil)
	assert.Nil(t, lib.Current())
	assert.Nil(t, lib.Next())
	assert.NoError(t, lib.Start(context.Background()))
}

func TestLibraryStart(t *testing.T) {
	good := t.TempDir()
	writeSet(t, good, 4)

	lib := NewLibrary([]Set{
		{Name: "good", Dir: good, FaceSize: 4},
		{Name: "bad", Dir: filepath.Join(t.TempDir(), "missing"), FaceSize: 4},
	}, nil)

	err := lib.Start(context.Background())
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 6)
	assert.Equal(t, 6, lib.Loaders()[0].Loaded())
	assert.Equal(t, 0, lib.Loaders()[1].Loaded())
}
