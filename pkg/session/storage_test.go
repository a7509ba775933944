package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStorage_NewStorage(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "ccxc")

	storage, err := NewFileStorage(dir)
	require.NoError(t, err)
	assert.DirExists(t, dir)
	assert.Equal(t, filepath.Join(dir, DefaultStorageFile), storage.Path())

	_, ok, err := storage.GetItem(StorageKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStorage_SetGetRemove(t *testing.T) {
	storage, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)

	t.Run("Set", func(t *testing.T) {
		require.NoError(t, storage.SetItem("a", "1"))
		v, ok, err := storage.GetItem("a")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "1", v)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, storage.SetItem("a", "2"))
		v, _, _ := storage.GetItem("a")
		assert.Equal(t, "2", v)
	})

	t.Run("Remove", func(t *testing.T) {
		require.NoError(t, storage.RemoveItem("a"))
		_, ok, _ := storage.GetItem("a")
		assert.False(t, ok)
	})

	t.Run("RemoveMissing", func(t *testing.T) {
		assert.NoError(t, storage.RemoveItem("never-set"))
	})
}

func TestFileStorage_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()

	first, err := NewFileStorage(dir)
	require.NoError(t, err)
	require.NoError(t, first.SetItem("k", "v"))

	second, err := NewFileStorage(dir)
	require.NoError(t, err)
	v, ok, err := second.GetItem("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileStorage_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultStorageFile), []byte("[1,2"), 0600))

	storage, err := NewFileStorage(dir)
	require.NoError(t, err)
	_, ok, _ := storage.GetItem(StorageKey)
	assert.False(t, ok)

	// the next write replaces the corrupt file
	require.NoError(t, storage.SetItem("k", "v"))
	reopened, err := NewFileStorage(dir)
	require.NoError(t, err)
	v, _, _ := reopened.GetItem("k")
	assert.Equal(t, "v", v)
}

func TestFileStorage_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultStorageFile), nil, 0600))

	storage, err := NewFileStorage(dir)
	require.NoError(t, err)
	_, ok, _ := storage.GetItem(StorageKey)
	assert.False(t, ok)
}

func TestMemoryStorage(t *testing.T) {
	storage := NewMemoryStorage()

	require.NoError(t, storage.SetItem("k", "v"))
	v, ok, err := storage.GetItem("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	require.NoError(t, storage.RemoveItem("k"))
	_, ok, _ = storage.GetItem("k")
	assert.False(t, ok)
}
