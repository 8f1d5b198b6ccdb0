package pathcache_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/philosophy/internal/domain"
	"github.com/jonesrussell/north-cloud/philosophy/internal/pathcache"
)

func TestFileStore_MissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	store := pathcache.NewFileStore(filepath.Join(t.TempDir(), "absent.json"))

	paths, err := store.Load(context.Background())

	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestFileStore_SaveWritesIndentedObject(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "nested", "wiki_paths_cache.json")
	store := pathcache.NewFileStore(file)

	err := store.Save(context.Background(), map[string]domain.Path{
		"Mid": {"Mid", "Philosophy"},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"Mid\": [\n    \"Mid\",\n    \"Philosophy\"\n  ]\n}", string(data))

	entries, err := os.ReadDir(filepath.Dir(file))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Path{"Mid", "Philosophy"}, loaded["Mid"])
}

func TestFileStore_CorruptFileRecoversToEmptyCache(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "wiki_paths_cache.json")
	require.NoError(t, os.WriteFile(file, []byte("{not json"), 0o600))
	store := pathcache.NewFileStore(file)

	_, err := store.Load(context.Background())
	require.Error(t, err)

	cache := pathcache.New(store, nil)
	assert.Zero(t, cache.Load(context.Background()))

	cache.Put(map[string]domain.Path{"A": {"A", "B"}})
	require.NoError(t, cache.Flush(context.Background()))

	reloaded := pathcache.New(store, nil)
	assert.Equal(t, 1, reloaded.Load(context.Background()))
}
