package audiocache

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleURL = "https://cdn.islamic.network/quran/audio/128/ar.alafasy/1.mp3"

func TestNewCache(t *testing.T) {
	cacheDir := filepath.Join(t.TempDir(), "audio")

	cache, err := NewCache(cacheDir)
	require.NoError(t, err)
	assert.Equal(t, cacheDir, cache.CacheDir())

	_, err = os.Stat(cacheDir)
	assert.NoError(t, err)
}

func TestCache_PutHasOpen(t *testing.T) {
	cache, err := NewCache(t.TempDir())
	require.NoError(t, err)

	assert.False(t, cache.Has(sampleURL))

	require.NoError(t, cache.Put(sampleURL, []byte("mp3 bytes")))
	assert.True(t, cache.Has(sampleURL))

	r, err := cache.Open(sampleURL)
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "mp3 bytes", string(data))
}

func TestCache_Open_NotCached(t *testing.T) {
	cache, err := NewCache(t.TempDir())
	require.NoError(t, err)

	_, err = cache.Open(sampleURL)
	assert.ErrorIs(t, err, ErrNotCached)
}

func TestCache_Remove(t *testing.T) {
	cache, err := NewCache(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, cache.Put(sampleURL, []byte("mp3 bytes")))
	require.NoError(t, cache.Remove(sampleURL))
	assert.False(t, cache.Has(sampleURL))

	// Removing twice is not an error.
	assert.NoError(t, cache.Remove(sampleURL))
}

func TestCache_Put_Overwrites(t *testing.T) {
	cache, err := NewCache(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, cache.Put(sampleURL, []byte("old")))
	require.NoError(t, cache.Put(sampleURL, []byte("new")))

	data, err := os.ReadFile(cache.Path(sampleURL))
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	count, size, err := cache.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, int64(3), size)
}

func TestCache_Path_DistinctPerURL(t *testing.T) {
	cache, err := NewCache(t.TempDir())
	require.NoError(t, err)

	a := cache.Path(sampleURL)
	b := cache.Path(strings.Replace(sampleURL, "/1.mp3", "/2.mp3", 1))
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasSuffix(a, ".mp3"))
}

func TestCache_Clear(t *testing.T) {
	cache, err := NewCache(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, cache.Put(sampleURL, []byte("a")))
	require.NoError(t, cache.Put(sampleURL+"?v=2", []byte("b")))

	require.NoError(t, cache.Clear())

	assert.False(t, cache.Has(sampleURL))
	count, _, err := cache.Stats()
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, cache.Put(sampleURL, []byte("again")))
	assert.True(t, cache.Has(sampleURL))
}
