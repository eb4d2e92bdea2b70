// Package audiocache stores recitation audio on disk, addressed by the
// source URL. The whole namespace is one directory so it can be dropped at
// once when the reciter changes.
package audiocache

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

const filePrefix = "audio_"

// ErrNotCached is returned by Open for URLs that were never stored.
var ErrNotCached = errors.New("audio not cached")

// Cache handles local caching of audio files.
type Cache struct {
	cacheDir string
}

// NewCache creates a new audio cache at the specified directory.
func NewCache(cacheDir string) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Cache{cacheDir: cacheDir}, nil
}

// Path returns where the audio for sourceURL lives (or would live).
func (c *Cache) Path(sourceURL string) string {
	return filepath.Join(c.cacheDir, filename(sourceURL))
}

func (c *Cache) Has(sourceURL string) bool {
	info, err := os.Stat(c.Path(sourceURL))
	return err == nil && info.Mode().IsRegular()
}

// Put stores data for sourceURL. The write is atomic: readers see either
// the previous file or the complete new one.
func (c *Cache) Put(sourceURL string, data []byte) error {
	tmpFile, err := os.CreateTemp(c.cacheDir, "audio_tmp_")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath) // no-op after a successful rename
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}

	return os.Rename(tmpPath, c.Path(sourceURL))
}

// Open returns the cached audio file of sourceURL.
func (c *Cache) Open(sourceURL string) (*os.File, error) {
	f, err := os.Open(c.Path(sourceURL))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotCached
	}
	return f, err
}

// Remove deletes the cached audio of sourceURL. Missing files are ignored.
func (c *Cache) Remove(sourceURL string) error {
	err := os.Remove(c.Path(sourceURL))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Clear deletes every cached audio file.
func (c *Cache) Clear() error {
	if err := os.RemoveAll(c.cacheDir); err != nil {
		return fmt.Errorf("remove cache dir: %w", err)
	}
	if err := os.MkdirAll(c.cacheDir, 0755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	return nil
}

// Stats returns the number of cached files and their total size in bytes.
func (c *Cache) Stats() (count int, size int64, err error) {
	entries, err := os.ReadDir(c.cacheDir)
	if err != nil {
		return 0, 0, err
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), filePrefix) || strings.HasPrefix(entry.Name(), "audio_tmp_") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		count++
		size += info.Size()
	}
	return count, size, nil
}

// CacheDir returns the cache directory path.
func (c *Cache) CacheDir() string {
	return c.cacheDir
}

func filename(sourceURL string) string {
	hash := sha256.Sum256([]byte(sourceURL))
	return fmt.Sprintf("%s%x%s", filePrefix, hash, extension(sourceURL))
}

func extension(sourceURL string) string {
	ext := ".mp3"
	if u, err := url.Parse(sourceURL); err == nil {
		if e := path.Ext(u.Path); e != "" && len(e) <= 5 {
			ext = e
		}
	}
	return ext
}
