// Package covers caches book cover images on disk. Covers are fetched
// from the Open Library covers API by ISBN and stored once, so repeated
// requests never hit the network.
package covers

import (
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// coverURLTemplate asks Open Library for a medium cover and a 404
// instead of a placeholder image when the ISBN is unknown.
const coverURLTemplate = "https://covers.openlibrary.org/b/isbn/%s-M.jpg?default=false"

// ErrNoCover is returned when Open Library has no cover for the ISBN.
var ErrNoCover = fmt.Errorf("no cover available")

// Cache handles local caching of book cover images.
type Cache struct {
	cacheDir    string
	httpClient  *http.Client
	urlTemplate string
}

// NewCache creates a new cover cache at the specified directory.
func NewCache(cacheDir string) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	return &Cache{
		cacheDir: cacheDir,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		urlTemplate: coverURLTemplate,
	}, nil
}

// GetCover returns the path of the cached cover for an ISBN, fetching
// and caching it on first request. Returns ErrNoCover when Open Library
// has no image for the ISBN.
func (c *Cache) GetCover(isbn string) (string, error) {
	if isbn == "" {
		return "", ErrNoCover
	}

	cachePath := filepath.Join(c.cacheDir, c.coverFilename(isbn))

	if _, err := os.Stat(cachePath); err == nil {
		return cachePath, nil
	}

	url := fmt.Sprintf(c.urlTemplate, isbn)
	if err := c.fetchAndCache(url, cachePath); err != nil {
		return "", err
	}

	return cachePath, nil
}

// Invalidate removes the cached cover for an ISBN.
func (c *Cache) Invalidate(isbn string) error {
	err := os.Remove(filepath.Join(c.cacheDir, c.coverFilename(isbn)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// coverFilename hashes the ISBN so odd characters never reach the filesystem.
func (c *Cache) coverFilename(isbn string) string {
	hash := sha256.Sum256([]byte(isbn))
	return fmt.Sprintf("cover_%x.jpg", hash[:8])
}

// fetchAndCache downloads a cover image and saves it to the cache.
func (c *Cache) fetchAndCache(url, cachePath string) error {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "LibraryMGMT/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNoCover
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to fetch cover: status %d", resp.StatusCode)
	}

	// Write to a temp file in the same directory for an atomic rename
	tmpFile, err := os.CreateTemp(c.cacheDir, "cover_tmp_")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath)
	}()

	_, err = io.Copy(tmpFile, resp.Body)
	if err != nil {
		return err
	}

	tmpFile.Close()

	return os.Rename(tmpPath, cachePath)
}

// CacheDir returns the cache directory path.
func (c *Cache) CacheDir() string {
	return c.cacheDir
}
