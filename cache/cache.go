package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Disk cache for rendered post detail pages. Only pages served to anonymous
// visitors ever land here; logged-in views are viewer-dependent.

const cacheDir = "cache/posts"

func cachePath(postID string) string {
	hash := xxhash.Sum64String("post:" + postID)
	return filepath.Join(cacheDir, fmt.Sprintf("%s_%016x.html", postID, hash))
}

// WritePost stores the rendered HTML for a post page.
func WritePost(postID, html string) error {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return err
	}
	return os.WriteFile(cachePath(postID), []byte(html), 0644)
}

// ReadPost returns the cached HTML for a post page if present and fresh.
func ReadPost(postID string, maxAge time.Duration) (string, bool) {
	path := cachePath(postID)

	info, err := os.Stat(path)
	if err != nil {
		return "", false
	}

	if time.Since(info.ModTime()) > maxAge {
		return "", false
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}

	return string(content), true
}

// ClearPost drops the cached page for a post. Called on every post or
// comment mutation so anonymous visitors never see stale content.
func ClearPost(postID uint) error {
	path := cachePath(strconv.FormatUint(uint64(postID), 10))
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
