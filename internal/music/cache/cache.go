package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Files smaller than this are treated as failed downloads.
const minFileSize = 1024

// FileCache pre-buffers audio downloads on disk, keyed by source URL.
// Old and oversized content is swept out periodically.
type FileCache struct {
	dir      string
	maxBytes int64
	maxAge   time.Duration

	// mu serializes downloads; concurrent fetches of the same URL would
	// otherwise clobber each other's partial files.
	mu sync.Mutex
}

func New(dir string, maxSizeMB int64, maxAge time.Duration) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &FileCache{
		dir:      dir,
		maxBytes: maxSizeMB * 1024 * 1024,
		maxAge:   maxAge,
	}, nil
}

// Fetch returns a local file holding the audio for url, downloading it with
// yt-dlp when not already cached.
func (c *FileCache) Fetch(ctx context.Context, url string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	path := c.pathFor(url)
	if fi, err := os.Stat(path); err == nil && fi.Size() >= minFileSize {
		now := time.Now()
		_ = os.Chtimes(path, now, now) // refresh for age-based sweeping
		return path, nil
	}

	cmd := exec.CommandContext(ctx, "yt-dlp",
		"--no-playlist",
		"-f", "bestaudio[ext=webm]/bestaudio[ext=m4a]/bestaudio/best",
		"-o", path,
		url,
	)
	if err := cmd.Run(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("yt-dlp download error: %w", err)
	}

	fi, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("downloaded file missing: %w", err)
	}
	if fi.Size() < minFileSize {
		_ = os.Remove(path)
		return "", errors.New("downloaded file too small, likely corrupted")
	}

	log.Debug().Str("url", url).Int64("bytes", fi.Size()).Msg("track pre-buffered")
	return path, nil
}

// Sweep removes entries older than maxAge, then evicts oldest-first until
// total size fits under the limit. Returns the number of files removed.
func (c *FileCache) Sweep() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0, err
	}

	type fileInfo struct {
		path    string
		size    int64
		modTime time.Time
	}

	var files []fileInfo
	var total int64
	removed := 0
	now := time.Now()

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		path := filepath.Join(c.dir, e.Name())

		if c.maxAge > 0 && now.Sub(fi.ModTime()) > c.maxAge {
			if os.Remove(path) == nil {
				removed++
			}
			continue
		}
		files = append(files, fileInfo{path: path, size: fi.Size(), modTime: fi.ModTime()})
		total += fi.Size()
	}

	if c.maxBytes > 0 && total > c.maxBytes {
		sort.Slice(files, func(i, j int) bool {
			return files[i].modTime.Before(files[j].modTime)
		})
		for _, f := range files {
			if total <= c.maxBytes {
				break
			}
			if os.Remove(f.path) == nil {
				total -= f.size
				removed++
			}
		}
	}

	if removed > 0 {
		log.Info().Int("removed", removed).Str("dir", c.dir).Msg("cache swept")
	}
	return removed, nil
}

// Clear empties the cache, used on startup and shutdown to drop leftovers
// from previous runs.
func (c *FileCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if !e.IsDir() {
			_ = os.Remove(filepath.Join(c.dir, e.Name()))
		}
	}
	return nil
}

// RunSweeper sweeps on an interval until ctx is cancelled.
func (c *FileCache) RunSweeper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := c.Sweep(); err != nil {
				log.Warn().Err(err).Msg("cache sweep failed")
			}
		}
	}
}

func (c *FileCache) pathFor(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:16])+".audio")
}
