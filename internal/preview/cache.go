package preview

import (
	"context"
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"media-library/internal/logging"
	"media-library/internal/metrics"

	"golang.org/x/sync/singleflight"
)

// Kind distinguishes the two artifact families the cache holds.
type Kind string

const (
	// KindImage is a scaled-down still image.
	KindImage Kind = "image"
	// KindVideoPoster is a frame extracted from a video.
	KindVideoPoster Kind = "video_poster"
)

// Key identifies one cached artifact. Two requests with the same key always
// map to the same file on disk.
type Key struct {
	SourcePath string
	Width      int
	Height     int
	Kind       Kind
}

// digest is the content address: the artifact filename is derived from the
// source path and target dimensions, so a size change produces a new artifact
// instead of overwriting the old one.
func (k Key) digest() string {
	return fmt.Sprintf("%x", md5.Sum([]byte(fmt.Sprintf("%s_%d_%d", k.SourcePath, k.Width, k.Height))))
}

// GeneratorFunc produces the artifact at dst. It must write dst completely or
// return an error; partial output is discarded by the cache.
type GeneratorFunc func(ctx context.Context, dst string) error

// Cache is a content-addressed artifact store. Lookups on existing artifacts
// are lock-free; concurrent misses for the same key collapse to a single
// generation while distinct keys generate in parallel.
type Cache struct {
	dir   string
	group singleflight.Group
}

// NewCache creates the cache rooted at dir, creating the directory tree if
// needed.
func NewCache(dir string) (*Cache, error) {
	for _, d := range []string{dir, filepath.Join(dir, "video")} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return nil, fmt.Errorf("creating cache directory %s: %w", d, err)
		}
	}
	return &Cache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *Cache) Dir() string {
	return c.dir
}

// ArtifactPath returns where the artifact for key lives, whether or not it
// exists yet. Poster frames are segregated under video/ so they can be aged
// out separately from thumbnails.
func (c *Cache) ArtifactPath(key Key) string {
	name := key.digest() + ".jpg"
	if key.Kind == KindVideoPoster {
		return filepath.Join(c.dir, "video", name)
	}
	return filepath.Join(c.dir, name)
}

// GetOrGenerate returns the artifact path for key, invoking generate on a
// miss. The generator writes to a temp file in the artifact's directory which
// is fsynced and renamed into place, so a crash mid-generation never leaves a
// truncated artifact behind, and a concurrent reader only ever sees complete
// files.
func (c *Cache) GetOrGenerate(ctx context.Context, key Key, generate GeneratorFunc) (string, error) {
	artifact := c.ArtifactPath(key)

	if _, err := os.Stat(artifact); err == nil {
		metrics.PreviewCacheHits.Inc()
		return artifact, nil
	}
	metrics.PreviewCacheMisses.Inc()

	_, err, _ := c.group.Do(string(key.Kind)+":"+key.digest(), func() (interface{}, error) {
		// A previous flight may have produced the artifact between the stat
		// above and acquiring the flight.
		if _, err := os.Stat(artifact); err == nil {
			return nil, nil
		}
		return nil, c.generateArtifact(ctx, key, artifact, generate)
	})
	if err != nil {
		return "", err
	}
	return artifact, nil
}

func (c *Cache) generateArtifact(ctx context.Context, key Key, artifact string, generate GeneratorFunc) error {
	start := time.Now()

	dir := filepath.Dir(artifact)
	base := filepath.Base(artifact)

	// The temp name keeps the .jpg suffix so format-sniffing generators
	// (external frame extractors) produce the right container.
	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*.jpg")
	if err != nil {
		metrics.PreviewGenerationsTotal.WithLabelValues(string(key.Kind), "error").Inc()
		return fmt.Errorf("creating temp artifact: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := generate(ctx, tmpPath); err != nil {
		metrics.PreviewGenerationsTotal.WithLabelValues(string(key.Kind), "error").Inc()
		return err
	}

	if err := syncFile(tmpPath); err != nil {
		metrics.PreviewGenerationsTotal.WithLabelValues(string(key.Kind), "error").Inc()
		return fmt.Errorf("syncing artifact: %w", err)
	}

	if err := os.Rename(tmpPath, artifact); err != nil {
		metrics.PreviewGenerationsTotal.WithLabelValues(string(key.Kind), "error").Inc()
		return fmt.Errorf("publishing artifact: %w", err)
	}

	metrics.PreviewGenerationsTotal.WithLabelValues(string(key.Kind), "success").Inc()
	metrics.PreviewGenerationDuration.WithLabelValues(string(key.Kind)).Observe(time.Since(start).Seconds())
	logging.Debug("Generated %s preview for %s in %v", key.Kind, key.SourcePath, time.Since(start))
	return nil
}

func syncFile(path string) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
