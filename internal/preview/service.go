package preview

import (
	"context"
	"fmt"

	"media-library/internal/logging"
	"media-library/internal/memory"
)

const (
	// DefaultThumbnailSize is used when a request does not specify dimensions.
	DefaultThumbnailSize = 200
	// MaxThumbnailSize caps requested dimensions; anything larger is clamped.
	MaxThumbnailSize = 1024
)

// Config configures the preview service.
type Config struct {
	CacheDir     string
	VideoPosters bool
	FFmpegPath   string
	MaxProcesses int
}

// Service is the façade handlers talk to: it owns the artifact cache, the
// image thumbnailer, and the video frame extractor.
type Service struct {
	cache     *Cache
	images    *ImageThumbnailer
	extractor *VideoFrameExtractor
	posters   bool
}

// NewService builds the preview pipeline. Video posters are disabled when
// requested or when the ffmpeg binary cannot be found.
func NewService(cfg Config, monitor *memory.Monitor) (*Service, error) {
	cache, err := NewCache(cfg.CacheDir)
	if err != nil {
		return nil, err
	}

	extractor := NewVideoFrameExtractor(cfg.FFmpegPath, cfg.MaxProcesses, monitor)
	posters := cfg.VideoPosters
	if posters && !extractor.Available() {
		logging.Warn("ffmpeg not found, video posters disabled")
		posters = false
	}

	return &Service{
		cache:     cache,
		images:    NewImageThumbnailer(monitor),
		extractor: extractor,
		posters:   posters,
	}, nil
}

// PostersEnabled reports whether video poster generation is active.
func (s *Service) PostersEnabled() bool {
	return s.posters
}

// CacheDir returns the artifact cache root.
func (s *Service) CacheDir() string {
	return s.cache.Dir()
}

// ClampSize normalizes requested thumbnail dimensions: non-positive values
// fall back to the default, oversized values are clamped.
func ClampSize(n int) int {
	if n <= 0 {
		return DefaultThumbnailSize
	}
	if n > MaxThumbnailSize {
		return MaxThumbnailSize
	}
	return n
}

// ImageThumbnail returns the path of a cached thumbnail for the image at
// sourcePath, generating it on first request.
func (s *Service) ImageThumbnail(ctx context.Context, sourcePath string, width, height int) (string, error) {
	key := Key{
		SourcePath: sourcePath,
		Width:      ClampSize(width),
		Height:     ClampSize(height),
		Kind:       KindImage,
	}
	return s.cache.GetOrGenerate(ctx, key, func(ctx context.Context, dst string) error {
		return s.images.Generate(ctx, sourcePath, dst, key.Width, key.Height)
	})
}

// VideoPoster returns the path of a cached poster frame for the video at
// sourcePath, generating it on first request.
func (s *Service) VideoPoster(ctx context.Context, sourcePath string) (string, error) {
	if !s.posters {
		return "", fmt.Errorf("video posters disabled")
	}
	key := Key{
		SourcePath: sourcePath,
		Width:      PosterWidth,
		Kind:       KindVideoPoster,
	}
	return s.cache.GetOrGenerate(ctx, key, func(ctx context.Context, dst string) error {
		return s.extractor.Extract(ctx, sourcePath, dst)
	})
}
