package preview

import (
	"context"
	"fmt"
	"image"
	"os"

	"media-library/internal/logging"
	"media-library/internal/memory"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

const (
	// MaxImageDimension is the largest width or height decoded at full
	// resolution; bigger sources are downscaled during load.
	MaxImageDimension = 4096

	// MaxImagePixels bounds the total decoded pixel count. 20MP decodes to
	// roughly 80MB of RGBA, which is the most we want a single request to
	// allocate.
	MaxImagePixels = 20_000_000

	// ThumbnailJPEGQuality is the encode quality for cached artifacts.
	ThumbnailJPEGQuality = 80
)

// ImageThumbnailer scales still images down to thumbnail size. Generation is
// gated on the memory monitor so a burst of thumbnail requests cannot push
// the process over its limit.
type ImageThumbnailer struct {
	monitor *memory.Monitor
}

// NewImageThumbnailer creates a thumbnailer. monitor may be nil, in which
// case generation is ungated.
func NewImageThumbnailer(monitor *memory.Monitor) *ImageThumbnailer {
	return &ImageThumbnailer{monitor: monitor}
}

// Generate decodes src, fits it within width x height preserving aspect
// ratio, and writes a JPEG to dst.
func (t *ImageThumbnailer) Generate(ctx context.Context, src, dst string, width, height int) error {
	if t.monitor != nil {
		t.monitor.WaitIfPaused()
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	img, err := t.load(src, width, height)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", src, err)
	}

	thumb := imaging.Fit(img, width, height, imaging.Lanczos)
	if err := imaging.Save(thumb, dst, imaging.JPEGQuality(ThumbnailJPEGQuality)); err != nil {
		return fmt.Errorf("encoding thumbnail: %w", err)
	}
	return nil
}

// load decodes the source, preferring libvips when it is available because
// vips shrinks during decode instead of materializing the full image.
func (t *ImageThumbnailer) load(src string, width, height int) (image.Image, error) {
	if IsVipsAvailable() {
		img, err := LoadImageWithVips(src, width, height)
		if err == nil {
			return img, nil
		}
		logging.Debug("vips decode failed for %s, falling back: %v", src, err)
	}
	return LoadImageConstrained(src, MaxImageDimension, MaxImagePixels)
}

// LoadImageConstrained loads an image, downscaling oversized sources during
// load so a pathological input cannot exhaust memory.
func LoadImageConstrained(path string, maxDimension, maxPixels int) (image.Image, error) {
	dims, err := GetImageDimensions(path)
	if err != nil {
		// Header parse failed; let the full decoder produce the real error.
		return imaging.Open(path, imaging.AutoOrientation(true))
	}

	width, height := dims.Width, dims.Height
	if width <= maxDimension && height <= maxDimension && width*height <= maxPixels {
		return imaging.Open(path, imaging.AutoOrientation(true))
	}

	targetWidth, targetHeight := width, height
	if width > maxDimension || height > maxDimension {
		if width > height {
			targetWidth = maxDimension
			targetHeight = height * maxDimension / width
		} else {
			targetHeight = maxDimension
			targetWidth = width * maxDimension / height
		}
	}
	if targetWidth*targetHeight > maxPixels {
		scale := float64(maxPixels) / float64(targetWidth*targetHeight)
		targetWidth = int(float64(targetWidth) * scale)
		targetHeight = int(float64(targetHeight) * scale)
	}

	logging.Info("Constraining large image %s from %dx%d to %dx%d", path, width, height, targetWidth, targetHeight)

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	return imaging.Resize(img, targetWidth, targetHeight, imaging.Lanczos), nil
}

// ImageDimensions holds image width and height.
type ImageDimensions struct {
	Width  int
	Height int
}

// GetImageDimensions reads dimensions from the image header without decoding
// pixel data.
func GetImageDimensions(path string) (*ImageDimensions, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	config, _, err := image.DecodeConfig(file)
	if err != nil {
		return nil, err
	}
	return &ImageDimensions{Width: config.Width, Height: config.Height}, nil
}
