// Package imaging decodes fetched images and derives fixed-size thumbnails.
package imaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"runtime"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/semaphore"
)

// Defaults applied by NewResizer.
const (
	DefaultJPEGQuality = 85
	DefaultMaxPixels   = 50_000_000
)

var errEmptyImage = errors.New("image has no pixels")

// ErrTooManyPixels is returned for images whose declared dimensions exceed
// the resizer's pixel cap. The pixel data is never decoded.
var ErrTooManyPixels = errors.New("image has too many pixels")

// Resizer implements ports.Resizer.
//
// The source is center-cropped to the target aspect ratio and scaled with
// Catmull-Rom. JPEG sources are re-encoded as JPEG, everything else as PNG.
// At most maxConcurrent resizes run at once; callers beyond that wait, so
// CPU-bound scaling cannot starve the fetch goroutines of a wide batch.
// Images whose header declares more than maxPixels are rejected before any
// pixel data is decoded.
type Resizer struct {
	sem         *semaphore.Weighted
	jpegQuality int
	maxPixels   int64
}

// NewResizer creates a resizer. maxConcurrent <= 0 uses GOMAXPROCS,
// jpegQuality <= 0 uses DefaultJPEGQuality and maxPixels <= 0 uses
// DefaultMaxPixels.
func NewResizer(maxConcurrent, jpegQuality int, maxPixels int64) *Resizer {
	if maxConcurrent <= 0 {
		maxConcurrent = runtime.GOMAXPROCS(0)
	}
	if jpegQuality <= 0 || jpegQuality > 100 {
		jpegQuality = DefaultJPEGQuality
	}
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	return &Resizer{
		sem:         semaphore.NewWeighted(int64(maxConcurrent)),
		jpegQuality: jpegQuality,
		maxPixels:   maxPixels,
	}
}

// Resize decodes data and returns a width x height thumbnail.
func (r *Resizer) Resize(ctx context.Context, data []byte, width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid thumbnail size %dx%d", width, height)
	}
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("wait for resize slot: %w", err)
	}
	defer r.sem.Release(1)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image header: %w", err)
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > r.maxPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d", ErrTooManyPixels, cfg.Width, cfg.Height, r.maxPixels)
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if src.Bounds().Empty() {
		return nil, errEmptyImage
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, coverRect(src.Bounds(), width, height), draw.Src, nil)

	var buf bytes.Buffer
	if format == "jpeg" {
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: r.jpegQuality})
	} else {
		err = png.Encode(&buf, dst)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s thumbnail: %w", format, err)
	}
	return buf.Bytes(), nil
}

// coverRect returns the centered sub-rectangle of b with the aspect ratio
// of width x height.
func coverRect(b image.Rectangle, width, height int) image.Rectangle {
	sw, sh := b.Dx(), b.Dy()
	if sw*height > sh*width {
		cw := max(sh*width/height, 1)
		x0 := b.Min.X + (sw-cw)/2
		return image.Rect(x0, b.Min.Y, x0+cw, b.Max.Y)
	}
	ch := max(sw*height/width, 1)
	y0 := b.Min.Y + (sh-ch)/2
	return image.Rect(b.Min.X, y0, b.Max.X, y0+ch)
}
