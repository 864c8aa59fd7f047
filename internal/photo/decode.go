package photo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// DefaultThumbnailSize is the edge length, in pixels, of decoded thumbnails.
const DefaultThumbnailSize = 32

// MaxSourcePixels bounds the declared dimensions of a photo before it is
// decoded. Small files can declare huge canvases.
const MaxSourcePixels = 4096 * 4096

// ErrTooLarge reports a photo whose declared dimensions exceed MaxSourcePixels.
var ErrTooLarge = errors.New("photo too large")

// Decoder turns a photo reference into a square thumbnail.
type Decoder struct {
	source Source
	size   int
}

// NewDecoder returns a Decoder reading through source. A size of zero or
// less uses DefaultThumbnailSize.
func NewDecoder(source Source, size int) *Decoder {
	if size <= 0 {
		size = DefaultThumbnailSize
	}
	return &Decoder{source: source, size: size}
}

// Size returns the thumbnail edge length.
func (d *Decoder) Size() int {
	return d.size
}

// Decode fetches ref, decodes it and scales the centered square crop down
// (or up) to the thumbnail size. The result is always an *image.RGBA.
func (d *Decoder) Decode(ctx context.Context, ref string) (image.Image, error) {
	data, err := d.source.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode photo %q: %w", ref, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("decode photo %q: empty %s image", ref, format)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxSourcePixels {
		return nil, fmt.Errorf("decode photo %q: %dx%d %s: %w", ref, cfg.Width, cfg.Height, format, ErrTooLarge)
	}
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode photo %q: %w", ref, err)
	}
	if src.Bounds().Empty() {
		return nil, fmt.Errorf("decode photo %q: empty %s image", ref, format)
	}
	return Thumbnail(src, d.size), nil
}

// Thumbnail scales the largest centered square of src to size x size.
func Thumbnail(src image.Image, size int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, centerSquare(src.Bounds()), draw.Src, nil)
	return dst
}

func centerSquare(b image.Rectangle) image.Rectangle {
	w, h := b.Dx(), b.Dy()
	side := min(w, h)
	x0 := b.Min.X + (w-side)/2
	y0 := b.Min.Y + (h-side)/2
	return image.Rect(x0, y0, x0+side, y0+side)
}
