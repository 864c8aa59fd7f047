package photo

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"testing"
)

type memSource map[string][]byte

func (m memSource) Fetch(_ context.Context, ref string) ([]byte, error) {
	data, ok := m[ref]
	if !ok {
		return nil, ErrNotFound
	}
	return data, nil
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestDecode_ScalesToSquareThumbnail(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 64, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 64; x++ {
			src.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	d := NewDecoder(memSource{"wide": encodePNG(t, src)}, 8)

	img, err := d.Decode(context.Background(), "wide")
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if got := img.Bounds(); got != image.Rect(0, 0, 8, 8) {
		t.Fatalf("Bounds = %v, want %v", got, image.Rect(0, 0, 8, 8))
	}
	r, _, _, a := img.At(4, 4).RGBA()
	if r>>8 < 190 || r>>8 > 210 || a>>8 < 250 {
		t.Fatalf("At(4,4) = %v, want opaque red", img.At(4, 4))
	}
}

func TestDecode_PropagatesNotFound(t *testing.T) {
	d := NewDecoder(memSource{}, 0)
	if d.Size() != DefaultThumbnailSize {
		t.Fatalf("Size = %d, want %d", d.Size(), DefaultThumbnailSize)
	}
	if _, err := d.Decode(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Decode error = %v, want ErrNotFound", err)
	}
}

func TestDecode_GarbageFails(t *testing.T) {
	d := NewDecoder(memSource{"junk": []byte("not an image")}, 8)
	if _, err := d.Decode(context.Background(), "junk"); err == nil {
		t.Fatalf("Decode(junk) returned nil error")
	}
}

// hugePNG returns a 1x1 PNG whose header claims width x height pixels.
func hugePNG(t *testing.T, width, height uint32) []byte {
	t.Helper()
	data := encodePNG(t, image.NewGray(image.Rect(0, 0, 1, 1)))
	// 8-byte signature, then IHDR: length, type, width, height, ..., CRC.
	binary.BigEndian.PutUint32(data[16:20], width)
	binary.BigEndian.PutUint32(data[20:24], height)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	return data
}

func TestDecode_RejectsOversizedDimensions(t *testing.T) {
	d := NewDecoder(memSource{"huge": hugePNG(t, 40000, 40000)}, 8)

	img, err := d.Decode(context.Background(), "huge")
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("Decode error = %v, want ErrTooLarge", err)
	}
	if img != nil {
		t.Fatalf("Decode image = %v, want nil", img.Bounds())
	}
}

func TestDecode_AllowsLimitDimensions(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 4096, 1))
	d := NewDecoder(memSource{"strip": encodePNG(t, src)}, 4)
	if _, err := d.Decode(context.Background(), "strip"); err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
}

func TestCenterSquare(t *testing.T) {
	tests := []struct {
		in   image.Rectangle
		want image.Rectangle
	}{
		{image.Rect(0, 0, 10, 4), image.Rect(3, 0, 7, 4)},
		{image.Rect(0, 0, 4, 10), image.Rect(0, 3, 4, 7)},
		{image.Rect(5, 5, 9, 9), image.Rect(5, 5, 9, 9)},
	}
	for _, tt := range tests {
		if got := centerSquare(tt.in); got != tt.want {
			t.Fatalf("centerSquare(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
