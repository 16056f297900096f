package pipeline

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math/rand"
	"testing"
)

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.Gray{Y: uint8((x + y) % 256)})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

// encodeNoisyPNG fills the image with seeded random pixels so the encoding
// stays large; gradient images compress too well to exercise size caps.
func encodeNoisyPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	rng := rand.New(rand.NewSource(42))
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(rng.Intn(256)),
				G: uint8(rng.Intn(256)),
				B: uint8(rng.Intn(256)),
				A: 255,
			})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("failed to encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func TestPreprocessShape(t *testing.T) {
	cases := []struct {
		name string
		raw  []byte
	}{
		{"png_square", encodePNG(t, 64, 64)},
		{"png_wide", encodePNG(t, 320, 100)},
		{"jpeg_tall", encodeJPEG(t, 90, 400)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tensor, err := Preprocess(tc.raw, DefaultConstraints(150))
			if err != nil {
				t.Fatalf("Preprocess failed: %v", err)
			}
			if tensor.Size != 150 || tensor.Channels != 3 {
				t.Fatalf("unexpected tensor shape: size=%d channels=%d", tensor.Size, tensor.Channels)
			}
			if got, want := len(tensor.Data), 150*150*3; got != want {
				t.Fatalf("tensor has %d values, want %d", got, want)
			}
			for i, v := range tensor.Data {
				if v < 0 || v > 255 {
					t.Fatalf("value %f at index %d outside 0..255", v, i)
				}
			}
		})
	}
}

func TestPreprocessRejectsOversize(t *testing.T) {
	c := DefaultConstraints(150)
	c.MaxBytes = 1024
	raw := encodeNoisyPNG(t, 256, 256)
	if int64(len(raw)) <= c.MaxBytes {
		t.Fatalf("test image too small to exercise the cap")
	}
	_, err := Preprocess(raw, c)
	if !errors.Is(err, ErrInvalidImage) {
		t.Fatalf("expected ErrInvalidImage, got %v", err)
	}
}

func TestPreprocessRejectsGarbage(t *testing.T) {
	_, err := Preprocess([]byte("definitely not an image"), DefaultConstraints(150))
	if !errors.Is(err, ErrInvalidImage) {
		t.Fatalf("expected ErrInvalidImage, got %v", err)
	}
}

func TestPreprocessRejectsEmpty(t *testing.T) {
	_, err := Preprocess(nil, DefaultConstraints(150))
	if !errors.Is(err, ErrInvalidImage) {
		t.Fatalf("expected ErrInvalidImage, got %v", err)
	}
}

func TestPreprocessRejectsDisallowedFormat(t *testing.T) {
	c := DefaultConstraints(150)
	c.AllowedFormats = map[string]bool{"jpeg": true}
	_, err := Preprocess(encodePNG(t, 32, 32), c)
	if !errors.Is(err, ErrInvalidImage) {
		t.Fatalf("expected ErrInvalidImage for png when only jpeg allowed, got %v", err)
	}
}
