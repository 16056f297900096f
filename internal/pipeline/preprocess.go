package pipeline

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// DefaultMaxUploadBytes caps uploads at 16 MiB.
const DefaultMaxUploadBytes = 16 << 20

// defaultFormats are the image formats the original backend accepted.
var defaultFormats = map[string]bool{
	"png":  true,
	"jpeg": true,
	"gif":  true,
	"bmp":  true,
	"tiff": true,
}

// ImageTensor is a fixed-shape NHWC float32 tensor derived from one upload.
// Pixel values are scaled to 0..255; the model embeds its own rescaling.
type ImageTensor struct {
	Data     []float32
	Size     int
	Channels int
}

// Constraints bound what the preprocessor accepts. The target size comes from
// the loaded model's metadata.
type Constraints struct {
	MaxBytes       int64
	TargetSize     int
	AllowedFormats map[string]bool
}

func DefaultConstraints(targetSize int) Constraints {
	return Constraints{
		MaxBytes:       DefaultMaxUploadBytes,
		TargetSize:     targetSize,
		AllowedFormats: defaultFormats,
	}
}

// Preprocess validates and converts raw upload bytes into the tensor the
// model expects. All failures map to ErrInvalidImage; there is no partial
// recovery.
func Preprocess(raw []byte, c Constraints) (ImageTensor, error) {
	if len(raw) == 0 {
		return ImageTensor{}, fmt.Errorf("%w: empty upload", ErrInvalidImage)
	}
	if c.MaxBytes > 0 && int64(len(raw)) > c.MaxBytes {
		return ImageTensor{}, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrInvalidImage, len(raw), c.MaxBytes)
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return ImageTensor{}, fmt.Errorf("%w: decode failed: %v", ErrInvalidImage, err)
	}
	if c.AllowedFormats != nil && !c.AllowedFormats[format] {
		return ImageTensor{}, fmt.Errorf("%w: unsupported format %q", ErrInvalidImage, format)
	}

	size := c.TargetSize
	if size <= 0 {
		return ImageTensor{}, fmt.Errorf("%w: target size %d", ErrInvalidImage, size)
	}
	resized := resize.Resize(uint(size), uint(size), img, resize.Lanczos3)

	const channels = 3
	data := make([]float32, size*size*channels)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			r, g, b, _ := resized.At(x, y).RGBA()
			base := (y*size + x) * channels
			data[base] = float32(r >> 8)
			data[base+1] = float32(g >> 8)
			data[base+2] = float32(b >> 8)
		}
	}

	return ImageTensor{Data: data, Size: size, Channels: channels}, nil
}
