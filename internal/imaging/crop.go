package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// ErrEmptyImage is returned when an operation receives an image or region
// with zero area.
var ErrEmptyImage = errors.New("empty image")

// CropResult contains the cropped image data
type CropResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// CropRegion extracts r from img. The rectangle must lie inside the image
// bounds and have positive area. The result has its origin at (0,0).
func CropRegion(img image.Image, r image.Rectangle) (*image.NRGBA, error) {
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, ErrEmptyImage
	}
	if r.Empty() {
		return nil, fmt.Errorf("crop region %v: %w", r, ErrEmptyImage)
	}
	if !r.In(bounds) {
		return nil, fmt.Errorf("crop region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			r.Min.X, r.Min.Y, r.Max.X, r.Max.Y, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}
	return imaging.Crop(img, r), nil
}

// SubImage returns the part of img inside r without moving it: the result's
// Bounds() equal r, so pixel coordinates stay those of img.
func SubImage(img image.Image, r image.Rectangle) (image.Image, error) {
	bounds := img.Bounds()
	if r.Empty() {
		return nil, fmt.Errorf("region %v: %w", r, ErrEmptyImage)
	}
	if !r.In(bounds) {
		return nil, fmt.Errorf("region %v outside image bounds %v", r, bounds)
	}
	if s, ok := img.(interface {
		SubImage(image.Rectangle) image.Image
	}); ok {
		return s.SubImage(r), nil
	}
	dst := image.NewNRGBA(r)
	draw.Draw(dst, r, img, r.Min, draw.Src)
	return dst, nil
}

// ClampRect returns the part of r inside bounds. The result may be empty.
func ClampRect(r, bounds image.Rectangle) image.Rectangle {
	return r.Canon().Intersect(bounds)
}

// Crop extracts a rectangular region from an image and returns it as a
// base64 PNG, optionally rescaled.
func Crop(img image.Image, x1, y1, x2, y2 int, scale float64) (*CropResult, error) {
	if x1 >= x2 || y1 >= y2 {
		return nil, fmt.Errorf("invalid crop region: x1 must be < x2, y1 must be < y2")
	}

	cropped, err := CropRegion(img, image.Rect(x1, y1, x2, y2))
	if err != nil {
		return nil, err
	}

	out := cropped
	if scale != 1.0 && scale > 0 {
		newWidth := int(float64(cropped.Bounds().Dx()) * scale)
		newHeight := int(float64(cropped.Bounds().Dy()) * scale)
		out = imaging.Resize(cropped, newWidth, newHeight, imaging.Lanczos)
	}

	encoded, err := EncodePNGBase64(out)
	if err != nil {
		return nil, err
	}

	return &CropResult{
		Width:       out.Bounds().Dx(),
		Height:      out.Bounds().Dy(),
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}

// EncodePNGBase64 encodes img as PNG and returns the standard base64 text.
func EncodePNGBase64(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// SavePNG writes img to path, creating parent directories as needed.
func SavePNG(img image.Image, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
