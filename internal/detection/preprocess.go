package detection

import (
	"fmt"
	"image"

	"github.com/ironsheep/legend-linker/internal/imaging"
)

// Segmenter produces a binary foreground mask for an image. The mask has the
// image's width and height, its origin at (0,0), and holds only 0 and 255.
type Segmenter interface {
	Segment(img image.Image) (*image.Gray, error)
}

// PreprocessOptions tunes the foreground segmentation.
type PreprocessOptions struct {
	// HSV is the inclusive colour range treated as foreground.
	HSV imaging.HSVRange `json:"hsv" mapstructure:"hsv" yaml:"hsv"`

	// EdgeThreshold is the minimum gradient response marked as an edge.
	EdgeThreshold uint8 `json:"edge_threshold" mapstructure:"edge_threshold" yaml:"edge_threshold"`

	// CloseIterations is the number of dilate→erode passes.
	CloseIterations int `json:"close_iterations" mapstructure:"close_iterations" yaml:"close_iterations"`

	// OpenIterations is the number of erode→dilate passes.
	OpenIterations int `json:"open_iterations" mapstructure:"open_iterations" yaml:"open_iterations"`
}

// DefaultPreprocessOptions returns the standard segmentation settings.
func DefaultPreprocessOptions() PreprocessOptions {
	return PreprocessOptions{
		HSV:             imaging.DefaultHSVRange(),
		EdgeThreshold:   imaging.DefaultEdgeThreshold,
		CloseIterations: 3,
		OpenIterations:  2,
	}
}

// Validate checks the options for values the pipeline cannot use.
func (o PreprocessOptions) Validate() error {
	if err := o.HSV.Validate(); err != nil {
		return fmt.Errorf("hsv range: %w", err)
	}
	if o.CloseIterations < 0 || o.OpenIterations < 0 {
		return fmt.Errorf("morphology iterations must not be negative")
	}
	return nil
}

// Mask fuses three weak segmenters into one foreground mask:
//
//  1. Otsu threshold on grayscale, keeping pixels at or below the level
//  2. HSV colour range
//  3. Blurred Sobel edge map
//
// The union is closed then opened with a 3x3 kernel. Mask never mutates img.
func Mask(img image.Image, opts PreprocessOptions) (*image.Gray, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, imaging.ErrEmptyImage
	}

	gray := imaging.ToGray(img)
	dark := imaging.Threshold(gray, imaging.OtsuLevel(gray), true)
	colour := imaging.ColorMask(img, opts.HSV)
	edges := imaging.EdgeMask(gray, opts.EdgeThreshold)

	combined := imaging.Union(dark, colour, edges)
	combined = imaging.Close(combined, opts.CloseIterations)
	return imaging.Open(combined, opts.OpenIterations), nil
}
