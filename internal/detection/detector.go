package detection

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/ironsheep/legend-linker/internal/geometry"
	"github.com/ironsheep/legend-linker/internal/imaging"
)

// DefaultClickRadius is the half-size of the square searched around a click.
const DefaultClickRadius = 50

// SymbolCandidate is a detected symbol region with an identifier. Detector
// ids are 1-based in output order.
type SymbolCandidate struct {
	ID  int                  `json:"id"`
	Box geometry.BoundingBox `json:"box"`
}

// Options configures the detection pipeline.
type Options struct {
	Preprocess PreprocessOptions `json:"preprocess" mapstructure:"preprocess" yaml:"preprocess"`

	// MinArea drops boxes whose area is at or below it.
	MinArea int `json:"min_area" mapstructure:"min_area" yaml:"min_area"`

	// MaxArea drops boxes whose area is at or above it. Zero disables the
	// upper bound.
	MaxArea int `json:"max_area" mapstructure:"max_area" yaml:"max_area"`

	// Tolerance is the box merge distance.
	Tolerance Tolerance `json:"tolerance" mapstructure:"tolerance" yaml:"tolerance"`

	// ClickRadius is the half-size of the square searched by DetectNear.
	ClickRadius int `json:"click_radius" mapstructure:"click_radius" yaml:"click_radius"`
}

// DefaultOptions returns the standard detection settings.
func DefaultOptions() Options {
	return Options{
		Preprocess:  DefaultPreprocessOptions(),
		MinArea:     DefaultMinArea,
		Tolerance:   DefaultTolerance,
		ClickRadius: DefaultClickRadius,
	}
}

// Validate checks the options.
func (o Options) Validate() error {
	if err := o.Preprocess.Validate(); err != nil {
		return err
	}
	if o.MinArea < 0 || o.MaxArea < 0 {
		return fmt.Errorf("area bounds must not be negative")
	}
	if o.MaxArea > 0 && o.MaxArea <= o.MinArea {
		return fmt.Errorf("max_area %d must exceed min_area %d", o.MaxArea, o.MinArea)
	}
	if o.Tolerance.X < 0 || o.Tolerance.Y < 0 {
		return fmt.Errorf("merge tolerance must not be negative")
	}
	if o.ClickRadius <= 0 {
		return fmt.Errorf("click_radius must be positive")
	}
	return nil
}

// Detector runs segmentation, region extraction and box merging.
type Detector struct {
	seg    Segmenter
	opts   Options
	logger *slog.Logger
}

// NewDetector creates a detector. A nil segmenter selects the compiled-in
// backend; a nil logger uses slog.Default().
func NewDetector(seg Segmenter, opts Options, logger *slog.Logger) *Detector {
	if seg == nil {
		seg = NewSegmenter(opts.Preprocess)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{seg: seg, opts: opts, logger: logger}
}

// Options returns the detector's settings.
func (d *Detector) Options() Options {
	return d.opts
}

// Detect finds symbol candidates in img. Boxes are in img's own pixel space.
func (d *Detector) Detect(img image.Image) ([]SymbolCandidate, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, imaging.ErrEmptyImage
	}

	mask, err := d.seg.Segment(img)
	if err != nil {
		return nil, fmt.Errorf("segment: %w", err)
	}

	raw := ExtractBoxes(mask, d.opts.MinArea, d.opts.MaxArea)
	merged := MergeBoxes(raw, d.opts.Tolerance)

	// The mask is zero-origin; move boxes back into img's space.
	origin := img.Bounds().Min
	candidates := make([]SymbolCandidate, len(merged))
	for i, b := range merged {
		candidates[i] = SymbolCandidate{
			ID:  i + 1,
			Box: b.Translate(float64(origin.X), float64(origin.Y)),
		}
	}

	d.logger.Debug("symbols detected",
		"width", img.Bounds().Dx(),
		"height", img.Bounds().Dy(),
		"raw_boxes", len(raw),
		"candidates", len(candidates))

	return candidates, nil
}

// DetectNear searches a square of ±ClickRadius around (x, y), clamped to the
// image, and returns the first candidate found in img's pixel space. It
// returns nil when nothing is found.
func (d *Detector) DetectNear(img image.Image, x, y int) (*SymbolCandidate, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, imaging.ErrEmptyImage
	}

	r := d.opts.ClickRadius
	if r <= 0 {
		r = DefaultClickRadius
	}
	window := imaging.ClampRect(image.Rect(x-r, y-r, x+r, y+r), img.Bounds())
	if window.Empty() {
		return nil, fmt.Errorf("point (%d,%d) is outside the image", x, y)
	}

	region, err := imaging.CropRegion(img, window)
	if err != nil {
		return nil, err
	}

	candidates, err := d.Detect(region)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		d.logger.Debug("no symbol near point", "x", x, "y", y)
		return nil, nil
	}

	c := candidates[0]
	c.Box = c.Box.Translate(float64(window.Min.X), float64(window.Min.Y))
	return &c, nil
}
