package ocr

import (
	"cmp"
	"fmt"
	"image"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/ironsheep/legend-linker/internal/geometry"
	"github.com/ironsheep/legend-linker/internal/imaging"
)

// Defaults for Options.
const (
	DefaultMinConfidence = 30
	DefaultRowBand       = 10
	DefaultLanguage      = "eng"
)

// Options configures a Recognizer.
type Options struct {
	// MinConfidence discards fragments at or below it.
	MinConfidence float64 `json:"min_confidence" mapstructure:"min_confidence" yaml:"min_confidence"`

	// RowBand is the height in pixels of the bands used to group fragments
	// into rows when ordering them.
	RowBand int `json:"row_band" mapstructure:"row_band" yaml:"row_band"`

	// PageSegMode is the layout hint passed to the engine.
	PageSegMode PageSegMode `json:"page_seg_mode" mapstructure:"page_seg_mode" yaml:"page_seg_mode"`

	// Language is the Tesseract language code.
	Language string `json:"language" mapstructure:"language" yaml:"language"`

	// TessdataPrefix overrides the directory holding traineddata files.
	TessdataPrefix string `json:"tessdata_prefix" mapstructure:"tessdata_prefix" yaml:"tessdata_prefix"`
}

// DefaultOptions returns the standard recognition settings.
func DefaultOptions() Options {
	return Options{
		MinConfidence: DefaultMinConfidence,
		RowBand:       DefaultRowBand,
		PageSegMode:   PSMSparseText,
		Language:      DefaultLanguage,
	}
}

// Validate checks the options.
func (o Options) Validate() error {
	if o.MinConfidence < 0 || o.MinConfidence > 100 {
		return fmt.Errorf("min_confidence must be within [0,100], got %g", o.MinConfidence)
	}
	if o.RowBand <= 0 {
		return fmt.Errorf("row_band must be positive, got %d", o.RowBand)
	}
	if o.Language == "" {
		return fmt.Errorf("language must not be empty")
	}
	return nil
}

// Recognizer turns an image region into ordered text fragments.
type Recognizer struct {
	engine Engine
	opts   Options
	logger *slog.Logger
}

// NewRecognizer creates a recognizer around engine. A nil logger uses
// slog.Default().
func NewRecognizer(engine Engine, opts Options, logger *slog.Logger) *Recognizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recognizer{engine: engine, opts: opts, logger: logger}
}

// Recognize reads the text in region.
//
// The region is binarized (Otsu, dark text on white) before it reaches the
// engine. Fragment boxes are reported in region's own pixel space, so a
// sub-image yields coordinates in its parent. Fragments with blank text or
// confidence at or below MinConfidence are dropped; the rest are
// NFC-normalized and ordered top to bottom in RowBand-high bands, left to
// right within a band.
//
// An empty result is not an error. Engine failures are returned wrapped.
func (r *Recognizer) Recognize(region image.Image) ([]TextFragment, error) {
	if region == nil || region.Bounds().Empty() {
		return nil, imaging.ErrEmptyImage
	}

	words, err := r.engine.Recognize(imaging.Binarize(region), r.opts.PageSegMode)
	if err != nil {
		return nil, fmt.Errorf("recognize text: %w", err)
	}

	origin := region.Bounds().Min
	band := r.opts.RowBand
	if band <= 0 {
		band = DefaultRowBand
	}

	type ranked struct {
		row, x   int
		fragment TextFragment
	}
	kept := make([]ranked, 0, len(words))
	for _, w := range words {
		text := strings.TrimSpace(norm.NFC.String(w.Text))
		if text == "" || w.Confidence <= r.opts.MinConfidence {
			continue
		}
		kept = append(kept, ranked{
			row: floorDiv(w.Box.Min.Y, band),
			x:   w.Box.Min.X,
			fragment: TextFragment{
				Text:       text,
				Confidence: w.Confidence,
				Box:        geometry.FromRect(w.Box.Add(origin), geometry.SpaceNative),
			},
		})
	}

	slices.SortStableFunc(kept, func(a, b ranked) int {
		if c := cmp.Compare(a.row, b.row); c != 0 {
			return c
		}
		return cmp.Compare(a.x, b.x)
	})

	fragments := make([]TextFragment, len(kept))
	for i, k := range kept {
		fragments[i] = k.fragment
	}

	r.logger.Debug("text recognized",
		"region", region.Bounds().String(),
		"words", len(words),
		"fragments", len(fragments))

	return fragments, nil
}

// RecognizeLabel reads region and joins its fragments into one label. It
// returns nil without error when nothing was recognized.
func (r *Recognizer) RecognizeLabel(region image.Image) (*Label, error) {
	fragments, err := r.Recognize(region)
	if err != nil {
		return nil, err
	}
	return JoinFragments(fragments), nil
}

// JoinFragments concatenates fragments with single spaces and unions their
// boxes. It returns nil for an empty slice.
func JoinFragments(fragments []TextFragment) *Label {
	if len(fragments) == 0 {
		return nil
	}
	texts := make([]string, len(fragments))
	box := fragments[0].Box
	for i, f := range fragments {
		texts[i] = f.Text
		box = box.Union(f.Box)
	}
	return &Label{
		Text:      strings.Join(texts, " "),
		Box:       box,
		Fragments: fragments,
	}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
