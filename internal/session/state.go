package session

import (
	"fmt"
	"image"
	"maps"
	"slices"
)

// SymbolRecord is one detected symbol as stored in detected_symbols.
type SymbolRecord struct {
	ID     int `json:"Symbol_ID"`
	X      int `json:"X"`
	Y      int `json:"Y"`
	Width  int `json:"Width"`
	Height int `json:"Height"`
}

// TextRecord is one recognized text fragment as stored in ocr_texts.
type TextRecord struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	X          int     `json:"x"`
	Y          int     `json:"y"`
	W          int     `json:"w"`
	H          int     `json:"h"`
}

// LinkedSymbol is the symbol half of a linked item. RelX and RelY are in
// legend pixels; X and Y are the same corner in source image pixels.
type LinkedSymbol struct {
	ID   int `json:"id"`
	RelX int `json:"rel_x"`
	RelY int `json:"rel_y"`
	X    int `json:"x"`
	Y    int `json:"y"`
	W    int `json:"w"`
	H    int `json:"h"`
}

// LinkedItem is one symbol-label association. RelX, RelY, W and H locate
// the label region in legend pixels.
type LinkedItem struct {
	Symbol LinkedSymbol `json:"symbol"`
	Text   string       `json:"text"`
	RelX   int          `json:"rel_x"`
	RelY   int          `json:"rel_y"`
	W      int          `json:"w"`
	H      int          `json:"h"`
}

// State is everything an annotation session has produced so far.
//
// The zero value is usable, but New returns a state whose collections are
// empty rather than nil so that it serializes as [] and {}.
type State struct {
	ImagePath       string         `json:"image_path"`
	LegendPath      string         `json:"legend_path"`
	LegendBox       *[4]int        `json:"legend_box"`
	DetectedSymbols []SymbolRecord `json:"detected_symbols"`
	OCRTexts        []TextRecord   `json:"ocr_texts"`
	LinkedItems     []LinkedItem   `json:"linked_items"`
	GeneratedTasks  []string       `json:"generated_tasks"`
	Config          map[string]any `json:"config"`
}

// New returns an empty state.
func New() *State {
	s := &State{}
	s.normalize()
	return s
}

func (s *State) normalize() {
	if s.DetectedSymbols == nil {
		s.DetectedSymbols = []SymbolRecord{}
	}
	if s.OCRTexts == nil {
		s.OCRTexts = []TextRecord{}
	}
	if s.LinkedItems == nil {
		s.LinkedItems = []LinkedItem{}
	}
	if s.GeneratedTasks == nil {
		s.GeneratedTasks = []string{}
	}
	if s.Config == nil {
		s.Config = map[string]any{}
	}
}

// Reset clears every field.
func (s *State) Reset() {
	*s = State{}
	s.normalize()
}

// Clone returns a deep copy of s. Config values are copied shallowly.
func (s *State) Clone() *State {
	c := &State{
		ImagePath:       s.ImagePath,
		LegendPath:      s.LegendPath,
		DetectedSymbols: slices.Clone(s.DetectedSymbols),
		OCRTexts:        slices.Clone(s.OCRTexts),
		LinkedItems:     slices.Clone(s.LinkedItems),
		GeneratedTasks:  slices.Clone(s.GeneratedTasks),
		Config:          maps.Clone(s.Config),
	}
	if s.LegendBox != nil {
		box := *s.LegendBox
		c.LegendBox = &box
	}
	c.normalize()
	return c
}

// SetLegendRect records r as the legend box.
func (s *State) SetLegendRect(r image.Rectangle) {
	s.LegendBox = &[4]int{r.Min.X, r.Min.Y, r.Max.X, r.Max.Y}
}

// LegendRect returns the legend box, if one is set.
func (s *State) LegendRect() (image.Rectangle, bool) {
	if s.LegendBox == nil {
		return image.Rectangle{}, false
	}
	b := s.LegendBox
	return image.Rect(b[0], b[1], b[2], b[3]), true
}

// Summary counts what the session holds.
type Summary struct {
	ImagePath  string `json:"image_path"`
	LegendPath string `json:"legend_path"`
	LegendBox  string `json:"legend_box"`
	Symbols    int    `json:"symbols"`
	OCRBlocks  int    `json:"ocr_blocks"`
	Linked     int    `json:"linked"`
	Tasks      int    `json:"tasks"`
}

// Summary returns counts of each collection.
func (s *State) Summary() Summary {
	box := "none"
	if s.LegendBox != nil {
		b := s.LegendBox
		box = fmt.Sprintf("(%d, %d, %d, %d)", b[0], b[1], b[2], b[3])
	}
	return Summary{
		ImagePath:  s.ImagePath,
		LegendPath: s.LegendPath,
		LegendBox:  box,
		Symbols:    len(s.DetectedSymbols),
		OCRBlocks:  len(s.OCRTexts),
		Linked:     len(s.LinkedItems),
		Tasks:      len(s.GeneratedTasks),
	}
}
