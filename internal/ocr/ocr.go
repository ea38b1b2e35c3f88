package ocr

import (
	"image"

	"github.com/ironsheep/legend-linker/internal/geometry"
)

// PageSegMode is a Tesseract page segmentation mode.
type PageSegMode int

const (
	// PSMSingleBlock treats the image as one uniform block of text.
	PSMSingleBlock PageSegMode = 6
	// PSMSparseText finds as much text as possible in no particular order.
	PSMSparseText PageSegMode = 11
)

// Word is one recognized word as reported by an Engine. Box is in the pixel
// space of the image handed to the engine, which is always zero-origin.
type Word struct {
	Text       string
	Confidence float64
	Box        image.Rectangle
}

// Engine recognizes words in a single-channel image.
type Engine interface {
	Recognize(img *image.Gray, mode PageSegMode) ([]Word, error)
}

// TextFragment is a recognized word that passed the confidence filter.
// Confidence is on a 0-100 scale.
type TextFragment struct {
	Text       string               `json:"text"`
	Confidence float64              `json:"confidence"`
	Box        geometry.BoundingBox `json:"box"`
}

// Label is the text of a region: its fragments joined by single spaces,
// with the union of their boxes.
type Label struct {
	Text      string               `json:"text"`
	Box       geometry.BoundingBox `json:"box"`
	Fragments []TextFragment       `json:"fragments"`
}
