package session

import (
	"image"

	"github.com/ironsheep/legend-linker/internal/detection"
	"github.com/ironsheep/legend-linker/internal/geometry"
	"github.com/ironsheep/legend-linker/internal/linking"
	"github.com/ironsheep/legend-linker/internal/ocr"
)

// ItemFromLink converts a link whose boxes are in legend pixels. origin is
// the legend's top-left corner in the source image.
func ItemFromLink(l linking.Link, origin image.Point) LinkedItem {
	sym := l.Symbol.Box.Rect()
	label := l.LabelBox.Rect()
	return LinkedItem{
		Symbol: LinkedSymbol{
			ID:   l.Symbol.ID,
			RelX: sym.Min.X,
			RelY: sym.Min.Y,
			X:    sym.Min.X + origin.X,
			Y:    sym.Min.Y + origin.Y,
			W:    sym.Dx(),
			H:    sym.Dy(),
		},
		Text: l.Label,
		RelX: label.Min.X,
		RelY: label.Min.Y,
		W:    label.Dx(),
		H:    label.Dy(),
	}
}

// Link converts the item back to a link in legend pixels.
func (it LinkedItem) Link() linking.Link {
	s := it.Symbol
	return linking.Link{
		Symbol: detection.SymbolCandidate{
			ID: s.ID,
			Box: geometry.BoundingBox{
				X: float64(s.RelX), Y: float64(s.RelY),
				Width: float64(s.W), Height: float64(s.H),
			},
		},
		Label: it.Text,
		LabelBox: geometry.BoundingBox{
			X: float64(it.RelX), Y: float64(it.RelY),
			Width: float64(it.W), Height: float64(it.H),
		},
	}
}

// ItemsFromLinks converts every link.
func ItemsFromLinks(links []linking.Link, origin image.Point) []LinkedItem {
	items := make([]LinkedItem, 0, len(links))
	for _, l := range links {
		items = append(items, ItemFromLink(l, origin))
	}
	return items
}

// LinksFromItems converts every item.
func LinksFromItems(items []LinkedItem) []linking.Link {
	links := make([]linking.Link, 0, len(items))
	for _, it := range items {
		links = append(links, it.Link())
	}
	return links
}

// SymbolRecords converts detector output.
func SymbolRecords(cands []detection.SymbolCandidate) []SymbolRecord {
	out := make([]SymbolRecord, 0, len(cands))
	for _, c := range cands {
		r := c.Box.Rect()
		out = append(out, SymbolRecord{ID: c.ID, X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()})
	}
	return out
}

// Candidates converts stored symbols back to detector output.
func Candidates(records []SymbolRecord) []detection.SymbolCandidate {
	out := make([]detection.SymbolCandidate, 0, len(records))
	for _, r := range records {
		out = append(out, detection.SymbolCandidate{
			ID: r.ID,
			Box: geometry.BoundingBox{
				X: float64(r.X), Y: float64(r.Y),
				Width: float64(r.Width), Height: float64(r.Height),
			},
		})
	}
	return out
}

// TextRecords converts recognized fragments.
func TextRecords(frags []ocr.TextFragment) []TextRecord {
	out := make([]TextRecord, 0, len(frags))
	for _, f := range frags {
		r := f.Box.Rect()
		out = append(out, TextRecord{
			Text: f.Text, Confidence: f.Confidence,
			X: r.Min.X, Y: r.Min.Y, W: r.Dx(), H: r.Dy(),
		})
	}
	return out
}
