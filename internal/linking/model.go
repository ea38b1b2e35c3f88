// Package linking records which legend symbol each recognized label belongs
// to.
//
// A Model is a two-state machine. BeginSymbol (or BeginCandidate) moves it
// to PendingSymbol; CompleteLink reads the label region and, if any text
// was recognized, appends a Link and returns to Idle. Links are kept in
// insertion order, which is also undo order and display order.
package linking

import (
	"fmt"
	"image"
	"log/slog"
	"slices"

	"github.com/ironsheep/legend-linker/internal/detection"
	"github.com/ironsheep/legend-linker/internal/geometry"
	"github.com/ironsheep/legend-linker/internal/ocr"
)

// State is the model's selection state.
type State int

const (
	// Idle means no symbol is awaiting a label.
	Idle State = iota
	// PendingSymbol means a symbol was selected and the next label
	// completes a link.
	PendingSymbol
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case PendingSymbol:
		return "pending_symbol"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Link associates a symbol with the label read next to it.
type Link struct {
	Symbol detection.SymbolCandidate `json:"symbol"`
	Label  string                    `json:"label"`
	// LabelBox is the region the label was read from.
	LabelBox geometry.BoundingBox `json:"label_box"`
}

// LabelReader reads a label from an image region.
type LabelReader interface {
	RecognizeLabel(region image.Image) (*ocr.Label, error)
}

// Model owns the ordered link set and the pending symbol. It is not safe for
// concurrent use.
type Model struct {
	reader  LabelReader
	logger  *slog.Logger
	links   []Link
	pending *detection.SymbolCandidate
	nextID  int
}

// NewModel creates an empty model. A nil logger uses slog.Default().
func NewModel(reader LabelReader, logger *slog.Logger) *Model {
	if logger == nil {
		logger = slog.Default()
	}
	return &Model{reader: reader, logger: logger, nextID: 1}
}

// BeginSymbol selects box as the pending symbol, replacing any earlier one,
// and assigns it the next free id.
func (m *Model) BeginSymbol(box geometry.BoundingBox) detection.SymbolCandidate {
	c := detection.SymbolCandidate{ID: m.nextID, Box: box}
	m.nextID++
	m.pending = &c
	m.logger.Debug("symbol selected", "id", c.ID, "box", box.String())
	return c
}

// BeginCandidate selects a detector candidate as the pending symbol,
// keeping its id.
func (m *Model) BeginCandidate(c detection.SymbolCandidate) {
	if c.ID >= m.nextID {
		m.nextID = c.ID + 1
	}
	m.pending = &c
	m.logger.Debug("candidate selected", "id", c.ID, "box", c.Box.String())
}

// Pending returns the pending symbol, if any.
func (m *Model) Pending() (detection.SymbolCandidate, bool) {
	if m.pending == nil {
		return detection.SymbolCandidate{}, false
	}
	return *m.pending, true
}

// CompleteLink reads the label in textRegion and links it to the pending
// symbol.
//
// Without a pending symbol it does nothing and returns nil. When nothing is
// recognized the pending symbol is discarded and no link is created. A
// recognition error leaves the pending symbol in place. The link's LabelBox
// is the bounds of textRegion, not the box of the recognized text.
func (m *Model) CompleteLink(textRegion image.Image) (*Link, error) {
	if m.pending == nil {
		return nil, nil
	}

	label, err := m.reader.RecognizeLabel(textRegion)
	if err != nil {
		return nil, fmt.Errorf("read label: %w", err)
	}
	if label == nil {
		m.logger.Info("no text recognized, symbol selection discarded", "id", m.pending.ID)
		m.pending = nil
		return nil, nil
	}

	link := Link{
		Symbol:   *m.pending,
		Label:    label.Text,
		LabelBox: geometry.FromRect(textRegion.Bounds(), geometry.SpaceNative),
	}
	m.links = append(m.links, link)
	m.pending = nil

	m.logger.Info("symbol linked", "id", link.Symbol.ID, "label", link.Label, "links", len(m.links))
	return &link, nil
}

// UndoLast cancels the pending symbol if there is one; otherwise it removes
// the most recent link. It reports whether anything changed.
func (m *Model) UndoLast() bool {
	if m.pending != nil {
		m.pending = nil
		return true
	}
	if len(m.links) == 0 {
		return false
	}
	m.links = m.links[:len(m.links)-1]
	return true
}

// ClearAll removes every link and cancels the pending symbol.
func (m *Model) ClearAll() {
	m.links = nil
	m.pending = nil
}

// Snapshot returns a copy of the links in insertion order.
func (m *Model) Snapshot() []Link {
	return slices.Clone(m.links)
}

// Len returns the number of links.
func (m *Model) Len() int {
	return len(m.links)
}

// Restore replaces the link set wholesale and cancels the pending symbol.
func (m *Model) Restore(links []Link) {
	m.links = slices.Clone(links)
	m.pending = nil
	m.nextID = 1
	for _, l := range m.links {
		if l.Symbol.ID >= m.nextID {
			m.nextID = l.Symbol.ID + 1
		}
	}
}

// State reports whether a symbol is awaiting a label.
func (m *Model) State() State {
	if m.pending != nil {
		return PendingSymbol
	}
	return Idle
}
