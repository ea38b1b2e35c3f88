package session

import (
	"encoding/json"
	"fmt"
	"image"
	"os"
	"path/filepath"
)

// Well-known file locations relative to a session's working directory.
const (
	LegendDir      = "legend_symbols"
	LegendAreaFile = "legend_area.png"
	LegendBoxFile  = "legend_bbox.json"
	LinksDir       = "symbol_links"
	LinksFile      = "links.json"
)

// LegendAreaPath returns where the legend crop is stored under dir.
func LegendAreaPath(dir string) string {
	return filepath.Join(dir, LegendDir, LegendAreaFile)
}

// LegendBoxPath returns where the legend box is stored under dir.
func LegendBoxPath(dir string) string {
	return filepath.Join(dir, LegendDir, LegendBoxFile)
}

// LinksPath returns where the links file is stored under dir.
func LinksPath(dir string) string {
	return filepath.Join(dir, LinksDir, LinksFile)
}

// LegendBox is the legend region in source image pixels.
type LegendBox struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// LegendBoxFromRect converts r.
func LegendBoxFromRect(r image.Rectangle) LegendBox {
	return LegendBox{X1: r.Min.X, Y1: r.Min.Y, X2: r.Max.X, Y2: r.Max.Y}
}

// Rect returns b as a rectangle.
func (b LegendBox) Rect() image.Rectangle {
	return image.Rect(b.X1, b.Y1, b.X2, b.Y2)
}

// Validate reports whether b describes a non-empty region.
func (b LegendBox) Validate() error {
	if b.X2 <= b.X1 || b.Y2 <= b.Y1 {
		return fmt.Errorf("%w: (%d,%d)-(%d,%d)", ErrInvalidLegendBox, b.X1, b.Y1, b.X2, b.Y2)
	}
	return nil
}

// SaveLegendBox writes b to path.
func SaveLegendBox(path string, b LegendBox) error {
	if err := b.Validate(); err != nil {
		return err
	}
	return writeJSON(path, b)
}

// LoadLegendBox reads a legend box file. A missing file is returned as is
// so callers can test for fs.ErrNotExist.
func LoadLegendBox(path string) (LegendBox, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return LegendBox{}, fmt.Errorf("reading legend box: %w", err)
	}
	var b LegendBox
	if err := json.Unmarshal(data, &b); err != nil {
		return LegendBox{}, fmt.Errorf("%w: %s: %v", ErrInvalidLegendBox, path, err)
	}
	if err := b.Validate(); err != nil {
		return LegendBox{}, err
	}
	return b, nil
}

// SaveLinks writes items to path.
func SaveLinks(path string, items []LinkedItem) error {
	if items == nil {
		items = []LinkedItem{}
	}
	return writeJSON(path, items)
}

// LoadLinks reads a links file.
func LoadLinks(path string) ([]LinkedItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &PersistenceError{Op: "read", Path: path, Err: err}
	}
	var items []LinkedItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, &PersistenceError{Op: "decode", Path: path, Err: err}
	}
	if items == nil {
		items = []LinkedItem{}
	}
	return items, nil
}
