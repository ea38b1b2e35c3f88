package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// OverlayKind selects the outline colour of an overlay box.
type OverlayKind int

const (
	// OverlaySymbol marks a detected or linked symbol.
	OverlaySymbol OverlayKind = iota
	// OverlayLabel marks the region a label was read from.
	OverlayLabel
)

// OverlayBox is one rectangle to draw, optionally tagged with a numeric id.
type OverlayBox struct {
	Rect image.Rectangle
	Kind OverlayKind
	// ID is drawn above the box as "#<id>" when positive.
	ID int
	// Text follows the id in the caption, e.g. the label read from a
	// label box.
	Text string
}

func (b OverlayBox) caption() string {
	switch {
	case b.ID > 0 && b.Text != "":
		return "#" + strconv.Itoa(b.ID) + " " + b.Text
	case b.ID > 0:
		return "#" + strconv.Itoa(b.ID)
	}
	return b.Text
}

// OverlayOptions controls overlay rendering. Zero values fall back to the
// defaults: yellow symbols, green labels, 2px strokes.
type OverlayOptions struct {
	SymbolColor string `json:"symbol_color" mapstructure:"symbol_color" yaml:"symbol_color"`
	LabelColor  string `json:"label_color" mapstructure:"label_color" yaml:"label_color"`
	Stroke      int    `json:"stroke" mapstructure:"stroke" yaml:"stroke"`
}

// DefaultOverlayOptions returns the standard preview colours.
func DefaultOverlayOptions() OverlayOptions {
	return OverlayOptions{
		SymbolColor: "#FFFF00",
		LabelColor:  "#00FF00",
		Stroke:      2,
	}
}

// Overlay draws box outlines and their captions over a copy of img. A
// caption sits above its box, or below it at the top edge of the image.
// Box coordinates are in img's own pixel space; boxes are clipped to the
// image.
func Overlay(img image.Image, boxes []OverlayBox, opts OverlayOptions) *image.RGBA {
	defaults := DefaultOverlayOptions()
	symbolColor, err := parseHexColor(opts.SymbolColor)
	if err != nil {
		symbolColor, _ = parseHexColor(defaults.SymbolColor)
	}
	labelColor, err := parseHexColor(opts.LabelColor)
	if err != nil {
		labelColor, _ = parseHexColor(defaults.LabelColor)
	}
	stroke := opts.Stroke
	if stroke <= 0 {
		stroke = defaults.Stroke
	}

	bounds := img.Bounds()
	result := image.NewRGBA(bounds)
	draw.Draw(result, bounds, img, bounds.Min, draw.Src)

	for _, b := range boxes {
		c := symbolColor
		if b.Kind == OverlayLabel {
			c = labelColor
		}
		drawOutline(result, b.Rect, stroke, c)
		if text := b.caption(); text != "" {
			size := captionSize(text)
			lx := clamp(b.Rect.Min.X, bounds.Min.X, max(bounds.Min.X, bounds.Max.X-size.X))
			ly := b.Rect.Min.Y - size.Y - 2
			if ly < bounds.Min.Y {
				ly = b.Rect.Max.Y + 2
			}
			ly = clamp(ly, bounds.Min.Y, max(bounds.Min.Y, bounds.Max.Y-size.Y))
			drawLabel(result, lx, ly, text, color.RGBA{0, 0, 0, 255}, c)
		}
	}
	return result
}

// OverlayPNGBase64 renders the overlay and encodes it for transport.
func OverlayPNGBase64(img image.Image, boxes []OverlayBox, opts OverlayOptions) (string, error) {
	encoded, err := EncodePNGBase64(Overlay(img, boxes, opts))
	if err != nil {
		return "", fmt.Errorf("overlay: %w", err)
	}
	return encoded, nil
}

func drawOutline(img *image.RGBA, r image.Rectangle, stroke int, c color.RGBA) {
	bounds := img.Bounds()
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+stroke),
		image.Rect(r.Min.X, r.Max.Y-stroke, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+stroke, r.Max.Y),
		image.Rect(r.Max.X-stroke, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		e = e.Intersect(bounds)
		for y := e.Min.Y; y < e.Max.Y; y++ {
			for x := e.Min.X; x < e.Max.X; x++ {
				img.SetRGBA(x, y, c)
			}
		}
	}
}

// drawLabel draws text in basicfont's 7x13 face on a bg box whose top-left
// corner is (x, y). Anything outside img is clipped.
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	if text == "" {
		return
	}
	face := basicfont.Face7x13
	d := &font.Drawer{Dst: img, Src: image.NewUniform(fg), Face: face}
	w := d.MeasureString(text).Ceil()

	box := image.Rect(x-1, y-1, x+w+1, y+face.Height+1).Intersect(img.Bounds())
	draw.Draw(img, box, image.NewUniform(bg), image.Point{}, draw.Over)

	d.Dot = fixed.P(x, y+face.Ascent)
	d.DrawString(text)
}

// captionSize is the pixel size of text drawn by drawLabel.
func captionSize(text string) image.Point {
	face := basicfont.Face7x13
	d := &font.Drawer{Face: face}
	return image.Pt(d.MeasureString(text).Ceil(), face.Height)
}

func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
