package imaging

import (
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

func TestOverlay_DrawsOutlines(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{255, 255, 255, 255})
	boxes := []OverlayBox{
		{Rect: image.Rect(10, 10, 40, 40), Kind: OverlaySymbol},
		{Rect: image.Rect(50, 50, 90, 70), Kind: OverlayLabel},
	}

	out := Overlay(img, boxes, DefaultOverlayOptions())

	if got := out.RGBAAt(10, 25); got != (color.RGBA{255, 255, 0, 255}) {
		t.Errorf("symbol outline: got %v, want yellow", got)
	}
	if got := out.RGBAAt(70, 50); got != (color.RGBA{0, 255, 0, 255}) {
		t.Errorf("label outline: got %v, want green", got)
	}
	if got := out.RGBAAt(25, 25); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("box interior: got %v, want untouched white", got)
	}
}

func TestOverlay_DoesNotModifySource(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 20, 20))
	Overlay(src, []OverlayBox{{Rect: image.Rect(0, 0, 20, 20)}}, OverlayOptions{})

	for _, v := range src.Pix {
		if v != 0 {
			t.Fatal("Overlay modified its source image")
		}
	}
}

func TestOverlay_ClipsBoxes(t *testing.T) {
	img := createInMemoryImage(30, 30, color.Black)

	// Should not panic for boxes hanging off the image
	out := Overlay(img, []OverlayBox{
		{Rect: image.Rect(-10, -10, 15, 15), ID: 3},
		{Rect: image.Rect(20, 20, 60, 60), Kind: OverlayLabel, ID: 12},
	}, DefaultOverlayOptions())

	if out.Bounds() != img.Bounds() {
		t.Errorf("bounds: got %v, want %v", out.Bounds(), img.Bounds())
	}
}

func TestOverlay_InvalidColorFallsBack(t *testing.T) {
	img := createInMemoryImage(40, 40, color.White)
	opts := OverlayOptions{SymbolColor: "invalid", Stroke: 1}

	out := Overlay(img, []OverlayBox{{Rect: image.Rect(5, 5, 30, 30)}}, opts)
	if got := out.RGBAAt(5, 20); got != (color.RGBA{255, 255, 0, 255}) {
		t.Errorf("fallback colour: got %v, want yellow", got)
	}
	if got := out.RGBAAt(6, 20); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("stroke width 1: got %v at x=6, want white", got)
	}
}

func TestOverlayPNGBase64(t *testing.T) {
	img := createInMemoryImage(64, 48, color.White)

	encoded, err := OverlayPNGBase64(img, []OverlayBox{{Rect: image.Rect(4, 4, 20, 20), ID: 1}}, DefaultOverlayOptions())
	if err != nil {
		t.Fatalf("OverlayPNGBase64 failed: %v", err)
	}

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	out, err := png.Decode(strings.NewReader(string(decoded)))
	if err != nil {
		t.Fatalf("failed to decode PNG: %v", err)
	}
	if out.Bounds().Dx() != 64 || out.Bounds().Dy() != 48 {
		t.Errorf("dimensions: got %dx%d, want 64x48", out.Bounds().Dx(), out.Bounds().Dy())
	}
}

// inkIn counts pixels in r that differ from c.
func inkIn(img *image.RGBA, r image.Rectangle, c color.RGBA) int {
	n := 0
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if img.RGBAAt(x, y) != c {
				n++
			}
		}
	}
	return n
}

func TestDrawLabel_RendersLetters(t *testing.T) {
	white := color.RGBA{255, 255, 255, 255}
	black := color.RGBA{0, 0, 0, 255}
	green := color.RGBA{0, 255, 0, 255}

	img := createInMemoryImage(120, 40, white).(*image.RGBA)
	drawLabel(img, 10, 10, "Smoke", black, green)

	size := captionSize("Smoke")
	if size != image.Pt(35, 13) {
		t.Fatalf("captionSize = %v, want (35,13)", size)
	}
	text := image.Rect(10, 10, 10+size.X, 10+size.Y)
	if n := inkIn(img, text, green); n == 0 {
		t.Error("no glyph pixels drawn for letters")
	}
	if img.RGBAAt(9, 9) != green {
		t.Error("caption background not drawn")
	}
	if n := inkIn(img, image.Rect(60, 0, 120, 40), white); n != 0 {
		t.Errorf("%d pixels changed right of the caption", n)
	}
}

func TestDrawLabel_DifferentTextDifferentPixels(t *testing.T) {
	black := color.RGBA{0, 0, 0, 255}
	green := color.RGBA{0, 255, 0, 255}

	a := image.NewRGBA(image.Rect(0, 0, 60, 20))
	b := image.NewRGBA(image.Rect(0, 0, 60, 20))
	drawLabel(a, 2, 2, "Exit", black, green)
	drawLabel(b, 2, 2, "Fire", black, green)
	if string(a.Pix) == string(b.Pix) {
		t.Error("different words rendered identically")
	}
}

func TestDrawLabel_ClipsAndIgnoresEmpty(t *testing.T) {
	fg := color.RGBA{255, 255, 255, 255}
	bg := color.RGBA{0, 0, 0, 255}
	img := image.NewRGBA(image.Rect(0, 0, 20, 20))

	drawLabel(img, 15, 15, "Pull Station", fg, bg)
	drawLabel(img, -5, -5, "Exit", fg, bg)

	empty := image.NewRGBA(image.Rect(0, 0, 20, 20))
	drawLabel(empty, 5, 5, "", fg, bg)
	if n := inkIn(empty, empty.Bounds(), color.RGBA{}); n != 0 {
		t.Errorf("empty caption drew %d pixels", n)
	}
}

func TestOverlay_CaptionsLabelText(t *testing.T) {
	white := color.RGBA{255, 255, 255, 255}
	img := createInMemoryImage(200, 100, white)
	label := image.Rect(60, 50, 180, 70)

	plain := Overlay(img, []OverlayBox{{Rect: label, Kind: OverlayLabel}}, DefaultOverlayOptions())
	captioned := Overlay(img, []OverlayBox{{Rect: label, Kind: OverlayLabel, Text: "Smoke Detector"}}, DefaultOverlayOptions())

	above := image.Rect(60, 50-13-2, 60+captionSize("Smoke Detector").X, 50-2)
	if n := inkIn(plain, above, white); n != 0 {
		t.Errorf("box without text drew %d caption pixels", n)
	}
	if n := inkIn(captioned, above, white); n == 0 {
		t.Error("label text not drawn above the label box")
	}
}

func TestOverlay_CaptionBelowAtTopEdge(t *testing.T) {
	white := color.RGBA{255, 255, 255, 255}
	img := createInMemoryImage(100, 60, white)
	box := image.Rect(10, 2, 40, 20)

	out := Overlay(img, []OverlayBox{{Rect: box, Kind: OverlaySymbol, ID: 7}}, DefaultOverlayOptions())
	if n := inkIn(out, image.Rect(10, 22, 40, 35), white); n == 0 {
		t.Error("caption should move below a box at the top edge")
	}
}

func TestOverlayBox_Caption(t *testing.T) {
	tests := []struct {
		box  OverlayBox
		want string
	}{
		{OverlayBox{}, ""},
		{OverlayBox{ID: 3}, "#3"},
		{OverlayBox{Text: "Exit Sign"}, "Exit Sign"},
		{OverlayBox{ID: 2, Text: "Horn"}, "#2 Horn"},
	}
	for _, tt := range tests {
		if got := tt.box.caption(); got != tt.want {
			t.Errorf("caption(%+v) = %q, want %q", tt.box, got, tt.want)
		}
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		val, min, max, want int
	}{
		{5, 0, 10, 5},   // within range
		{-1, 0, 10, 0},  // below min
		{15, 0, 10, 10}, // above max
		{0, 0, 10, 0},   // at min
		{10, 0, 10, 10}, // at max
	}

	for _, tt := range tests {
		got := clamp(tt.val, tt.min, tt.max)
		if got != tt.want {
			t.Errorf("clamp(%d, %d, %d): got %d, want %d",
				tt.val, tt.min, tt.max, got, tt.want)
		}
	}
}

