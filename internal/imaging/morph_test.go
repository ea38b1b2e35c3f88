package imaging

import (
	"image"
	"testing"
)

func newMask(w, h int) *image.Gray {
	return image.NewGray(image.Rect(0, 0, w, h))
}

func fillMask(m *image.Gray, r image.Rectangle) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			m.Pix[m.PixOffset(x, y)] = 255
		}
	}
}

func countSet(m *image.Gray) int {
	n := 0
	for _, v := range m.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}

func TestDilate_GrowsSinglePixel(t *testing.T) {
	m := newMask(9, 9)
	m.Pix[m.PixOffset(4, 4)] = 255

	d := Dilate(m)
	for _, p := range []image.Point{{4, 4}, {3, 4}, {5, 4}, {4, 3}, {4, 5}} {
		if d.GrayAt(p.X, p.Y).Y != 255 {
			t.Errorf("pixel %v: got %d, want 255", p, d.GrayAt(p.X, p.Y).Y)
		}
	}
	if d.GrayAt(0, 0).Y != 0 || d.GrayAt(8, 8).Y != 0 {
		t.Error("pixels far from the seed should stay clear")
	}
}

func TestErode_RemovesSinglePixel(t *testing.T) {
	m := newMask(9, 9)
	m.Pix[m.PixOffset(4, 4)] = 255

	if n := countSet(Erode(m)); n != 0 {
		t.Errorf("got %d set pixels, want 0", n)
	}
}

func TestClose_FillsGap(t *testing.T) {
	m := newMask(30, 20)
	fillMask(m, image.Rect(5, 5, 14, 15))
	fillMask(m, image.Rect(15, 5, 25, 15)) // one-pixel gap at x=14

	c := Close(m, 3)
	if c.GrayAt(14, 10).Y != 255 {
		t.Error("closing should bridge a one-pixel gap")
	}
	if c.GrayAt(1, 1).Y != 0 {
		t.Error("background far from the strokes should stay clear")
	}
}

func TestOpen_RemovesSpeck(t *testing.T) {
	m := newMask(40, 40)
	fillMask(m, image.Rect(10, 10, 30, 30))
	m.Pix[m.PixOffset(2, 2)] = 255

	o := Open(m, 2)
	if o.GrayAt(2, 2).Y != 0 {
		t.Error("opening should remove an isolated speck")
	}
	if o.GrayAt(20, 20).Y != 255 {
		t.Error("opening should keep the interior of a large block")
	}
}

func TestUnion(t *testing.T) {
	a := newMask(10, 10)
	b := newMask(10, 10)
	a.Pix[a.PixOffset(1, 1)] = 255
	b.Pix[b.PixOffset(8, 8)] = 255

	u := Union(a, b)
	if u.GrayAt(1, 1).Y != 255 || u.GrayAt(8, 8).Y != 255 {
		t.Error("union should keep pixels from both masks")
	}
	if countSet(u) != 2 {
		t.Errorf("got %d set pixels, want 2", countSet(u))
	}
	if a.GrayAt(8, 8).Y != 0 {
		t.Error("union must not modify its inputs")
	}
}

func TestUnion_SizeMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for mismatched sizes")
		}
	}()
	Union(newMask(4, 4), newMask(5, 4))
}

func TestClose_IterationsWidenBridgedGap(t *testing.T) {
	m := newMask(60, 40)
	fillMask(m, image.Rect(10, 10, 20, 30))
	fillMask(m, image.Rect(24, 10, 34, 30)) // four-pixel gap at x=20..23

	if Close(m, 1).GrayAt(21, 20).Y != 0 {
		t.Error("a single closing should not bridge a four-pixel gap")
	}
	c := Close(m, 3)
	for x := 20; x < 24; x++ {
		if c.GrayAt(x, 20).Y != 255 {
			t.Errorf("Close(3) left gap pixel (%d,20) clear", x)
		}
	}
	if c.GrayAt(10, 10).Y != 255 || c.GrayAt(9, 20).Y != 0 {
		t.Error("closing should keep the outer outline of the strokes")
	}
}

func TestOpen_IterationsRemoveLargerSpecks(t *testing.T) {
	m := newMask(40, 40)
	fillMask(m, image.Rect(10, 10, 30, 30))
	fillMask(m, image.Rect(2, 2, 5, 5)) // 3x3 speck

	if Open(m, 1).GrayAt(3, 3).Y != 255 {
		t.Error("a single opening should keep a 3x3 speck")
	}
	o := Open(m, 2)
	if o.GrayAt(3, 3).Y != 0 {
		t.Error("Open(2) should remove a 3x3 speck")
	}
	if o.GrayAt(20, 20).Y != 255 || o.GrayAt(10, 10).Y != 255 {
		t.Error("opening should keep a large block intact")
	}
}

func TestClose_ZeroIterationsIsIdentity(t *testing.T) {
	m := newMask(10, 10)
	fillMask(m, image.Rect(2, 2, 4, 4))
	if got := Close(m, 0); countSet(got) != countSet(m) {
		t.Errorf("Close(0) changed the mask: %d set, want %d", countSet(got), countSet(m))
	}
}
