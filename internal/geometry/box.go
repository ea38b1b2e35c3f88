package geometry

import (
	"fmt"
	"image"
	"math"
)

// Space names the coordinate space a BoundingBox is expressed in.
type Space int

const (
	// SpaceNative is the pixel space of the source image.
	SpaceNative Space = iota
	// SpaceDisplay is the scaled and offset space of a presentation layer.
	SpaceDisplay
)

// String returns the lowercase name of the space.
func (s Space) String() string {
	switch s {
	case SpaceNative:
		return "native"
	case SpaceDisplay:
		return "display"
	default:
		return fmt.Sprintf("space(%d)", int(s))
	}
}

// BoundingBox is an axis-aligned rectangle in a named coordinate space.
//
// A valid box has Width > 0 and Height > 0. Native boxes produced by the
// detector carry integral values; display boxes may be fractional.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Space  Space   `json:"-"`
}

// FromRect converts an image.Rectangle into a box in the given space.
// The rectangle is canonicalized first so swapped corners are accepted.
func FromRect(r image.Rectangle, space Space) BoundingBox {
	r = r.Canon()
	return BoundingBox{
		X:      float64(r.Min.X),
		Y:      float64(r.Min.Y),
		Width:  float64(r.Dx()),
		Height: float64(r.Dy()),
		Space:  space,
	}
}

// FromCorners builds a box from two opposite corners in any order.
func FromCorners(x1, y1, x2, y2 float64, space Space) BoundingBox {
	return BoundingBox{
		X:      math.Min(x1, x2),
		Y:      math.Min(y1, y2),
		Width:  math.Abs(x2 - x1),
		Height: math.Abs(y2 - y1),
		Space:  space,
	}
}

// Validate reports whether the box satisfies the positive-size invariant.
func (b BoundingBox) Validate() error {
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("invalid %s box %gx%g: width and height must be positive",
			b.Space, b.Width, b.Height)
	}
	return nil
}

// Right returns the X coordinate of the right edge (exclusive).
func (b BoundingBox) Right() float64 { return b.X + b.Width }

// Bottom returns the Y coordinate of the bottom edge (exclusive).
func (b BoundingBox) Bottom() float64 { return b.Y + b.Height }

// Area returns Width * Height.
func (b BoundingBox) Area() float64 { return b.Width * b.Height }

// Union returns the smallest box containing both b and o.
// The result keeps b's coordinate space.
func (b BoundingBox) Union(o BoundingBox) BoundingBox {
	x1 := math.Min(b.X, o.X)
	y1 := math.Min(b.Y, o.Y)
	x2 := math.Max(b.Right(), o.Right())
	y2 := math.Max(b.Bottom(), o.Bottom())
	return BoundingBox{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1, Space: b.Space}
}

// Translate returns the box shifted by (dx, dy).
func (b BoundingBox) Translate(dx, dy float64) BoundingBox {
	b.X += dx
	b.Y += dy
	return b
}

// Rect converts the box to an image.Rectangle, truncating each corner toward
// zero.
func (b BoundingBox) Rect() image.Rectangle {
	return image.Rect(
		int(math.Trunc(b.X)),
		int(math.Trunc(b.Y)),
		int(math.Trunc(b.Right())),
		int(math.Trunc(b.Bottom())),
	)
}

// String formats the box as "space(x,y wxh)".
func (b BoundingBox) String() string {
	return fmt.Sprintf("%s(%g,%g %gx%g)", b.Space, b.X, b.Y, b.Width, b.Height)
}
