package geometry

import (
	"errors"
	"fmt"
	"math"
)

// MaxScale is the largest display scale the transform accepts.
const MaxScale = 10.0

// ErrInvalidScale is returned when a transform scale is outside (0, MaxScale].
var ErrInvalidScale = errors.New("scale must be in (0, 10]")

// Transform maps native pixels to display space:
//
//	display = native*Scale + Offset
//
// applied independently to each corner of a box. The reverse mapping
// truncates toward zero, matching how pixel indices are derived from a
// display position.
type Transform struct {
	Scale   float64 `json:"scale"`
	OffsetX float64 `json:"offset_x"`
	OffsetY float64 `json:"offset_y"`
}

// Identity is the transform with scale 1 and no offset.
var Identity = Transform{Scale: 1}

// NewTransform creates a validated transform.
func NewTransform(scale, offsetX, offsetY float64) (Transform, error) {
	t := Transform{Scale: scale, OffsetX: offsetX, OffsetY: offsetY}
	if err := t.Validate(); err != nil {
		return Transform{}, err
	}
	return t, nil
}

// FitTransform returns the transform that fits a native image of the given
// size inside a viewport, preserving aspect ratio and centering it.
func FitTransform(nativeW, nativeH, viewW, viewH int) (Transform, error) {
	if nativeW <= 0 || nativeH <= 0 || viewW <= 0 || viewH <= 0 {
		return Transform{}, fmt.Errorf("fit %dx%d into %dx%d: sizes must be positive",
			nativeW, nativeH, viewW, viewH)
	}
	scale := math.Min(float64(viewW)/float64(nativeW), float64(viewH)/float64(nativeH))
	scale = math.Min(scale, MaxScale)
	ox := math.Max(float64(viewW)-float64(nativeW)*scale, 0) / 2
	oy := math.Max(float64(viewH)-float64(nativeH)*scale, 0) / 2
	return NewTransform(scale, math.Floor(ox), math.Floor(oy))
}

// Validate checks the scale range.
func (t Transform) Validate() error {
	if !(t.Scale > 0 && t.Scale <= MaxScale) {
		return fmt.Errorf("transform scale %g: %w", t.Scale, ErrInvalidScale)
	}
	return nil
}

// ToDisplay maps a native box into display space. No rounding is applied.
func (t Transform) ToDisplay(b BoundingBox) BoundingBox {
	x1, y1 := t.PointToDisplay(b.X, b.Y)
	x2, y2 := t.PointToDisplay(b.Right(), b.Bottom())
	return BoundingBox{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1, Space: SpaceDisplay}
}

// ToNative maps a display box back to native pixels. Each corner is truncated
// toward zero; a box that collapses below one pixel keeps a size of 1.
func (t Transform) ToNative(b BoundingBox) BoundingBox {
	x1, y1 := t.PointToNative(b.X, b.Y)
	x2, y2 := t.PointToNative(b.Right(), b.Bottom())
	w := math.Max(float64(x2-x1), 1)
	h := math.Max(float64(y2-y1), 1)
	return BoundingBox{X: float64(x1), Y: float64(y1), Width: w, Height: h, Space: SpaceNative}
}

// PointToDisplay maps a native point to display space.
func (t Transform) PointToDisplay(x, y float64) (float64, float64) {
	return x*t.Scale + t.OffsetX, y*t.Scale + t.OffsetY
}

// PointToNative maps a display point to native pixel indices.
func (t Transform) PointToNative(x, y float64) (int, int) {
	nx := math.Trunc((x - t.OffsetX) / t.Scale)
	ny := math.Trunc((y - t.OffsetY) / t.Scale)
	return int(nx), int(ny)
}
