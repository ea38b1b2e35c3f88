package detection

import (
	"cmp"
	"math"
	"slices"

	"github.com/ironsheep/legend-linker/internal/geometry"
)

// Tolerance is the maximum top-left corner distance, per axis, at which two
// boxes are merged.
type Tolerance struct {
	X float64 `json:"x" mapstructure:"x" yaml:"x"`
	Y float64 `json:"y" mapstructure:"y" yaml:"y"`
}

// DefaultTolerance is 20 pixels on both axes.
var DefaultTolerance = Tolerance{X: 20, Y: 20}

// MergeBoxes consolidates boxes whose top-left corners lie close together.
//
// Boxes are stable-sorted by (top, left), then merged in one greedy pass:
// each box joins the first accepted box whose top-left corner is within
// the tolerance (|dx| <= X and |dy| <= Y), which then grows to the union of
// both. Otherwise it starts a new accepted box.
//
// The result depends on input order and the relation is not transitive: a
// box that has grown may later sit closer to, or further from, boxes it was
// never compared against. Running MergeBoxes on its own output is not
// guaranteed to be a no-op.
func MergeBoxes(boxes []geometry.BoundingBox, tol Tolerance) []geometry.BoundingBox {
	if len(boxes) == 0 {
		return nil
	}

	sorted := slices.Clone(boxes)
	slices.SortStableFunc(sorted, func(a, b geometry.BoundingBox) int {
		if c := cmp.Compare(a.Y, b.Y); c != 0 {
			return c
		}
		return cmp.Compare(a.X, b.X)
	})

	merged := make([]geometry.BoundingBox, 0, len(sorted))
	for _, box := range sorted {
		foundMerge := false
		for i := range merged {
			if math.Abs(box.X-merged[i].X) <= tol.X && math.Abs(box.Y-merged[i].Y) <= tol.Y {
				merged[i] = merged[i].Union(box)
				foundMerge = true
				break
			}
		}
		if !foundMerge {
			merged = append(merged, box)
		}
	}
	return merged
}
