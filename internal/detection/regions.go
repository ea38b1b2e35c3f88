package detection

import (
	"image"

	"github.com/ironsheep/legend-linker/internal/geometry"
)

// DefaultMinArea is the default lower area bound; boxes at or below it are
// discarded as noise.
const DefaultMinArea = 50

type pixel struct{ x, y int }

type component struct {
	minX, minY, maxX, maxY int
	external               bool
}

// ExtractBoxes returns the bounding boxes of the external 8-connected
// components of mask. A component lying inside a hole of another component
// is not external and is not reported.
//
// Box width and height are the pixel extent of the component
// (maxX-minX+1). Boxes with area <= minArea are dropped; when maxArea > 0,
// boxes with area >= maxArea are dropped too. Boxes are in the mask's own
// pixel space. No ordering is guaranteed.
func ExtractBoxes(mask *image.Gray, minArea, maxArea int) []geometry.BoundingBox {
	b := mask.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	fg := make([]bool, w*h)
	for y := 0; y < h; y++ {
		row := mask.Pix[mask.PixOffset(b.Min.X, b.Min.Y+y):]
		for x := 0; x < w; x++ {
			fg[y*w+x] = row[x] != 0
		}
	}

	labels := make([]int32, w*h)
	comps := labelComponents(fg, labels, w, h)
	outside := outsideBackground(fg, w, h)

	// A component is external when it reaches the image frame or touches
	// background connected to the frame.
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			if !fg[i] {
				continue
			}
			c := &comps[labels[i]-1]
			if c.external {
				continue
			}
			if x == 0 || y == 0 || x == w-1 || y == h-1 ||
				outside[i-1] || outside[i+1] || outside[i-w] || outside[i+w] {
				c.external = true
			}
		}
	}

	boxes := make([]geometry.BoundingBox, 0, len(comps))
	for _, c := range comps {
		if !c.external {
			continue
		}
		box := geometry.BoundingBox{
			X:      float64(b.Min.X + c.minX),
			Y:      float64(b.Min.Y + c.minY),
			Width:  float64(c.maxX - c.minX + 1),
			Height: float64(c.maxY - c.minY + 1),
			Space:  geometry.SpaceNative,
		}
		area := box.Area()
		if area <= float64(minArea) {
			continue
		}
		if maxArea > 0 && area >= float64(maxArea) {
			continue
		}
		boxes = append(boxes, box)
	}
	return boxes
}

// labelComponents assigns 1-based 8-connected component labels in raster
// order and returns each component's extent.
func labelComponents(fg []bool, labels []int32, w, h int) []component {
	var comps []component
	var stack []pixel

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !fg[y*w+x] || labels[y*w+x] != 0 {
				continue
			}

			comps = append(comps, component{minX: x, minY: y, maxX: x, maxY: y})
			id := int32(len(comps))
			c := &comps[id-1]

			// Iterative fill; large blobs would overflow a recursive one.
			labels[y*w+x] = id
			stack = append(stack[:0], pixel{x, y})
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]

				c.minX = min(c.minX, p.x)
				c.maxX = max(c.maxX, p.x)
				c.minY = min(c.minY, p.y)
				c.maxY = max(c.maxY, p.y)

				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						if dx == 0 && dy == 0 {
							continue
						}
						nx, ny := p.x+dx, p.y+dy
						if nx < 0 || nx >= w || ny < 0 || ny >= h {
							continue
						}
						j := ny*w + nx
						if fg[j] && labels[j] == 0 {
							labels[j] = id
							stack = append(stack, pixel{nx, ny})
						}
					}
				}
			}
		}
	}
	return comps
}

// outsideBackground marks background pixels 4-connected to the image frame.
// Background uses 4-connectivity so that it cannot leak through the diagonal
// joints of an 8-connected ring.
func outsideBackground(fg []bool, w, h int) []bool {
	outside := make([]bool, w*h)
	var stack []pixel

	push := func(x, y int) {
		i := y*w + x
		if !fg[i] && !outside[i] {
			outside[i] = true
			stack = append(stack, pixel{x, y})
		}
	}

	for x := 0; x < w; x++ {
		push(x, 0)
		push(x, h-1)
	}
	for y := 0; y < h; y++ {
		push(0, y)
		push(w-1, y)
	}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if p.x > 0 {
			push(p.x-1, p.y)
		}
		if p.x < w-1 {
			push(p.x+1, p.y)
		}
		if p.y > 0 {
			push(p.x, p.y-1)
		}
		if p.y < h-1 {
			push(p.x, p.y+1)
		}
	}
	return outside
}
