package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/effect"
)

// DefaultEdgeThreshold is the minimum gradient magnitude (0-255) marked as
// an edge by EdgeMask.
const DefaultEdgeThreshold = 100

// edgeBlurRadius is the Gaussian radius applied before the Sobel operator.
const edgeBlurRadius = 1.0

// edgePad is the replicated border added before filtering so that the image
// frame itself never reads as an edge.
const edgePad = 4

// EdgeMask computes a binary gradient map of img.
//
// # Algorithm
//
//  1. Grayscale conversion using ITU-R BT.601 weights
//  2. Border replication by a few pixels on every side
//  3. Gaussian blur to suppress scan noise
//  4. Sobel gradient response in both directions
//  5. Pixels with magnitude >= threshold become 255, all others 0
//
// The result has the same size as img with its origin at (0,0).
func EdgeMask(img image.Image, threshold uint8) *image.Gray {
	g := ToGray(img)
	w, h := g.Bounds().Dx(), g.Bounds().Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return out
	}

	blurred := blur.Gaussian(clone.Pad(g, edgePad, edgePad, clone.EdgeExtend), edgeBlurRadius)

	// The convolution clamps negative responses, so falling edges are
	// measured on the inverted image.
	rising := effect.Sobel(blurred)
	falling := effect.Sobel(effect.Invert(blurred))

	for y := 0; y < h; y++ {
		off := rising.PixOffset(edgePad, y+edgePad)
		r := rising.Pix[off:]
		f := falling.Pix[off:]
		dst := out.Pix[y*out.Stride:]
		for x := 0; x < w; x++ {
			if max(r[x*4], f[x*4]) >= threshold {
				dst[x] = 255
			}
		}
	}
	return out
}
