package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/effect"
)

// morphRadius gives bild a 3x3 neighbourhood.
const morphRadius = 1

// Dilate grows the white regions of a binary mask by one pixel.
func Dilate(mask *image.Gray) *image.Gray {
	return morph(mask, effect.Dilate)
}

// Erode shrinks the white regions of a binary mask by one pixel.
func Erode(mask *image.Gray) *image.Gray {
	return morph(mask, effect.Erode)
}

// Close dilates iterations times, then erodes iterations times, as OpenCV's
// morphologyEx does. Gaps up to about 2*iterations pixels wide are bridged.
func Close(mask *image.Gray, iterations int) *image.Gray {
	return repeat(repeat(mask, Dilate, iterations), Erode, iterations)
}

// Open erodes iterations times, then dilates iterations times. Specks
// narrower than 2*iterations+1 pixels are removed.
func Open(mask *image.Gray, iterations int) *image.Gray {
	return repeat(repeat(mask, Erode, iterations), Dilate, iterations)
}

func repeat(mask *image.Gray, op func(*image.Gray) *image.Gray, n int) *image.Gray {
	for i := 0; i < n; i++ {
		mask = op(mask)
	}
	return mask
}

// Union returns the pixelwise OR of equally sized masks. It panics if the
// masks differ in size.
func Union(first *image.Gray, rest ...*image.Gray) *image.Gray {
	b := first.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	copyGray(out, first)
	for _, m := range rest {
		if m.Bounds().Size() != b.Size() {
			panic("imaging: Union of masks with different sizes")
		}
		mb := m.Bounds()
		for y := 0; y < b.Dy(); y++ {
			src := m.Pix[m.PixOffset(mb.Min.X, mb.Min.Y+y):]
			dst := out.Pix[y*out.Stride:]
			for x := 0; x < b.Dx(); x++ {
				if src[x] != 0 {
					dst[x] = 255
				}
			}
		}
	}
	return out
}

// morph pads the mask by replication so that the filter sees a neutral
// border, runs it, and reads the red channel back as a mask.
func morph(mask *image.Gray, filter func(image.Image, float64) *image.RGBA) *image.Gray {
	b := mask.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	if b.Empty() {
		return out
	}

	res := filter(clone.Pad(mask, morphRadius, morphRadius, clone.EdgeExtend), morphRadius)
	for y := 0; y < b.Dy(); y++ {
		src := res.Pix[res.PixOffset(morphRadius, y+morphRadius):]
		dst := out.Pix[y*out.Stride:]
		for x := 0; x < b.Dx(); x++ {
			if src[x*4] >= 128 {
				dst[x] = 255
			}
		}
	}
	return out
}

func copyGray(dst, src *image.Gray) {
	sb := src.Bounds()
	for y := 0; y < sb.Dy(); y++ {
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+sb.Dx()], src.Pix[src.PixOffset(sb.Min.X, sb.Min.Y+y):])
	}
}
