package imaging

import (
	"image"

	"github.com/disintegration/imaging"
)

// ToGray converts img to 8-bit luminance using the ITU-R BT.601 weights
// (0.299*R + 0.587*G + 0.114*B). The result has its origin at (0,0).
func ToGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok && g.Bounds().Min == (image.Point{}) {
		return g
	}

	// imaging.Grayscale uses the BT.601 weights and leaves R=G=B.
	nrgba := imaging.Grayscale(img)
	b := nrgba.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		src := nrgba.Pix[y*nrgba.Stride:]
		dst := out.Pix[y*out.Stride:]
		for x := 0; x < b.Dx(); x++ {
			dst[x] = src[x*4]
		}
	}
	return out
}

// OtsuLevel returns the threshold that maximizes the between-class variance
// of the histogram of g, where the lower class is [0, level]. A uniform image
// yields level 0.
func OtsuLevel(g *image.Gray) uint8 {
	var hist [256]int
	b := g.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := g.Pix[g.PixOffset(b.Min.X, y):]
		for x := 0; x < b.Dx(); x++ {
			hist[row[x]]++
		}
	}

	total := b.Dx() * b.Dy()
	if total == 0 {
		return 0
	}

	var sum float64
	for i, n := range hist {
		sum += float64(i * n)
	}

	var (
		sumB   float64
		wB     int
		best   float64
		level  uint8
		totalF = float64(total)
	)
	for t := 0; t < 256; t++ {
		wB += hist[t]
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}
		sumB += float64(t * hist[t])
		mB := sumB / float64(wB)
		mF := (sum - sumB) / float64(wF)
		between := float64(wB) * float64(wF) / (totalF * totalF) * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			level = uint8(t)
		}
	}
	return level
}

// Threshold binarizes g at level. With inverse set, pixels at or below the
// level become 255 and the rest 0; otherwise pixels above the level become
// 255 and the rest 0.
func Threshold(g *image.Gray, level uint8, inverse bool) *image.Gray {
	b := g.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		src := g.Pix[g.PixOffset(b.Min.X, b.Min.Y+y):]
		dst := out.Pix[y*out.Stride:]
		for x := 0; x < b.Dx(); x++ {
			above := src[x] > level
			if above != inverse {
				dst[x] = 255
			}
		}
	}
	return out
}

// Binarize converts img to grayscale and thresholds it at its Otsu level,
// producing dark content on a white background.
func Binarize(img image.Image) *image.Gray {
	g := ToGray(img)
	return Threshold(g, OtsuLevel(g), false)
}
