//go:build gocv

package detection

import (
	"image"

	"gocv.io/x/gocv"

	"github.com/ironsheep/legend-linker/internal/imaging"
)

// SegmenterBackend names the compiled-in segmentation backend.
const SegmenterBackend = "gocv"

type cvSegmenter struct {
	opts PreprocessOptions
}

// NewSegmenter returns the OpenCV segmenter.
func NewSegmenter(opts PreprocessOptions) Segmenter {
	return &cvSegmenter{opts: opts}
}

func (s *cvSegmenter) Segment(img image.Image) (*image.Gray, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, imaging.ErrEmptyImage
	}

	bgr := imageToMat(img)
	defer bgr.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(bgr, &gray, gocv.ColorBGRToGray)

	dark := gocv.NewMat()
	defer dark.Close()
	gocv.Threshold(gray, &dark, 0, 255, gocv.ThresholdBinaryInv|gocv.ThresholdOtsu)

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(bgr, &hsv, gocv.ColorBGRToHSV)

	lo, hi := s.opts.HSV.Lower, s.opts.HSV.Upper
	colour := gocv.NewMat()
	defer colour.Close()
	gocv.InRangeWithScalar(hsv,
		gocv.NewScalar(float64(lo.H), float64(lo.S), float64(lo.V), 0),
		gocv.NewScalar(float64(hi.H), float64(hi.S), float64(hi.V), 0),
		&colour)

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: 3, Y: 3}, 0, 0, gocv.BorderDefault)

	gx := gocv.NewMat()
	defer gx.Close()
	gy := gocv.NewMat()
	defer gy.Close()
	gocv.Sobel(blurred, &gx, gocv.MatTypeCV16S, 1, 0, 3, 1, 0, gocv.BorderDefault)
	gocv.Sobel(blurred, &gy, gocv.MatTypeCV16S, 0, 1, 3, 1, 0, gocv.BorderDefault)
	absX := gocv.NewMat()
	defer absX.Close()
	absY := gocv.NewMat()
	defer absY.Close()
	gocv.ConvertScaleAbs(gx, &absX, 1, 0)
	gocv.ConvertScaleAbs(gy, &absY, 1, 0)

	grad := gocv.NewMat()
	defer grad.Close()
	gocv.AddWeighted(absX, 0.5, absY, 0.5, 0, &grad)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Threshold(grad, &edges, float32(s.opts.EdgeThreshold)-1, 255, gocv.ThresholdBinary)

	combined := gocv.NewMat()
	defer combined.Close()
	gocv.BitwiseOr(dark, colour, &combined)
	gocv.BitwiseOr(combined, edges, &combined)

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{X: 3, Y: 3})
	defer kernel.Close()

	if s.opts.CloseIterations > 0 {
		gocv.MorphologyExWithParams(combined, &combined, gocv.MorphClose, kernel, s.opts.CloseIterations, gocv.BorderReplicate)
	}
	if s.opts.OpenIterations > 0 {
		gocv.MorphologyExWithParams(combined, &combined, gocv.MorphOpen, kernel, s.opts.OpenIterations, gocv.BorderReplicate)
	}

	return matToGray(combined), nil
}

// imageToMat converts a Go image to a BGR Mat.
func imageToMat(img image.Image) gocv.Mat {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	mat := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			mat.SetUCharAt(y, x*3+0, uint8(b>>8))
			mat.SetUCharAt(y, x*3+1, uint8(g>>8))
			mat.SetUCharAt(y, x*3+2, uint8(r>>8))
		}
	}
	return mat
}

// matToGray copies a single-channel 8-bit Mat into an *image.Gray mask.
func matToGray(mat gocv.Mat) *image.Gray {
	h, w := mat.Rows(), mat.Cols()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		row := out.Pix[y*out.Stride:]
		for x := 0; x < w; x++ {
			if mat.GetUCharAt(y, x) != 0 {
				row[x] = 255
			}
		}
	}
	return out
}
