package workflow

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsheep/legend-linker/internal/detection"
	"github.com/ironsheep/legend-linker/internal/ocr"
)

// Blueprint layout used by the tests, in blueprint pixels. The legend sits
// at legendRect; symbols and labels are given in legend pixels.
var (
	legendRect = image.Rect(100, 50, 300, 250)
	symbolA    = image.Rect(20, 20, 40, 40)
	symbolB    = image.Rect(20, 100, 40, 120)
	labelA     = image.Rect(90, 20, 190, 40)
	labelB     = image.Rect(90, 100, 190, 120)
)

// darkSegmenter marks every pixel darker than mid-gray.
type darkSegmenter struct{}

func (darkSegmenter) Segment(img image.Image) (*image.Gray, error) {
	b := img.Bounds()
	mask := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y < 128 {
				mask.SetGray(x-b.Min.X, y-b.Min.Y, color.Gray{Y: 255})
			}
		}
	}
	return mask, nil
}

// queueEngine answers each call with the next scripted text as a single
// word covering the whole image. An empty string yields no words.
type queueEngine struct {
	texts []string
	err   error
	calls int
}

func (e *queueEngine) Recognize(img *image.Gray, _ ocr.PageSegMode) ([]ocr.Word, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	if len(e.texts) == 0 {
		return nil, nil
	}
	text := e.texts[0]
	e.texts = e.texts[1:]
	if text == "" {
		return nil, nil
	}
	return []ocr.Word{{Text: text, Confidence: 90, Box: img.Bounds()}}, nil
}

func (e *queueEngine) push(texts ...string) {
	e.texts = append(e.texts, texts...)
}

// drawBlueprint renders a white sheet with a legend holding two black
// symbols and two gray label bars.
func drawBlueprint() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 400, 300))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	off := legendRect.Min
	for _, r := range []image.Rectangle{symbolA, symbolB} {
		draw.Draw(img, r.Add(off), image.NewUniform(color.Black), image.Point{}, draw.Src)
	}
	for _, r := range []image.Rectangle{labelA, labelB} {
		draw.Draw(img, r.Add(off), image.NewUniform(color.Gray{Y: 160}), image.Point{}, draw.Src)
	}
	return img
}

func saveBlueprint(dir string) (string, error) {
	path := filepath.Join(dir, "plan.png")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := png.Encode(f, drawBlueprint()); err != nil {
		return "", err
	}
	return path, nil
}

func writeBlueprint(t testing.TB, dir string) string {
	t.Helper()
	path, err := saveBlueprint(dir)
	if err != nil {
		t.Fatalf("write blueprint: %v", err)
	}
	return path
}

func newController(workDir string, engine *queueEngine) *Controller {
	det := detection.NewDetector(darkSegmenter{}, detection.DefaultOptions(), nil)
	rec := ocr.NewRecognizer(engine, ocr.DefaultOptions(), nil)
	opts := DefaultOptions()
	opts.WorkDir = workDir
	return New(opts, det, rec, nil, nil)
}
