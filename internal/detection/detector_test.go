package detection

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/legend-linker/internal/imaging"
)

// maskSegmenter returns a fixed mask, or an error.
type maskSegmenter struct {
	mask *image.Gray
	err  error
}

func (s *maskSegmenter) Segment(img image.Image) (*image.Gray, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.mask, nil
}

// blueprint draws dark squares on a white page.
func blueprint(w, h int, squares ...image.Rectangle) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	for _, r := range squares {
		draw.Draw(img, r, image.NewUniform(color.RGBA{10, 10, 10, 255}), image.Point{}, draw.Src)
	}
	return img
}

func TestDetect_AssignsSequentialIDs(t *testing.T) {
	m := newMask(300, 200)
	fill(m, image.Rect(200, 20, 230, 50))
	fill(m, image.Rect(10, 20, 40, 50))
	fill(m, image.Rect(50, 150, 80, 180))

	d := NewDetector(&maskSegmenter{mask: m}, DefaultOptions(), nil)
	got, err := d.Detect(image.NewRGBA(image.Rect(0, 0, 300, 200)))
	require.NoError(t, err)
	require.Len(t, got, 3)

	for i, c := range got {
		assert.Equal(t, i+1, c.ID)
	}
	assert.Equal(t, image.Rect(10, 20, 40, 50), got[0].Box.Rect())
	assert.Equal(t, image.Rect(200, 20, 230, 50), got[1].Box.Rect())
	assert.Equal(t, image.Rect(50, 150, 80, 180), got[2].Box.Rect())
}

func TestDetect_TranslatesToImageSpace(t *testing.T) {
	m := newMask(50, 50)
	fill(m, image.Rect(5, 5, 25, 25))

	d := NewDetector(&maskSegmenter{mask: m}, DefaultOptions(), nil)
	sub := image.NewRGBA(image.Rect(100, 40, 150, 90))

	got, err := d.Detect(sub)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, image.Rect(105, 45, 125, 65), got[0].Box.Rect())
}

func TestDetect_SegmenterError(t *testing.T) {
	boom := errors.New("boom")
	d := NewDetector(&maskSegmenter{err: boom}, DefaultOptions(), nil)

	_, err := d.Detect(image.NewRGBA(image.Rect(0, 0, 10, 10)))
	assert.ErrorIs(t, err, boom)
}

func TestDetect_EmptyImage(t *testing.T) {
	d := NewDetector(nil, DefaultOptions(), nil)

	_, err := d.Detect(image.NewRGBA(image.Rectangle{}))
	assert.ErrorIs(t, err, imaging.ErrEmptyImage)
}

func TestDetect_TwoSquaresEndToEnd(t *testing.T) {
	img := blueprint(240, 160,
		image.Rect(30, 30, 60, 60),
		image.Rect(150, 90, 190, 130),
	)

	d := NewDetector(nil, DefaultOptions(), nil)
	got, err := d.Detect(img)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// The edge map widens each blob by a few pixels.
	assertNear(t, image.Rect(30, 30, 60, 60), got[0].Box.Rect(), 4)
	assertNear(t, image.Rect(150, 90, 190, 130), got[1].Box.Rect(), 4)
}

func TestDetect_BlankPage(t *testing.T) {
	d := NewDetector(nil, DefaultOptions(), nil)
	got, err := d.Detect(blueprint(100, 100))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDetectNear(t *testing.T) {
	m := newMask(400, 400)
	fill(m, image.Rect(200, 210, 230, 240))

	// The stub ignores its input, so hand it the cropped window's mask.
	window := image.Rect(165, 175, 265, 275)
	cropped := newMask(window.Dx(), window.Dy())
	draw.Draw(cropped, cropped.Bounds(), m, window.Min, draw.Src)

	d := NewDetector(&maskSegmenter{mask: cropped}, DefaultOptions(), nil)
	got, err := d.DetectNear(image.NewRGBA(image.Rect(0, 0, 400, 400)), 215, 225)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, image.Rect(200, 210, 230, 240), got.Box.Rect())
	assert.Equal(t, 1, got.ID)
}

func TestDetectNear_ClampsToImage(t *testing.T) {
	img := blueprint(120, 120, image.Rect(5, 5, 30, 30))

	d := NewDetector(nil, DefaultOptions(), nil)
	got, err := d.DetectNear(img, 10, 10)
	require.NoError(t, err)
	require.NotNil(t, got)
	assertNear(t, image.Rect(5, 5, 30, 30), got.Box.Rect(), 4)
}

func TestDetectNear_NothingFound(t *testing.T) {
	d := NewDetector(nil, DefaultOptions(), nil)
	got, err := d.DetectNear(blueprint(200, 200, image.Rect(150, 150, 190, 190)), 20, 20)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDetectNear_OutsideImage(t *testing.T) {
	d := NewDetector(nil, DefaultOptions(), nil)
	_, err := d.DetectNear(blueprint(50, 50), 500, 500)
	assert.Error(t, err)
}

func TestOptions_Validate(t *testing.T) {
	assert.NoError(t, DefaultOptions().Validate())

	bad := DefaultOptions()
	bad.MaxArea = 10
	assert.Error(t, bad.Validate())

	bad = DefaultOptions()
	bad.ClickRadius = 0
	assert.Error(t, bad.Validate())

	bad = DefaultOptions()
	bad.Tolerance.X = -1
	assert.Error(t, bad.Validate())
}

func TestMask_Foreground(t *testing.T) {
	img := blueprint(100, 100, image.Rect(40, 40, 60, 60))

	mask, err := Mask(img, DefaultPreprocessOptions())
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 100, 100), mask.Bounds())
	assert.Equal(t, uint8(255), mask.GrayAt(50, 50).Y)
	assert.Equal(t, uint8(0), mask.GrayAt(5, 5).Y)

	for _, v := range mask.Pix {
		assert.True(t, v == 0 || v == 255, "mask must be binary")
	}
}

func TestMask_ColouredSymbol(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 80, 80))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	// A light, saturated fill that the dark threshold alone would miss.
	draw.Draw(img, image.Rect(20, 20, 60, 60), image.NewUniform(color.RGBA{250, 200, 120, 255}), image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(2, 2, 6, 6), image.NewUniform(color.Black), image.Point{}, draw.Src)

	mask, err := Mask(img, DefaultPreprocessOptions())
	require.NoError(t, err)
	assert.Equal(t, uint8(255), mask.GrayAt(40, 40).Y)
}

func TestMask_DoesNotMutateInput(t *testing.T) {
	img := blueprint(60, 60, image.Rect(20, 20, 40, 40))
	before := append([]uint8(nil), img.Pix...)

	_, err := Mask(img, DefaultPreprocessOptions())
	require.NoError(t, err)
	assert.Equal(t, before, img.Pix)
}

func TestMask_EmptyImage(t *testing.T) {
	_, err := Mask(image.NewRGBA(image.Rectangle{}), DefaultPreprocessOptions())
	assert.ErrorIs(t, err, imaging.ErrEmptyImage)
}

func TestNewSegmenter_MatchesBackend(t *testing.T) {
	seg := NewSegmenter(DefaultPreprocessOptions())
	require.NotNil(t, seg)
	assert.Contains(t, []string{"go", "gocv"}, SegmenterBackend)

	mask, err := seg.Segment(blueprint(50, 50, image.Rect(10, 10, 30, 30)))
	require.NoError(t, err)
	assert.Equal(t, uint8(255), mask.GrayAt(20, 20).Y)
}

func assertNear(t *testing.T, want, got image.Rectangle, slack int) {
	t.Helper()
	near := func(a, b int) bool { return a-b <= slack && b-a <= slack }
	assert.True(t,
		near(want.Min.X, got.Min.X) && near(want.Min.Y, got.Min.Y) &&
			near(want.Max.X, got.Max.X) && near(want.Max.Y, got.Max.Y),
		"got %v, want %v within %d px", got, want, slack)
}
