package ocr

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

// fakeEngine returns canned words and records what it was given.
type fakeEngine struct {
	words []Word
	err   error

	gotImage *image.Gray
	gotMode  PageSegMode
	calls    int
}

func (e *fakeEngine) Recognize(img *image.Gray, mode PageSegMode) ([]Word, error) {
	e.calls++
	e.gotImage = img
	e.gotMode = mode
	return e.words, e.err
}

func page(r image.Rectangle) *image.RGBA {
	img := image.NewRGBA(r)
	draw.Draw(img, r, image.NewUniform(color.White), image.Point{}, draw.Src)
	return img
}

func word(text string, conf float64, x, y, w, h int) Word {
	return Word{Text: text, Confidence: conf, Box: image.Rect(x, y, x+w, y+h)}
}

func TestRecognize_RowBandOrdering(t *testing.T) {
	engine := &fakeEngine{words: []Word{
		word("right", 90, 50, 102, 30, 10),
		word("left", 90, 10, 108, 30, 10),
		word("above", 90, 200, 95, 30, 10),
	}}
	r := NewRecognizer(engine, DefaultOptions(), nil)

	got, err := r.Recognize(page(image.Rect(0, 0, 300, 200)))
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "above", got[0].Text)
	assert.Equal(t, "left", got[1].Text)
	assert.Equal(t, "right", got[2].Text)
}

func TestRecognize_StableWithinBand(t *testing.T) {
	engine := &fakeEngine{words: []Word{
		word("first", 90, 10, 21, 10, 10),
		word("second", 90, 10, 29, 10, 10),
	}}
	r := NewRecognizer(engine, DefaultOptions(), nil)

	got, err := r.Recognize(page(image.Rect(0, 0, 100, 100)))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Text)
	assert.Equal(t, "second", got[1].Text)
}

func TestRecognize_ConfidenceFilter(t *testing.T) {
	engine := &fakeEngine{words: []Word{
		word("low", 29.9, 0, 0, 10, 10),
		word("edge", 30, 20, 0, 10, 10),
		word("ok", 30.1, 40, 0, 10, 10),
		word("none", -1, 60, 0, 10, 10),
	}}
	r := NewRecognizer(engine, DefaultOptions(), nil)

	got, err := r.Recognize(page(image.Rect(0, 0, 100, 20)))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ok", got[0].Text)
	for _, f := range got {
		assert.Greater(t, f.Confidence, float64(DefaultMinConfidence))
	}
}

func TestRecognize_DropsBlankAndNormalizes(t *testing.T) {
	engine := &fakeEngine{words: []Word{
		word("   ", 95, 0, 0, 10, 10),
		word("", 95, 10, 0, 10, 10),
		word(" Cafe\u0301 ", 95, 20, 0, 10, 10),
	}}
	r := NewRecognizer(engine, DefaultOptions(), nil)

	got, err := r.Recognize(page(image.Rect(0, 0, 100, 20)))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Caf\u00e9", got[0].Text)
}

func TestRecognize_TranslatesToRegionSpace(t *testing.T) {
	engine := &fakeEngine{words: []Word{word("Valve", 88, 4, 6, 40, 12)}}
	r := NewRecognizer(engine, DefaultOptions(), nil)

	full := page(image.Rect(0, 0, 400, 400))
	region, err := imaging.SubImage(full, image.Rect(100, 200, 180, 240))
	require.NoError(t, err)

	got, err := r.Recognize(region)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, image.Rect(104, 206, 144, 218), got[0].Box.Rect())
}

func TestRecognize_PassesBinarizedImageAndMode(t *testing.T) {
	engine := &fakeEngine{}
	r := NewRecognizer(engine, DefaultOptions(), nil)

	img := page(image.Rect(10, 10, 60, 40))
	draw.Draw(img, image.Rect(20, 20, 30, 30), image.NewUniform(color.RGBA{30, 30, 30, 255}), image.Point{}, draw.Src)

	_, err := r.Recognize(img)
	require.NoError(t, err)
	require.NotNil(t, engine.gotImage)

	assert.Equal(t, PSMSparseText, engine.gotMode)
	assert.Equal(t, image.Rect(0, 0, 50, 30), engine.gotImage.Bounds())
	assert.Equal(t, uint8(0), engine.gotImage.GrayAt(15, 15).Y, "ink should be black")
	assert.Equal(t, uint8(255), engine.gotImage.GrayAt(2, 2).Y, "paper should be white")
}

func TestRecognize_EngineError(t *testing.T) {
	boom := errors.New("engine crashed")
	r := NewRecognizer(&fakeEngine{err: boom}, DefaultOptions(), nil)

	_, err := r.Recognize(page(image.Rect(0, 0, 10, 10)))
	assert.ErrorIs(t, err, boom)
}

func TestRecognize_EmptyRegion(t *testing.T) {
	engine := &fakeEngine{}
	r := NewRecognizer(engine, DefaultOptions(), nil)

	_, err := r.Recognize(image.NewRGBA(image.Rectangle{}))
	assert.ErrorIs(t, err, imaging.ErrEmptyImage)
	assert.Zero(t, engine.calls)
}

func TestRecognizeLabel_JoinsFragments(t *testing.T) {
	engine := &fakeEngine{words: []Word{
		word("Alarm", 80, 60, 10, 50, 14),
		word("Fire", 85, 5, 12, 40, 14),
	}}
	r := NewRecognizer(engine, DefaultOptions(), nil)

	label, err := r.RecognizeLabel(page(image.Rect(0, 0, 200, 40)))
	require.NoError(t, err)
	require.NotNil(t, label)

	assert.Equal(t, "Fire Alarm", label.Text)
	assert.Equal(t, image.Rect(5, 10, 110, 26), label.Box.Rect())
	assert.Len(t, label.Fragments, 2)
}

func TestRecognizeLabel_NothingRecognized(t *testing.T) {
	engine := &fakeEngine{words: []Word{word("faint", 10, 0, 0, 5, 5)}}
	r := NewRecognizer(engine, DefaultOptions(), nil)

	label, err := r.RecognizeLabel(page(image.Rect(0, 0, 20, 20)))
	require.NoError(t, err)
	assert.Nil(t, label)
}

func TestJoinFragments_Empty(t *testing.T) {
	assert.Nil(t, JoinFragments(nil))
}

func TestOptions_Validate(t *testing.T) {
	assert.NoError(t, DefaultOptions().Validate())

	bad := DefaultOptions()
	bad.RowBand = 0
	assert.Error(t, bad.Validate())

	bad = DefaultOptions()
	bad.MinConfidence = 101
	assert.Error(t, bad.Validate())

	bad = DefaultOptions()
	bad.Language = ""
	assert.Error(t, bad.Validate())
}

func TestFloorDiv(t *testing.T) {
	tests := []struct{ a, b, want int }{
		{95, 10, 9},
		{102, 10, 10},
		{108, 10, 10},
		{0, 10, 0},
		{-1, 10, -1},
		{-10, 10, -1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, floorDiv(tt.a, tt.b), "floorDiv(%d, %d)", tt.a, tt.b)
	}
}
