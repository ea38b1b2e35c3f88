package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// HSV is a colour in the 8-bit OpenCV convention: hue in [0,180],
// saturation and value in [0,255].
type HSV struct {
	H uint8 `json:"h" mapstructure:"h" yaml:"h"`
	S uint8 `json:"s" mapstructure:"s" yaml:"s"`
	V uint8 `json:"v" mapstructure:"v" yaml:"v"`
}

// HSVRange is an inclusive per-channel colour range.
type HSVRange struct {
	Lower HSV `json:"lower" mapstructure:"lower" yaml:"lower"`
	Upper HSV `json:"upper" mapstructure:"upper" yaml:"upper"`
}

// DefaultHSVRange accepts any hue with at least faint saturation and value,
// which picks up coloured symbol fills that the grayscale threshold misses.
func DefaultHSVRange() HSVRange {
	return HSVRange{
		Lower: HSV{H: 0, S: 30, V: 30},
		Upper: HSV{H: 180, S: 255, V: 255},
	}
}

// Contains reports whether c lies inside the range on every channel.
func (r HSVRange) Contains(c HSV) bool {
	return c.H >= r.Lower.H && c.H <= r.Upper.H &&
		c.S >= r.Lower.S && c.S <= r.Upper.S &&
		c.V >= r.Lower.V && c.V <= r.Upper.V
}

// Validate checks that each lower bound is not above its upper bound and
// that hue stays within 180.
func (r HSVRange) Validate() error {
	if r.Upper.H > 180 || r.Lower.H > 180 {
		return fmt.Errorf("hue must be within [0,180], got %d-%d", r.Lower.H, r.Upper.H)
	}
	if r.Lower.H > r.Upper.H || r.Lower.S > r.Upper.S || r.Lower.V > r.Upper.V {
		return fmt.Errorf("lower bound %+v exceeds upper bound %+v", r.Lower, r.Upper)
	}
	return nil
}

// ToHSV converts c to the 8-bit OpenCV HSV convention. Fully transparent
// colours convert to black.
func ToHSV(c color.Color) HSV {
	cf, ok := colorful.MakeColor(c)
	if !ok {
		return HSV{}
	}
	h, s, v := cf.Hsv()
	return HSV{
		H: uint8(math.Min(180, math.Round(h/2))),
		S: uint8(math.Round(s * 255)),
		V: uint8(math.Round(v * 255)),
	}
}

// ColorMask marks every pixel of img whose HSV value lies in rng with 255.
// The result has its origin at (0,0).
func ColorMask(img image.Image, rng HSVRange) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		row := out.Pix[y*out.Stride:]
		for x := 0; x < b.Dx(); x++ {
			if rng.Contains(ToHSV(img.At(b.Min.X+x, b.Min.Y+y))) {
				row[x] = 255
			}
		}
	}
	return out
}

// parseHexColor parses a hex color string like "#FF0000" or "#FF000080"
func parseHexColor(hex string) (color.RGBA, error) {
	if len(hex) == 0 {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint8 = 0, 0, 0, 255

	switch len(hex) {
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 16)
		g = uint8(val >> 8)
		b = uint8(val)
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 24)
		g = uint8(val >> 16)
		b = uint8(val >> 8)
		a = uint8(val)
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex color length")
	}

	return color.RGBA{R: r, G: g, B: b, A: a}, nil
}
