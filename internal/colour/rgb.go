// Package colour provides the colour value used in asset descriptors.
package colour

import (
	"fmt"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/jmylchreest/assetgen/internal/security"
)

// RGB represents an 8-bit RGB colour.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// FromMean builds an RGB from floating point channel means. Each channel is
// rounded half to even and clamped to [0, 255].
func FromMean(r, g, b float64) RGB {
	return RGB{
		R: security.SafeUint8(int(math.RoundToEven(r))),
		G: security.SafeUint8(int(math.RoundToEven(g))),
		B: security.SafeUint8(int(math.RoundToEven(b))),
	}
}

// ToRGB converts a color.Color to RGB, dropping alpha without un-premultiplying.
func ToRGB(c color.Color) RGB {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGB{R: n.R, G: n.G, B: n.B}
}

// String returns the RGB colour as a string in the format "rgb(r, g, b)".
func (rgb RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", rgb.R, rgb.G, rgb.B)
}

// Tuple returns the colour in the "(r, g, b)" form used by generated listings.
func (rgb RGB) Tuple() string {
	return fmt.Sprintf("(%d, %d, %d)", rgb.R, rgb.G, rgb.B)
}

// Hex returns the colour as a hex string (e.g., "#1a2b3c").
func (rgb RGB) Hex() string {
	return rgb.Colorful().Hex()
}

// Colorful converts the colour for use with go-colorful.
func (rgb RGB) Colorful() colorful.Color {
	return colorful.Color{
		R: float64(rgb.R) / 255.0,
		G: float64(rgb.G) / 255.0,
		B: float64(rgb.B) / 255.0,
	}
}

// Distance returns the perceptual CIEDE2000 distance between two colours.
// Identical colours return 0.
func Distance(a, b RGB) float64 {
	if a == b {
		return 0
	}
	return a.Colorful().DistanceCIEDE2000(b.Colorful())
}
