package survey

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gleamform/survey-backend/internal"
)

// HSL is a color in hue/saturation/lightness space, the form the respondent
// UI's CSS variables expect.
type HSL struct {
	H int `json:"h"`
	S int `json:"s"`
	L int `json:"l"`
}

// CSS renders the space separated `H S% L%` form used inside hsl() variables.
func (c HSL) CSS() string {
	return fmt.Sprintf("%d %d%% %d%%", c.H, c.S, c.L)
}

// HexToHSL converts a #RGB or #RRGGBB color to HSL with integer components.
func HexToHSL(hex string) (HSL, error) {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return HSL{}, internal.ErrInvalidThemeColor
	}

	value, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return HSL{}, internal.ErrInvalidThemeColor
	}

	r := float64(value>>16&0xff) / 255
	g := float64(value>>8&0xff) / 255
	b := float64(value&0xff) / 255

	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	l := (maxC + minC) / 2

	if maxC == minC {
		// Achromatic: hue and saturation are zero.
		return HSL{H: 0, S: 0, L: int(math.Round(l * 100))}, nil
	}

	d := maxC - minC
	var s float64
	if l > 0.5 {
		s = d / (2 - maxC - minC)
	} else {
		s = d / (maxC + minC)
	}

	var h float64
	switch maxC {
	case r:
		h = (g - b) / d
		if g < b {
			h += 6
		}
	case g:
		h = (b-r)/d + 2
	case b:
		h = (r-g)/d + 4
	}
	h /= 6

	return HSL{
		H: int(math.Round(h * 360)),
		S: int(math.Round(s * 100)),
		L: int(math.Round(l * 100)),
	}, nil
}
