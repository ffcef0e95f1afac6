package bubble

import (
	"fmt"
	"image/color"
)

// RGBA is an 8-bit color with straight (non-premultiplied) alpha.
type RGBA struct {
	R, G, B, A uint8
}

// Common colors.
var (
	Transparent = RGBA{}
	Black       = RGBA{R: 0, G: 0, B: 0, A: 255}
	White       = RGBA{R: 255, G: 255, B: 255, A: 255}
)

// Hex creates a color from a packed 0xRRGGBBAA value.
func Hex(v uint32) RGBA {
	return RGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}
}

// Color converts RGBA to the standard color.Color interface.
func (c RGBA) Color() color.Color {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// Uint32 packs the color as 0xRRGGBBAA.
func (c RGBA) Uint32() uint32 {
	return uint32(c.R)<<24 | uint32(c.G)<<16 | uint32(c.B)<<8 | uint32(c.A)
}

// String returns the color as "#RRGGBBAA".
func (c RGBA) String() string {
	return fmt.Sprintf("#%08X", c.Uint32())
}

// FromColor converts a standard color.Color to RGBA.
func FromColor(c color.Color) RGBA {
	n, _ := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGBA{R: n.R, G: n.G, B: n.B, A: n.A}
}

// ParseHex parses "RGB", "RRGGBB" or "RRGGBBAA", with or without a leading '#'.
func ParseHex(s string) (RGBA, error) {
	hex := s
	if hex != "" && hex[0] == '#' {
		hex = hex[1:]
	}

	var v uint32
	for i := 0; i < len(hex); i++ {
		d, ok := hexDigit(hex[i])
		if !ok {
			return RGBA{}, fmt.Errorf("bubble: invalid hex color %q", s)
		}
		v = v<<4 | d
	}

	switch len(hex) {
	case 3:
		r, g, b := v>>8&0xF, v>>4&0xF, v&0xF
		return RGBA{R: uint8(r * 17), G: uint8(g * 17), B: uint8(b * 17), A: 255}, nil
	case 6:
		return Hex(v<<8 | 0xFF), nil
	case 8:
		return Hex(v), nil
	default:
		return RGBA{}, fmt.Errorf("bubble: invalid hex color %q", s)
	}
}

func hexDigit(c byte) (uint32, bool) {
	switch {
	case '0' <= c && c <= '9':
		return uint32(c - '0'), true
	case 'a' <= c && c <= 'f':
		return uint32(c-'a') + 10, true
	case 'A' <= c && c <= 'F':
		return uint32(c-'A') + 10, true
	default:
		return 0, false
	}
}
