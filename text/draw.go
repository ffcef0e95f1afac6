package text

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Draw renders s onto dst with the top-left corner of its line box at (x, y).
// The baseline sits Metrics().Ascent pixels below y.
func Draw(dst draw.Image, s string, f *Face, x, y int, col color.Color) error {
	if s == "" || f == nil {
		return nil
	}

	otFace, err := f.source.newOpenTypeFace(f.size, f.config.hinting)
	if err != nil {
		return err
	}
	defer func() {
		_ = otFace.Close()
	}()

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: plainFace{Face: otFace, antialias: f.config.antialias},
		Dot:  fixed.P(x, y+f.metrics.Ascent),
	}
	d.DrawString(s)
	return nil
}

// Measure returns the width and line height of s in pixels.
func Measure(s string, f *Face) (width, height int) {
	if s == "" || f == nil {
		return 0, 0
	}
	return f.Width(s), f.metrics.LineHeight()
}

// plainFace disables kerning so drawn advances match the metrics table,
// and hard-thresholds glyph coverage unless antialiasing was requested.
type plainFace struct {
	font.Face
	antialias bool
}

func (p plainFace) Kern(r0, r1 rune) fixed.Int26_6 { return 0 }

func (p plainFace) Glyph(dot fixed.Point26_6, r rune) (image.Rectangle, image.Image, image.Point, fixed.Int26_6, bool) {
	dr, mask, maskp, advance, ok := p.Face.Glyph(dot, r)
	if !ok || p.antialias || mask == nil {
		return dr, mask, maskp, advance, ok
	}
	return dr, thresholdMask{mask}, maskp, advance, ok
}

// thresholdMask turns partial coverage into fully opaque or fully clear.
type thresholdMask struct {
	image.Image
}

func (m thresholdMask) ColorModel() color.Model { return color.AlphaModel }

func (m thresholdMask) At(x, y int) color.Color {
	_, _, _, a := m.Image.At(x, y).RGBA()
	if a >= 0x8000 {
		return color.Opaque
	}
	return color.Transparent
}
