package text

import (
	"fmt"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Replacement is drawn in place of runes the font has no glyph for.
const Replacement = '?'

// tableRanges lists the runes whose advances are precomputed when a Face is built.
var tableRanges = []struct{ lo, hi rune }{
	{0x0020, 0x007E}, // printable ASCII
	{0x00A0, 0x00FF}, // Latin-1 supplement
	{0x2010, 0x2027}, // dashes, quotes, ellipsis
}

// Face is a glyph metrics table for one font at one pixel size.
// The table is filled once by FontSource.Face and never mutated, so a
// Face is safe for concurrent use.
type Face struct {
	source   *FontSource
	size     float64
	config   faceConfig
	metrics  Metrics
	advances map[rune]fixed.Int26_6
	fallback fixed.Int26_6
}

// Face builds the glyph metrics table for the given pixel size.
func (s *FontSource) Face(size float64, opts ...FaceOption) (*Face, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}

	config := defaultFaceConfig()
	for _, opt := range opts {
		opt(&config)
	}

	otFace, err := s.newOpenTypeFace(size, config.hinting)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = otFace.Close()
	}()

	f := &Face{
		source:   s,
		size:     size,
		config:   config,
		metrics:  metricsFrom(otFace.Metrics()),
		advances: make(map[rune]fixed.Int26_6),
	}

	for _, rng := range tableRanges {
		for r := rng.lo; r <= rng.hi; r++ {
			if !s.HasGlyph(r) {
				continue
			}
			if adv, ok := otFace.GlyphAdvance(r); ok {
				f.advances[r] = adv
			}
		}
	}

	adv, ok := f.advances[Replacement]
	if !ok {
		return nil, fmt.Errorf("text: font %q has no glyph for %q", s.name, Replacement)
	}
	f.fallback = adv

	return f, nil
}

// newOpenTypeFace creates a short-lived x/image face. Such faces carry
// scratch buffers and must not be shared between goroutines.
func (s *FontSource) newOpenTypeFace(size float64, hinting font.Hinting) (font.Face, error) {
	face, err := opentype.NewFace(s.otf, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: hinting,
	})
	if err != nil {
		return nil, fmt.Errorf("text: failed to create face: %w", err)
	}
	return face, nil
}

// Size returns the size of this face in pixels.
func (f *Face) Size() float64 {
	return f.size
}

// Source returns the FontSource this face was created from.
func (f *Face) Source() *FontSource {
	return f.source
}

// Metrics returns the whole-pixel metrics of this face.
func (f *Face) Metrics() Metrics {
	return f.metrics
}

// HasGlyph reports whether the font has a glyph for r.
func (f *Face) HasGlyph(r rune) bool {
	if _, ok := f.advances[r]; ok {
		return true
	}
	return f.source.HasGlyph(r)
}

// Advance returns the summed advance of s. Runes outside the table use the
// advance of Replacement.
func (f *Face) Advance(s string) fixed.Int26_6 {
	var total fixed.Int26_6
	for _, r := range s {
		if adv, ok := f.advances[r]; ok {
			total += adv
			continue
		}
		total += f.fallback
	}
	return total
}

// Width returns the advance of s rounded up to whole pixels.
func (f *Face) Width(s string) int {
	return f.Advance(s).Ceil()
}
