package text

import (
	"bytes"
	"fmt"
	"os"

	gotext "github.com/go-text/typesetting/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// FontSource represents a parsed font file.
// One FontSource can create multiple Face instances at different sizes.
//
// FontSource is read-only after construction and safe for concurrent use.
type FontSource struct {
	otf      *opentype.Font
	coverage *gotext.Font
	name     string
}

// NewFontSource creates a FontSource from font data (TTF or OTF).
// The data slice is copied internally and can be reused after this call.
func NewFontSource(data []byte) (*FontSource, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFontData
	}

	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)

	otf, err := opentype.Parse(dataCopy)
	if err != nil {
		return nil, fmt.Errorf("text: failed to parse font: %w", err)
	}

	// go-text keeps its own cmap view of the font; it answers coverage
	// queries without touching the sfnt buffers used for rasterization.
	face, err := gotext.ParseTTF(bytes.NewReader(dataCopy))
	if err != nil {
		return nil, fmt.Errorf("text: failed to parse font coverage: %w", err)
	}

	s := &FontSource{
		otf:      otf,
		coverage: face.Font,
	}
	s.name = extractFontName(otf)
	return s, nil
}

// NewFontSourceFromFile loads a FontSource from a font file path.
func NewFontSourceFromFile(path string) (*FontSource, error) {
	// #nosec G304 -- Font file path is provided by the user
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("text: failed to read font file: %w", err)
	}
	return NewFontSource(data)
}

// Name returns the font family name.
func (s *FontSource) Name() string {
	return s.name
}

// HasGlyph reports whether the font maps r to a real glyph.
func (s *FontSource) HasGlyph(r rune) bool {
	_, ok := s.coverage.NominalGlyph(r)
	return ok
}

// extractFontName extracts the font family name from the parsed font.
func extractFontName(f *opentype.Font) string {
	if name, err := f.Name(nil, sfnt.NameIDFamily); err == nil && name != "" {
		return name
	}
	if name, err := f.Name(nil, sfnt.NameIDFull); err == nil && name != "" {
		return name
	}
	return "Unknown Font"
}
