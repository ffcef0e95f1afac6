package text

import "golang.org/x/image/font"

// FaceOption configures Face creation.
type FaceOption func(*faceConfig)

// faceConfig holds configuration for Face.
type faceConfig struct {
	hinting   font.Hinting
	antialias bool
}

// defaultFaceConfig returns the default face configuration.
func defaultFaceConfig() faceConfig {
	return faceConfig{
		hinting:   font.HintingFull,
		antialias: false,
	}
}

// WithHinting sets the hinting mode used for both measurement and drawing.
func WithHinting(h font.Hinting) FaceOption {
	return func(c *faceConfig) {
		c.hinting = h
	}
}

// WithAntialias enables smooth glyph edges. Faces are hard-edged by default,
// which keeps every drawn pixel either the text color or untouched.
func WithAntialias(enabled bool) FaceOption {
	return func(c *faceConfig) {
		c.antialias = enabled
	}
}
