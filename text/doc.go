// Package text provides font loading, measurement, wrapping and drawing for
// the bubble renderer.
//
// The pipeline follows a separation of concerns:
//
//   - FontSource: heavyweight, shared font resource (parses TTF/OTF data)
//   - Face: immutable glyph metrics table for one pixel size
//   - FontSet: the body and timestamp faces used by one image
//
// # Example usage
//
//	// Load once, share across goroutines
//	fonts, err := text.DefaultFontSet()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	lines := text.Wrap("Hello world", 800, fonts.Body)
//	_ = text.Draw(img, lines[0], fonts.Body, 40, 140, color.White)
//
// Measurement uses per-rune advances only: there is no shaping, kerning or
// bidirectional reordering. With a monospace font such as Go Mono every
// printable rune has the same advance.
package text
