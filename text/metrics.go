package text

import "golang.org/x/image/font"

// Metrics holds whole-pixel font metrics at a specific size.
type Metrics struct {
	// Ascent is the distance from the top of a line box to the baseline.
	Ascent int

	// Descent is the distance from the baseline to the bottom of the line box (positive).
	Descent int

	// Height is the recommended distance between consecutive baselines.
	Height int
}

// LineHeight returns Height, or Ascent+Descent when the font reports no height.
func (m Metrics) LineHeight() int {
	if m.Height > 0 {
		return m.Height
	}
	return m.Ascent + m.Descent
}

func metricsFrom(m font.Metrics) Metrics {
	return Metrics{
		Ascent:  m.Ascent.Ceil(),
		Descent: m.Descent.Ceil(),
		Height:  m.Height.Ceil(),
	}
}
