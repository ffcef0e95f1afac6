package bubble

import (
	"slices"
	"strings"

	"github.com/looptalks/bubble/text"
)

// Fixed layout of the 1080×1080 post image, in pixels.
const (
	CanvasSize   = 1080
	HeaderHeight = 100
	BorderHeight = 2

	// HeaderMargin is the horizontal inset of the header labels.
	HeaderMargin = 40
	// HeaderTextY is the top of the header labels' line box.
	HeaderTextY = 30

	BubblePadding  = 40
	MaxTextWidth   = 800
	LineHeight     = 45
	CornerRadius   = 30
	MaxBubbleWidth = CanvasSize - 2*HeaderMargin

	// MaxLineWidth is the widest line the bubble holds inside its padding.
	MaxLineWidth = MaxBubbleWidth - 2*BubblePadding

	// TimeGap is the vertical gap between the bubble and the time label.
	TimeGap = 10

	// Ellipsis marks text that was cut to fit the canvas or the bubble.
	Ellipsis = "..."
)

// Geometry is the bubble's bounding box and corner radius.
type Geometry struct {
	X, Y          int
	Width, Height int
	Radius        int
}

// Bottom returns the first row below the bubble.
func (g Geometry) Bottom() int {
	return g.Y + g.Height
}

// Right returns the first column right of the bubble.
func (g Geometry) Right() int {
	return g.X + g.Width
}

// Layout sizes the bubble around lines and centres it below the header.
//
// Width is the widest line plus padding, capped at MaxBubbleWidth.
// Height is len(lines)*LineHeight plus padding. The bubble is centred
// horizontally and vertically within the area below the header, and its top
// never rises above the header's bottom edge.
func Layout(lines []string, m text.Measurer) Geometry {
	maxLineWidth := 0
	for _, line := range lines {
		maxLineWidth = max(maxLineWidth, m.Width(line))
	}

	width := min(maxLineWidth+2*BubblePadding, MaxBubbleWidth)
	height := len(lines)*LineHeight + 2*BubblePadding
	below := CanvasSize - HeaderHeight

	return Geometry{
		X:      (CanvasSize - width) / 2,
		Y:      max(HeaderHeight, HeaderHeight+(below-height)/2),
		Width:  width,
		Height: height,
		Radius: CornerRadius,
	}
}

// MaxLines returns how many lines a centred bubble can hold while it and a
// time label of timeLineHeight pixels stay on the canvas.
func MaxLines(timeLineHeight int) int {
	// Centring splits the spare height evenly, so the bottom margin must
	// fit the gap and the label on its own.
	maxHeight := CanvasSize - HeaderHeight - 2*(TimeGap+timeLineHeight)
	return max((maxHeight-2*BubblePadding)/LineHeight, 1)
}

// ClipLines keeps at most maxLines lines. When lines are dropped the last
// kept line is shortened until it fits maxWidth with Ellipsis appended.
// The input slice is not modified.
func ClipLines(lines []string, maxLines, maxWidth int, m text.Measurer) ([]string, bool) {
	if len(lines) <= maxLines {
		return lines, false
	}

	kept := make([]string, maxLines)
	copy(kept, lines[:maxLines])
	kept[maxLines-1] = shorten(kept[maxLines-1], maxWidth, m)
	return kept, true
}

// FitLines shortens every line wider than maxWidth until it fits with
// Ellipsis appended. Wrapping only leaves such a line when a single word is
// wider than the wrap width; the word keeps its own line and loses its tail.
// The input slice is not modified.
func FitLines(lines []string, maxWidth int, m text.Measurer) ([]string, bool) {
	var fitted []string
	for i, line := range lines {
		if m.Width(line) <= maxWidth {
			continue
		}
		if fitted == nil {
			fitted = slices.Clone(lines)
		}
		fitted[i] = shorten(line, maxWidth, m)
	}
	if fitted == nil {
		return lines, false
	}
	return fitted, true
}

// shorten drops runes from the end of line until line+Ellipsis fits maxWidth.
func shorten(line string, maxWidth int, m text.Measurer) string {
	r := []rune(line)
	for len(r) > 0 && m.Width(string(r)+Ellipsis) > maxWidth {
		r = r[:len(r)-1]
	}
	return strings.TrimRight(string(r), " ") + Ellipsis
}
