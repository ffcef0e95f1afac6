package bubble

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/looptalks/bubble/text"
)

// Renderer turns a message into a post image.
//
// A Renderer holds only read-only state and is safe for concurrent use;
// every call allocates and owns its own Canvas.
type Renderer struct {
	fonts *text.FontSet
	style Style
}

// NewRenderer creates a Renderer. Fonts default to the shared Go Mono set.
func NewRenderer(opts ...Option) (*Renderer, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	fonts := o.fonts
	if fonts == nil {
		var err error
		fonts, err = text.DefaultFontSet()
		if err != nil {
			return nil, &RenderError{Kind: KindResourceLoad, Message: "failed to load fonts", Err: err}
		}
	}
	if fonts.Body == nil || fonts.Small == nil {
		return nil, &RenderError{Kind: KindResourceLoad, Message: "font set is incomplete"}
	}
	if o.style.Handle == "" {
		o.style.Handle = DefaultHandle
	}

	return &Renderer{fonts: fonts, style: o.style}, nil
}

// Render draws the post image and encodes it as PNG.
// Identical inputs always produce identical bytes.
func (r *Renderer) Render(msg, postID, timeLabel string) ([]byte, error) {
	c, err := r.Draw(msg, postID, timeLabel)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := c.EncodePNG(&buf); err != nil {
		return nil, &RenderError{Kind: KindRender, Message: "failed to encode image", Err: err}
	}
	return buf.Bytes(), nil
}

// Draw runs the render pipeline and returns the finished canvas:
// canvas initialization, wrapping, bubble layout and rasterization, then
// text composition. On error no canvas is returned.
func (r *Renderer) Draw(msg, postID, timeLabel string) (c *Canvas, err error) {
	if err := validate(msg, postID, timeLabel); err != nil {
		return nil, err
	}

	defer func() {
		if p := recover(); p != nil {
			Logger().Warn("bubble: recovered render panic", "panic", p)
			c = nil
			err = &RenderError{Kind: KindRender, Message: "unexpected failure during rasterization", Err: fmt.Errorf("panic: %v", p)}
		}
	}()

	postID = text.Normalize(strings.TrimSpace(postID), r.fonts.Body)
	timeLabel = text.Normalize(strings.TrimSpace(timeLabel), r.fonts.Small)

	c = r.initCanvas()

	lines, clipped, narrowed := r.lines(msg)
	if len(lines) == 0 {
		return nil, invalidInput("text has no printable words")
	}
	if clipped {
		Logger().Warn("bubble: message clipped to fit canvas", "post_id", postID, "lines", len(lines))
	}
	if narrowed {
		Logger().Warn("bubble: over-wide word shortened to fit bubble", "post_id", postID)
	}

	g := Layout(lines, r.fonts.Body)
	FillRoundedRect(c, g, r.style.Bubble)

	if err := r.composite(c, g, lines, postID, timeLabel); err != nil {
		return nil, err
	}

	Logger().Debug("bubble: rendered",
		"post_id", postID,
		"lines", len(lines),
		slog.Group("bubble", "x", g.X, "y", g.Y, "width", g.Width, "height", g.Height),
	)
	return c, nil
}

// Lines returns the display lines msg is drawn with, after normalization,
// wrapping and clipping. No returned line is wider than MaxLineWidth.
func (r *Renderer) Lines(msg string) []string {
	lines, _, _ := r.lines(msg)
	return lines
}

// lines reports separately whether lines were dropped at the bottom and
// whether an over-wide word was shortened.
func (r *Renderer) lines(msg string) (lines []string, clipped, narrowed bool) {
	body := text.Normalize(strings.TrimSpace(msg), r.fonts.Body)
	lines = text.Wrap(body, MaxTextWidth, r.fonts.Body)
	lines, clipped = ClipLines(lines, MaxLines(r.fonts.Small.Metrics().LineHeight()), MaxTextWidth, r.fonts.Body)
	lines, narrowed = FitLines(lines, MaxLineWidth, r.fonts.Body)
	return lines, clipped, narrowed
}

// initCanvas fills the background, the header band and its bottom border.
func (r *Renderer) initCanvas() *Canvas {
	c := NewCanvas(CanvasSize, CanvasSize)
	c.Clear(r.style.Background)
	c.FillRect(0, 0, CanvasSize, HeaderHeight, r.style.Header)
	c.FillRect(0, HeaderHeight-BorderHeight, CanvasSize, BorderHeight, r.style.Border)
	return c
}

// composite draws the header labels, the wrapped lines and the time label.
func (r *Renderer) composite(c *Canvas, g Geometry, lines []string, postID, timeLabel string) error {
	body, small := r.fonts.Body, r.fonts.Small

	type label struct {
		s    string
		face *text.Face
		x, y int
	}
	labels := make([]label, 0, len(lines)+3)
	labels = append(labels,
		label{"#" + postID, body, HeaderMargin, HeaderTextY},
		label{r.style.Handle, body, CanvasSize - body.Width(r.style.Handle) - HeaderMargin, HeaderTextY},
	)
	for i, line := range lines {
		labels = append(labels, label{line, body, g.X + BubblePadding, g.Y + BubblePadding + i*LineHeight})
	}
	labels = append(labels, label{timeLabel, small, g.Right() - small.Width(timeLabel), g.Bottom() + TimeGap})

	col := r.style.Text.Color()
	for _, l := range labels {
		if err := text.Draw(c, l.s, l.face, l.x, l.y, col); err != nil {
			return &RenderError{Kind: KindRender, Message: "failed to draw text", Err: err}
		}
	}
	return nil
}

func validate(msg, postID, timeLabel string) error {
	var missing []string
	if strings.TrimSpace(msg) == "" {
		missing = append(missing, "text")
	}
	if strings.TrimSpace(postID) == "" {
		missing = append(missing, "postId")
	}
	if strings.TrimSpace(timeLabel) == "" {
		missing = append(missing, "time")
	}
	if len(missing) > 0 {
		return invalidInput("missing required parameters: " + strings.Join(missing, ", "))
	}
	return nil
}

var defaultRenderer = sync.OnceValues(func() (*Renderer, error) {
	return NewRenderer()
})

// Render renders with the default style and fonts.
func Render(msg, postID, timeLabel string) ([]byte, error) {
	if err := validate(msg, postID, timeLabel); err != nil {
		return nil, err
	}
	r, err := defaultRenderer()
	if err != nil {
		return nil, err
	}
	return r.Render(msg, postID, timeLabel)
}
