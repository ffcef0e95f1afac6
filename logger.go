package bubble

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler discards every record. Enabled reports false, so a render with
// no logger installed never builds the geometry attributes.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr is read by every concurrent Render and swapped by SetLogger.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger installs the logger the renderer writes to. Rendering is silent
// until it is called; pass nil to silence it again. It may be called while
// renders are in flight.
//
// Records carry the post_id of the image being drawn:
//   - [slog.LevelDebug] "bubble: rendered" with the line count and a
//     "bubble" group holding x, y, width and height of the bubble
//   - [slog.LevelWarn] when lines are dropped at the bottom of the canvas,
//     when an over-wide word is shortened to fit the bubble, and when a
//     rasterization panic is turned into a KindRender error
//
// bubblegen installs its stderr/file fan-out here, so renderer records end
// up next to the HTTP request log. Example:
//
//	bubble.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the logger installed by SetLogger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

