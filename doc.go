// Package bubble renders a short text message as a 1080×1080 social-media
// post image.
//
// # Overview
//
// The image is a dark canvas with a header band that carries the post
// identifier and the page handle, a colored rounded-corner "chat bubble"
// sized to the word-wrapped message, and a right-aligned time label below
// the bubble.
//
// # Quick Start
//
//	import "github.com/looptalks/bubble"
//
//	png, err := bubble.Render("Hello world", "MSG001", "12:00 PM")
//	if err != nil {
//	    var rerr *bubble.RenderError
//	    if errors.As(err, &rerr) {
//	        log.Printf("%s: %s", rerr.Kind, rerr.Message)
//	    }
//	    return err
//	}
//	os.WriteFile("post.png", png, 0o644)
//
// # Pipeline
//
// Every render runs four stages in order, each reading only what the
// previous ones produced:
//
//   - canvas initialization: background, header band, header border
//   - wrapping: text.Wrap packs words into lines of at most MaxTextWidth
//   - layout: Layout sizes and centres the bubble, FillRoundedRect paints it
//   - composition: header labels, message lines and the time label
//
// # Errors
//
// Failures are returned as *RenderError. Use errors.Is with ErrInvalidInput,
// ErrResourceLoad or ErrRender to branch on the kind. A failed render never
// returns a partial image.
//
// # Coordinate System
//
//   - Origin (0,0) at top-left
//   - X increases right
//   - Y increases down
//
// # Concurrency
//
// Fonts are loaded once per process and shared read-only. A Renderer may be
// used from many goroutines at once; each call owns its canvas.
package bubble
