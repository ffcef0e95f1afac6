package bubble

import "github.com/looptalks/bubble/text"

// DefaultHandle is the account handle printed in the header.
const DefaultHandle = "@LoopTalks"

// Style holds the colors and header handle of a rendered post.
type Style struct {
	Background RGBA
	Header     RGBA
	Border     RGBA
	Bubble     RGBA
	Text       RGBA
	Handle     string
}

// DefaultStyle returns the dark theme used for posts.
func DefaultStyle() Style {
	return Style{
		Background: Hex(0x1A1A1AFF),
		Header:     Hex(0x0F0F0FFF),
		Border:     Hex(0xFFFFFFFF),
		Bubble:     Hex(0xFE2C55FF),
		Text:       White,
		Handle:     DefaultHandle,
	}
}

// Option configures a Renderer during creation.
//
// Example:
//
//	r, err := bubble.NewRenderer(bubble.WithHandle("@MyPage"))
type Option func(*options)

// options holds optional configuration for Renderer creation.
type options struct {
	fonts *text.FontSet
	style Style
}

// defaultOptions returns the default renderer options.
func defaultOptions() options {
	return options{
		fonts: nil, // Will be set to text.DefaultFontSet if nil
		style: DefaultStyle(),
	}
}

// WithFonts sets the font set used for measuring and drawing.
// Without it the shared Go Mono set is loaded on first use.
func WithFonts(fonts *text.FontSet) Option {
	return func(o *options) {
		o.fonts = fonts
	}
}

// WithStyle replaces the whole style.
func WithStyle(s Style) Option {
	return func(o *options) {
		o.style = s
	}
}

// WithHandle sets the handle printed right-aligned in the header.
func WithHandle(handle string) Option {
	return func(o *options) {
		o.style.Handle = handle
	}
}
