package bubble

import "errors"

// Sentinel errors matched by RenderError through errors.Is.
var (
	// ErrInvalidInput reports a missing or unusable text, post id or time label.
	ErrInvalidInput = errors.New("bubble: invalid input")

	// ErrResourceLoad reports that the fonts could not be loaded.
	ErrResourceLoad = errors.New("bubble: resource load failure")

	// ErrRender reports an unexpected failure while rasterizing or encoding.
	ErrRender = errors.New("bubble: render failure")
)

// Kind classifies a RenderError.
type Kind uint8

const (
	KindInvalidInput Kind = iota
	KindResourceLoad
	KindRender
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "InvalidInput"
	case KindResourceLoad:
		return "ResourceLoadFailure"
	case KindRender:
		return "RenderFailure"
	default:
		return "Unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindInvalidInput:
		return ErrInvalidInput
	case KindResourceLoad:
		return ErrResourceLoad
	default:
		return ErrRender
	}
}

// RenderError is returned by every failing render. Message is meant for
// humans; Err, when set, is the underlying cause.
type RenderError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *RenderError) Error() string {
	if e.Err != nil {
		return "bubble: " + e.Message + ": " + e.Err.Error()
	}
	return "bubble: " + e.Message
}

// Unwrap returns the underlying cause.
func (e *RenderError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e.Kind.
func (e *RenderError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// Details returns the cause text, or "" when there is none.
func (e *RenderError) Details() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func invalidInput(msg string) error {
	return &RenderError{Kind: KindInvalidInput, Message: msg}
}
