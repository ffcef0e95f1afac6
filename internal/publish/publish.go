// Package publish posts rendered images to social media.
package publish

import (
	"context"
	"log/slog"
)

// Result is the outcome of a successful publish.
type Result struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
}

// Publisher posts one PNG image with a caption.
type Publisher interface {
	Publish(ctx context.Context, png []byte, caption string) (Result, error)
}

var _ Publisher = (*Noop)(nil)

// Noop logs and discards every post. It is used when no account is
// configured.
type Noop struct {
	log *slog.Logger
}

// NewNoop creates a Noop publisher. A nil logger is silent.
func NewNoop(log *slog.Logger) *Noop {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Noop{log: log}
}

func (n *Noop) Publish(ctx context.Context, png []byte, caption string) (Result, error) {
	n.log.Info("publishing disabled, dropping post", "image_bytes", len(png), "caption_length", len(caption))
	return Result{Success: true}, nil
}
