// Package store persists submitted messages.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no message has the requested id.
var ErrNotFound = errors.New("store: message not found")

// Message is a stored submission.
type Message struct {
	ID              string    `json:"id"`
	PostID          string    `json:"post_id"`
	Text            string    `json:"text"`
	UserIdentifier  string    `json:"user_identifier"`
	CreatedAt       time.Time `json:"created_at"`
	InstagramPostID string    `json:"instagram_post_id,omitempty"`
}

// NewMessage is the caller-supplied part of a Message.
type NewMessage struct {
	Text           string
	UserIdentifier string
	CreatedAt      time.Time
}

// Page is one page of messages, newest first.
type Page struct {
	Messages   []Message `json:"messages"`
	TotalCount int       `json:"totalCount"`
	Page       int       `json:"page"`
	PageSize   int       `json:"pageSize"`
	TotalPages int       `json:"totalPages"`
}

// Store is the message persistence port used by the server.
type Store interface {
	Insert(ctx context.Context, m NewMessage) (string, error)
	Get(ctx context.Context, id string) (Message, error)
	List(ctx context.Context, page, pageSize int) (Page, error)
	SetInstagramID(ctx context.Context, id, instagramID string) error
}
