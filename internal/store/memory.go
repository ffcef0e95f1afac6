package store

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Compile-time interface check.
var _ Store = (*Memory)(nil)

// Memory is an in-memory message store. Safe for concurrent access.
type Memory struct {
	mu       sync.RWMutex
	messages map[string]*Message
	seq      int
	now      func() time.Time
	log      *slog.Logger
}

// NewMemory creates an empty in-memory store. A nil logger is silent.
func NewMemory(log *slog.Logger) *Memory {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Memory{
		messages: make(map[string]*Message),
		now:      time.Now,
		log:      log,
	}
}

// Insert stores m and returns its id. Post ids are assigned in insertion
// order as MSG001, MSG002, and so on. A zero CreatedAt is set to now.
func (s *Memory) Insert(ctx context.Context, m NewMessage) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	msg := &Message{
		ID:             uuid.NewString(),
		PostID:         fmt.Sprintf("MSG%03d", s.seq),
		Text:           m.Text,
		UserIdentifier: m.UserIdentifier,
		CreatedAt:      m.CreatedAt,
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = s.now()
	}
	s.messages[msg.ID] = msg
	s.log.Debug("inserted message", "id", msg.ID, "post_id", msg.PostID)
	return msg.ID, nil
}

// Get returns the message with the given id.
func (s *Memory) Get(ctx context.Context, id string) (Message, error) {
	if err := ctx.Err(); err != nil {
		return Message{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	msg, ok := s.messages[id]
	if !ok {
		return Message{}, ErrNotFound
	}
	return *msg, nil
}

// List returns page (1-based) of size pageSize, newest first.
// Non-positive arguments fall back to page 1 and 10 per page.
func (s *Memory) List(ctx context.Context, page, pageSize int) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	s.mu.RLock()
	all := make([]Message, 0, len(s.messages))
	for _, m := range s.messages {
		all = append(all, *m)
	}
	s.mu.RUnlock()

	slices.SortFunc(all, func(a, b Message) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.PostID, a.PostID)
	})

	p := Page{
		Messages:   []Message{},
		TotalCount: len(all),
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (len(all) + pageSize - 1) / pageSize,
	}
	offset := (page - 1) * pageSize
	if offset < len(all) {
		p.Messages = all[offset:min(offset+pageSize, len(all))]
	}
	return p, nil
}

// SetInstagramID records the published post id for message id.
func (s *Memory) SetInstagramID(ctx context.Context, id, instagramID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	msg, ok := s.messages[id]
	if !ok {
		return ErrNotFound
	}
	msg.InstagramPostID = instagramID
	s.log.Debug("stored instagram id", "id", id, "instagram_id", instagramID)
	return nil
}
