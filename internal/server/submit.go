package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/k1LoW/errors"
	"github.com/looptalks/bubble/internal/store"
)

// SubmitResult is the response to an accepted submission.
type SubmitResult struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	MessageID       string `json:"messageId"`
	InstagramPostID string `json:"instagramPostId,omitempty"`
}

// SubmitError is a failed submission step and the response it maps to.
type SubmitError struct {
	Status      int
	Message     string
	NextAllowed time.Time
	Err         error
}

func (e *SubmitError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

type rateLimitBody struct {
	Error           string    `json:"error"`
	NextAllowedTime time.Time `json:"nextAllowedTime"`
}

func (e *SubmitError) write(w http.ResponseWriter) {
	if e.Status == http.StatusTooManyRequests {
		w.Header().Set("Retry-After", fmt.Sprint(max(int(time.Until(e.NextAllowed).Seconds()), 1)))
		writeJSON(w, e.Status, rateLimitBody{Error: e.Message, NextAllowedTime: e.NextAllowed})
		return
	}
	writeError(w, e.Status, e.Message, e.Err)
}

func (s *Server) fail(status int, msg string, err error) *SubmitError {
	err = errors.WithStack(err)
	if err != nil {
		s.log.Error(msg, "error", err)
		s.log.Debug("stack traces", "stack", errors.StackTraces(err))
	}
	return &SubmitError{Status: status, Message: msg, Err: err}
}

// Submit runs a message through moderation, the rate limit, storage,
// rendering and publishing. Failures after publishing are logged and do not
// fail the submission.
func (s *Server) Submit(ctx context.Context, text, user string) (SubmitResult, *SubmitError) {
	check := s.moderator.Check(ctx, text)
	if !check.Valid {
		s.log.Info("message rejected", "user", user, "reason", check.Message)
		return SubmitResult{}, &SubmitError{Status: http.StatusBadRequest, Message: check.Message}
	}
	sanitized := check.SanitizedText
	if sanitized == "" {
		sanitized = text
	}

	d, release := s.limiter.Reserve(ctx, user)
	defer release()
	if !d.Allowed {
		s.log.Info("rate limit exceeded", "user", user, "next_allowed", d.NextAllowed, "pending", d.Pending)
		return SubmitResult{}, &SubmitError{
			Status:      http.StatusTooManyRequests,
			Message:     "You have to wait before posting a new message",
			NextAllowed: d.NextAllowed,
		}
	}

	id, err := s.store.Insert(ctx, store.NewMessage{Text: sanitized, UserIdentifier: user, CreatedAt: s.now()})
	if err != nil {
		return SubmitResult{}, s.fail(http.StatusInternalServerError, "Failed to save your message", err)
	}
	msg, err := s.store.Get(ctx, id)
	if err != nil {
		return SubmitResult{}, s.fail(http.StatusInternalServerError, "Failed to retrieve message details", err)
	}

	timeLabel := msg.CreatedAt.In(s.loc).Format(TimeLayout)
	png, err := s.renderer.Render(sanitized, msg.PostID, timeLabel)
	if err != nil {
		return SubmitResult{}, s.fail(http.StatusInternalServerError, "Failed to generate image for your message", err)
	}

	posted, err := s.publisher.Publish(ctx, png, sanitized)
	if err != nil {
		return SubmitResult{}, s.fail(http.StatusInternalServerError, "Failed to post to Instagram", err)
	}

	if err := s.limiter.Record(ctx, user); err != nil {
		s.log.Error("failed to update last post time", "user", user, "error", err)
	}
	if posted.ID != "" {
		if err := s.store.SetInstagramID(ctx, msg.ID, posted.ID); err != nil {
			s.log.Error("failed to store instagram id", "id", msg.ID, "error", err)
		}
	} else {
		s.log.Warn("no instagram post id received", "id", msg.ID)
	}

	s.log.Info("message posted", "id", msg.ID, "post_id", msg.PostID, "instagram_id", posted.ID)
	return SubmitResult{
		Success:         true,
		Message:         "Message posted successfully to Instagram",
		MessageID:       id,
		InstagramPostID: posted.ID,
	}, nil
}
