// Package server exposes the renderer, moderation and publishing pipeline
// over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/looptalks/bubble/internal/moderation"
	"github.com/looptalks/bubble/internal/publish"
	"github.com/looptalks/bubble/internal/ratelimit"
	"github.com/looptalks/bubble/internal/store"
)

// TimeLayout formats the time label drawn under the bubble.
const TimeLayout = "03:04 PM"

// Renderer renders a post image as PNG.
type Renderer interface {
	Render(msg, postID, timeLabel string) ([]byte, error)
}

// Moderator validates submitted text.
type Moderator interface {
	Check(ctx context.Context, text string) moderation.Result
}

// RateLimiter decides whether a user may post and records posts. Reserve
// holds the user's slot until release is called.
type RateLimiter interface {
	Reserve(ctx context.Context, user string) (d ratelimit.Decision, release func())
	Record(ctx context.Context, user string) error
}

// Config wires a Server's collaborators. All fields except Logger and
// Location are required.
type Config struct {
	Renderer  Renderer
	Moderator Moderator
	Limiter   RateLimiter
	Store     store.Store
	Publisher publish.Publisher
	// Location is the zone time labels are formatted in; nil means UTC.
	Location *time.Location
	Logger   *slog.Logger
}

// Server handles the HTTP API.
type Server struct {
	renderer  Renderer
	moderator Moderator
	limiter   RateLimiter
	store     store.Store
	publisher publish.Publisher
	loc       *time.Location
	now       func() time.Time
	log       *slog.Logger
}

// New creates a Server.
func New(cfg Config) *Server {
	s := &Server{
		renderer:  cfg.Renderer,
		moderator: cfg.Moderator,
		limiter:   cfg.Limiter,
		store:     cfg.Store,
		publisher: cfg.Publisher,
		loc:       cfg.Location,
		now:       time.Now,
		log:       cfg.Logger,
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.log == nil {
		s.log = slog.New(slog.DiscardHandler)
	}
	return s
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/generate-image", allow(http.MethodPost, s.handleGenerateImage))
	mux.Handle("/api/check-message", allow(http.MethodPost, s.handleCheckMessage))
	mux.Handle("/api/submit-message", allow(http.MethodPost, s.handleSubmitMessage))
	mux.Handle("/api/messages", allow(http.MethodGet, s.handleMessages))
	return s.logRequests(mux)
}

// allow rejects every method but method with a JSON 405.
func allow(method string, h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			w.Header().Set("Allow", method)
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
			return
		}
		h(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
