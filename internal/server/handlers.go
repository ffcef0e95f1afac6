package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/looptalks/bubble"
)

type generateRequest struct {
	Text   string `json:"text"`
	PostID string `json:"postId"`
	Time   string `json:"time"`
}

func (s *Server) handleGenerateImage(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body format", err)
		return
	}
	if strings.TrimSpace(req.Text) == "" || strings.TrimSpace(req.PostID) == "" || strings.TrimSpace(req.Time) == "" {
		writeError(w, http.StatusBadRequest, "Missing required parameters", nil)
		return
	}

	png, err := s.renderer.Render(req.Text, req.PostID, req.Time)
	if err != nil {
		if errors.Is(err, bubble.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, "Invalid input", err)
			return
		}
		s.log.Error("image generation failed", "post_id", req.PostID, "error", err)
		writeError(w, http.StatusInternalServerError, "Image generation failed", err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

type textRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleCheckMessage(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body format", err)
		return
	}
	res := s.moderator.Check(r.Context(), req.Text)
	status := http.StatusOK
	if !res.Valid {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, res)
}

func (s *Server) handleSubmitMessage(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body format", err)
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "Missing required field: text", nil)
		return
	}

	res, apiErr := s.Submit(r.Context(), req.Text, userIdentifier(r))
	if apiErr != nil {
		apiErr.write(w)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := positiveInt(q.Get("page"), 1)
	pageSize := positiveInt(q.Get("pageSize"), 10)

	p, err := s.store.List(r.Context(), page, pageSize)
	if err != nil {
		s.log.Error("failed to list messages", "error", err)
		writeError(w, http.StatusInternalServerError, "Server error retrieving messages", nil)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// userIdentifier picks the first of the Client-Ip, X-Forwarded-For and
// User-Agent headers that is set, then the remote address.
func userIdentifier(r *http.Request) string {
	for _, h := range []string{"Client-Ip", "X-Forwarded-For", "User-Agent"} {
		if v := strings.TrimSpace(r.Header.Get(h)); v != "" {
			return v
		}
	}
	return r.RemoteAddr
}

func positiveInt(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}
