package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/looptalks/bubble"
	"github.com/looptalks/bubble/internal/moderation"
	"github.com/looptalks/bubble/internal/publish"
	"github.com/looptalks/bubble/internal/ratelimit"
	"github.com/looptalks/bubble/internal/store"
)

type renderCall struct {
	msg, postID, timeLabel string
}

type fakeRenderer struct {
	mu    sync.Mutex
	calls []renderCall
	err   error
}

func (f *fakeRenderer) Render(msg, postID, timeLabel string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, renderCall{msg, postID, timeLabel})
	if f.err != nil {
		return nil, f.err
	}
	return []byte("\x89PNG"), nil
}

type fakePublisher struct {
	mu       sync.Mutex
	captions []string
	id       string
	err      error
	// When gate is set Publish signals entered and waits for gate to close.
	entered chan struct{}
	gate    chan struct{}
}

func (f *fakePublisher) Publish(ctx context.Context, png []byte, caption string) (publish.Result, error) {
	if f.gate != nil {
		f.entered <- struct{}{}
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.captions = append(f.captions, caption)
	if f.err != nil {
		return publish.Result{}, f.err
	}
	return publish.Result{Success: true, ID: f.id}, nil
}

type testServer struct {
	*Server
	renderer  *fakeRenderer
	publisher *fakePublisher
	store     *store.Memory
	handler   http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	loc, err := time.LoadLocation("America/Vancouver")
	if err != nil {
		t.Fatal(err)
	}
	ts := &testServer{
		renderer:  &fakeRenderer{},
		publisher: &fakePublisher{id: "ig-1"},
		store:     store.NewMemory(nil),
	}
	ts.Server = New(Config{
		Renderer:  ts.renderer,
		Moderator: moderation.New(moderation.Config{Words: moderation.NewWordCache(moderation.StaticWords{"darn"}, 0, nil)}),
		Limiter:   ratelimit.New(ratelimit.NewMemoryStore(), 0, nil),
		Store:     ts.store,
		Publisher: ts.publisher,
		Location:  loc,
	})
	// 2025-03-01 20:30 UTC is 12:30 PM in Vancouver.
	ts.now = func() time.Time { return time.Date(2025, 3, 1, 20, 30, 0, 0, time.UTC) }
	ts.handler = ts.Handler()
	return ts
}

func (ts *testServer) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("response is not JSON: %v: %s", err, rec.Body.String())
	}
	return m
}

func TestGenerateImage(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(http.MethodPost, "/api/generate-image", `{"text":"Hello world","postId":"MSG001","time":"12:00 PM"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !bytes.Equal(rec.Body.Bytes(), []byte("\x89PNG")) {
		t.Errorf("body = %q", rec.Body.Bytes())
	}
	if diff := cmp.Diff([]renderCall{{"Hello world", "MSG001", "12:00 PM"}}, ts.renderer.calls, cmp.AllowUnexported(renderCall{})); diff != "" {
		t.Errorf("render calls mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateImage_Errors(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		renderErr error
		status    int
		errMsg    string
	}{
		{"missing text", `{"postId":"MSG002","time":"1:00 PM"}`, nil, 400, "Missing required parameters"},
		{"blank time", `{"text":"hi","postId":"MSG002","time":"  "}`, nil, 400, "Missing required parameters"},
		{"bad json", `{"text":`, nil, 400, "Invalid request body format"},
		{"invalid input", `{"text":"hi","postId":"MSG002","time":"1:00 PM"}`, &bubble.RenderError{Kind: bubble.KindInvalidInput, Message: "text has no printable words"}, 400, "Invalid input"},
		{"render failure", `{"text":"hi","postId":"MSG002","time":"1:00 PM"}`, &bubble.RenderError{Kind: bubble.KindRender, Message: "boom"}, 500, "Image generation failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			ts.renderer.err = tt.renderErr
			rec := ts.do(http.MethodPost, "/api/generate-image", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if got := decodeBody(t, rec)["error"]; got != tt.errMsg {
				t.Errorf("error = %v, want %q", got, tt.errMsg)
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t)
	for _, tt := range []struct{ method, path string }{
		{http.MethodGet, "/api/generate-image"},
		{http.MethodGet, "/api/check-message"},
		{http.MethodPut, "/api/submit-message"},
		{http.MethodPost, "/api/messages"},
	} {
		rec := ts.do(tt.method, tt.path, "")
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s status = %d, want 405", tt.method, tt.path, rec.Code)
		}
		if got := decodeBody(t, rec)["error"]; got != "Method not allowed" {
			t.Errorf("%s %s error = %v", tt.method, tt.path, got)
		}
	}
}

func TestCheckMessage(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/check-message", `{"text":"hello @you, nice day"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	want := map[string]any{"valid": true, "sanitizedText": "hello (at)you, nice day"}
	if diff := cmp.Diff(want, decodeBody(t, rec)); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}

	rec = ts.do(http.MethodPost, "/api/check-message", `{"text":"short"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	want = map[string]any{"valid": false, "message": "Message must be at least 10 characters long"}
	if diff := cmp.Diff(want, decodeBody(t, rec)); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmitMessage(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(http.MethodPost, "/api/submit-message", `{"text":"  hello @everyone, good day  "}`, "X-Forwarded-For", "10.0.0.1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["success"] != true || body["instagramPostId"] != "ig-1" || body["message"] != "Message posted successfully to Instagram" {
		t.Errorf("unexpected body %v", body)
	}

	id, _ := body["messageId"].(string)
	msg, err := ts.store.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("stored message: %v", err)
	}
	want := store.Message{
		ID:              id,
		PostID:          "MSG001",
		Text:            "hello (at)everyone, good day",
		UserIdentifier:  "10.0.0.1",
		CreatedAt:       ts.now(),
		InstagramPostID: "ig-1",
	}
	if diff := cmp.Diff(want, msg); diff != "" {
		t.Errorf("stored message mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]renderCall{{"hello (at)everyone, good day", "MSG001", "12:30 PM"}}, ts.renderer.calls, cmp.AllowUnexported(renderCall{})); diff != "" {
		t.Errorf("render calls mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"hello (at)everyone, good day"}, ts.publisher.captions); diff != "" {
		t.Errorf("captions mismatch (-want +got):\n%s", diff)
	}

	// Second post from the same user inside the window.
	rec = ts.do(http.MethodPost, "/api/submit-message", `{"text":"another fine message"}`, "X-Forwarded-For", "10.0.0.1")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	body = decodeBody(t, rec)
	if body["error"] != "You have to wait before posting a new message" {
		t.Errorf("error = %v", body["error"])
	}
	next, err := time.Parse(time.RFC3339, fmt.Sprint(body["nextAllowedTime"]))
	if err != nil || !next.After(time.Now()) || next.After(time.Now().Add(ratelimit.DefaultWindow)) {
		t.Errorf("nextAllowedTime = %v (%v)", body["nextAllowedTime"], err)
	}
}

func TestSubmitMessage_Failures(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		setup  func(*testServer)
		status int
		errMsg string
	}{
		{"bad json", `nope`, nil, 400, "Invalid request body format"},
		{"missing text", `{}`, nil, 400, "Missing required field: text"},
		{"moderation", `{"text":"what the darn thing"}`, nil, 400, "Message contains inappropriate content"},
		{"render", `{"text":"a perfectly fine message"}`, func(ts *testServer) { ts.renderer.err = errors.New("boom") }, 500, "Failed to generate image for your message"},
		{"publish", `{"text":"a perfectly fine message"}`, func(ts *testServer) { ts.publisher.err = errors.New("token expired") }, 500, "Failed to post to Instagram"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			if tt.setup != nil {
				tt.setup(ts)
			}
			rec := ts.do(http.MethodPost, "/api/submit-message", tt.body, "User-Agent", "test-agent")
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body.String())
			}
			if got := decodeBody(t, rec)["error"]; got != tt.errMsg {
				t.Errorf("error = %v, want %q", got, tt.errMsg)
			}
		})
	}
}

func TestSubmitMessage_PublishFailureDoesNotConsumeRateLimit(t *testing.T) {
	ts := newTestServer(t)
	ts.publisher.err = errors.New("token expired")
	ts.do(http.MethodPost, "/api/submit-message", `{"text":"a perfectly fine message"}`, "Client-Ip", "1.1.1.1")

	ts.publisher.err = nil
	rec := ts.do(http.MethodPost, "/api/submit-message", `{"text":"a perfectly fine message"}`, "Client-Ip", "1.1.1.1")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
}

func TestSubmitMessage_ConcurrentFromOneUser(t *testing.T) {
	ts := newTestServer(t)
	ts.publisher.entered = make(chan struct{}, 2)
	ts.publisher.gate = make(chan struct{})

	first := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		first <- ts.do(http.MethodPost, "/api/submit-message", `{"text":"the first of two messages"}`, "Client-Ip", "2.2.2.2")
	}()
	<-ts.publisher.entered

	rec := ts.do(http.MethodPost, "/api/submit-message", `{"text":"the second of two messages"}`, "Client-Ip", "2.2.2.2")
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d while the first post is publishing, want 429: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("429 should carry Retry-After")
	}

	close(ts.publisher.gate)
	if rec := <-first; rec.Code != http.StatusOK {
		t.Fatalf("first status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	ts.publisher.mu.Lock()
	defer ts.publisher.mu.Unlock()
	if diff := cmp.Diff([]string{"the first of two messages"}, ts.publisher.captions); diff != "" {
		t.Errorf("captions mismatch (-want +got):\n%s", diff)
	}
}

func TestMessages(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := range 3 {
		if _, err := ts.store.Insert(ctx, store.NewMessage{Text: fmt.Sprintf("m%d", i), CreatedAt: base.Add(time.Duration(i) * time.Hour)}); err != nil {
			t.Fatal(err)
		}
	}

	rec := ts.do(http.MethodGet, "/api/messages?page=1&pageSize=2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var p store.Page
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatal(err)
	}
	if p.TotalCount != 3 || p.TotalPages != 2 || p.Page != 1 || p.PageSize != 2 || len(p.Messages) != 2 || p.Messages[0].Text != "m2" {
		t.Errorf("unexpected page %+v", p)
	}

	rec = ts.do(http.MethodGet, "/api/messages?page=abc", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatal(err)
	}
	if p.Page != 1 || p.PageSize != 10 {
		t.Errorf("defaults = page %d size %d, want 1 and 10", p.Page, p.PageSize)
	}
}

func TestUserIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"client ip first", map[string]string{"Client-Ip": "1.1.1.1", "X-Forwarded-For": "2.2.2.2", "User-Agent": "ua"}, "1.1.1.1"},
		{"forwarded for", map[string]string{"X-Forwarded-For": "2.2.2.2", "User-Agent": "ua"}, "2.2.2.2"},
		{"user agent", map[string]string{"User-Agent": "ua"}, "ua"},
		{"remote addr", map[string]string{}, "192.0.2.1:1234"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", nil)
			r.Header.Del("User-Agent")
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := userIdentifier(r); got != tt.want {
				t.Errorf("userIdentifier = %q, want %q", got, tt.want)
			}
		})
	}
}
