package moderation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type countingSource struct {
	words []string
	err   error
	calls int
}

func (s *countingSource) LoadWords(ctx context.Context) ([]string, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.words, nil
}

func TestWordCache_TTL(t *testing.T) {
	src := &countingSource{words: []string{"Foo", " BAR "}}
	c := NewWordCache(src, time.Minute, nil)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }
	ctx := context.Background()

	if diff := cmp.Diff([]string{"foo", "bar"}, c.Words(ctx)); diff != "" {
		t.Errorf("Words mismatch (-want +got):\n%s", diff)
	}
	c.Words(ctx)
	if src.calls != 1 {
		t.Errorf("source loaded %d times within ttl, want 1", src.calls)
	}

	c.now = func() time.Time { return base.Add(time.Minute) }
	src.words = []string{"baz"}
	if diff := cmp.Diff([]string{"baz"}, c.Words(ctx)); diff != "" {
		t.Errorf("Words after ttl mismatch (-want +got):\n%s", diff)
	}
	if src.calls != 2 {
		t.Errorf("source loaded %d times, want 2", src.calls)
	}
}

func TestWordCache_ServesStaleOnError(t *testing.T) {
	src := &countingSource{words: []string{"foo"}}
	c := NewWordCache(src, time.Minute, nil)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }
	ctx := context.Background()
	c.Words(ctx)

	src.err = errors.New("db down")
	c.now = func() time.Time { return base.Add(2 * time.Minute) }
	if diff := cmp.Diff([]string{"foo"}, c.Words(ctx)); diff != "" {
		t.Errorf("stale Words mismatch (-want +got):\n%s", diff)
	}

	// The failed refresh does not extend freshness.
	c.Words(ctx)
	if src.calls != 3 {
		t.Errorf("source loaded %d times, want 3", src.calls)
	}
}

func TestWordCache_EmptyOnFirstError(t *testing.T) {
	c := NewWordCache(&countingSource{err: errors.New("db down")}, 0, nil)
	if got := c.Words(context.Background()); len(got) != 0 {
		t.Errorf("Words = %v, want empty", got)
	}
}

func TestWordCache_Invalidate(t *testing.T) {
	src := &countingSource{words: []string{"foo"}}
	c := NewWordCache(src, time.Hour, nil)
	c.Words(context.Background())
	c.Invalidate()
	c.Words(context.Background())
	if src.calls != 2 {
		t.Errorf("source loaded %d times, want 2", src.calls)
	}
}

func TestFileWords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blocked.txt")
	content := "# blocked words\nfoo\n\n  bar  \n#baz\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := FileWords{Path: path}.LoadWords(context.Background())
	if err != nil {
		t.Fatalf("LoadWords failed: %v", err)
	}
	if diff := cmp.Diff([]string{"foo", "bar"}, got); diff != "" {
		t.Errorf("LoadWords mismatch (-want +got):\n%s", diff)
	}

	if _, err := (FileWords{Path: filepath.Join(t.TempDir(), "missing")}).LoadWords(context.Background()); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v, want os.ErrNotExist", err)
	}
}

func TestMultiSource(t *testing.T) {
	m := MultiSource{StaticWords{"a"}, StaticWords{"b", "c"}}
	got, err := m.LoadWords(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, got); diff != "" {
		t.Errorf("LoadWords mismatch (-want +got):\n%s", diff)
	}

	m = append(m, &countingSource{err: errors.New("boom")})
	if _, err := m.LoadWords(context.Background()); err == nil {
		t.Error("expected error from failing source")
	}
}
