package moderation

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// DefaultCacheTTL is how long a fetched word list is served before refresh.
const DefaultCacheTTL = 5 * time.Minute

// WordSource loads the blocked word list from its backing storage.
type WordSource interface {
	LoadWords(ctx context.Context) ([]string, error)
}

// StaticWords is a fixed word list.
type StaticWords []string

func (w StaticWords) LoadWords(ctx context.Context) ([]string, error) {
	return []string(w), nil
}

// FileWords reads one word per line from Path. Blank lines and lines
// starting with '#' are skipped.
type FileWords struct {
	Path string
}

func (f FileWords) LoadWords(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("moderation: open word list: %w", err)
	}
	defer file.Close()

	var words []string
	sc := bufio.NewScanner(file)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("moderation: read word list: %w", err)
	}
	return words, nil
}

// MultiSource concatenates the lists of several sources. Any failing
// source fails the load.
type MultiSource []WordSource

func (m MultiSource) LoadWords(ctx context.Context) ([]string, error) {
	var all []string
	for _, s := range m {
		words, err := s.LoadWords(ctx)
		if err != nil {
			return nil, err
		}
		all = append(all, words...)
	}
	return all, nil
}

// WordCache serves a WordSource's list for ttl before loading it again.
// When a refresh fails the previous list is kept and served; with no
// previous list the result is empty. Safe for concurrent use.
type WordCache struct {
	source WordSource
	ttl    time.Duration
	now    func() time.Time
	log    *slog.Logger

	mu      sync.Mutex
	words   []string
	fetched time.Time
}

// NewWordCache creates a cache over source. A non-positive ttl means
// DefaultCacheTTL and a nil logger is silent.
func NewWordCache(source WordSource, ttl time.Duration, log *slog.Logger) *WordCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &WordCache{source: source, ttl: ttl, now: time.Now, log: log}
}

// Words returns the lower-cased blocked words.
func (c *WordCache) Words(ctx context.Context) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if !c.fetched.IsZero() && now.Sub(c.fetched) < c.ttl {
		return c.words
	}

	words, err := c.source.LoadWords(ctx)
	if err != nil {
		c.log.Warn("failed to load blocked words, serving cached list", "error", err, "cached", len(c.words))
		return c.words
	}
	c.words = normalizeWords(words)
	c.fetched = now
	c.log.Debug("loaded blocked words", "count", len(c.words))
	return c.words
}

// Invalidate forces the next Words call to reload.
func (c *WordCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetched = time.Time{}
}
