// Package moderation validates and sanitizes submitted messages before they
// are rendered and published.
package moderation

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Length bounds applied when Config leaves them zero.
const (
	DefaultMinLength = 10
	DefaultMaxLength = 500
)

// Rejection messages returned in Result.Message.
const (
	MsgRequired      = "Message text is required"
	MsgInappropriate = "Message contains inappropriate content"
	MsgMarkup        = "HTML or script tags are not allowed"
	MsgDisallowed    = "Your message contains disallowed characters or patterns"
)

var (
	markupPattern = regexp.MustCompile(`(?i)<[^>]*>|<script|javascript:|on\w+=`)
	sqlPattern    = regexp.MustCompile(`(?i)(\b(SELECT|INSERT|UPDATE|DELETE|DROP|ALTER)\b|--|;)`)
	nonWord       = regexp.MustCompile(`[^\w\s]`)
	digits        = regexp.MustCompile(`\d`)
)

// Result is the outcome of a moderation check.
type Result struct {
	Valid         bool   `json:"valid"`
	Message       string `json:"message,omitempty"`
	SanitizedText string `json:"sanitizedText,omitempty"`
}

// WordLister supplies the current blocked word list, lower-cased.
type WordLister interface {
	Words(ctx context.Context) []string
}

// Scorer rates a text for toxicity.
type Scorer interface {
	Score(ctx context.Context, text string) (Scores, error)
}

// Config configures a Checker.
type Config struct {
	MinLength int
	MaxLength int
	// Words may be nil, meaning no blocked words.
	Words WordLister
	// Scorer may be nil, meaning no external scoring.
	Scorer Scorer
	Logger *slog.Logger
}

// Checker applies the moderation rules in order and stops at the first
// failure.
type Checker struct {
	minLength int
	maxLength int
	words     WordLister
	scorer    Scorer
	log       *slog.Logger
}

// New creates a Checker.
func New(cfg Config) *Checker {
	c := &Checker{
		minLength: cfg.MinLength,
		maxLength: cfg.MaxLength,
		words:     cfg.Words,
		scorer:    cfg.Scorer,
		log:       cfg.Logger,
	}
	if c.minLength <= 0 {
		c.minLength = DefaultMinLength
	}
	if c.maxLength <= 0 {
		c.maxLength = DefaultMaxLength
	}
	if c.log == nil {
		c.log = slog.New(slog.DiscardHandler)
	}
	return c
}

// Check validates text. Lengths are counted in runes after trimming.
func (c *Checker) Check(ctx context.Context, text string) Result {
	if text == "" {
		return reject(MsgRequired)
	}

	trimmed := strings.TrimSpace(text)
	switch n := utf8.RuneCountInString(trimmed); {
	case n < c.minLength:
		return reject(fmt.Sprintf("Message must be at least %d characters long", c.minLength))
	case n > c.maxLength:
		return reject(fmt.Sprintf("Message cannot exceed %d characters", c.maxLength))
	}

	if markupPattern.MatchString(trimmed) {
		return reject(MsgMarkup)
	}
	if sqlPattern.MatchString(trimmed) {
		return reject(MsgDisallowed)
	}

	if c.words != nil {
		if words := c.words.Words(ctx); len(words) > 0 {
			lower := strings.ToLower(trimmed)
			if containsAny(lower, words) || containsAny(NormalizeForMatch(lower), words) {
				return reject(MsgInappropriate)
			}
		}
	}

	if c.scorer != nil {
		scores, err := c.scorer.Score(ctx, trimmed)
		switch {
		case err != nil:
			c.log.Warn("toxicity scoring failed, relying on blocked words", "error", err)
		case scores.Inappropriate():
			return reject(MsgInappropriate)
		}
	}

	return Result{Valid: true, SanitizedText: Sanitize(trimmed)}
}

// Sanitize replaces every "@" with "(at)" so messages cannot mention
// accounts.
func Sanitize(s string) string {
	return strings.ReplaceAll(s, "@", "(at)")
}

// NormalizeForMatch reduces s to the form blocked words are also matched
// against: compatibility-decomposed, without punctuation or digits, and with
// runs of a repeated rune collapsed to one ("baaad" becomes "bad").
func NormalizeForMatch(s string) string {
	s = norm.NFKD.String(s)
	s = nonWord.ReplaceAllString(s, "")
	s = digits.ReplaceAllString(s, "")
	return collapseRepeats(s)
}

func collapseRepeats(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prev := utf8.RuneError
	for i, r := range s {
		if i > 0 && r == prev {
			continue
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if w != "" && strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// normalizeWords lower-cases and trims words, dropping blanks.
func normalizeWords(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimFunc(w, unicode.IsSpace))
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}

func reject(msg string) Result {
	return Result{Valid: false, Message: msg}
}
