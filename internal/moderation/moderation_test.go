package moderation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type fakeScorer struct {
	scores Scores
	err    error
	calls  int
}

func (f *fakeScorer) Score(ctx context.Context, text string) (Scores, error) {
	f.calls++
	return f.scores, f.err
}

func TestChecker_Check(t *testing.T) {
	c := New(Config{Words: NewWordCache(StaticWords{"Darn ", ""}, 0, nil)})

	tests := []struct {
		name string
		in   string
		want Result
	}{
		{"empty", "", Result{Message: MsgRequired}},
		{"too short", "short", Result{Message: "Message must be at least 10 characters long"}},
		{"too short after trim", "   hi there!   ", Result{Message: "Message must be at least 10 characters long"}},
		{"counted in runes", strings.Repeat("é", 9), Result{Message: "Message must be at least 10 characters long"}},
		{"too long", strings.Repeat("a", 501), Result{Message: "Message cannot exceed 500 characters"}},
		{"max length", strings.Repeat("a", 500), Result{Valid: true, SanitizedText: strings.Repeat("a", 500)}},
		{"html tag", "hello <b>world</b>", Result{Message: MsgMarkup}},
		{"javascript url", "go to javascript:alert(1)", Result{Message: MsgMarkup}},
		{"event handler", "img onload=steal cookies", Result{Message: MsgMarkup}},
		{"sql keyword", "please Select all of them", Result{Message: MsgDisallowed}},
		{"sql comment", "wait -- what is this", Result{Message: MsgDisallowed}},
		{"semicolon", "hello; how are you", Result{Message: MsgDisallowed}},
		{"keyword inside word", "the selection was great", Result{Valid: true, SanitizedText: "the selection was great"}},
		{"blocked word", "what the DARN thing", Result{Message: MsgInappropriate}},
		{"disguised with symbols", "what the d4a*rn thing", Result{Message: MsgInappropriate}},
		{"disguised with repeats", "daaaarrrn it all now", Result{Message: MsgInappropriate}},
		{"sanitized mention", "  hello @friend, nice day  ", Result{Valid: true, SanitizedText: "hello (at)friend, nice day"}},
		{"apostrophes kept", "it's a lovely day out", Result{Valid: true, SanitizedText: "it's a lovely day out"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Check(context.Background(), tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Check(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestChecker_CustomLengths(t *testing.T) {
	c := New(Config{MinLength: 2, MaxLength: 4})
	if got := c.Check(context.Background(), "a"); got.Message != "Message must be at least 2 characters long" {
		t.Errorf("Message = %q", got.Message)
	}
	if got := c.Check(context.Background(), "abcde"); got.Message != "Message cannot exceed 4 characters" {
		t.Errorf("Message = %q", got.Message)
	}
	if got := c.Check(context.Background(), "abc"); !got.Valid {
		t.Errorf("abc should be valid: %+v", got)
	}
}

func TestChecker_Scorer(t *testing.T) {
	tests := []struct {
		name   string
		scorer *fakeScorer
		valid  bool
	}{
		{"clean", &fakeScorer{scores: Scores{Toxicity: 0.1}}, true},
		{"toxic", &fakeScorer{scores: Scores{Toxicity: 0.71}}, false},
		{"severe", &fakeScorer{scores: Scores{SevereToxicity: 0.51}}, false},
		{"identity", &fakeScorer{scores: Scores{IdentityAttack: 0.6}}, false},
		{"insult", &fakeScorer{scores: Scores{Insult: 0.9}}, false},
		{"profanity", &fakeScorer{scores: Scores{Profanity: 0.75}}, false},
		{"at threshold", &fakeScorer{scores: Scores{Toxicity: 0.7, SevereToxicity: 0.5}}, true},
		{"api error ignored", &fakeScorer{err: errors.New("quota exceeded")}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(Config{Scorer: tt.scorer})
			got := c.Check(context.Background(), "a perfectly normal message")
			if got.Valid != tt.valid {
				t.Errorf("Valid = %v, want %v (%+v)", got.Valid, tt.valid, got)
			}
			if !tt.valid && got.Message != MsgInappropriate {
				t.Errorf("Message = %q, want %q", got.Message, MsgInappropriate)
			}
			if tt.scorer.calls != 1 {
				t.Errorf("scorer called %d times, want 1", tt.scorer.calls)
			}
		})
	}
}

func TestChecker_ScorerSkippedOnEarlierFailure(t *testing.T) {
	s := &fakeScorer{}
	c := New(Config{Scorer: s})
	c.Check(context.Background(), "<b>bold move</b>")
	if s.calls != 0 {
		t.Error("scorer should not run when a local rule already failed")
	}
}

func TestNormalizeForMatch(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"baaad", "bad"},
		{"b.a.d", "bad"},
		{"b4d 99 words", "bd words"},
		{"café", "cafe"},
		{"ｂａｄ", "bad"},
		{"all good", "al god"},
	}
	for _, tt := range tests {
		if got := NormalizeForMatch(tt.in); got != tt.want {
			t.Errorf("NormalizeForMatch(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitize(t *testing.T) {
	if got := Sanitize("@a and @b"); got != "(at)a and (at)b" {
		t.Errorf("Sanitize = %q", got)
	}
}
