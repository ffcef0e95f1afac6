package moderation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/hashicorp/go-retryablehttp"
)

// DefaultPerspectiveURL is the Perspective comment analyzer endpoint base.
const DefaultPerspectiveURL = "https://commentanalyzer.googleapis.com"

// Scores holds the Perspective summary scores for one text.
type Scores struct {
	Toxicity       float64
	SevereToxicity float64
	IdentityAttack float64
	Insult         float64
	Profanity      float64
}

// Inappropriate reports whether any score is over its threshold.
func (s Scores) Inappropriate() bool {
	return s.Toxicity > 0.7 ||
		s.SevereToxicity > 0.5 ||
		s.IdentityAttack > 0.5 ||
		s.Insult > 0.7 ||
		s.Profanity > 0.7
}

// Perspective scores texts with the Perspective API.
type Perspective struct {
	client  *retryablehttp.Client
	baseURL string
	key     string
}

var _ Scorer = (*Perspective)(nil)

// NewPerspective creates a Perspective client. An empty baseURL means
// DefaultPerspectiveURL.
func NewPerspective(client *retryablehttp.Client, baseURL, key string) *Perspective {
	if baseURL == "" {
		baseURL = DefaultPerspectiveURL
	}
	return &Perspective{client: client, baseURL: baseURL, key: key}
}

type analyzeRequest struct {
	Comment struct {
		Text string `json:"text"`
	} `json:"comment"`
	Languages           []string            `json:"languages"`
	RequestedAttributes map[string]struct{} `json:"requestedAttributes"`
}

type analyzeResponse struct {
	AttributeScores map[string]struct {
		SummaryScore struct {
			Value float64 `json:"value"`
		} `json:"summaryScore"`
	} `json:"attributeScores"`
}

// Score requests the five attributes Scores carries for text.
func (p *Perspective) Score(ctx context.Context, text string) (Scores, error) {
	var body analyzeRequest
	body.Comment.Text = text
	body.Languages = []string{"en"}
	body.RequestedAttributes = map[string]struct{}{
		"TOXICITY":        {},
		"SEVERE_TOXICITY": {},
		"IDENTITY_ATTACK": {},
		"INSULT":          {},
		"PROFANITY":       {},
	}
	b, err := json.Marshal(body)
	if err != nil {
		return Scores{}, err
	}

	u := p.baseURL + "/v1alpha1/comments:analyze?" + url.Values{"key": {p.key}}.Encode()
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, u, b)
	if err != nil {
		return Scores{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return Scores{}, fmt.Errorf("moderation: perspective request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return Scores{}, fmt.Errorf("moderation: perspective returned %s: %s", resp.Status, msg)
	}

	var out analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Scores{}, fmt.Errorf("moderation: decode perspective response: %w", err)
	}
	score := func(attr string) float64 {
		return out.AttributeScores[attr].SummaryScore.Value
	}
	return Scores{
		Toxicity:       score("TOXICITY"),
		SevereToxicity: score("SEVERE_TOXICITY"),
		IdentityAttack: score("IDENTITY_ATTACK"),
		Insult:         score("INSULT"),
		Profanity:      score("PROFANITY"),
	}, nil
}
