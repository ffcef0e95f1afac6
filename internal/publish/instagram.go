package publish

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/k1LoW/errors"
)

// Default endpoints.
const (
	DefaultGraphURL = "https://graph.facebook.com/v17.0"
	DefaultImgbbURL = "https://api.imgbb.com/1/upload"
)

// InstagramConfig holds the account credentials and endpoints.
type InstagramConfig struct {
	AccountID   string
	AccessToken string
	ImgbbAPIKey string
	// GraphURL and ImgbbURL default to the public endpoints when empty.
	GraphURL string
	ImgbbURL string
}

var _ Publisher = (*Instagram)(nil)

// Instagram publishes through the Instagram Graph API. The image is first
// uploaded to imgbb because the Graph API only accepts image URLs.
type Instagram struct {
	cfg    InstagramConfig
	client *retryablehttp.Client
	log    *slog.Logger
}

// NewInstagram creates an Instagram publisher.
func NewInstagram(cfg InstagramConfig, client *retryablehttp.Client, log *slog.Logger) *Instagram {
	if cfg.GraphURL == "" {
		cfg.GraphURL = DefaultGraphURL
	}
	if cfg.ImgbbURL == "" {
		cfg.ImgbbURL = DefaultImgbbURL
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Instagram{cfg: cfg, client: client, log: log}
}

// Publish uploads png, creates a media container with caption and publishes
// it. The returned ID is the published media id.
func (p *Instagram) Publish(ctx context.Context, png []byte, caption string) (_ Result, err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	switch {
	case p.cfg.AccessToken == "":
		return Result{}, fmt.Errorf("instagram access token is missing")
	case p.cfg.AccountID == "":
		return Result{}, fmt.Errorf("instagram account id is missing")
	case p.cfg.ImgbbAPIKey == "":
		return Result{}, fmt.Errorf("imgbb api key is missing")
	}

	imageURL, err := p.upload(ctx, png)
	if err != nil {
		return Result{}, fmt.Errorf("failed to upload image: %w", err)
	}
	p.log.Debug("uploaded image", "url", imageURL)

	creationID, err := p.graphPost(ctx, "media", url.Values{
		"image_url": {imageURL},
		"caption":   {caption},
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to create media container: %w", err)
	}
	p.log.Debug("created media container", "creation_id", creationID)

	id, err := p.graphPost(ctx, "media_publish", url.Values{
		"creation_id": {creationID},
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to publish media: %w", err)
	}
	p.log.Info("published to instagram", "id", id)
	return Result{Success: true, ID: id}, nil
}

type imgbbResponse struct {
	Success bool `json:"success"`
	Data    struct {
		URL string `json:"url"`
	} `json:"data"`
}

func (p *Instagram) upload(ctx context.Context, png []byte) (_ string, err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("key", p.cfg.ImgbbAPIKey); err != nil {
		return "", err
	}
	if err := mw.WriteField("image", base64.StdEncoding.EncodeToString(png)); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, p.cfg.ImgbbURL, body.Bytes())
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out imgbbResponse
	if err := p.do(req, &out); err != nil {
		return "", err
	}
	if !out.Success || out.Data.URL == "" {
		return "", fmt.Errorf("imgbb did not return an image url")
	}
	return out.Data.URL, nil
}

type graphResponse struct {
	ID    string `json:"id"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// graphPost posts params to {graph}/{account}/{edge} and returns the id in
// the response.
func (p *Instagram) graphPost(ctx context.Context, edge string, params url.Values) (_ string, err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	params.Set("access_token", p.cfg.AccessToken)
	u := fmt.Sprintf("%s/%s/%s?%s", p.cfg.GraphURL, url.PathEscape(p.cfg.AccountID), edge, params.Encode())

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, u, nil)
	if err != nil {
		return "", err
	}
	var out graphResponse
	if err := p.do(req, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", fmt.Errorf("graph api %s returned no id", edge)
	}
	return out.ID, nil
}

// do sends req and decodes a JSON body into v. Non-2xx responses become
// errors carrying the API's error message when it has one.
func (p *Instagram) do(req *retryablehttp.Request, v any) (err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr graphResponse
		if json.Unmarshal(b, &apiErr) == nil && apiErr.Error != nil && apiErr.Error.Message != "" {
			return fmt.Errorf("%s: %s", resp.Status, apiErr.Error.Message)
		}
		return fmt.Errorf("%s", resp.Status)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
