package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Poster publishes approved candidates to the social network. It is optional:
// when no token is configured every call returns ErrPostingDisabled and the
// reviewer falls back to posting by hand and using mark-posted.
type Poster struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewPoster(baseURL, token string) *Poster {
	return &Poster{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Enabled reports whether a posting token is configured.
func (p *Poster) Enabled() bool {
	return p.token != ""
}

type postRequest struct {
	Text string `json:"text"`
}

type postResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// Post publishes the text and returns the network's post identifier.
func (p *Poster) Post(ctx context.Context, text string) (string, error) {
	if !p.Enabled() {
		return "", ErrPostingDisabled
	}

	payload, err := json.Marshal(postRequest{Text: text})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/tweets", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.token)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("social api request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("social api status %d: %s", resp.StatusCode, string(body))
	}

	var result postResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode social api response: %w", err)
	}
	if result.Data.ID == "" {
		return "", fmt.Errorf("social api returned no post id")
	}
	return result.Data.ID, nil
}
