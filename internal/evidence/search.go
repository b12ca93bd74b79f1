package evidence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"authenticity-backend/internal/content"
	"authenticity-backend/internal/shared/telemetry"
)

const (
	maxResults    = 5
	maxQueryRunes = 500
	maxErrorBody  = 300
)

// Searcher issues one search call with one credential.
type Searcher interface {
	Search(ctx context.Context, cred Credential, query string, limit int) ([]Item, error)
}

// SearchClient calls a Serper-compatible search endpoint.
type SearchClient struct {
	URL        string
	HTTPClient *http.Client
}

// NewSearchClient constructs a SearchClient for the given endpoint.
func NewSearchClient(url string) *SearchClient {
	return &SearchClient{
		URL:        url,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type searchRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num"`
}

type searchResponse struct {
	Organic []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic"`
}

// Search performs exactly one request; it never retries.
func (c *SearchClient) Search(ctx context.Context, cred Credential, query string, limit int) ([]Item, error) {
	payload, err := json.Marshal(searchRequest{Q: query, Num: limit})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-KEY", cred.Secret)
	req.Header.Set("Content-Type", "application/json")

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("search read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Status: resp.StatusCode, Body: content.TruncateRunes(strings.TrimSpace(string(body)), maxErrorBody)}
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("search response parse: %w", err)
	}
	items := make([]Item, 0, len(parsed.Organic))
	for _, r := range parsed.Organic {
		if len(items) == limit {
			break
		}
		items = append(items, Item{Title: r.Title, URL: r.Link, Snippet: r.Snippet})
	}
	return items, nil
}

// Client gathers evidence for text content with credential failover.
type Client struct {
	Searcher    Searcher
	Credentials []Credential
}

// NewClient constructs a Client over an immutable ranked credential list.
func NewClient(searcher Searcher, creds []Credential) *Client {
	cp := make([]Credential, len(creds))
	copy(cp, creds)
	return &Client{Searcher: searcher, Credentials: cp}
}

// Gather queries with the first 500 characters of the article and returns the
// first successful result set and the rank of the credential that produced it.
func (c *Client) Gather(ctx context.Context, article string) ([]Item, int, error) {
	query := content.TruncateRunes(strings.TrimSpace(article), maxQueryRunes)
	items, rank, err := TryInOrder(ctx, c.Credentials, func(ctx context.Context, cred Credential) ([]Item, error) {
		items, err := c.Searcher.Search(ctx, cred, query, maxResults)
		if err != nil {
			telemetry.Warn("evidence.attempt_failed", map[string]any{
				"rank":  cred.Rank,
				"error": err,
			})
		}
		return items, err
	})
	if err != nil {
		return nil, 0, err
	}
	return items, rank, nil
}
