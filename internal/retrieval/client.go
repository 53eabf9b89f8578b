// Package retrieval provides the HTTP client for the semantic-retrieval
// service used by context-retrieval tasks.
package retrieval

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

const defaultTimeout = 30 * time.Second

// Passage is one scored retrieval result.
type Passage struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// Client talks to the semantic-retrieval search endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client for the given service base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

type searchRequest struct {
	Query   string `json:"query"`
	ScopeID string `json:"scope_id"`
	Limit   int    `json:"limit,omitempty"`
}

type searchResponse struct {
	Passages []Passage `json:"passages"`
}

// Retrieve returns passages relevant to the query within the given scope,
// ordered by descending score.
func (c *Client) Retrieve(ctx context.Context, query, scopeID string, limit int) ([]Passage, error) {
	body, err := json.Marshal(searchRequest{Query: query, ScopeID: scopeID, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("retrieval: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("retrieval: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("retrieval: http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("retrieval: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("retrieval: HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	var searchResp searchResponse
	if err := json.Unmarshal(respBody, &searchResp); err != nil {
		return nil, fmt.Errorf("retrieval: unmarshal response: %w", err)
	}

	return searchResp.Passages, nil
}
