// Package search wraps the web search provider (a Tavily-compatible HTTP
// API) behind the Provider interface the tool catalog consumes.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ovokpus/PostAssist/pkg/apperr"
	"github.com/ovokpus/PostAssist/pkg/config"
)

// Provider executes one web search and returns a formatted result block.
type Provider interface {
	Search(ctx context.Context, query string) (string, error)
}

// Client calls the Tavily search API. Safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	maxResults int
}

// NewClient creates a search client from configuration.
func NewClient(cfg config.SearchConfig) *Client {
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		maxResults: maxResults,
	}
}

// Configured reports whether provider credentials are present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

type searchRequest struct {
	APIKey     string `json:"api_key"`
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type searchResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// Search implements Provider. Results are flattened to a readable block
// the LLM can digest.
func (c *Client) Search(ctx context.Context, query string) (string, error) {
	body, err := json.Marshal(searchRequest{
		APIKey:     c.apiKey,
		Query:      query,
		MaxResults: c.maxResults,
	})
	if err != nil {
		return "", apperr.Wrap(apperr.KindSerialization, err, "encoding search request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, err, "building search request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := apperr.FromContext(ctx); ctxErr != nil {
			return "", ctxErr
		}
		return "", apperr.Wrap(apperr.KindUnavailable, err, "search provider request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", apperr.New(apperr.KindUnavailable, "search provider returned %d: %s",
			resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", apperr.Wrap(apperr.KindSerialization, err, "decoding search response")
	}

	if len(decoded.Results) == 0 {
		return "No results found for: " + query, nil
	}

	var sb strings.Builder
	for i, result := range decoded.Results {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "- %s (%s)\n  %s\n", result.Title, result.URL, result.Content)
	}
	return sb.String(), nil
}
