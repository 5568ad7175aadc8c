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
)

const tavilyBaseURL = "https://api.tavily.com"

// TavilyProvider implements Provider against the Tavily search API.
type TavilyProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

type tavilyRequest struct {
	APIKey            string   `json:"api_key"`
	Query             string   `json:"query"`
	MaxResults        int      `json:"max_results"`
	SearchDepth       string   `json:"search_depth"`
	IncludeRawContent bool     `json:"include_raw_content"`
	IncludeDomains    []string `json:"include_domains"`
	ExcludeDomains    []string `json:"exclude_domains"`
}

type tavilyResponse struct {
	Results []struct {
		Title         string  `json:"title"`
		URL           string  `json:"url"`
		Content       string  `json:"content"`
		RawContent    string  `json:"raw_content"`
		Score         float64 `json:"score"`
		PublishedDate string  `json:"published_date"`
	} `json:"results"`
}

// NewTavilyProvider creates a Tavily client. The API key is required; a
// missing key fails here, before any session is created.
func NewTavilyProvider(apiKey string, timeout time.Duration) (*TavilyProvider, error) {
	// Quotes sneak in via env files
	apiKey = strings.Trim(apiKey, `"'`)
	if apiKey == "" {
		return nil, fmt.Errorf("Tavily API key is required")
	}

	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &TavilyProvider{
		apiKey:     apiKey,
		baseURL:    tavilyBaseURL,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Name returns the provider name.
func (p *TavilyProvider) Name() string {
	return "tavily"
}

// Search runs one query and returns ranked results.
func (p *TavilyProvider) Search(ctx context.Context, q Query) ([]Result, error) {
	depth := q.Depth
	if depth == "" {
		depth = DepthAdvanced
	}
	maxResults := q.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}

	body, err := json.Marshal(tavilyRequest{
		APIKey:            p.apiKey,
		Query:             q.Text,
		MaxResults:        maxResults,
		SearchDepth:       string(depth),
		IncludeRawContent: true,
		IncludeDomains:    []string{},
		ExcludeDomains:    []string{},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var parsed tavilyResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	results := make([]Result, 0, len(parsed.Results))
	for i, r := range parsed.Results {
		results = append(results, Result{
			Rank:          i + 1,
			Title:         r.Title,
			URL:           r.URL,
			Content:       r.Content,
			RawContent:    r.RawContent,
			Score:         r.Score,
			PublishedDate: r.PublishedDate,
		})
	}

	return results, nil
}
