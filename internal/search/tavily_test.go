package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewTavilyProvider(t *testing.T) {
	if _, err := NewTavilyProvider("", time.Second); err == nil {
		t.Error("expected error without API key")
	}
	if _, err := NewTavilyProvider(`""`, time.Second); err == nil {
		t.Error("expected error with quoted empty API key")
	}

	p, err := NewTavilyProvider(`"tvly-test"`, time.Second)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	if p.apiKey != "tvly-test" {
		t.Errorf("quotes not stripped from API key, got %q", p.apiKey)
	}
}

func TestTavilyProvider_Search(t *testing.T) {
	var gotReq tavilyRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotReq)

		_, _ = w.Write([]byte(`{
			"results": [
				{"title": "First", "url": "https://example.com/1", "content": "snippet one", "score": 0.95},
				{"title": "Second", "url": "https://example.com/2", "content": "snippet two", "score": 0.80, "published_date": "2025-01-15"}
			]
		}`))
	}))
	defer server.Close()

	p, err := NewTavilyProvider("tvly-test", time.Second)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	p.baseURL = server.URL

	results, err := p.Search(context.Background(), Query{Text: "test topic", MaxResults: 3})
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Rank != 1 || results[1].Rank != 2 {
		t.Errorf("results not ranked in order: %+v", results)
	}
	if results[1].PublishedDate != "2025-01-15" {
		t.Errorf("published date not carried, got %q", results[1].PublishedDate)
	}

	if gotReq.Query != "test topic" {
		t.Errorf("query not forwarded, got %q", gotReq.Query)
	}
	if gotReq.MaxResults != 3 {
		t.Errorf("max results not forwarded, got %d", gotReq.MaxResults)
	}
	if gotReq.SearchDepth != string(DepthAdvanced) {
		t.Errorf("expected default advanced depth, got %q", gotReq.SearchDepth)
	}
	if !gotReq.IncludeRawContent {
		t.Error("raw content should be requested")
	}
}

func TestTavilyProvider_SearchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail": "invalid api key"}`))
	}))
	defer server.Close()

	p, err := NewTavilyProvider("tvly-bad", time.Second)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	p.baseURL = server.URL

	if _, err := p.Search(context.Background(), Query{Text: "q"}); err == nil {
		t.Error("expected error on 401")
	}
}
