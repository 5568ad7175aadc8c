package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOllamaClient_Complete(t *testing.T) {
	var gotReq ollamaRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotReq)

		_ = json.NewEncoder(w).Encode(ollamaResponse{
			Model:           "llama3",
			Response:        "generated text",
			Done:            true,
			PromptEvalCount: 20,
			EvalCount:       30,
		})
	}))
	defer server.Close()

	client, err := NewOllamaClient(Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	resp, err := client.Complete(context.Background(), Request{
		Model:  "llama3",
		System: "sys",
		Messages: []Message{
			{Role: RoleUser, Content: "first"},
			{Role: RoleAssistant, Content: "second"},
		},
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}

	if resp.Text != "generated text" {
		t.Errorf("got %q", resp.Text)
	}
	if resp.TokensUsed != 50 {
		t.Errorf("expected 50 tokens, got %d", resp.TokensUsed)
	}
	if gotReq.Prompt != "first\n\nsecond" {
		t.Errorf("messages not flattened, got %q", gotReq.Prompt)
	}
	if gotReq.Stream {
		t.Error("streaming should be disabled")
	}
}

func TestOllamaClient_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client, err := NewOllamaClient(Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if !client.IsAvailable(context.Background()) {
		t.Error("expected available when /api/tags answers 200")
	}

	server.Close()
	if client.IsAvailable(context.Background()) {
		t.Error("expected unavailable when server is down")
	}
}

func TestOllamaClient_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model not found"}`))
	}))
	defer server.Close()

	client, err := NewOllamaClient(Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	if _, err := client.Complete(context.Background(), Request{Model: "missing"}); err == nil {
		t.Error("expected error on 404")
	}
}
