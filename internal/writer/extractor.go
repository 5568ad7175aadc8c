package writer

import (
	"context"
	"encoding/json"
	"fmt"

	"ghostwriter/internal/llm"
	"ghostwriter/internal/model"
)

// Extractor turns a draft into an ordered list of atomic claims, each
// paired with its cited URL.
type Extractor struct {
	client    llm.Client
	modelName string
}

// NewExtractor creates an extractor using the fast model.
func NewExtractor(client llm.Client, modelName string) *Extractor {
	return &Extractor{client: client, modelName: modelName}
}

type extractPayload struct {
	Claims []struct {
		ID   int    `json:"id"`
		Text string `json:"text"`
		URL  string `json:"url"`
	} `json:"claims"`
}

// Extract returns the claims of a draft, tagged with its version.
func (e *Extractor) Extract(ctx context.Context, draft *model.Draft) ([]model.Claim, error) {
	citations, err := json.MarshalIndent(draft.Citations, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("claim extraction: %w", err)
	}

	prompt := fmt.Sprintf(extractorPrompt, draft.Text, string(citations))

	resp, err := e.client.Complete(ctx, llm.Request{
		Model:       e.modelName,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		MaxTokens:   4000,
		Temperature: 0.0,
	})
	if err != nil {
		return nil, fmt.Errorf("claim extraction: %w", err)
	}

	var payload extractPayload
	if err := llm.DecodeJSON(resp.Text, &payload); err != nil {
		return nil, fmt.Errorf("claim extraction: %w", err)
	}

	claims := make([]model.Claim, 0, len(payload.Claims))
	for i, c := range payload.Claims {
		id := c.ID
		if id == 0 {
			id = i + 1
		}
		claims = append(claims, model.Claim{
			ID:           id,
			DraftVersion: draft.Version,
			Text:         c.Text,
			URL:          c.URL,
		})
	}

	return claims, nil
}
