package writer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ghostwriter/internal/llm"
	"ghostwriter/internal/model"
)

// Reviser produces the next draft version from the current draft, the
// critique, and the unsupported claims.
type Reviser struct {
	client    llm.Client
	modelName string
	maxTokens int
}

// NewReviser creates a reviser using the strong model.
func NewReviser(client llm.Client, modelName string, maxTokens int) *Reviser {
	return &Reviser{client: client, modelName: modelName, maxTokens: maxTokens}
}

// Revise returns a new draft with version draft.Version+1. The input draft
// is never mutated.
func (r *Reviser) Revise(ctx context.Context, draft *model.Draft, critique *model.Critique, unsupported []model.VerificationResult) (*model.Draft, error) {
	critiqueJSON, err := json.MarshalIndent(critique, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("revision: %w", err)
	}
	unsupportedJSON, err := json.MarshalIndent(unsupported, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("revision: %w", err)
	}

	prompt := fmt.Sprintf(reviserPrompt, draft.Text, string(critiqueJSON), string(unsupportedJSON))

	resp, err := r.client.Complete(ctx, llm.Request{
		Model:       r.modelName,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		MaxTokens:   r.maxTokens,
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("revision: %w", err)
	}

	var payload draftPayload
	if err := llm.DecodeJSON(resp.Text, &payload); err != nil {
		return nil, fmt.Errorf("revision: %w", err)
	}
	if strings.TrimSpace(payload.ReportMarkdown) == "" {
		return nil, fmt.Errorf("revision: empty report")
	}

	citations := payload.Citations
	if len(citations) == 0 {
		citations = draft.Citations
	}

	return &model.Draft{
		Version:   draft.Version + 1,
		Text:      payload.ReportMarkdown,
		Citations: citations,
	}, nil
}
