package writer

import (
	"context"
	"encoding/json"
	"fmt"

	"ghostwriter/internal/llm"
	"ghostwriter/internal/model"
)

// Critic produces a structured critique of a draft from its verification
// results.
type Critic struct {
	client    llm.Client
	modelName string
}

// NewCritic creates a critic using the strong model.
func NewCritic(client llm.Client, modelName string) *Critic {
	return &Critic{client: client, modelName: modelName}
}

// Critique reviews the draft against its verification report.
func (c *Critic) Critique(ctx context.Context, draft *model.Draft, report *model.VerificationReport) (*model.Critique, error) {
	reportJSON, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("critique: %w", err)
	}

	prompt := fmt.Sprintf(criticPrompt, draft.Text, string(reportJSON))

	resp, err := c.client.Complete(ctx, llm.Request{
		Model:       c.modelName,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		MaxTokens:   2000,
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("critique: %w", err)
	}

	var critique model.Critique
	if err := llm.DecodeJSON(resp.Text, &critique); err != nil {
		return nil, fmt.Errorf("critique: %w", err)
	}

	return &critique, nil
}
