package writer

import (
	"context"
	"fmt"
	"strings"

	"ghostwriter/internal/llm"
	"ghostwriter/internal/model"
)

// Styler applies a named style guide to the converged draft, producing the
// final report text.
type Styler struct {
	client    llm.Client
	modelName string
	maxTokens int
}

// NewStyler creates a styler using the strong model.
func NewStyler(client llm.Client, modelName string, maxTokens int) *Styler {
	return &Styler{client: client, modelName: modelName, maxTokens: maxTokens}
}

// Apply formats the draft per the named style guide.
func (s *Styler) Apply(ctx context.Context, draft *model.Draft, style string) (string, error) {
	guide, ok := styleGuides[style]
	if !ok {
		return "", fmt.Errorf("unknown style guide: %s", style)
	}

	prompt := fmt.Sprintf(stylerPrompt, guide, draft.Text)

	resp, err := s.client.Complete(ctx, llm.Request{
		Model:       s.modelName,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		MaxTokens:   s.maxTokens,
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("style: %w", err)
	}

	final := strings.TrimSpace(resp.Text)
	if final == "" {
		return "", fmt.Errorf("style: empty report")
	}

	return final, nil
}
