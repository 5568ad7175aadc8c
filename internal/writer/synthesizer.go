// Package writer holds the single-completion-call stages of the pipeline:
// draft synthesis, claim extraction, critique, revision, and style. Each
// stage is one prompt, one call, one structured result; a malformed or
// absent structured response is a stage-level error the orchestrator
// surfaces rather than proceeding with empty state.
package writer

import (
	"context"
	"fmt"
	"strings"

	"ghostwriter/internal/llm"
	"ghostwriter/internal/model"
)

// draftPayload is the structured contract shared by synthesis and revision.
type draftPayload struct {
	ReportMarkdown string           `json:"report_markdown"`
	Citations      []model.Citation `json:"citations"`
}

// Synthesizer combines all research sources into the initial draft.
type Synthesizer struct {
	client    llm.Client
	modelName string
	maxTokens int
}

// NewSynthesizer creates a synthesizer using the strong model.
func NewSynthesizer(client llm.Client, modelName string, maxTokens int) *Synthesizer {
	return &Synthesizer{client: client, modelName: modelName, maxTokens: maxTokens}
}

// Synthesize produces draft version 0 from the research sources.
func (s *Synthesizer) Synthesize(ctx context.Context, topic string, sources []model.ResearchSource) (*model.Draft, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("no research sources to synthesize")
	}

	var sb strings.Builder
	for i, src := range sources {
		if i > 0 {
			sb.WriteString("\n\n---\n\n")
		}
		sb.WriteString(src.Text)
	}

	prompt := fmt.Sprintf(synthesizerPrompt, topic, sb.String())

	resp, err := s.client.Complete(ctx, llm.Request{
		Model:       s.modelName,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		MaxTokens:   s.maxTokens,
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("draft synthesis: %w", err)
	}

	var payload draftPayload
	if err := llm.DecodeJSON(resp.Text, &payload); err != nil {
		return nil, fmt.Errorf("draft synthesis: %w", err)
	}
	if strings.TrimSpace(payload.ReportMarkdown) == "" {
		return nil, fmt.Errorf("draft synthesis: empty report")
	}

	return &model.Draft{
		Version:   0,
		Text:      payload.ReportMarkdown,
		Citations: payload.Citations,
	}, nil
}
