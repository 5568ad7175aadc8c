package verify

import (
	"context"
	"fmt"

	"ghostwriter/internal/llm"
	"ghostwriter/internal/model"
)

// JudgeContentChars caps how much fetched content goes into the judgment
// prompt.
const JudgeContentChars = 4000

const judgePromptTemplate = `You are a fact-checker verifying a claim against a source.

SOURCE URL: %s

SOURCE CONTENT (TRUNCATED):
%s

CLAIM TO VERIFY:
%q

TASK:
Determine if the source content supports the claim.

INSTRUCTIONS:
1. "supported": The source explicitly states the claim or directly implies it.
2. "unsupported": The source does not mention the claim, contradicts it, or is unrelated.
3. Be strict. If the source is 404 or empty, it is unsupported.

Respond with JSON ONLY:
{
  "supported": boolean,
  "confidence": float (0.0-1.0),
  "reasoning": "brief explanation",
  "quote": "exact quote from text if supported, else null"
}`

// Judge performs the layer 3 check: an LLM call that decides whether the
// fetched content supports the claim.
type Judge struct {
	client    llm.Client
	modelName string
}

// NewJudge creates a judge using the given model.
func NewJudge(client llm.Client, modelName string) *Judge {
	return &Judge{client: client, modelName: modelName}
}

// Judge verifies one claim against its fetched source content. The content
// must be non-empty; empty content never reaches this layer.
func (j *Judge) Judge(ctx context.Context, claim, url, content string) (*model.Judgment, error) {
	if len(content) > JudgeContentChars {
		content = content[:JudgeContentChars]
	}

	prompt := fmt.Sprintf(judgePromptTemplate, url, content, claim)

	resp, err := j.client.Complete(ctx, llm.Request{
		Model:       j.modelName,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		MaxTokens:   500,
		Temperature: 0.0,
	})
	if err != nil {
		return nil, fmt.Errorf("judgment call: %w", err)
	}

	var judgment model.Judgment
	if err := llm.DecodeJSON(resp.Text, &judgment); err != nil {
		return nil, fmt.Errorf("judgment response: %w", err)
	}

	if judgment.Confidence < 0.0 {
		judgment.Confidence = 0.0
	}
	if judgment.Confidence > 1.0 {
		judgment.Confidence = 1.0
	}

	return &judgment, nil
}
