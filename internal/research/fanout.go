// Package research implements the parallel fan-out that gathers source
// material before any drafting occurs.
package research

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ghostwriter/internal/llm"
	"ghostwriter/internal/model"
	"ghostwriter/internal/search"
	"ghostwriter/internal/session"
)

// angles spread the workers across different facets of the topic so the
// fan-out yields distinct sources instead of N copies of the same page.
var angles = []string{
	"overview",
	"recent developments",
	"criticism and risks",
	"statistics and data",
	"history and background",
}

const researcherPrompt = `You are a research assistant evaluating web search results on a topic.

TOPIC: %s
RESEARCH ANGLE: %s

SEARCH RESULTS:
%s

TASK:
Pick the single most authoritative and relevant result and distill it into a
source document. Quote key passages verbatim as excerpts; do not paraphrase
inside quotes.

Respond with JSON ONLY:
{
  "url": "the chosen result's URL",
  "title": "the chosen result's title",
  "source_type": "news|academic|documentation|blog|other",
  "date_published": "YYYY-MM-DD or empty if unknown",
  "excerpts": "2-4 verbatim passages, each on its own line prefixed with '- '",
  "summary": "3-5 sentence summary of what this source establishes about the topic"
}`

// FanOut runs N research workers concurrently, each producing one source
// document in the session workspace. Workers fail independently; the stage
// fails only when every worker does.
type FanOut struct {
	provider   search.Provider
	client     llm.Client
	modelName  string
	workers    int
	maxResults int
	depth      search.Depth
	logger     *zap.Logger
}

// NewFanOut creates a fan-out with the given worker count.
func NewFanOut(provider search.Provider, client llm.Client, cfg *model.Config, logger *zap.Logger) *FanOut {
	return &FanOut{
		provider:   provider,
		client:     client,
		modelName:  cfg.LLM.FastModel,
		workers:    cfg.Researchers,
		maxResults: cfg.Search.MaxResults,
		depth:      search.Depth(cfg.Search.Depth),
		logger:     logger,
	}
}

// Run executes the fan-out for topic and reports how many workers
// succeeded. Zero successful workers is a fatal stage error; partial
// success is not.
func (f *FanOut) Run(ctx context.Context, topic string, ws *session.Workspace) (succeeded int, err error) {
	var successes atomic.Int32

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < f.workers; i++ {
		id := i + 1
		g.Go(func() error {
			// Errors stay local to the worker: record, log, move on
			if workerErr := f.runWorker(gctx, id, topic, ws); workerErr != nil {
				f.logger.Warn("research worker failed", zap.Int("researcher", id), zap.Error(workerErr))
				ws.Log(fmt.Sprintf("Researcher %d failed: %v", id, workerErr))
				return nil
			}
			successes.Add(1)
			ws.Log(fmt.Sprintf("Researcher %d completed", id))
			return nil
		})
	}
	_ = g.Wait()

	succeeded = int(successes.Load())
	ws.Log(fmt.Sprintf("Research complete: %d/%d researchers succeeded", succeeded, f.workers))

	if succeeded == 0 {
		return 0, fmt.Errorf("all %d research workers failed", f.workers)
	}
	return succeeded, nil
}

type sourcePayload struct {
	URL           string `json:"url"`
	Title         string `json:"title"`
	SourceType    string `json:"source_type"`
	DatePublished string `json:"date_published"`
	Excerpts      string `json:"excerpts"`
	Summary       string `json:"summary"`
}

func (f *FanOut) runWorker(ctx context.Context, id int, topic string, ws *session.Workspace) error {
	angle := angles[(id-1)%len(angles)]
	query := fmt.Sprintf("%s %s", topic, angle)

	results, err := f.provider.Search(ctx, search.Query{
		Text:       query,
		MaxResults: f.maxResults,
		Depth:      f.depth,
	})
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if len(results) == 0 {
		return fmt.Errorf("search returned no results for %q", query)
	}

	var resultText string
	for _, r := range results {
		resultText += fmt.Sprintf("[%d] %s\n%s\n%s\n\n", r.Rank, r.Title, r.URL, r.Content)
	}

	prompt := fmt.Sprintf(researcherPrompt, topic, angle, resultText)
	resp, err := f.client.Complete(ctx, llm.Request{
		Model:       f.modelName,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		MaxTokens:   1500,
		Temperature: 0.3,
	})
	if err != nil {
		return fmt.Errorf("summarize: %w", err)
	}

	var payload sourcePayload
	if err := llm.DecodeJSON(resp.Text, &payload); err != nil {
		return fmt.Errorf("summarize: %w", err)
	}
	if payload.URL == "" {
		return fmt.Errorf("summarize: no source URL selected")
	}

	doc := FormatSourceMarkdown(
		payload.URL,
		payload.Title,
		payload.DatePublished,
		time.Now().Format("2006-01-02"),
		payload.SourceType,
		payload.Excerpts,
		payload.Summary,
	)

	// Each worker owns its own file; writers never contend
	rel := filepath.Join(session.DirResearch, fmt.Sprintf("source_%02d.md", id))
	return ws.SaveText(rel, doc)
}
