// Package pipeline sequences the 8-stage research-and-verification run:
// research fan-out, draft synthesis, claim extraction, verification, the
// critique/revise/re-verify loop, and final styling.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"ghostwriter/internal/cache"
	"ghostwriter/internal/llm"
	"ghostwriter/internal/model"
	"ghostwriter/internal/research"
	"ghostwriter/internal/search"
	"ghostwriter/internal/session"
	"ghostwriter/internal/verify"
	"ghostwriter/internal/writer"
)

// Pipeline owns the stage sequence, the revision sub-loop, and the session
// lifecycle. Stages communicate only through the session workspace.
type Pipeline struct {
	cfg    *model.Config
	store  *session.Store
	logger *zap.Logger

	fanout      *research.FanOut
	synthesizer *writer.Synthesizer
	extractor   *writer.Extractor
	critic      *writer.Critic
	reviser     *writer.Reviser
	styler      *writer.Styler
	engine      *verify.Engine
}

// New wires a pipeline from explicit collaborators. The search provider and
// completion client are injected so tests can substitute fakes and
// concurrent pipelines share no hidden state.
func New(cfg *model.Config, provider search.Provider, client llm.Client, logger *zap.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	store, err := session.NewStore(cfg.Workspace)
	if err != nil {
		return nil, err
	}

	var contentCache cache.Cache
	if cfg.Cache.Enabled {
		dir := cfg.Cache.Dir
		if dir == "" {
			dir = filepath.Join(cfg.Workspace, ".content-cache")
		}
		contentCache = cache.NewLayeredCache(cfg.Cache.TTL, dir, cfg.Cache.TTL)
	}

	return &Pipeline{
		cfg:         cfg,
		store:       store,
		logger:      logger,
		fanout:      research.NewFanOut(provider, client, cfg, logger),
		synthesizer: writer.NewSynthesizer(client, cfg.LLM.StrongModel, cfg.LLM.MaxTokens),
		extractor:   writer.NewExtractor(client, cfg.LLM.FastModel),
		critic:      writer.NewCritic(client, cfg.LLM.StrongModel),
		reviser:     writer.NewReviser(client, cfg.LLM.StrongModel, cfg.LLM.MaxTokens),
		styler:      writer.NewStyler(client, cfg.LLM.StrongModel, cfg.LLM.MaxTokens),
		engine:      verify.NewEngine(cfg, client, contentCache, logger),
	}, nil
}

// Store returns the session store, for listing and inspection.
func (p *Pipeline) Store() *session.Store {
	return p.store
}

// Run executes the full pipeline for topic. style overrides the configured
// style guide when non-empty. Run never panics across stage boundaries: any
// unrecoverable stage error lands the session in the failed state and is
// reported in the result.
func (p *Pipeline) Run(ctx context.Context, topic, style string) *model.RunResult {
	if style == "" {
		style = p.cfg.Style
	}
	if !model.ValidStyle(style) {
		return &model.RunResult{Success: false, Topic: topic, Error: fmt.Sprintf("unknown style guide: %s", style)}
	}

	ws, err := p.store.Create(topic)
	if err != nil {
		return &model.RunResult{Success: false, Topic: topic, Error: err.Error()}
	}

	p.logger.Info("pipeline started", zap.String("session", ws.ID()), zap.String("topic", topic))
	auditDir := filepath.Join(ws.StageDir(session.DirVerification), session.ContentDir)
	if err := os.MkdirAll(auditDir, 0755); err == nil {
		p.engine.SetAuditDir(auditDir, func(path, content string) {
			_ = os.WriteFile(path, []byte(content), 0644)
		})
	}

	result, err := p.run(ctx, ws, topic, style)
	if err != nil {
		p.logger.Error("pipeline failed", zap.String("session", ws.ID()), zap.Error(err))
		ws.Log(fmt.Sprintf("Pipeline failed: %v", err))
		_ = ws.SetError(err.Error())
		return &model.RunResult{
			Success:   false,
			SessionID: ws.ID(),
			Topic:     topic,
			Error:     err.Error(),
		}
	}
	return result
}

func (p *Pipeline) run(ctx context.Context, ws *session.Workspace, topic, style string) (*model.RunResult, error) {
	// Stage 1: research fan-out
	if err := ws.UpdateStatus(model.StatusRunning, model.StageResearch); err != nil {
		return nil, err
	}
	succeeded, err := p.fanout.Run(ctx, topic, ws)
	if err != nil {
		return nil, fmt.Errorf("research: %w", err)
	}
	ws.Checkpoint("research", map[string]int{"workers": p.cfg.Researchers, "succeeded": succeeded})

	// Stage 2: draft synthesis
	if err := ws.UpdateStatus(model.StatusRunning, model.StageDraft); err != nil {
		return nil, err
	}
	sources, err := research.LoadSources(ws)
	if err != nil {
		return nil, fmt.Errorf("draft: %w", err)
	}
	draft, err := p.synthesizer.Synthesize(ctx, topic, sources)
	if err != nil {
		return nil, err
	}
	if err := p.saveDraft(ws, session.DirDraft, draft); err != nil {
		return nil, err
	}
	ws.Checkpoint("draft", map[string]int{"version": draft.Version, "sources": len(sources)})

	// Stages 3-4: extract and verify
	report, err := p.extractAndVerify(ctx, ws, draft, session.DirExtraction, session.DirVerification)
	if err != nil {
		return nil, err
	}

	// Stages 5-7: critique, revise, re-verify while below threshold
	iterations := 0
	for report.VerificationRate < p.cfg.Threshold && iterations < p.cfg.MaxRevisions {
		iter := iterations + 1
		p.logger.Info("revision iteration",
			zap.Int("iteration", iter),
			zap.Float64("rate", report.VerificationRate),
			zap.Float64("threshold", p.cfg.Threshold),
		)

		if err := ws.UpdateStatus(model.StatusRunning, model.StageCritique); err != nil {
			return nil, err
		}
		critique, err := p.critic.Critique(ctx, draft, report)
		if err != nil {
			return nil, err
		}
		critiqueRel := filepath.Join(session.DirCritique, fmt.Sprintf("critique_iter_%02d.json", iter))
		if err := ws.SaveJSON(critiqueRel, critique); err != nil {
			return nil, err
		}
		mdRel := filepath.Join(session.DirCritique, fmt.Sprintf("critique_iter_%02d.md", iter))
		if err := ws.SaveText(mdRel, renderCritique(critique)); err != nil {
			return nil, err
		}
		ws.Checkpoint(fmt.Sprintf("critique_iter_%02d", iter), critique.Summary)

		if err := ws.UpdateStatus(model.StatusRunning, model.StageRevise); err != nil {
			return nil, err
		}
		var unsupported []model.VerificationResult
		for _, r := range report.Results {
			if !r.Verified {
				unsupported = append(unsupported, r)
			}
		}
		draft, err = p.reviser.Revise(ctx, draft, critique, unsupported)
		if err != nil {
			return nil, err
		}
		if err := p.saveDraft(ws, session.DirRevision, draft); err != nil {
			return nil, err
		}
		iterations = iter
		if err := ws.SetRevisionCount(iterations); err != nil {
			return nil, err
		}

		reverifyDir := filepath.Join(session.DirReVerification, fmt.Sprintf("iter_%02d", iter))
		report, err = p.extractAndVerify(ctx, ws, draft, reverifyDir, reverifyDir)
		if err != nil {
			return nil, err
		}
	}

	// Stage 8: style
	if err := ws.UpdateStatus(model.StatusRunning, model.StageStyle); err != nil {
		return nil, err
	}
	final, err := p.styler.Apply(ctx, draft, style)
	if err != nil {
		return nil, err
	}
	finalRel := filepath.Join(session.DirStyle, "final_report.md")
	if err := ws.SaveText(finalRel, final); err != nil {
		return nil, err
	}
	ws.Checkpoint("style", map[string]string{"style": style, "output": finalRel})

	if err := ws.UpdateStatus(model.StatusCompleted, model.StageDone); err != nil {
		return nil, err
	}
	ws.Log(fmt.Sprintf("Final report: %s", finalRel))
	p.logger.Info("pipeline completed",
		zap.String("session", ws.ID()),
		zap.Float64("rate", report.VerificationRate),
		zap.Int("revisions", iterations),
	)

	return &model.RunResult{
		Success:            true,
		SessionID:          ws.ID(),
		Topic:              topic,
		FinalReport:        filepath.Join(ws.Dir(), finalRel),
		VerificationRate:   report.VerificationRate,
		RevisionIterations: iterations,
	}, nil
}

// extractAndVerify runs the extraction and verification stages against one
// draft version, writing both artifacts under the given stage directories.
func (p *Pipeline) extractAndVerify(ctx context.Context, ws *session.Workspace, draft *model.Draft, extractDir, verifyDir string) (*model.VerificationReport, error) {
	if err := ws.UpdateStatus(model.StatusRunning, model.StageExtract); err != nil {
		return nil, err
	}
	claims, err := p.extractor.Extract(ctx, draft)
	if err != nil {
		return nil, err
	}
	claimsRel := filepath.Join(extractDir, "atomic_claims.json")
	if err := ws.SaveJSON(claimsRel, map[string]interface{}{"claims": claims}); err != nil {
		return nil, err
	}
	ws.Log(fmt.Sprintf("Extracted %d atomic claims from draft v%d", len(claims), draft.Version))

	if err := ws.UpdateStatus(model.StatusRunning, model.StageVerify); err != nil {
		return nil, err
	}
	report := p.engine.VerifyClaims(ctx, draft.Version, claims)
	reportRel := filepath.Join(verifyDir, "verification_report.json")
	if err := ws.SaveJSON(reportRel, report); err != nil {
		return nil, err
	}
	ws.Log(fmt.Sprintf("Verification: %d/%d claims supported (%.1f%%)",
		report.VerifiedClaims, report.TotalClaims, report.VerificationRate*100))
	ws.Checkpoint(fmt.Sprintf("verify_v%d", draft.Version), map[string]interface{}{
		"total":    report.TotalClaims,
		"verified": report.VerifiedClaims,
		"rate":     report.VerificationRate,
	})

	return report, nil
}

// renderCritique formats a critique as human-readable markdown next to its
// JSON artifact.
func renderCritique(c *model.Critique) string {
	var sb strings.Builder
	sb.WriteString("# Critique\n\n")
	sb.WriteString(c.Summary)
	sb.WriteString("\n")
	if len(c.Issues) > 0 {
		sb.WriteString("\n## Issues\n\n")
		for _, issue := range c.Issues {
			if issue.ClaimID > 0 {
				fmt.Fprintf(&sb, "- [%s] claim %d: %s", issue.Severity, issue.ClaimID, issue.Description)
			} else {
				fmt.Fprintf(&sb, "- [%s] %s", issue.Severity, issue.Description)
			}
			if issue.Suggestion != "" {
				fmt.Fprintf(&sb, " (suggestion: %s)", issue.Suggestion)
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func (p *Pipeline) saveDraft(ws *session.Workspace, dir string, draft *model.Draft) error {
	draftRel := filepath.Join(dir, fmt.Sprintf("draft_v%d.md", draft.Version))
	if err := ws.SaveText(draftRel, draft.Text); err != nil {
		return err
	}
	citationsRel := filepath.Join(dir, fmt.Sprintf("citations_v%d.json", draft.Version))
	if err := ws.SaveJSON(citationsRel, draft.Citations); err != nil {
		return err
	}
	ws.Log(fmt.Sprintf("Draft v%d written: %s", draft.Version, draftRel))
	return nil
}
