// Package verify implements the 3-layer claim verification engine: URL
// probe, content fetch, LLM judgment. Layers short-circuit on failure and
// every failure stays local to its claim.
package verify

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"ghostwriter/internal/cache"
	"ghostwriter/internal/llm"
	"ghostwriter/internal/model"
	"ghostwriter/internal/util"
	"ghostwriter/internal/worker"
)

// ReasonNoContent is the reasoning recorded when layer 2 yields nothing.
const ReasonNoContent = "could not fetch content from source"

// URLProber is the layer 1 contract.
type URLProber interface {
	Check(ctx context.Context, rawURL string) model.URLCheck
}

// TextFetcher is the layer 2 contract.
type TextFetcher interface {
	Fetch(ctx context.Context, rawURL string) string
}

// ClaimJudge is the layer 3 contract.
type ClaimJudge interface {
	Judge(ctx context.Context, claim, url, content string) (*model.Judgment, error)
}

// Engine verifies all claims of a draft version concurrently on a bounded
// worker pool. Per-claim results are independent; one claim timing out
// never cancels or corrupts the others.
type Engine struct {
	prober  URLProber
	fetcher TextFetcher
	judge   ClaimJudge
	workers int
	logger  *zap.Logger

	// auditDir, when set, receives a copy of each fetched page text.
	auditDir string

	saveAudit func(path, content string)
}

// NewEngine wires the three production layers from configuration.
func NewEngine(cfg *model.Config, client llm.Client, contentCache cache.Cache, logger *zap.Logger) *Engine {
	var robots *util.RobotsChecker
	if cfg.HTTP.RespectRobots {
		robots = util.NewRobotsChecker(cfg.HTTP.UserAgent, cfg.HTTP.ProbeTimeout)
	}

	return &Engine{
		prober:  NewURLChecker(cfg.HTTP.ProbeTimeout, cfg.HTTP.UserAgent, cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy),
		fetcher: NewContentFetcher(cfg.HTTP, robots, contentCache, cfg.Cache.TTL),
		judge:   NewJudge(client, cfg.LLM.FastModel),
		workers: cfg.Concurrency.VerifyWorkers,
		logger:  logger,
	}
}

// NewEngineWithLayers wires explicit layer implementations. Used by tests
// to substitute fakes per layer.
func NewEngineWithLayers(prober URLProber, fetcher TextFetcher, judge ClaimJudge, workers int, logger *zap.Logger) *Engine {
	return &Engine{
		prober:  prober,
		fetcher: fetcher,
		judge:   judge,
		workers: workers,
		logger:  logger,
	}
}

// SetAuditDir directs fetched-content audit copies to dir using fn to
// persist them. Both may be zero to disable auditing.
func (e *Engine) SetAuditDir(dir string, fn func(path, content string)) {
	e.auditDir = dir
	e.saveAudit = fn
}

// VerifyClaims verifies every claim of one draft version and aggregates
// the fresh report. Claims run concurrently; results are ordered by claim
// id in the report.
func (e *Engine) VerifyClaims(ctx context.Context, draftVersion int, claims []model.Claim) *model.VerificationReport {
	report := &model.VerificationReport{
		DraftVersion: draftVersion,
		TotalClaims:  len(claims),
		Results:      []model.VerificationResult{},
	}
	if len(claims) == 0 {
		return report
	}

	start := time.Now()

	pool := worker.NewPool(e.workers)
	pool.Start()
	for _, claim := range claims {
		pool.Submit(&claimJob{engine: e, claim: claim})
	}
	results := pool.Wait()

	for _, r := range results {
		cr := r.(*claimResult)
		report.Results = append(report.Results, cr.result)
		if cr.result.Verified {
			report.VerifiedClaims++
		}
	}

	sort.Slice(report.Results, func(i, j int) bool {
		return report.Results[i].ClaimID < report.Results[j].ClaimID
	})
	report.VerificationRate = report.Rate()

	e.logger.Info("verification complete",
		zap.Int("draft_version", draftVersion),
		zap.Int("total_claims", report.TotalClaims),
		zap.Int("verified_claims", report.VerifiedClaims),
		zap.Float64("rate", report.VerificationRate),
		zap.Duration("elapsed", time.Since(start)),
	)

	return report
}

type claimJob struct {
	engine *Engine
	claim  model.Claim
}

type claimResult struct {
	result model.VerificationResult
}

func (r *claimResult) GetError() error { return nil }

// Execute runs the three layers for one claim, short-circuiting on the
// first failure.
func (j *claimJob) Execute(ctx context.Context) worker.Result {
	e := j.engine
	claim := j.claim

	result := model.VerificationResult{
		ClaimID: claim.ID,
		Claim:   claim.Text,
		URL:     claim.URL,
	}

	if claim.URL == "" {
		result.URLCheck = model.URLCheck{Accessible: false, Error: "no URL provided"}
		return &claimResult{result: result}
	}

	// Layer 1: existence probe
	result.URLCheck = e.prober.Check(ctx, claim.URL)
	if !result.URLCheck.Accessible {
		return &claimResult{result: result}
	}

	// Layer 2: content fetch
	content := e.fetcher.Fetch(ctx, claim.URL)
	result.ContentFetch = &model.ContentFetch{
		Success: content != "",
		Length:  len(content),
	}
	if content == "" {
		result.Judgment = &model.Judgment{
			Supported:  false,
			Confidence: 0.0,
			Reasoning:  ReasonNoContent,
		}
		return &claimResult{result: result}
	}

	if e.saveAudit != nil && e.auditDir != "" {
		e.saveAudit(filepath.Join(e.auditDir, auditFilename(claim.URL)), content)
	}

	// Layer 3: LLM judgment
	judgment, err := e.judge.Judge(ctx, claim.Text, claim.URL, content)
	if err != nil {
		// Claim-local: a failed judgment degrades this claim only
		e.logger.Warn("judgment failed", zap.Int("claim_id", claim.ID), zap.Error(err))
		result.Judgment = &model.Judgment{
			Supported:  false,
			Confidence: 0.0,
			Reasoning:  fmt.Sprintf("Error: %v", err),
		}
		return &claimResult{result: result}
	}

	result.Judgment = judgment
	result.Verified = judgment.Supported

	return &claimResult{result: result}
}

// auditFilename maps a URL to a safe filename for the content audit copy.
func auditFilename(rawURL string) string {
	var sb strings.Builder
	for _, r := range rawURL {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		}
	}
	name := sb.String()
	if len(name) > 50 {
		name = name[:50]
	}
	return name + ".txt"
}
