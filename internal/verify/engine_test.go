package verify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"ghostwriter/internal/model"
)

// fakeProber marks URLs containing "dead" as inaccessible.
type fakeProber struct {
	calls int32
}

func (p *fakeProber) Check(ctx context.Context, rawURL string) model.URLCheck {
	atomic.AddInt32(&p.calls, 1)
	if strings.Contains(rawURL, "dead") {
		return model.URLCheck{URL: rawURL, StatusCode: 404, Accessible: false}
	}
	return model.URLCheck{URL: rawURL, StatusCode: 200, Accessible: true}
}

// fakeFetcher returns empty content for URLs containing "empty".
type fakeFetcher struct {
	calls int32
}

func (f *fakeFetcher) Fetch(ctx context.Context, rawURL string) string {
	atomic.AddInt32(&f.calls, 1)
	if strings.Contains(rawURL, "empty") {
		return ""
	}
	return "page content for " + rawURL
}

// fakeJudge supports claims containing "true", errors on "explode".
type fakeJudge struct {
	calls int32
}

func (j *fakeJudge) Judge(ctx context.Context, claim, url, content string) (*model.Judgment, error) {
	atomic.AddInt32(&j.calls, 1)
	if strings.Contains(claim, "explode") {
		return nil, errors.New("judge blew up")
	}
	if strings.Contains(claim, "true") {
		return &model.Judgment{Supported: true, Confidence: 0.9, Reasoning: "matches"}, nil
	}
	return &model.Judgment{Supported: false, Confidence: 0.8, Reasoning: "no match"}, nil
}

func newTestEngine(prober *fakeProber, fetcher *fakeFetcher, judge *fakeJudge, workers int) *Engine {
	return NewEngineWithLayers(prober, fetcher, judge, workers, zap.NewNop())
}

func TestEngine_EmptyClaims(t *testing.T) {
	e := newTestEngine(&fakeProber{}, &fakeFetcher{}, &fakeJudge{}, 2)

	report := e.VerifyClaims(context.Background(), 0, nil)
	if report.TotalClaims != 0 || report.VerificationRate != 0.0 {
		t.Errorf("empty claim set should verify to rate 0.0, got %+v", report)
	}
}

func TestEngine_LayersShortCircuit(t *testing.T) {
	prober := &fakeProber{}
	fetcher := &fakeFetcher{}
	judge := &fakeJudge{}
	e := newTestEngine(prober, fetcher, judge, 4)

	claims := []model.Claim{
		{ID: 1, Text: "this is true", URL: "https://ok.example.com/a"},
		{ID: 2, Text: "dead link claim", URL: "https://dead.example.com/b"},
		{ID: 3, Text: "empty content claim", URL: "https://ok.example.com/empty"},
		{ID: 4, Text: "no url claim", URL: ""},
	}

	report := e.VerifyClaims(context.Background(), 0, claims)

	if report.TotalClaims != 4 || report.VerifiedClaims != 1 {
		t.Fatalf("expected 1/4 verified, got %d/%d", report.VerifiedClaims, report.TotalClaims)
	}
	if report.VerificationRate != 0.25 {
		t.Errorf("got rate %v", report.VerificationRate)
	}

	// Results come back ordered by claim id regardless of worker timing.
	for i, r := range report.Results {
		if r.ClaimID != i+1 {
			t.Fatalf("results out of order: %+v", report.Results)
		}
	}

	// Claim 2: probe failed, so neither fetch nor judgment ran for it.
	r2 := report.Results[1]
	if r2.URLCheck.Accessible || r2.ContentFetch != nil || r2.Judgment != nil {
		t.Errorf("dead URL should stop at layer 1: %+v", r2)
	}

	// Claim 3: fetch came back empty, judged locally without an LLM call.
	r3 := report.Results[2]
	if r3.Verified || r3.Judgment == nil || r3.Judgment.Reasoning != ReasonNoContent {
		t.Errorf("empty content should fail with canned reasoning: %+v", r3)
	}

	// Claim 4: no URL, nothing ran.
	r4 := report.Results[3]
	if r4.URLCheck.Accessible || r4.Judgment != nil {
		t.Errorf("missing URL should fail immediately: %+v", r4)
	}

	// Only claims 1 and 3 reached the fetcher; only claim 1 reached the judge.
	if got := atomic.LoadInt32(&fetcher.calls); got != 2 {
		t.Errorf("expected 2 fetch calls, got %d", got)
	}
	if got := atomic.LoadInt32(&judge.calls); got != 1 {
		t.Errorf("expected 1 judge call, got %d", got)
	}
}

func TestEngine_JudgeErrorStaysLocal(t *testing.T) {
	e := newTestEngine(&fakeProber{}, &fakeFetcher{}, &fakeJudge{}, 2)

	claims := []model.Claim{
		{ID: 1, Text: "this is true", URL: "https://ok.example.com/a"},
		{ID: 2, Text: "explode please", URL: "https://ok.example.com/b"},
		{ID: 3, Text: "also true", URL: "https://ok.example.com/c"},
	}

	report := e.VerifyClaims(context.Background(), 1, claims)

	if report.VerifiedClaims != 2 {
		t.Errorf("expected the two good claims verified, got %d", report.VerifiedClaims)
	}
	r2 := report.Results[1]
	if r2.Verified {
		t.Error("claim with failed judgment must not be verified")
	}
	if r2.Judgment == nil || !strings.Contains(r2.Judgment.Reasoning, "judge blew up") {
		t.Errorf("judgment error not recorded: %+v", r2.Judgment)
	}
}

func TestEngine_AuditCopies(t *testing.T) {
	e := newTestEngine(&fakeProber{}, &fakeFetcher{}, &fakeJudge{}, 2)

	var mu sync.Mutex
	saved := make(map[string]string)
	e.SetAuditDir("/audit", func(path, content string) {
		mu.Lock()
		defer mu.Unlock()
		saved[path] = content
	})

	claims := []model.Claim{
		{ID: 1, Text: "this is true", URL: "https://ok.example.com/a"},
		{ID: 2, Text: "empty content claim", URL: "https://ok.example.com/empty"},
	}
	e.VerifyClaims(context.Background(), 0, claims)

	if len(saved) != 1 {
		t.Fatalf("expected 1 audit copy, got %d", len(saved))
	}
	for path, content := range saved {
		if !strings.HasPrefix(path, "/audit/") || !strings.HasSuffix(path, ".txt") {
			t.Errorf("unexpected audit path: %s", path)
		}
		if !strings.Contains(content, "page content") {
			t.Errorf("unexpected audit content: %q", content)
		}
	}
}

func TestAuditFilename(t *testing.T) {
	name := auditFilename("https://example.com/path?q=1")
	if !strings.HasSuffix(name, ".txt") {
		t.Errorf("got %q", name)
	}
	if strings.ContainsAny(name, ":/?=") {
		t.Errorf("unsafe characters in %q", name)
	}

	long := auditFilename("https://example.com/" + strings.Repeat("a", 200))
	if len(long) > 54 {
		t.Errorf("long URL not capped: %d chars", len(long))
	}
}
