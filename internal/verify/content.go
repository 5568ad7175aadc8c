package verify

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"ghostwriter/internal/cache"
	"ghostwriter/internal/model"
	"ghostwriter/internal/util"
	"ghostwriter/internal/worker"
)

// MaxContentChars caps extracted page text, bounding prompt size.
const MaxContentChars = 10000

// ContentFetcher performs the layer 2 fetch: retrieve the cited page and
// extract its main text. Any failure reads as empty content; the claim then
// fails verification locally instead of failing the run.
type ContentFetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	limiter    *worker.Limiter
	robots     *util.RobotsChecker
	store      cache.Cache
	cacheTTL   time.Duration
}

// NewContentFetcher creates a fetcher with the given fetch timeout. robots
// and store may be nil to disable robots compliance or caching.
func NewContentFetcher(cfg model.HTTPConfig, robots *util.RobotsChecker, store cache.Cache, cacheTTL time.Duration) *ContentFetcher {
	return &ContentFetcher{
		httpClient: &http.Client{
			Timeout: cfg.FetchTimeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
			},
		},
		userAgent: cfg.UserAgent,
		maxBytes:  cfg.MaxBodyBytes,
		limiter:   worker.NewLimiter(cfg.RatePerSecond, cfg.RateBurst),
		robots:    robots,
		store:     store,
		cacheTTL:  cacheTTL,
	}
}

// Fetch retrieves and extracts the main text of rawURL, capped at
// MaxContentChars. Returns "" when the page cannot be fetched, is
// robots-disallowed, or yields no text.
func (f *ContentFetcher) Fetch(ctx context.Context, rawURL string) string {
	if f.store != nil {
		if cached, found := f.store.Get(cache.Key(rawURL)); found {
			return string(cached)
		}
	}

	if f.robots != nil {
		if allowed, _ := f.robots.CanFetch(ctx, rawURL); !allowed {
			return ""
		}
	}

	if err := f.limiter.Wait(ctx, rawURL); err != nil {
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return ""
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return ""
	}

	text := ExtractText(string(body))

	if text != "" && f.store != nil {
		_ = f.store.Set(cache.Key(rawURL), []byte(text), f.cacheTTL)
	}

	return text
}

// skipped tags contribute chrome, not content.
var skippedTags = map[string]bool{
	"script":   true,
	"style":    true,
	"nav":      true,
	"footer":   true,
	"header":   true,
	"noscript": true,
}

// ExtractText strips markup from an HTML document, collapses whitespace,
// and caps the result at MaxContentChars.
func ExtractText(rawHTML string) string {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return ""
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedTags[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	text := strings.Join(strings.Fields(sb.String()), " ")
	if len(text) > MaxContentChars {
		text = text[:MaxContentChars]
	}
	return text
}
