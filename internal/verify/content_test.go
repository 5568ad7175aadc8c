package verify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ghostwriter/internal/cache"
	"ghostwriter/internal/model"
)

func testHTTPConfig() model.HTTPConfig {
	return model.HTTPConfig{
		FetchTimeout:  time.Second,
		UserAgent:     "test-agent",
		MaxBodyBytes:  1 << 20,
		RatePerSecond: 100,
		RateBurst:     100,
	}
}

func TestExtractText(t *testing.T) {
	html := `<html>
<head><title>Title</title><style>body { color: red }</style></head>
<body>
<header>Site header</header>
<nav>Home | About</nav>
<script>var x = 1;</script>
<p>First   paragraph
with a line break.</p>
<p>Second paragraph.</p>
<noscript>Enable JS</noscript>
<footer>Copyright</footer>
</body>
</html>`

	text := ExtractText(html)

	for _, chrome := range []string{"color: red", "var x = 1", "Site header", "Home | About", "Copyright", "Enable JS"} {
		if strings.Contains(text, chrome) {
			t.Errorf("extracted text should not contain %q", chrome)
		}
	}
	if !strings.Contains(text, "First paragraph with a line break.") {
		t.Errorf("whitespace not collapsed: %q", text)
	}
	if !strings.Contains(text, "Second paragraph.") {
		t.Errorf("body text missing: %q", text)
	}
}

func TestExtractText_Cap(t *testing.T) {
	huge := "<p>" + strings.Repeat("word ", 5000) + "</p>"
	text := ExtractText(huge)
	if len(text) > MaxContentChars {
		t.Errorf("extracted text length %d exceeds cap %d", len(text), MaxContentChars)
	}
}

func TestContentFetcher_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body><p>Article body.</p></body></html>"))
	}))
	defer server.Close()

	f := NewContentFetcher(testHTTPConfig(), nil, nil, 0)
	text := f.Fetch(context.Background(), server.URL)
	if text != "Article body." {
		t.Errorf("got %q", text)
	}
}

func TestContentFetcher_FailuresReadAsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	f := NewContentFetcher(testHTTPConfig(), nil, nil, 0)
	if text := f.Fetch(context.Background(), server.URL); text != "" {
		t.Errorf("non-2xx should yield empty content, got %q", text)
	}
	if text := f.Fetch(context.Background(), "http://127.0.0.1:1/nothing"); text != "" {
		t.Errorf("unreachable host should yield empty content, got %q", text)
	}
}

func TestContentFetcher_UsesCache(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte("<p>Cached once.</p>"))
	}))
	defer server.Close()

	store := cache.NewMemoryCache(time.Minute, time.Minute)
	f := NewContentFetcher(testHTTPConfig(), nil, store, time.Minute)

	first := f.Fetch(context.Background(), server.URL)
	second := f.Fetch(context.Background(), server.URL)

	if first != "Cached once." || second != first {
		t.Errorf("got %q then %q", first, second)
	}
	if hits != 1 {
		t.Errorf("expected 1 origin hit, got %d", hits)
	}
}
