package verify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"ghostwriter/internal/model"
	"ghostwriter/internal/util"
)

// URLChecker performs the layer 1 existence probe: a HEAD request with a
// short timeout, following redirects. A URL is accessible iff the response
// status lands in the 200-399 range.
type URLChecker struct {
	httpClient *http.Client
	userAgent  string
}

// NewURLChecker creates a checker with the given probe timeout.
func NewURLChecker(timeout time.Duration, userAgent, httpProxy, httpsProxy, noProxy string) *URLChecker {
	return &URLChecker{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(httpProxy, httpsProxy, noProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: userAgent,
	}
}

// Check probes rawURL. Any transport error reads as inaccessible; it is
// never propagated as a failure.
func (c *URLChecker) Check(ctx context.Context, rawURL string) model.URLCheck {
	result := model.URLCheck{URL: rawURL}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		result.Error = fmt.Sprintf("create request: %v", err)
		return result
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		result.Error = fmt.Sprintf("request failed: %v", err)
		return result
	}
	defer func() { _ = resp.Body.Close() }()

	result.StatusCode = resp.StatusCode
	result.Accessible = resp.StatusCode >= 200 && resp.StatusCode < 400

	return result
}
