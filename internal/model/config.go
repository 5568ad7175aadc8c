package model

import (
	"fmt"
	"time"
)

// StyleGuide names an output-formatting profile applied in the final stage.
type StyleGuide string

const (
	StyleGeneral   StyleGuide = "general"
	StyleTechnical StyleGuide = "technical"
	StyleDeFi      StyleGuide = "defi_report"
)

// ValidStyle reports whether name is a known style guide.
func ValidStyle(name string) bool {
	switch StyleGuide(name) {
	case StyleGeneral, StyleTechnical, StyleDeFi:
		return true
	}
	return false
}

// Config holds the full pipeline configuration.
type Config struct {
	Workspace    string  `yaml:"workspace" json:"workspace"`
	Style        string  `yaml:"style" json:"style"`
	Threshold    float64 `yaml:"verification_threshold" json:"verification_threshold"`
	MaxRevisions int     `yaml:"max_revisions" json:"max_revisions"`
	Researchers  int     `yaml:"researchers" json:"researchers"`

	LLM         LLMConfig         `yaml:"llm" json:"llm"`
	Search      SearchConfig      `yaml:"search" json:"search"`
	HTTP        HTTPConfig        `yaml:"http" json:"http"`
	Cache       CacheConfig       `yaml:"cache" json:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" json:"concurrency"`
}

// LLMConfig configures the completion service.
type LLMConfig struct {
	// Provider name: "openai", "anthropic", "ollama"
	Provider string `yaml:"provider" json:"provider"`

	// FastModel handles research summaries, claim extraction and judgment.
	FastModel string `yaml:"fast_model" json:"fast_model"`

	// StrongModel handles draft, critique, revision and style.
	StrongModel string `yaml:"strong_model" json:"strong_model"`

	APIKey    string `yaml:"api_key,omitempty" json:"-"`
	BaseURL   string `yaml:"base_url,omitempty" json:"base_url,omitempty"`
	Timeout   int    `yaml:"timeout" json:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens" json:"max_tokens"`
}

// SearchConfig configures the web search provider.
type SearchConfig struct {
	APIKey     string `yaml:"api_key,omitempty" json:"-"`
	MaxResults int    `yaml:"max_results" json:"max_results"`
	Depth      string `yaml:"depth" json:"depth"` // basic or advanced
	Timeout    int    `yaml:"timeout" json:"timeout"`
}

// HTTPConfig configures the verification engine's network behavior.
type HTTPConfig struct {
	ProbeTimeout  time.Duration `yaml:"probe_timeout" json:"probe_timeout"`
	FetchTimeout  time.Duration `yaml:"fetch_timeout" json:"fetch_timeout"`
	UserAgent     string        `yaml:"user_agent" json:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" json:"max_body_bytes"`
	RespectRobots bool          `yaml:"respect_robots" json:"respect_robots"`
	RatePerSecond float64       `yaml:"rate_per_second" json:"rate_per_second"`
	RateBurst     int           `yaml:"rate_burst" json:"rate_burst"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" json:"http_proxy,omitempty"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" json:"https_proxy,omitempty"`
	NoProxy       string        `yaml:"no_proxy,omitempty" json:"no_proxy,omitempty"`
}

// CacheConfig configures the fetched-content cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" json:"enabled"`
	Dir     string        `yaml:"dir,omitempty" json:"dir,omitempty"`
	TTL     time.Duration `yaml:"ttl" json:"ttl"`
}

// ConcurrencyConfig bounds the parallel fan-out points.
type ConcurrencyConfig struct {
	VerifyWorkers int `yaml:"verify_workers" json:"verify_workers"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Workspace:    "./ghostwriter-sessions",
		Style:        string(StyleTechnical),
		Threshold:    0.8,
		MaxRevisions: 3,
		Researchers:  5,
		LLM: LLMConfig{
			Provider:    "openai",
			FastModel:   "gpt-4o-mini",
			StrongModel: "gpt-4o",
			Timeout:     120,
			MaxTokens:   4000,
		},
		Search: SearchConfig{
			MaxResults: 5,
			Depth:      "advanced",
			Timeout:    30,
		},
		HTTP: HTTPConfig{
			ProbeTimeout:  10 * time.Second,
			FetchTimeout:  15 * time.Second,
			UserAgent:     "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
			MaxBodyBytes:  2_000_000,
			RespectRobots: true,
			RatePerSecond: 2.0,
			RateBurst:     5,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			VerifyWorkers: 8,
		},
	}
}

// Validate checks the configuration before any session is created.
func (c *Config) Validate() error {
	if c.Threshold < 0.0 || c.Threshold > 1.0 {
		return fmt.Errorf("verification threshold must be in [0.0, 1.0], got %g", c.Threshold)
	}
	if c.Researchers < 1 {
		return fmt.Errorf("researchers must be at least 1, got %d", c.Researchers)
	}
	if c.MaxRevisions < 0 {
		return fmt.Errorf("max revisions must be non-negative, got %d", c.MaxRevisions)
	}
	if !ValidStyle(c.Style) {
		return fmt.Errorf("unknown style guide: %s (supported: general, technical, defi_report)", c.Style)
	}
	if c.Concurrency.VerifyWorkers < 1 {
		return fmt.Errorf("verify workers must be at least 1, got %d", c.Concurrency.VerifyWorkers)
	}
	return nil
}
