package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Role tags a message in a completion request.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one role-tagged message in a completion request.
type Message struct {
	Role    Role
	Content string
}

// Request describes a completion call.
type Request struct {
	// Model is the provider-specific model identifier.
	Model string

	// System is an optional system prompt.
	System string

	// Messages is the ordered conversation.
	Messages []Message

	// MaxTokens limits the response length (0 = provider default).
	MaxTokens int

	// Temperature controls sampling (0 = provider default).
	Temperature float32
}

// Response is the generated completion.
type Response struct {
	Text       string
	Model      string
	TokensUsed int
}

// Client is the completion service contract. Implementations must honor the
// request context and carry their own timeout.
type Client interface {
	// Name returns the provider name.
	Name() string

	// Complete runs one completion call.
	Complete(ctx context.Context, req Request) (*Response, error)

	// IsAvailable checks if the provider is configured and reachable.
	IsAvailable(ctx context.Context) bool
}

// Config holds completion provider configuration.
type Config struct {
	// Provider name: "openai", "anthropic", "ollama"
	Provider string

	// APIKey for OpenAI/Anthropic.
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama, proxies).
	BaseURL string

	// Timeout per request, in seconds.
	Timeout int

	// MaxTokens default for response generation.
	MaxTokens int

	// Proxy settings.
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DecodeJSON decodes a structured completion into v. Models often wrap JSON
// in markdown fences or prose; this strips fences and falls back to the
// outermost object before giving up. A response that still does not decode
// is an error, never empty state.
func DecodeJSON(text string, v interface{}) error {
	cleaned := strings.TrimSpace(text)

	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		if idx := strings.LastIndex(cleaned, "```"); idx >= 0 {
			cleaned = cleaned[:idx]
		}
		cleaned = strings.TrimSpace(cleaned)
	}

	if err := json.Unmarshal([]byte(cleaned), v); err == nil {
		return nil
	}

	start := strings.IndexAny(cleaned, "{[")
	end := strings.LastIndexAny(cleaned, "}]")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), v); err == nil {
			return nil
		}
	}

	return fmt.Errorf("completion is not valid JSON: %.120q", text)
}
