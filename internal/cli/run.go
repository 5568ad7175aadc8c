package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ghostwriter/internal/llm"
	"ghostwriter/internal/model"
	"ghostwriter/internal/pipeline"
	"ghostwriter/internal/search"
)

var (
	style        string
	threshold    float64
	maxRevisions int
	researchers  int
	workspace    string
	llmProvider  string
	fastModel    string
	strongModel  string
	noRobots     bool
	noCache      bool
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <topic>",
	Short: "Research a topic and produce a verified report",
	Long: `Run executes the full pipeline for a topic:
- Fan out research workers across distinct angles of the topic
- Synthesize the collected sources into a cited draft
- Extract atomic factual claims and verify each against its source
- Critique and revise while the verified share is below the threshold
- Apply the chosen style guide to the final report

Example:
  ghostwriter run "zero-knowledge rollups"
  ghostwriter run "restaking protocols" --style defi_report --threshold 0.9
  ghostwriter run "eBPF security" --provider anthropic --strong-model claude-sonnet-4-20250514`,
	Args: cobra.ExactArgs(1),
	RunE: runPipeline,
}

func init() {
	rootCmd.AddCommand(runCmd)

	// Pipeline flags
	runCmd.Flags().StringVar(&style, "style", "", "style guide: general, technical, defi_report (default from config)")
	runCmd.Flags().Float64Var(&threshold, "threshold", 0.8, "verification rate required to skip revision [0.0, 1.0]")
	runCmd.Flags().IntVar(&maxRevisions, "max-revisions", 3, "maximum critique/revise iterations")
	runCmd.Flags().IntVar(&researchers, "researchers", 5, "parallel research workers")
	runCmd.Flags().StringVar(&workspace, "workspace", "", "session workspace directory (default ./ghostwriter-sessions)")

	// LLM flags
	runCmd.Flags().StringVar(&llmProvider, "provider", "openai", "LLM provider (openai, anthropic, ollama)")
	runCmd.Flags().StringVar(&fastModel, "fast-model", "", "model for extraction and judgment (default from config)")
	runCmd.Flags().StringVar(&strongModel, "strong-model", "", "model for drafting, critique and revision (default from config)")

	// Verification flags
	runCmd.Flags().BoolVar(&noRobots, "ignore-robots", false, "do not consult robots.txt before fetching sources")
	runCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the fetched-content cache")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	topic := args[0]

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	client, err := llm.NewClient(llm.ConfigFromModel(cfg.LLM, cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy))
	if err != nil {
		return err
	}

	provider, err := search.NewTavilyProvider(os.Getenv("TAVILY_API_KEY"), time.Duration(cfg.Search.Timeout)*time.Second)
	if err != nil {
		return err
	}

	p, err := pipeline.New(cfg, provider, client, logger)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Topic: %s\n", topic)
		fmt.Fprintf(os.Stderr, "Style: %s\n", cfg.Style)
		fmt.Fprintf(os.Stderr, "Threshold: %.2f, max revisions: %d, researchers: %d\n",
			cfg.Threshold, cfg.MaxRevisions, cfg.Researchers)
		fmt.Fprintln(os.Stderr)
	}

	result := p.Run(ctx, topic, style)
	if !result.Success {
		return fmt.Errorf("pipeline failed (session %s): %s", result.SessionID, result.Error)
	}

	fmt.Printf("✓ Session: %s\n", result.SessionID)
	fmt.Printf("✓ Verification rate: %.1f%% after %d revision(s)\n",
		result.VerificationRate*100, result.RevisionIterations)
	fmt.Printf("✓ Final report: %s\n", result.FinalReport)
	return nil
}

// buildConfig layers CLI flags over config file and defaults, then resolves
// provider credentials from the environment. Invalid configuration fails
// here, before any session directory is created.
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()

	if workspace != "" {
		cfg.Workspace = workspace
	}
	if style != "" {
		cfg.Style = style
	}
	cfg.Threshold = threshold
	cfg.MaxRevisions = maxRevisions
	cfg.Researchers = researchers
	cfg.LLM.Provider = llmProvider
	if fastModel != "" {
		cfg.LLM.FastModel = fastModel
	}
	if strongModel != "" {
		cfg.LLM.StrongModel = strongModel
	}
	cfg.HTTP.RespectRobots = !noRobots
	cfg.Cache.Enabled = !noCache

	// Get API keys from environment
	switch cfg.LLM.Provider {
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.LLM.BaseURL = baseURL
		}
	}
	cfg.Search.APIKey = os.Getenv("TAVILY_API_KEY")
	if cfg.Search.APIKey == "" {
		return nil, fmt.Errorf("TAVILY_API_KEY environment variable not set")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
