package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/lmchoi/nitpicker/internal/adapter/cli"
	"github.com/lmchoi/nitpicker/internal/adapter/ghcli"
	"github.com/lmchoi/nitpicker/internal/adapter/git"
	githubadapter "github.com/lmchoi/nitpicker/internal/adapter/github"
	"github.com/lmchoi/nitpicker/internal/adapter/llm"
	"github.com/lmchoi/nitpicker/internal/adapter/llm/gemini"
	llmhttp "github.com/lmchoi/nitpicker/internal/adapter/llm/http"
	"github.com/lmchoi/nitpicker/internal/adapter/output/jsonl"
	"github.com/lmchoi/nitpicker/internal/adapter/store/sqlite"
	"github.com/lmchoi/nitpicker/internal/agent"
	"github.com/lmchoi/nitpicker/internal/config"
	"github.com/lmchoi/nitpicker/internal/usecase/dataset"
	"github.com/lmchoi/nitpicker/internal/usecase/review"
	"github.com/lmchoi/nitpicker/internal/version"
)

func main() {
	if err := run(); err != nil {
		// Redact API keys from URLs in error messages before logging
		log.Println(llmhttp.RedactURLSecrets(err.Error()))
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(config.LoaderOptions{
		ConfigPaths: defaultConfigPaths(),
		FileName:    "nit",
		EnvPrefix:   "NIT",
	})
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	logger := buildLogger(cfg.Observability)
	retryConf := buildRetryConfig(cfg.HTTP)

	ghClient := ghcli.NewClient(ghcli.ExecRunner{}, parseDurationOr(cfg.GitHub.Timeout, 30*time.Second))

	repoDir := cfg.Git.RepositoryDir
	if repoDir == "" {
		repoDir = "."
	}
	gitEngine := git.NewEngine(repoDir, ghcli.ExecRunner{})

	githubToken := cfg.GitHub.Token
	if githubToken == "" {
		githubToken = os.Getenv("GITHUB_TOKEN")
	}
	var apiClient *githubadapter.Client
	if githubToken != "" {
		apiClient = githubadapter.NewClient(githubToken, parseDurationOr(cfg.GitHub.Timeout, 30*time.Second), retryConf)
		if logger != nil {
			apiClient.SetLogger(logger)
		}
	}

	geminiAPIKey := cfg.Gemini.APIKey
	if geminiAPIKey == "" {
		geminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}

	makeReviewer := func(owner, repo string) cli.Reviewer {
		if geminiAPIKey == "" {
			return nil
		}

		client := gemini.NewHTTPClient(geminiAPIKey, cfg.Gemini.Model, parseDurationOr(cfg.Gemini.Timeout, 60*time.Second), retryConf)
		if logger != nil {
			client.SetLogger(logger)
		}

		options := gemini.CallOptions{Temperature: cfg.Gemini.Temperature}
		sessions := func(descriptors []agent.Descriptor) agent.Session {
			return gemini.NewChatSession(client, descriptors, options)
		}

		var publisher review.Publisher
		if apiClient != nil && owner != "" && repo != "" {
			publisher = githubadapter.NewPoster(apiClient, owner, repo)
		}

		var agentLogger agent.Logger
		if logger != nil {
			agentLogger = logger
		}
		return review.NewOrchestrator(ghClient, publisher, sessions, llm.EstimateTokens, agentLogger)
	}

	datasetManager, closeStore, err := buildDatasetManager(cfg.Dataset, apiClient)
	if err != nil {
		return err
	}
	if closeStore != nil {
		defer closeStore()
	}

	root := cli.NewRootCommand(cli.Dependencies{
		Reviewer:        makeReviewer,
		DiffSource:      ghClient,
		LocalDiffer:     gitEngine,
		DatasetManager:  datasetManager,
		DefaultOwner:    cfg.GitHub.Owner,
		DefaultRepo:     cfg.GitHub.Repo,
		DefaultMaxTurns: cfg.Agent.MaxTurns,
		DefaultRepos:    cfg.Dataset.Repos,
		DefaultPerRepo:  cfg.Dataset.PerRepoLimit,
		Version:         version.Version(),
	})

	if err := root.ExecuteContext(ctx); err != nil {
		return fmt.Errorf("command failed: %w", err)
	}
	return nil
}

func buildDatasetManager(cfg config.DatasetConfig, apiClient *githubadapter.Client) (*dataset.Manager, func(), error) {
	dir := cfg.Directory
	if dir == "" {
		dir = "datasets"
	}
	writer := jsonl.NewWriter(dir)

	var store dataset.Store
	var closeStore func()
	if cfg.StorePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.StorePath), 0755); err != nil {
			log.Printf("warning: failed to create store directory: %v", err)
		} else {
			sqliteStore, err := sqlite.NewStore(cfg.StorePath)
			if err != nil {
				log.Printf("warning: failed to initialize store: %v", err)
			} else {
				store = sqliteStore
				closeStore = func() { _ = sqliteStore.Close() }
			}
		}
	}

	var collector *dataset.Collector
	if apiClient != nil {
		collector = dataset.NewCollector(apiClient)
	}

	return dataset.NewManager(dataset.NewGenerator(), collector, writer, store), closeStore, nil
}

func buildLogger(cfg config.ObservabilityConfig) *llmhttp.DefaultLogger {
	if !cfg.Logging.Enabled {
		return nil
	}
	return llmhttp.NewDefaultLogger(
		llmhttp.ParseLogLevel(cfg.Logging.Level),
		llmhttp.ParseLogFormat(cfg.Logging.Format),
		cfg.Logging.RedactAPIKeys,
	)
}

func buildRetryConfig(cfg config.HTTPConfig) llmhttp.RetryConfig {
	retryConf := llmhttp.DefaultRetryConfig()
	if cfg.MaxRetries > 0 {
		retryConf.MaxRetries = cfg.MaxRetries
	}
	if d := parseDurationOr(cfg.InitialBackoff, 0); d > 0 {
		retryConf.InitialBackoff = d
	}
	if d := parseDurationOr(cfg.MaxBackoff, 0); d > 0 {
		retryConf.MaxBackoff = d
	}
	if cfg.BackoffMultiplier > 0 {
		retryConf.Multiplier = cfg.BackoffMultiplier
	}
	return retryConf
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func defaultConfigPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "nit"))
	}
	return paths
}

// Compile-time interface compliance checks
var _ cli.DiffSource = (*ghcli.Client)(nil)
var _ cli.LocalDiffer = (*git.Engine)(nil)
var _ review.Publisher = (*githubadapter.Poster)(nil)
var _ dataset.PullRequestAPI = (*githubadapter.Client)(nil)
var _ agent.Logger = (*llmhttp.DefaultLogger)(nil)
