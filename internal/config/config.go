package config

import "fmt"

// Config is the full application configuration, constructed once at startup
// and passed into the component constructors. Core logic never reads the
// process environment directly.
type Config struct {
	Gemini        GeminiConfig        `yaml:"gemini"`
	GitHub        GitHubConfig        `yaml:"github"`
	Agent         AgentConfig         `yaml:"agent"`
	HTTP          HTTPConfig          `yaml:"http"`
	Git           GitConfig           `yaml:"git"`
	Dataset       DatasetConfig       `yaml:"dataset"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// GeminiConfig configures the model backend.
type GeminiConfig struct {
	APIKey      string   `yaml:"apiKey"`
	Model       string   `yaml:"model"`
	Temperature *float64 `yaml:"temperature,omitempty"`
	Timeout     string   `yaml:"timeout"`
}

// GitHubConfig configures the hosting provider integration.
type GitHubConfig struct {
	Token   string `yaml:"token"`
	Owner   string `yaml:"owner"`
	Repo    string `yaml:"repo"`
	Timeout string `yaml:"timeout"`
}

// AgentConfig configures the tool-invocation loop.
type AgentConfig struct {
	// MaxTurns bounds the number of model calls per run.
	MaxTurns int `yaml:"maxTurns"`
}

// HTTPConfig holds global HTTP retry settings.
type HTTPConfig struct {
	MaxRetries        int     `yaml:"maxRetries"`
	InitialBackoff    string  `yaml:"initialBackoff"`
	MaxBackoff        string  `yaml:"maxBackoff"`
	BackoffMultiplier float64 `yaml:"backoffMultiplier"`
}

// GitConfig configures local repository access.
type GitConfig struct {
	RepositoryDir string `yaml:"repositoryDir"`
}

// DatasetConfig configures evaluation dataset creation.
type DatasetConfig struct {
	// Directory receives the exported .jsonl files.
	Directory string `yaml:"directory"`

	// StorePath is the SQLite file recording samples; empty disables the
	// store.
	StorePath string `yaml:"storePath"`

	// Repos are the default repositories for real-world collection.
	Repos []string `yaml:"repos"`

	// PerRepoLimit caps samples collected per repository.
	PerRepoLimit int `yaml:"perRepoLimit"`
}

// ObservabilityConfig configures logging.
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig configures request/response logging.
type LoggingConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Level         string `yaml:"level"`  // debug, info, error
	Format        string `yaml:"format"` // json, human
	RedactAPIKeys bool   `yaml:"redactAPIKeys"`
}

// Validate checks cross-field constraints that viper cannot express.
func (c Config) Validate() error {
	if c.Agent.MaxTurns < 0 {
		return fmt.Errorf("agent.maxTurns must not be negative")
	}
	if c.Gemini.Temperature != nil && (*c.Gemini.Temperature < 0 || *c.Gemini.Temperature > 2) {
		return fmt.Errorf("gemini.temperature must be between 0 and 2")
	}
	if c.Dataset.PerRepoLimit < 0 {
		return fmt.Errorf("dataset.perRepoLimit must not be negative")
	}
	return nil
}
