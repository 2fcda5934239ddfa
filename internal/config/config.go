// Package config loads runtime configuration from command-line flags,
// environment variables, and an optional YAML config file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Provider identifies the hosted model service behind the chat endpoint.
type Provider string

const (
	ProviderGemini     Provider = "gemini"
	ProviderOpenRouter Provider = "openrouter"
)

const (
	// DefaultModel is used when no --model flag is given.
	DefaultModel = "gemini-2.5-pro-exp-03-25"

	// GeminiBaseURL is the OpenAI-compatible endpoint of the Gemini API.
	GeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

	// OpenRouterBaseURL is the OpenRouter chat completions endpoint.
	OpenRouterBaseURL = "https://openrouter.ai/api/v1"
)

const (
	defaultHistorySize    = 40
	defaultTimeoutSeconds = 120
	defaultMaxHops        = 10
	defaultMaxRetries     = 3
)

// Config holds all runtime configuration. Values are immutable after Load.
type Config struct {
	Provider Provider
	Model    string
	APIKey   string
	BaseURL  string

	Stream  bool
	Verbose bool

	// HistorySize caps the number of conversation messages sent per request.
	HistorySize int
	// RequestTimeout bounds a single chat completion call.
	RequestTimeout time.Duration
	// MaxHops caps model continuation turns within one user turn.
	MaxHops int
	// MaxRetries caps automatic retries for failed replace operations.
	MaxRetries int

	// WorkspaceDir is the root all file proposals are resolved against.
	WorkspaceDir string
}

// fileConfig is the shape of the optional YAML config file.
type fileConfig struct {
	Model           string `yaml:"model"`
	OpenRouterModel string `yaml:"omodel"`
	Stream          *bool  `yaml:"stream"`
	HistorySize     int    `yaml:"history_size"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
	MaxRetries      int    `yaml:"max_retries"`
}

// DefaultConfigPath returns the standard location of the config file.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "codagent", "config.yaml")
}

// Load parses flags and environment into a validated Config.
// args is the command line without the program name.
func Load(args []string) (*Config, error) {
	_ = godotenv.Load()

	flags := pflag.NewFlagSet("codagent", pflag.ContinueOnError)
	model := flags.String("model", "", "Gemini model to use (ignored if --omodel is set)")
	omodel := flags.String("omodel", "", "OpenRouter model to use; overrides --model")
	stream := flags.Bool("stream", true, "Stream assistant output as it is generated")
	verbose := flags.Bool("verbose", false, "Verbose request/turn logging")
	configPath := flags.String("config", DefaultConfigPath(), "Path to YAML config file")
	flags.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: codagent [flags]")
		fmt.Fprintln(os.Stderr, "\nInteractive coding agent. Chat, preview proposed edits as diffs, confirm, apply.")
		fmt.Fprintln(os.Stderr, "\nFlags:")
		fmt.Fprintln(os.Stderr, flags.FlagUsages())
	}
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	fc, err := loadFile(*configPath)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Stream:         *stream,
		Verbose:        *verbose,
		HistorySize:    defaultHistorySize,
		RequestTimeout: defaultTimeoutSeconds * time.Second,
		MaxHops:        defaultMaxHops,
		MaxRetries:     defaultMaxRetries,
	}
	if fc.Stream != nil && !flags.Changed("stream") {
		cfg.Stream = *fc.Stream
	}
	if fc.HistorySize > 0 {
		cfg.HistorySize = fc.HistorySize
	}
	if fc.TimeoutSeconds > 0 {
		cfg.RequestTimeout = time.Duration(fc.TimeoutSeconds) * time.Second
	}
	if fc.MaxRetries > 0 {
		cfg.MaxRetries = fc.MaxRetries
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}
	cfg.WorkspaceDir = wd

	// Flag > config file > default, the OpenRouter model winning over the
	// Gemini one when both are present.
	geminiModel := firstNonEmpty(*model, fc.Model, DefaultModel)
	routerModel := firstNonEmpty(*omodel, fc.OpenRouterModel)

	if routerModel != "" {
		cfg.Provider = ProviderOpenRouter
		cfg.Model = routerModel
		cfg.BaseURL = OpenRouterBaseURL
		cfg.APIKey = strings.TrimSpace(os.Getenv("OPENROUTER_API_KEY"))
	} else {
		cfg.Provider = ProviderGemini
		cfg.Model = geminiModel
		cfg.BaseURL = GeminiBaseURL
		cfg.APIKey = strings.TrimSpace(os.Getenv("GOOGLE_API_KEY"))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration can reach the provider.
// It runs before any network call so missing credentials fail fast.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("model name is empty")
	}
	if c.APIKey == "" {
		switch c.Provider {
		case ProviderOpenRouter:
			return fmt.Errorf("OPENROUTER_API_KEY is not set; it is required when --omodel is used")
		default:
			return fmt.Errorf("GOOGLE_API_KEY is not set; export it or add it to a .env file")
		}
	}
	return nil
}

// loadFile reads the YAML config file if it exists.
func loadFile(path string) (fileConfig, error) {
	var fc fileConfig
	if strings.TrimSpace(path) == "" {
		return fc, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fc, nil
		}
		return fc, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return fc, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
