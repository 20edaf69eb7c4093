package llm

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Vendor names accepted in ModelSpec.Provider.
const (
	VendorAnthropic  = "anthropic"
	VendorOpenAI     = "openai"
	VendorGemini     = "gemini"
	VendorOpenRouter = "openrouter"
	VendorMock       = "mock"
)

// DefaultModel is the registry key used when a conversation does not pick one.
const DefaultModel = "gpt-4o-mini"

// Config holds all LLM configuration: vendor credentials plus the registry
// of model keys a conversation may select.
type Config struct {
	// Default is the registry key used when none is requested.
	Default string

	// Models maps a selectable model key to the vendor and model ID
	// that serve it.
	Models map[string]ModelSpec

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds a single model call. Zero disables the bound.
	Timeout time.Duration

	// MaxTokens and Temperature bound every grading call.
	MaxTokens   int
	Temperature float64
}

// ModelSpec names the vendor and model behind a registry key.
type ModelSpec struct {
	Provider string
	Model    string
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string // Optional. Override for compatible APIs.
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string
	BaseURL string // Default: "https://openrouter.ai/api/v1"
}

// RetryConfig configures retry behavior for transient failures.
// MaxAttempts of 1 (the default) means a failed call is returned as-is.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultModels returns the built-in registry.
func DefaultModels() map[string]ModelSpec {
	return map[string]ModelSpec{
		"gpt-4o-mini":   {Provider: VendorOpenAI, Model: "gpt-4o-mini"},
		"gpt-4o":        {Provider: VendorOpenAI, Model: "gpt-4o"},
		"claude-haiku":  {Provider: VendorAnthropic, Model: "claude-haiku"},
		"claude-sonnet": {Provider: VendorAnthropic, Model: "claude-sonnet"},
		"gemini-flash":  {Provider: VendorGemini, Model: "gemini-flash"},
		"gemini-pro":    {Provider: VendorGemini, Model: "gemini-pro"},
		"llama-3.3-70b": {Provider: VendorOpenRouter, Model: "meta-llama/llama-3.3-70b-instruct"},
	}
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Default: DefaultModel,
		Models:  DefaultModels(),
		Retry: RetryConfig{
			MaxAttempts: 1,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout:     30 * time.Second,
		MaxTokens:   512,
		Temperature: 0.2,
	}
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset values. Malformed numbers and durations are errors.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if m := os.Getenv("CODEQUIZ_DEFAULT_MODEL"); m != "" {
		cfg.Default = m
	}

	if k := os.Getenv("CODEQUIZ_ANTHROPIC_API_KEY"); k != "" {
		cfg.Anthropic.APIKey = k
	}
	if k := os.Getenv("CODEQUIZ_OPENAI_API_KEY"); k != "" {
		cfg.OpenAI.APIKey = k
	}
	if u := os.Getenv("CODEQUIZ_OPENAI_BASE_URL"); u != "" {
		cfg.OpenAI.BaseURL = u
	}
	if k := os.Getenv("CODEQUIZ_GEMINI_API_KEY"); k != "" {
		cfg.Gemini.APIKey = k
	}
	if k := os.Getenv("CODEQUIZ_OPENROUTER_API_KEY"); k != "" {
		cfg.OpenRouter.APIKey = k
	}

	var errs []error
	if v := envValue("CODEQUIZ_LLM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("CODEQUIZ_LLM_TIMEOUT: %w", err))
		case d < 0:
			errs = append(errs, fmt.Errorf("CODEQUIZ_LLM_TIMEOUT: must not be negative, got %s", d))
		default:
			cfg.Timeout = d
		}
	}
	if v := envValue("CODEQUIZ_LLM_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("CODEQUIZ_LLM_RETRIES: %w", err))
		case n < 1:
			errs = append(errs, fmt.Errorf("CODEQUIZ_LLM_RETRIES: must be at least 1, got %d", n))
		default:
			cfg.Retry.MaxAttempts = n
		}
	}
	if v := envValue("CODEQUIZ_LLM_MAX_TOKENS"); v != "" {
		n, err := strconv.Atoi(v)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("CODEQUIZ_LLM_MAX_TOKENS: %w", err))
		case n < 1:
			errs = append(errs, fmt.Errorf("CODEQUIZ_LLM_MAX_TOKENS: must be positive, got %d", n))
		default:
			cfg.MaxTokens = n
		}
	}
	if v := envValue("CODEQUIZ_LLM_TEMPERATURE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("CODEQUIZ_LLM_TEMPERATURE: %w", err))
		case f < 0 || f > 2:
			errs = append(errs, fmt.Errorf("CODEQUIZ_LLM_TEMPERATURE: must be within [0, 2], got %g", f))
		default:
			cfg.Temperature = f
		}
	}
	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}

	discoverKeys(&cfg)
	return cfg, nil
}

func envValue(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

// discoverKeys fills vendor keys left empty from the vendors' standard
// environment variables.
func discoverKeys(cfg *Config) {
	if cfg.OpenAI.APIKey == "" {
		cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Anthropic.APIKey == "" {
		cfg.Anthropic.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if cfg.Gemini.APIKey == "" {
		cfg.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.OpenRouter.APIKey == "" {
		cfg.OpenRouter.APIKey = os.Getenv("OPENROUTER_API_KEY")
	}
}

// HasCredentials reports whether the given vendor can be constructed.
func (c Config) HasCredentials(vendor string) bool {
	switch vendor {
	case VendorAnthropic:
		return c.Anthropic.APIKey != ""
	case VendorOpenAI:
		return c.OpenAI.APIKey != ""
	case VendorGemini:
		return c.Gemini.APIKey != ""
	case VendorOpenRouter:
		return c.OpenRouter.APIKey != ""
	case VendorMock:
		return true
	}
	return false
}

// Validate checks that the default model exists in the registry and that
// its vendor has an API key.
func (c Config) Validate() error {
	spec, ok := c.Models[c.Default]
	if !ok {
		return fmt.Errorf("default model %q is not in the model registry", c.Default)
	}
	switch spec.Provider {
	case VendorAnthropic, VendorOpenAI, VendorGemini, VendorOpenRouter, VendorMock:
	default:
		return fmt.Errorf("unknown LLM provider %q for model %q", spec.Provider, c.Default)
	}
	if !c.HasCredentials(spec.Provider) {
		return fmt.Errorf("an API key for %s is required by default model %q (set CODEQUIZ_%s_API_KEY)",
			spec.Provider, c.Default, envName(spec.Provider))
	}
	return nil
}

func envName(vendor string) string {
	switch vendor {
	case VendorAnthropic:
		return "ANTHROPIC"
	case VendorOpenAI:
		return "OPENAI"
	case VendorGemini:
		return "GEMINI"
	case VendorOpenRouter:
		return "OPENROUTER"
	}
	return "UNKNOWN"
}
