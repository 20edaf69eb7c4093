package llm

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/abhisek/codequiz/internal/store"
)

// Registry resolves a model key chosen by a conversation to a ready
// Provider. It is built once at startup and shared read-only.
type Registry struct {
	def       string
	providers map[string]Provider
}

// NewRegistry constructs a provider for every registry entry whose vendor
// has credentials. Entries without credentials are skipped and logged; the
// default entry must resolve.
//
// Each provider is wrapped: caller → timeout → retry → logging → base.
func NewRegistry(ctx context.Context, cfg Config, eventRepo store.EventRepo, logger *zap.Logger) (*Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Registry{def: cfg.Default, providers: make(map[string]Provider)}
	for key, spec := range cfg.Models {
		if !cfg.HasCredentials(spec.Provider) {
			logger.Debug("model skipped: no credentials",
				zap.String("model", key), zap.String("provider", spec.Provider))
			continue
		}

		base, err := newBaseProvider(ctx, cfg, spec)
		if err != nil {
			return nil, fmt.Errorf("initializing %s provider for %q: %w", spec.Provider, key, err)
		}

		logged := WithLogging(base, spec.Provider, eventRepo, logger)
		retried := WithRetry(logged, cfg.Retry)
		r.providers[key] = WithTimeout(retried, cfg.Timeout)
	}

	if _, ok := r.providers[cfg.Default]; !ok {
		return nil, fmt.Errorf("default model %q could not be initialized", cfg.Default)
	}
	return r, nil
}

// NewStaticRegistry builds a registry from already constructed providers.
// The default key must be present in providers.
func NewStaticRegistry(def string, providers map[string]Provider) (*Registry, error) {
	if _, ok := providers[def]; !ok {
		return nil, fmt.Errorf("%w: default %q", ErrUnknownModel, def)
	}
	m := make(map[string]Provider, len(providers))
	for k, p := range providers {
		m[k] = p
	}
	return &Registry{def: def, providers: m}, nil
}

func newBaseProvider(ctx context.Context, cfg Config, spec ModelSpec) (Provider, error) {
	switch spec.Provider {
	case VendorAnthropic:
		return NewAnthropicProvider(cfg.Anthropic, spec.Model)
	case VendorOpenAI:
		return NewOpenAIProvider(cfg.OpenAI, spec.Model)
	case VendorGemini:
		return NewGeminiProvider(ctx, cfg.Gemini, spec.Model)
	case VendorOpenRouter:
		return NewOpenRouterProvider(cfg.OpenRouter, spec.Model)
	case VendorMock:
		return NewMockProvider(), nil
	}
	return nil, fmt.Errorf("unknown LLM provider: %q", spec.Provider)
}

// Get returns the provider for key. An empty key selects the default.
func (r *Registry) Get(key string) (Provider, error) {
	if key == "" {
		key = r.def
	}
	p, ok := r.providers[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, key)
	}
	return p, nil
}

// Default returns the default model key.
func (r *Registry) Default() string {
	return r.def
}

// Keys returns the available model keys in sorted order.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.providers))
	for k := range r.providers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
