package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"scholarscout/internal/logger"
)

// Provider identifies a hosted chat-completion service. The set is closed:
// adding a provider means adding a case to New.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"
)

const (
	defaultOpenAIModel    = "gpt-4o-mini"
	defaultAnthropicModel = "claude-3-5-sonnet-20240620"
	defaultGeminiModel    = "gemini-2.5-pro"

	// requestTemperature keeps replies stable across identical prompts.
	requestTemperature = 0.2
	// maxReplyTokens bounds the completion size for providers that require
	// or accept an explicit limit.
	maxReplyTokens = 1024
	// maxLogPreview caps reply previews in debug logs.
	maxLogPreview = 200

	defaultRequestTimeout = 60 * time.Second
)

// ModelConfig describes one model call target. It is supplied per call and
// never persisted.
type ModelConfig struct {
	Provider   Provider
	Model      string
	APIKey     string
	MaxRetries int
	Timeout    time.Duration
}

// Generator sends a single prompt to a hosted model and returns the raw text
// reply. Implementations report failures as *ProviderError.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}

// DefaultModel returns the model identifier used when a ModelConfig omits one.
func DefaultModel(provider Provider) string {
	switch provider {
	case ProviderOpenAI:
		return defaultOpenAIModel
	case ProviderAnthropic:
		return defaultAnthropicModel
	case ProviderGemini:
		return defaultGeminiModel
	default:
		return ""
	}
}

// KeyEnvVar returns the environment variable conventionally holding the
// provider's API key.
func KeyEnvVar(provider Provider) string {
	switch provider {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case ProviderGemini:
		return "GEMINI_API_KEY"
	default:
		return ""
	}
}

// New builds a Generator for the configured provider. Unknown provider tags
// and missing credentials yield a *ConfigurationError before any network
// activity. When MaxRetries is above one the generator retries transient
// provider failures.
func New(ctx context.Context, cfg ModelConfig, log *zap.Logger) (Generator, error) {
	provider := Provider(strings.ToLower(strings.TrimSpace(string(cfg.Provider))))
	if provider == "" {
		return nil, &ConfigurationError{Reason: "provider tag is required"}
	}

	switch provider {
	case ProviderOpenAI, ProviderAnthropic, ProviderGemini:
	default:
		return nil, &ConfigurationError{
			Reason: fmt.Sprintf("unsupported provider %q (choose openai, anthropic or gemini)", cfg.Provider),
		}
	}

	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, &ConfigurationError{
			Reason: fmt.Sprintf("%s api key is missing (set %s or the ai.api-key configuration)", provider, KeyEnvVar(provider)),
		}
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel(provider)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	log = logger.WithCommonFields(log, string(provider), model)

	var generator Generator
	switch provider {
	case ProviderOpenAI:
		generator = newOpenAIClient(cfg.APIKey, model, timeout, log)
	case ProviderAnthropic:
		generator = newAnthropicClient(cfg.APIKey, model, timeout, log)
	case ProviderGemini:
		gem, err := newGeminiClient(ctx, cfg.APIKey, model, timeout, log)
		if err != nil {
			return nil, err
		}
		generator = gem
	}

	if cfg.MaxRetries > 1 {
		generator = WithRetries(generator, cfg.MaxRetries, log)
	}

	return generator, nil
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
