package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNewRejectsUnknownProvider(t *testing.T) {
	generator, err := New(context.Background(), ModelConfig{Provider: "cohere", APIKey: "key"}, zap.NewNop())
	if err == nil {
		t.Fatal("expected an error for an unknown provider")
	}

	if generator != nil {
		t.Fatalf("expected nil generator, got %T", generator)
	}

	var confErr *ConfigurationError
	if !errors.As(err, &confErr) {
		t.Fatalf("expected *ConfigurationError, got %T", err)
	}

	if !strings.Contains(confErr.Reason, "cohere") {
		t.Fatalf("expected reason to name the provider, got %q", confErr.Reason)
	}
}

func TestNewRequiresProviderTag(t *testing.T) {
	_, err := New(context.Background(), ModelConfig{APIKey: "key"}, zap.NewNop())

	var confErr *ConfigurationError
	if !errors.As(err, &confErr) {
		t.Fatalf("expected *ConfigurationError, got %v", err)
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	for _, provider := range []Provider{ProviderOpenAI, ProviderAnthropic, ProviderGemini} {
		t.Run(string(provider), func(t *testing.T) {
			_, err := New(context.Background(), ModelConfig{Provider: provider, APIKey: "  "}, zap.NewNop())

			var confErr *ConfigurationError
			if !errors.As(err, &confErr) {
				t.Fatalf("expected *ConfigurationError, got %v", err)
			}

			if !strings.Contains(confErr.Error(), KeyEnvVar(provider)) {
				t.Fatalf("expected error to mention %s, got %q", KeyEnvVar(provider), confErr.Error())
			}
		})
	}
}

func TestNewAppliesDefaultModel(t *testing.T) {
	cases := []struct {
		provider Provider
		want     string
	}{
		{ProviderOpenAI, "gpt-4o-mini"},
		{ProviderAnthropic, "claude-3-5-sonnet-20240620"},
		{ProviderGemini, "gemini-2.5-pro"},
	}

	for _, tc := range cases {
		t.Run(string(tc.provider), func(t *testing.T) {
			generator, err := New(context.Background(), ModelConfig{Provider: tc.provider, APIKey: "key"}, zap.NewNop())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if generator.Model() != tc.want {
				t.Fatalf("expected model %q, got %q", tc.want, generator.Model())
			}
		})
	}
}

func TestNewNormalizesProviderTag(t *testing.T) {
	generator, err := New(context.Background(), ModelConfig{Provider: " OpenAI ", APIKey: "key", Model: "gpt-4o"}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if generator.Model() != "gpt-4o" {
		t.Fatalf("expected configured model to win, got %q", generator.Model())
	}
}

func TestNewWrapsGeneratorWithRetries(t *testing.T) {
	generator, err := New(context.Background(), ModelConfig{Provider: ProviderOpenAI, APIKey: "key", MaxRetries: 3}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := generator.(*retryingGenerator); !ok {
		t.Fatalf("expected a retrying generator, got %T", generator)
	}

	if generator.Model() != "gpt-4o-mini" {
		t.Fatalf("expected model to pass through the wrapper, got %q", generator.Model())
	}
}

func TestProviderErrorMessage(t *testing.T) {
	cases := []struct {
		name string
		err  *ProviderError
		want string
	}{
		{
			name: "with status and cause",
			err:  &ProviderError{Provider: ProviderOpenAI, Status: 429, Err: errors.New("rate limited")},
			want: "openai provider (status 429): rate limited",
		},
		{
			name: "without status",
			err:  &ProviderError{Provider: ProviderAnthropic, Err: errors.New("connection refused")},
			want: "anthropic provider: connection refused",
		},
		{
			name: "without cause",
			err:  &ProviderError{Provider: ProviderGemini, Status: 500},
			want: "gemini provider (status 500): request failed",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.err.Error(); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestProviderErrorTemporary(t *testing.T) {
	cases := []struct {
		status int
		want   bool
	}{
		{429, true},
		{500, true},
		{503, true},
		{400, false},
		{401, false},
		{0, false},
	}

	for _, tc := range cases {
		err := &ProviderError{Provider: ProviderOpenAI, Status: tc.status}
		if got := err.Temporary(); got != tc.want {
			t.Fatalf("status %d: expected temporary=%v, got %v", tc.status, tc.want, got)
		}
	}
}

func TestProviderErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &ProviderError{Provider: ProviderOpenAI, Err: cause}

	if !errors.Is(err, cause) {
		t.Fatal("expected errors.Is to reach the wrapped cause")
	}
}
