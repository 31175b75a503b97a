package ai

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// sleep is swapped out in tests to keep retry tests instant.
var sleep = time.Sleep

const retryBackoff = 2 * time.Second

type retryingGenerator struct {
	inner    Generator
	attempts int
	logger   *zap.Logger
}

// WithRetries wraps a Generator so transient provider failures are retried
// with a linear backoff. Non-transient failures and parse-level problems are
// returned immediately. attempts below two return the generator unchanged.
func WithRetries(g Generator, attempts int, log *zap.Logger) Generator {
	if attempts < 2 {
		return g
	}

	return &retryingGenerator{inner: g, attempts: attempts, logger: log}
}

func (r *retryingGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= r.attempts; attempt++ {
		reply, err := r.inner.GenerateContent(ctx, prompt)
		if err == nil {
			return reply, nil
		}

		lastErr = err

		var provider *ProviderError
		if !errors.As(err, &provider) || !provider.Temporary() {
			return "", err
		}

		if attempt == r.attempts {
			break
		}

		delay := retryBackoff * time.Duration(attempt)
		r.logger.Debug("retrying model call",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		if err := waitFor(ctx, delay); err != nil {
			return "", err
		}
	}

	return "", lastErr
}

func (r *retryingGenerator) Model() string { return r.inner.Model() }

// waitFor sleeps for d but returns early with the context error when the
// context is cancelled first.
func waitFor(ctx context.Context, d time.Duration) error {
	done := make(chan struct{})

	go func() {
		sleep(d)
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}
