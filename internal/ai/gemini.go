package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"scholarscout/internal/logger"
)

type geminiClient struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

func newGeminiClient(ctx context.Context, apiKey, model string, timeout time.Duration, log *zap.Logger) (*geminiClient, error) {
	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: newHTTPClient(timeout),
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &geminiClient{client: client, model: model, logger: log}, nil
}

func (c *geminiClient) Model() string { return c.model }

func (c *geminiClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(requestTemperature)),
	}

	c.logger.Debug("sending generate content request")

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
	if err != nil {
		return "", &ProviderError{
			Provider: ProviderGemini,
			Status:   geminiStatus(err),
			Err:      err,
		}
	}

	var builder strings.Builder

	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}

		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}

			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}

			if builder.Len() > 0 {
				builder.WriteString("\n")
			}

			builder.WriteString(text)
		}
	}

	reply := strings.TrimSpace(builder.String())
	if reply == "" {
		return "", &ProviderError{Provider: ProviderGemini, Err: errors.New("response contains no text content")}
	}

	c.logger.Debug("received generate content response",
		zap.Int("response_length", utf8.RuneCountInString(reply)),
		zap.String("response_preview", logger.TruncateForLog(reply, maxLogPreview)),
	)

	return reply, nil
}

func geminiStatus(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}

	return 0
}
