package ai

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"scholarscout/internal/logger"
)

type anthropicClient struct {
	client anthropic.Client
	model  string
	logger *zap.Logger
}

func newAnthropicClient(apiKey, model string, timeout time.Duration, log *zap.Logger) *anthropicClient {
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(newHTTPClient(timeout)),
	)

	return &anthropicClient{client: client, model: model, logger: log}
}

func (c *anthropicClient) Model() string { return c.model }

func (c *anthropicClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	c.logger.Debug("sending messages request")

	response, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   int64(maxReplyTokens),
		Temperature: anthropic.Float(requestTemperature),
		Messages: []anthropic.MessageParam{{
			Content: []anthropic.ContentBlockParamUnion{{
				OfText: &anthropic.TextBlockParam{Text: prompt},
			}},
			Role: anthropic.MessageParamRoleUser,
		}},
	})
	if err != nil {
		return "", &ProviderError{
			Provider: ProviderAnthropic,
			Status:   anthropicStatus(err),
			Err:      err,
		}
	}

	var sb strings.Builder

	for _, content := range response.Content {
		sb.WriteString(content.AsText().Text)
	}

	reply := sb.String()
	if reply == "" {
		return "", &ProviderError{Provider: ProviderAnthropic, Err: errors.New("response contains no text content")}
	}

	c.logger.Debug("received messages response",
		zap.Int("response_length", utf8.RuneCountInString(reply)),
		zap.String("response_preview", logger.TruncateForLog(reply, maxLogPreview)),
	)

	return reply, nil
}

func anthropicStatus(err error) int {
	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		return apierr.StatusCode
	}

	return 0
}
