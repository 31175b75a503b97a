package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"scholarscout/internal/logger"
)

const openaiEndpoint = "https://api.openai.com/v1/chat/completions"

type openaiClient struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func newOpenAIClient(apiKey, model string, timeout time.Duration, log *zap.Logger) *openaiClient {
	return &openaiClient{
		apiKey:   apiKey,
		model:    model,
		endpoint: openaiEndpoint,
		client:   newHTTPClient(timeout),
		logger:   log,
	}
}

func (c *openaiClient) Model() string { return c.model }

func (c *openaiClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: requestTemperature,
		MaxTokens:   maxReplyTokens,
	})
	if err != nil {
		return "", &ProviderError{Provider: ProviderOpenAI, Err: fmt.Errorf("encode request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", &ProviderError{Provider: ProviderOpenAI, Err: err}
	}

	c.setHeaders(req)

	c.logger.Debug("sending chat completion request", zap.String("url", c.endpoint))

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &ProviderError{Provider: ProviderOpenAI, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ProviderError{Provider: ProviderOpenAI, Status: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &ProviderError{
			Provider: ProviderOpenAI,
			Status:   resp.StatusCode,
			Err:      errors.New(apiErrorMessage(body)),
		}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &ProviderError{Provider: ProviderOpenAI, Err: fmt.Errorf("decode response: %w", err)}
	}

	if len(parsed.Choices) == 0 {
		return "", &ProviderError{Provider: ProviderOpenAI, Err: errors.New("response contains no choices")}
	}

	reply := parsed.Choices[0].Message.Content
	c.logger.Debug("received chat completion",
		zap.Int("response_length", utf8.RuneCountInString(reply)),
		zap.String("response_preview", logger.TruncateForLog(reply, maxLogPreview)),
	)

	return reply, nil
}

func (c *openaiClient) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
}

// apiErrorMessage pulls the provider's own error text out of a non-200 body,
// falling back to a short preview of the raw payload.
func apiErrorMessage(body []byte) string {
	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}

	return logger.TruncateForLog(string(body), maxLogPreview)
}
