// Package llm provides the generation provider backed by an
// OpenAI-compatible chat completion API.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"cbcrag/internal/domain"
	"cbcrag/internal/port"
	"cbcrag/internal/util"
)

const (
	defaultMaxRetries = 3
	defaultRetryDelay = 2 * time.Second
	requestTimeout    = 60 * time.Second
)

// OpenAIGenerator generates text through a chat completion endpoint.
type OpenAIGenerator struct {
	client     *openai.Client
	model      string
	maxRetries int
	retryDelay time.Duration
}

// NewOpenAIGenerator creates a generation provider. The API key is required.
func NewOpenAIGenerator(apiKey, model string) (*OpenAIGenerator, error) {
	if apiKey == "" {
		return nil, &domain.GenerationError{Err: fmt.Errorf("API key is required")}
	}
	return &OpenAIGenerator{
		client:     openai.NewClient(apiKey),
		model:      model,
		maxRetries: defaultMaxRetries,
		retryDelay: defaultRetryDelay,
	}, nil
}

// Generate sends the prompt as a single user message and returns the model's
// text. An empty response is an error, never silently passed through.
func (g *OpenAIGenerator) Generate(prompt string, opts port.GenerateOptions) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(util.Backoff(g.retryDelay, attempt))
		}

		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       g.model,
			Temperature: opts.Temperature,
			MaxTokens:   opts.MaxTokens,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
		})
		cancel()

		if err != nil {
			lastErr = err
			continue
		}
		if len(resp.Choices) == 0 {
			lastErr = fmt.Errorf("no choices in response")
			continue
		}

		text := strings.TrimSpace(resp.Choices[0].Message.Content)
		if text == "" {
			lastErr = fmt.Errorf("empty response content")
			continue
		}
		return text, nil
	}

	return "", &domain.GenerationError{Err: fmt.Errorf("after %d attempts: %w", g.maxRetries+1, lastErr)}
}

// ModelName returns the name of the generation model.
func (g *OpenAIGenerator) ModelName() string {
	return g.model
}
