// Package llm provides the cloud completion fallback for quick chat,
// used when no local model is resident.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Completer produces a short continuation of the user's input.
type Completer interface {
	Complete(ctx context.Context, text string, maxTokens int) (string, error)
}

// Options configures the cloud completer.
type Options struct {
	APIKey      string
	BaseURL     string // optional, for OpenAI-compatible endpoints
	Model       string
	Temperature float64
}

const systemPrompt = "You are an inline autocomplete engine. Continue the user's text with a short, natural completion. Reply with the continuation only, without quotes or explanations."

type openaiCompleter struct {
	client      openai.Client
	model       string
	temperature float64
}

// NewCompleter creates a Completer backed by the OpenAI chat API or any
// compatible endpoint.
func NewCompleter(opts Options) Completer {
	reqOpts := []option.RequestOption{option.WithAPIKey(opts.APIKey)}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}

	model := opts.Model
	if model == "" {
		model = string(openai.ChatModelGPT4oMini)
	}
	temperature := opts.Temperature
	if temperature == 0 {
		temperature = 0.2
	}

	return &openaiCompleter{
		client:      openai.NewClient(reqOpts...),
		model:       model,
		temperature: temperature,
	}
}

func (c *openaiCompleter) Complete(ctx context.Context, text string, maxTokens int) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(text),
		},
		MaxTokens:   openai.Int(int64(maxTokens)),
		Temperature: openai.Float(c.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices")
	}
	return strings.TrimRight(resp.Choices[0].Message.Content, "\n "), nil
}
