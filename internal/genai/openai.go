// Package genai provides integration with LLM APIs (Gemini, Groq, and Cerebras).
// This file contains the unified OpenAI-compatible implementation of Completer.
// It works with any OpenAI-compatible provider (Groq, Cerebras) via custom BaseURL.
package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// openaiCompleter sends prompts to one model of an OpenAI-compatible provider.
type openaiCompleter struct {
	client   openai.Client
	model    string
	provider Provider
}

// newOpenAICompleter creates a new OpenAI-compatible completer.
func newOpenAICompleter(provider Provider, apiKey, model string) (*openaiCompleter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%s: api key is required", provider)
	}

	baseURL, ok := ProviderEndpoint[provider]
	if !ok {
		return nil, fmt.Errorf("unsupported OpenAI-compatible provider: %s", provider)
	}

	if model == "" {
		switch provider {
		case ProviderGroq:
			model = DefaultGroqReplyModels[0]
		case ProviderCerebras:
			model = DefaultCerebrasReplyModels[0]
		}
	}

	// Retries are handled by Generator
	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	)

	return &openaiCompleter{
		client:   client,
		model:    model,
		provider: provider,
	}, nil
}

// Complete implements Completer.
func (o *openaiCompleter) Complete(ctx context.Context, p Prompt) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(p.History)+2)
	if p.System != "" {
		messages = append(messages, openai.SystemMessage(p.System))
	}
	for _, turn := range p.History {
		if turn.Role == RoleAssistant {
			messages = append(messages, openai.AssistantMessage(turn.Content))
		} else {
			messages = append(messages, openai.UserMessage(turn.Content))
		}
	}
	messages = append(messages, openai.UserMessage(p.User))

	params := openai.ChatCompletionNewParams{
		Model:       o.model,
		Messages:    messages,
		Temperature: openai.Float(float64(p.Temperature)),
		MaxTokens:   openai.Int(int64(p.MaxTokens)),
	}

	start := time.Now()
	resp, err := o.client.Chat.Completions.New(ctx, params)
	duration := time.Since(start)

	if err != nil {
		slog.WarnContext(ctx, "chat completion API call failed",
			"provider", o.provider,
			"model", o.model,
			"duration_ms", duration.Milliseconds(),
			"error", err)
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			var headers http.Header
			if apiErr.Response != nil {
				headers = apiErr.Response.Header
			}
			return "", WrapError(err, o.provider, apiErr.StatusCode, headers)
		}
		return "", WrapError(err, o.provider, 0, nil)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	result := strings.TrimSpace(resp.Choices[0].Message.Content)
	if result == "" {
		return "", ErrEmptyResponse
	}

	if resp.Usage.TotalTokens > 0 {
		slog.DebugContext(ctx, "chat completion finished",
			"provider", o.provider,
			"model", o.model,
			"input_tokens", resp.Usage.PromptTokens,
			"output_tokens", resp.Usage.CompletionTokens,
			"duration_ms", duration.Milliseconds())
	}

	return result, nil
}

// Provider implements Completer.
func (o *openaiCompleter) Provider() Provider {
	return o.provider
}

// Model implements Completer.
func (o *openaiCompleter) Model() string {
	return o.model
}
