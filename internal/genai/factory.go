// Package genai provides integration with LLM APIs (Gemini, Groq, and Cerebras).
// This file contains factory functions for creating LLM providers.
package genai

import (
	"context"
	"log/slog"
)

// newCompleter builds a completer for one provider and model.
func newCompleter(ctx context.Context, p Provider, apiKey, model string) (Completer, error) {
	if p == ProviderGemini {
		return newGeminiCompleter(ctx, apiKey, model)
	}
	return newOpenAICompleter(p, apiKey, model)
}

// CreateGenerator builds the reply chain from cfg.
//
// Provider selection logic:
//  1. Providers are taken in cfg.Providers order, skipping those without an API key.
//  2. Each provider contributes its reply models in order.
//  3. Each model is tried with retry logic (configured in RetryConfig).
//  4. Returns nil if no providers/models are configured.
func CreateGenerator(ctx context.Context, cfg LLMConfig, recorder Recorder) *Generator {
	var chain []Completer

	for _, p := range cfg.ConfiguredProviders() {
		pc := cfg.GetProviderConfig(p)
		for _, m := range pc.ReplyModels {
			c, err := newCompleter(ctx, p, pc.APIKey, m)
			if err != nil {
				slog.WarnContext(ctx, "failed to create reply model", "provider", p, "model", m, "error", err)
				continue
			}
			chain = append(chain, c)
		}
	}

	if len(chain) == 0 {
		slog.InfoContext(ctx, "no LLM provider configured for replies")
		return nil
	}

	slog.InfoContext(ctx, "reply generator configured",
		"primary", chain[0].Provider(),
		"model", chain[0].Model(),
		"chain_size", len(chain))

	return NewGenerator(cfg.RetryConfig, recorder, chain...)
}

// CreateNuanceOracle builds the oracle on the first configured provider.
// Returns nil if no provider is configured.
func CreateNuanceOracle(ctx context.Context, cfg LLMConfig, recorder Recorder) *NuanceOracle {
	for _, p := range cfg.ConfiguredProviders() {
		pc := cfg.GetProviderConfig(p)
		c, err := newCompleter(ctx, p, pc.APIKey, pc.OracleModel)
		if err != nil {
			slog.WarnContext(ctx, "failed to create nuance oracle", "provider", p, "error", err)
			continue
		}
		slog.InfoContext(ctx, "nuance oracle configured", "provider", p, "model", c.Model())
		return NewNuanceOracle(c, recorder)
	}
	return nil
}

// DefaultLLMConfig returns a default LLM configuration.
// API keys must be provided separately.
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Providers: DefaultProviders,
		Gemini: ProviderConfig{
			ReplyModels: DefaultGeminiReplyModels,
			OracleModel: DefaultGeminiOracleModel,
		},
		Groq: ProviderConfig{
			ReplyModels: DefaultGroqReplyModels,
			OracleModel: DefaultGroqOracleModel,
		},
		Cerebras: ProviderConfig{
			ReplyModels: DefaultCerebrasReplyModels,
			OracleModel: DefaultCerebrasOracleModel,
		},
		RetryConfig: DefaultRetryConfig(),
	}
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  DefaultMaxRetryAttempts,
		InitialDelay: DefaultInitialRetryDelay,
		MaxDelay:     DefaultMaxRetryDelay,
	}
}
