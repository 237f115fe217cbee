// Package genai provides integration with LLM APIs (Gemini, Groq, and Cerebras).
// This file contains the fallback chain that produces supportive replies.
package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

const operationReply = "reply"

// Result is the outcome of Generate. Success is false whenever Text must
// not be shown; ErrorKind then names the last failure.
type Result struct {
	Success   bool
	Text      string
	Provider  Provider
	Model     string
	Attempts  int
	ErrorKind string
	Err       error
}

// Generator walks a chain of completers:
// 1. Model retry with backoff (same model)
// 2. Next model in the chain (same or next provider)
// 3. Graceful degradation (unsuccessful Result)
type Generator struct {
	chain       []Completer
	retryConfig RetryConfig
	recorder    Recorder
}

// NewGenerator creates a generator over chain, tried in order.
func NewGenerator(cfg RetryConfig, recorder Recorder, chain ...Completer) *Generator {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Generator{
		chain:       chain,
		retryConfig: cfg,
		recorder:    recorder,
	}
}

// Enabled reports whether any completer is configured.
func (g *Generator) Enabled() bool {
	return g != nil && len(g.chain) > 0
}

// Generate produces a reply, never returning an error: failures are
// reported through Result so callers can fall back.
func (g *Generator) Generate(ctx context.Context, p Prompt) Result {
	if !g.Enabled() {
		return Result{ErrorKind: "disabled", Err: errors.New("no LLM provider configured")}
	}

	var (
		lastErr  error
		attempts int
	)
	for i, c := range g.chain {
		if i > 0 && c.Provider() != g.chain[i-1].Provider() && g.recorder != nil {
			g.recorder.RecordLLMFallback(string(g.chain[i-1].Provider()), string(c.Provider()), operationReply)
		}

		text, n, err := g.completeWithRetry(ctx, c, p)
		attempts += n
		if err == nil {
			return Result{
				Success:  true,
				Text:     text,
				Provider: c.Provider(),
				Model:    c.Model(),
				Attempts: attempts,
			}
		}
		lastErr = err

		if ctx.Err() != nil {
			break
		}
		if i < len(g.chain)-1 {
			slog.InfoContext(ctx, "falling back to next model",
				"from", fmt.Sprintf("%s/%s", c.Provider(), c.Model()),
				"to", fmt.Sprintf("%s/%s", g.chain[i+1].Provider(), g.chain[i+1].Model()),
				"error", err)
		}
	}

	slog.WarnContext(ctx, "all reply models failed",
		"chain_size", len(g.chain),
		"attempts", attempts,
		"error", lastErr)

	return Result{
		Attempts:  attempts,
		ErrorKind: ErrorKind(lastErr),
		Err:       lastErr,
	}
}

// completeWithRetry attempts one model with retry logic.
func (g *Generator) completeWithRetry(ctx context.Context, c Completer, p Prompt) (string, int, error) {
	var lastErr error

	for attempt := range g.retryConfig.MaxAttempts {
		if ctx.Err() != nil {
			return "", attempt, ctx.Err()
		}

		start := time.Now()
		text, err := c.Complete(ctx, p)
		g.record(c, err, time.Since(start))
		if err == nil {
			return text, attempt + 1, nil
		}
		lastErr = err

		if ClassifyError(err) != ActionRetry || attempt == g.retryConfig.MaxAttempts-1 {
			return "", attempt + 1, err
		}

		backoff := retryDelay(attempt+1, g.retryConfig, err)
		if !HasSufficientBudget(ctx, backoff) {
			return "", attempt + 1, fmt.Errorf("timeout during retry: %w", lastErr)
		}

		slog.DebugContext(ctx, "retrying completion",
			"provider", c.Provider(),
			"model", c.Model(),
			"attempt", attempt+1,
			"backoff", backoff,
			"error", err)

		if err := Sleep(ctx, backoff); err != nil {
			return "", attempt + 1, err
		}
	}

	return "", g.retryConfig.MaxAttempts, lastErr
}

func (g *Generator) record(c Completer, err error, d time.Duration) {
	if g.recorder == nil {
		return
	}
	status := "success"
	if err != nil {
		status = ErrorKind(err)
	}
	g.recorder.RecordLLM(string(c.Provider()), operationReply, status, d.Seconds())
}
