// Package genai provides integration with LLM APIs (Gemini, Groq, and Cerebras).
// This file contains the nuance oracle consulted for ambiguous messages.
package genai

import (
	"context"
	"fmt"
	"time"

	"github.com/garyellow/calmmate-go/internal/triage"
)

const operationOracle = "oracle"

// NuanceOracle asks one model whether a message is Low or Medium.
// It makes exactly one call per message: no retry, no fallback.
// The caller bounds it with a deadline.
type NuanceOracle struct {
	completer Completer
	recorder  Recorder
}

var _ triage.NuanceOracle = (*NuanceOracle)(nil)

// NewNuanceOracle creates an oracle backed by c.
func NewNuanceOracle(c Completer, recorder Recorder) *NuanceOracle {
	return &NuanceOracle{completer: c, recorder: recorder}
}

// Assess implements triage.NuanceOracle.
func (o *NuanceOracle) Assess(ctx context.Context, message string) (triage.Level, error) {
	start := time.Now()
	text, err := o.completer.Complete(ctx, NuancePrompt(message))

	if o.recorder != nil {
		status := "success"
		if err != nil {
			status = ErrorKind(err)
		}
		o.recorder.RecordLLM(string(o.completer.Provider()), operationOracle, status, time.Since(start).Seconds())
	}

	if err != nil {
		return triage.Low, fmt.Errorf("nuance oracle %s/%s: %w", o.completer.Provider(), o.completer.Model(), err)
	}
	return triage.ParseVote(text)
}

// Provider returns the provider answering the oracle.
func (o *NuanceOracle) Provider() Provider {
	return o.completer.Provider()
}
