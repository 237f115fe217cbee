// Package genai provides integration with LLM APIs (Gemini, Groq, and Cerebras).
// This file contains the prompts for supportive replies and the nuance oracle.
package genai

import (
	"fmt"
	"strings"
)

// Generation limits.
const (
	ReplyTemperature  = 0.7
	ReplyMaxTokens    = 600
	OracleTemperature = 0
	OracleMaxTokens   = 5
)

// ReplySystemPrompt instructs the model how to answer a user in distress.
const ReplySystemPrompt = `You are a kind, empathetic, and professional mental well-being assistant named CalmMateAI. Your goal is to provide supportive and helpful responses to users.

Guidelines:
- Acknowledge the user's feelings before offering anything else.
- Keep the reply short: two to four sentences of plain, warm language.
- Offer one small, concrete coping step when it fits.
- Never diagnose, never prescribe medication, and never claim to be a human or a therapist.
- If the user mentions self-harm, suicide, or danger to life, urge them to contact local emergency services or a crisis line right away.`

// ReplyPrompt builds the supportive reply request. severity is the label
// the classifier assigned and steers the tone.
func ReplyPrompt(message, severity string, history []Turn) Prompt {
	return Prompt{
		System:      ReplySystemPrompt,
		History:     history,
		User:        fmt.Sprintf("(Assessed seriousness: %s)\n\n%s", severity, strings.TrimSpace(message)),
		Temperature: ReplyTemperature,
		MaxTokens:   ReplyMaxTokens,
	}
}

// NuancePrompt asks whether an ambiguous message is Low or Medium.
func NuancePrompt(message string) Prompt {
	return Prompt{
		User: fmt.Sprintf("The user said: '%s'. Based on this, is their emotional state a 'Low' or 'Medium' level? "+
			"Respond with only 'Low' or 'Medium'.", strings.TrimSpace(message)),
		Temperature: OracleTemperature,
		MaxTokens:   OracleMaxTokens,
	}
}
