package triage

import (
	"regexp"

	"github.com/garyellow/calmmate-go/internal/stringutil"
)

// Phrase lists for the keyword tiers. Matching is whole-word and
// case-insensitive, so "die" does not fire on "diet".
var (
	emergencyPhrases = []string{
		"suicide", "suicidal", "kill myself", "end my life", "want to die", "die",
		"self-harm", "harm myself", "cutting", "overdose", "in danger", "i need help now",
	}

	highPhrases = []string{
		"hopeless", "worthless", "can't go on", "give up", "no purpose",
		"can't take it anymore", "lost", "alone", "trapped", "scared", "crisis",
		"panic attack", "anxious", "depressed", "depression",
		"extreme pain", "severe pain", "unbearable pain", "debilitating pain",
	}

	mediumPhrases = []string{
		"stress", "stressed", "anxious", "anxiety", "sad", "unhappy", "tired",
		"overwhelmed", "struggling", "bad day", "tough time", "feeling down",
	}
)

// Tiers holds the compiled keyword tiers. Build once and share.
// Longer phrases are tried first within a tier.
type Tiers struct {
	Emergency *regexp.Regexp
	High      *regexp.Regexp
	Medium    *regexp.Regexp
}

// NewTiers compiles the three phrase lists.
func NewTiers(emergency, high, medium []string) (*Tiers, error) {
	e, err := stringutil.PhraseRegex(emergency)
	if err != nil {
		return nil, err
	}
	h, err := stringutil.PhraseRegex(high)
	if err != nil {
		return nil, err
	}
	m, err := stringutil.PhraseRegex(medium)
	if err != nil {
		return nil, err
	}
	return &Tiers{Emergency: e, High: h, Medium: m}, nil
}

// DefaultTiers compiles the built-in phrase lists. It panics only if the
// built-in lists stop compiling.
func DefaultTiers() *Tiers {
	t, err := NewTiers(emergencyPhrases, highPhrases, mediumPhrases)
	if err != nil {
		panic("triage: default tiers: " + err.Error())
	}
	return t
}
