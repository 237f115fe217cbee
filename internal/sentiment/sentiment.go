// Package sentiment scores message polarity with the VADER lexicon.
package sentiment

import (
	"strings"

	"github.com/jonreiter/govader"
)

// Scorer returns a compound polarity score in [-1, 1].
type Scorer interface {
	Score(text string) float64
}

// Vader scores text with the VADER lexicon and rules.
// The analyzer only reads its lexicon after construction, so one instance
// serves concurrent requests.
type Vader struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewVader builds the analyzer and loads the lexicon once.
func NewVader() *Vader {
	return &Vader{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Score returns the compound score. Empty or whitespace-only text is neutral.
func (v *Vader) Score(text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	return clamp(v.analyzer.PolarityScores(text).Compound)
}

func clamp(x float64) float64 {
	switch {
	case x < -1:
		return -1
	case x > 1:
		return 1
	default:
		return x
	}
}

// ScorerFunc adapts a function to Scorer.
type ScorerFunc func(text string) float64

// Score calls f.
func (f ScorerFunc) Score(text string) float64 { return f(text) }
