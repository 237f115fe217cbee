package triage

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode"

	domerrors "github.com/garyellow/calmmate-go/internal/errors"
	"github.com/garyellow/calmmate-go/internal/sentiment"
)

// MediumSentimentThreshold is the compound score at or below which a
// message without tier phrases is Medium outright. Scores between it and
// zero are borderline and go to the nuance oracle.
const MediumSentimentThreshold = -0.5

// ErrMalformedVote is returned when an oracle answer is not Low or Medium.
var ErrMalformedVote = errors.New("nuance oracle returned a malformed vote")

// NuanceOracle votes Low or Medium for a borderline message.
// Any error, or a vote outside {Low, Medium}, sends the classifier to its
// keyword fallback.
type NuanceOracle interface {
	Assess(ctx context.Context, message string) (Level, error)
}

// OracleFunc adapts a function to NuanceOracle.
type OracleFunc func(ctx context.Context, message string) (Level, error)

// Assess calls f.
func (f OracleFunc) Assess(ctx context.Context, message string) (Level, error) {
	return f(ctx, message)
}

// Rule names the ladder step that produced a level.
type Rule string

const (
	RuleEmergencyKeyword Rule = "emergency_keyword"
	RuleHighKeyword      Rule = "high_keyword"
	RuleSentiment        Rule = "sentiment"
	RuleOracle           Rule = "oracle"
	RuleMediumKeyword    Rule = "medium_keyword"
	RuleDefault          Rule = "default"
)

// OracleOutcome records what happened to the oracle on a borderline message.
type OracleOutcome string

const (
	OracleNotConsulted OracleOutcome = "not_consulted"
	OracleAbsent       OracleOutcome = "absent"
	OracleVoted        OracleOutcome = "voted"
	OracleFailed       OracleOutcome = "failed"
	OracleMalformed    OracleOutcome = "malformed"
)

// Assessment is the full classification result.
type Assessment struct {
	Level  Level
	Rule   Rule
	Score  float64 // zero when a keyword tier fired first
	Oracle OracleOutcome
}

// Classifier applies the severity ladder. It holds no mutable state and is
// safe for concurrent use.
type Classifier struct {
	tiers  *Tiers
	scorer sentiment.Scorer
	oracle NuanceOracle
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithOracle sets the nuance oracle. A nil oracle is the same as none.
func WithOracle(o NuanceOracle) Option {
	return func(c *Classifier) { c.oracle = o }
}

// NewClassifier creates a classifier over prebuilt tiers and a scorer.
func NewClassifier(tiers *Tiers, scorer sentiment.Scorer, opts ...Option) *Classifier {
	c := &Classifier{tiers: tiers, scorer: scorer}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HasOracle reports whether a nuance oracle is configured.
func (c *Classifier) HasOracle() bool {
	return c.oracle != nil
}

// Classify returns the severity level of message.
func (c *Classifier) Classify(ctx context.Context, message string) (Level, error) {
	a, err := c.Assess(ctx, message)
	return a.Level, err
}

// Assess returns the level together with the rule that produced it.
// The only error is a ValidationError for empty or whitespace-only input.
// The oracle is tried at most once and bounded by ctx.
func (c *Classifier) Assess(ctx context.Context, message string) (Assessment, error) {
	if strings.TrimSpace(message) == "" {
		return Assessment{}, domerrors.NewValidationError("message", "must not be empty")
	}

	if c.tiers.Emergency.MatchString(message) {
		return Assessment{Level: Emergency, Rule: RuleEmergencyKeyword, Oracle: OracleNotConsulted}, nil
	}
	if c.tiers.High.MatchString(message) {
		return Assessment{Level: High, Rule: RuleHighKeyword, Oracle: OracleNotConsulted}, nil
	}

	score := c.scorer.Score(message)
	if score <= MediumSentimentThreshold {
		return Assessment{Level: Medium, Rule: RuleSentiment, Score: score, Oracle: OracleNotConsulted}, nil
	}
	if score >= 0 {
		return Assessment{Level: Low, Rule: RuleDefault, Score: score, Oracle: OracleNotConsulted}, nil
	}

	outcome := OracleAbsent
	if c.oracle != nil {
		level, err := c.oracle.Assess(ctx, message)
		switch {
		case err == nil && (level == Low || level == Medium):
			return Assessment{Level: level, Rule: RuleOracle, Score: score, Oracle: OracleVoted}, nil
		case err == nil, errors.Is(err, ErrMalformedVote):
			outcome = OracleMalformed
		default:
			outcome = OracleFailed
		}
		slog.WarnContext(ctx, "Nuance oracle unusable, using keyword fallback",
			"outcome", string(outcome),
			"error", err)
	}

	if c.tiers.Medium.MatchString(message) {
		return Assessment{Level: Medium, Rule: RuleMediumKeyword, Score: score, Oracle: outcome}, nil
	}
	return Assessment{Level: Low, Rule: RuleDefault, Score: score, Oracle: outcome}, nil
}

// ParseVote reads a one-word oracle answer. Case, whitespace, quotes, and
// punctuation are ignored. Exactly one of the words "low" or "medium" must
// appear.
func ParseVote(text string) (Level, error) {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})

	var hasLow, hasMedium bool
	for _, w := range words {
		switch w {
		case "low":
			hasLow = true
		case "medium":
			hasMedium = true
		}
	}
	switch {
	case hasMedium && !hasLow:
		return Medium, nil
	case hasLow && !hasMedium:
		return Low, nil
	default:
		return Low, ErrMalformedVote
	}
}
