// Package chat turns one user message into a supportive reply: it grades
// the message, picks suggestions, and answers with the generative model
// when one is available or with the contextual templates otherwise.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	domerrors "github.com/garyellow/calmmate-go/internal/errors"
	"github.com/garyellow/calmmate-go/internal/genai"
	"github.com/garyellow/calmmate-go/internal/logger"
	"github.com/garyellow/calmmate-go/internal/reply"
	"github.com/garyellow/calmmate-go/internal/suggestion"
	"github.com/garyellow/calmmate-go/internal/triage"
)

// MaxHistoryTurns caps how much prior conversation reaches the model.
const MaxHistoryTurns = 10

// Source names where a reply came from.
type Source string

const (
	SourceLLM        Source = "llm"
	SourceContextual Source = "contextual"
)

// Generator produces a generative reply. *genai.Generator satisfies it.
type Generator interface {
	Enabled() bool
	Generate(ctx context.Context, p genai.Prompt) genai.Result
}

// Budget gates generative calls. *ratelimit.Budget satisfies it.
type Budget interface {
	Allow() bool
}

// Recorder receives chat metrics. *metrics.Metrics satisfies it.
type Recorder interface {
	RecordChat(status string, duration float64)
	RecordTriage(level, rule, oracleOutcome string)
	RecordReply(source, topic string)
}

// Request is one user turn.
type Request struct {
	Message string
	History []genai.Turn
}

// Response is the assembled answer.
type Response struct {
	Reply                string
	ReplySource          Source
	Topic                reply.Topic // empty for generative replies
	Severity             triage.Level
	Rule                 triage.Rule
	Suggestions          []string
	FormattedSuggestions string
}

// ServiceConfig holds the collaborators of a Service. Classifier,
// Suggestions and Selector are required.
type ServiceConfig struct {
	Classifier  *triage.Classifier
	Suggestions *suggestion.Resolver
	Selector    *reply.Selector
	Generator   Generator
	Budget      Budget
	Recorder    Recorder
	Logger      *logger.Logger

	MaxMessageSize int           // bytes; 0 disables the check
	NuanceTimeout  time.Duration // bounds the oracle call
	ReplyTimeout   time.Duration // bounds the generative reply
}

// Service answers chat requests. It is safe for concurrent use.
type Service struct {
	classifier  *triage.Classifier
	suggestions *suggestion.Resolver
	selector    *reply.Selector
	generator   Generator
	budget      Budget
	recorder    Recorder
	logger      *logger.Logger

	maxMessageSize int
	nuanceTimeout  time.Duration
	replyTimeout   time.Duration
}

// NewService creates a chat service.
func NewService(cfg ServiceConfig) *Service {
	log := cfg.Logger
	if log == nil {
		log = logger.New("info")
	}
	return &Service{
		classifier:     cfg.Classifier,
		suggestions:    cfg.Suggestions,
		selector:       cfg.Selector,
		generator:      cfg.Generator,
		budget:         cfg.Budget,
		recorder:       cfg.Recorder,
		logger:         log.WithModule("chat"),
		maxMessageSize: cfg.MaxMessageSize,
		nuanceTimeout:  cfg.NuanceTimeout,
		replyTimeout:   cfg.ReplyTimeout,
	}
}

// Respond grades the message and builds the reply. The only errors are
// validation errors for an empty or oversized message; every collaborator
// failure degrades to the contextual reply.
func (s *Service) Respond(ctx context.Context, req Request) (Response, error) {
	start := time.Now()

	if s.maxMessageSize > 0 && len(req.Message) > s.maxMessageSize {
		s.recordChat("invalid", start)
		return Response{}, domerrors.NewValidationError("message",
			fmt.Sprintf("must be at most %d bytes", s.maxMessageSize))
	}
	message := strings.TrimSpace(req.Message)

	assessment, err := s.assess(ctx, message)
	if err != nil {
		s.recordChat("invalid", start)
		return Response{}, err
	}
	if s.recorder != nil {
		s.recorder.RecordTriage(assessment.Level.String(), string(assessment.Rule), string(assessment.Oracle))
	}

	items := s.suggestions.Get(assessment.Level)
	resp := Response{
		Severity:             assessment.Level,
		Rule:                 assessment.Rule,
		Suggestions:          items,
		FormattedSuggestions: suggestion.Format(items),
	}

	if text, ok := s.generate(ctx, message, assessment.Level, req.History); ok {
		resp.Reply = text
		resp.ReplySource = SourceLLM
	} else {
		match := s.contextual(message, assessment.Level)
		resp.Reply = match.Text
		resp.ReplySource = SourceContextual
		resp.Topic = match.Topic
	}

	if s.recorder != nil {
		s.recorder.RecordReply(string(resp.ReplySource), string(resp.Topic))
	}
	s.recordChat("ok", start)

	s.logger.InfoContext(ctx, "Chat answered",
		"severity", assessment.Level.String(),
		"rule", string(assessment.Rule),
		"oracle", string(assessment.Oracle),
		"source", string(resp.ReplySource),
		"duration_ms", time.Since(start).Milliseconds())

	return resp, nil
}

func (s *Service) assess(ctx context.Context, message string) (triage.Assessment, error) {
	if s.nuanceTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.nuanceTimeout)
		defer cancel()
	}
	return s.classifier.Assess(ctx, message)
}

// generate returns the model's reply, or false when the model is absent,
// over budget, or failed.
func (s *Service) generate(ctx context.Context, message string, level triage.Level, history []genai.Turn) (string, bool) {
	if s.generator == nil || !s.generator.Enabled() {
		return "", false
	}
	if s.budget != nil && !s.budget.Allow() {
		s.logger.WarnContext(ctx, "LLM budget exhausted, using contextual reply")
		return "", false
	}

	if s.replyTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.replyTimeout)
		defer cancel()
	}

	result := s.generator.Generate(ctx, genai.ReplyPrompt(message, level.String(), TrimHistory(history)))
	if !result.Success {
		s.logger.WarnContext(ctx, "Generative reply failed, using contextual reply",
			"error_kind", result.ErrorKind,
			"attempts", result.Attempts,
			"error", result.Err)
		return "", false
	}
	return result.Text, true
}

// contextual picks the template reply. Emergency always gets the crisis
// template regardless of what the message mentions.
func (s *Service) contextual(message string, level triage.Level) reply.Match {
	if level == triage.Emergency {
		if text, ok := s.selector.Template(reply.TopicCrisis); ok {
			return reply.Match{Topic: reply.TopicCrisis, Text: text}
		}
	}
	return s.selector.Select(message)
}

func (s *Service) recordChat(status string, start time.Time) {
	if s.recorder != nil {
		s.recorder.RecordChat(status, time.Since(start).Seconds())
	}
}

// TrimHistory keeps the last MaxHistoryTurns usable turns. Turns with an
// unknown role or blank content are dropped.
func TrimHistory(history []genai.Turn) []genai.Turn {
	kept := make([]genai.Turn, 0, min(len(history), MaxHistoryTurns))
	for _, t := range history {
		if t.Role != genai.RoleUser && t.Role != genai.RoleAssistant {
			continue
		}
		content := strings.TrimSpace(t.Content)
		if content == "" {
			continue
		}
		kept = append(kept, genai.Turn{Role: t.Role, Content: content})
	}
	if len(kept) > MaxHistoryTurns {
		kept = kept[len(kept)-MaxHistoryTurns:]
	}
	return kept
}
