// Package reply picks a canned empathetic reply by topic when no generative
// provider is available or the provider fails.
package reply

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/garyellow/calmmate-go/internal/stringutil"
)

// Bucket defines one topic. It matches when any Terms phrase appears as a
// whole word and no Exclude phrase does. Standalone terms must also not be
// hyphenated onto another word.
type Bucket struct {
	Topic      Topic
	Terms      []string
	Exclude    []string
	Template   string
	Standalone bool
}

type matcher struct {
	topic    Topic
	match    *regexp.Regexp
	exclude  *regexp.Regexp // nil when the bucket has no exclusions
	template string
}

// Match is the outcome of a selection.
type Match struct {
	Topic Topic
	Text  string
}

// Selector evaluates buckets in order; the first match wins.
// It is immutable after construction and safe for concurrent use.
type Selector struct {
	matchers []matcher
	fallback string
}

// NewSelector compiles buckets in the given order. An empty fallback uses
// DefaultFallback.
func NewSelector(buckets []Bucket, fallback string) (*Selector, error) {
	if strings.TrimSpace(fallback) == "" {
		fallback = DefaultFallback
	}

	s := &Selector{
		matchers: make([]matcher, 0, len(buckets)),
		fallback: fallback,
	}
	for _, b := range buckets {
		if strings.TrimSpace(b.Template) == "" {
			return nil, fmt.Errorf("reply bucket %q has an empty template", b.Topic)
		}
		compile := stringutil.PhraseRegex
		if b.Standalone {
			compile = stringutil.StandalonePhraseRegex
		}
		re, err := compile(b.Terms)
		if err != nil {
			return nil, fmt.Errorf("reply bucket %q: %w", b.Topic, err)
		}
		m := matcher{topic: b.Topic, match: re, template: b.Template}
		if len(b.Exclude) > 0 {
			if m.exclude, err = stringutil.PhraseRegex(b.Exclude); err != nil {
				return nil, fmt.Errorf("reply bucket %q exclusions: %w", b.Topic, err)
			}
		}
		s.matchers = append(s.matchers, m)
	}
	return s, nil
}

// NewDefaultSelector returns a selector over DefaultBuckets.
func NewDefaultSelector() *Selector {
	s, err := NewSelector(DefaultBuckets(), DefaultFallback)
	if err != nil {
		panic("reply: default buckets: " + err.Error())
	}
	return s
}

// Select returns the first matching bucket, or the fallback.
func (s *Selector) Select(message string) Match {
	text := strings.ToLower(message)
	for _, m := range s.matchers {
		if !m.match.MatchString(text) {
			continue
		}
		if m.exclude != nil && m.exclude.MatchString(text) {
			continue
		}
		return Match{Topic: m.topic, Text: m.template}
	}
	return Match{Topic: TopicFallback, Text: s.fallback}
}

// Reply returns the canned reply for message. The result is never empty.
func (s *Selector) Reply(message string) string {
	return s.Select(message).Text
}

// Template returns the reply text for topic, or false if no bucket has it.
func (s *Selector) Template(topic Topic) (string, bool) {
	if topic == TopicFallback {
		return s.fallback, true
	}
	for _, m := range s.matchers {
		if m.topic == topic {
			return m.template, true
		}
	}
	return "", false
}
