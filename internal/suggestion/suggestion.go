// Package suggestion maps a severity level to ordered guidance.
package suggestion

import (
	"maps"
	"slices"
	"strings"

	"github.com/garyellow/calmmate-go/internal/triage"
)

const (
	header       = "**What to do right now:**\n\n"
	emptyMessage = "No specific suggestions at this time. Just breathe."
)

// DefaultTable returns the built-in guidance, most actionable item first.
// Emergency guidance is deliberately short and directive.
func DefaultTable() map[triage.Level][]string {
	return map[triage.Level][]string{
		triage.Low: {
			"Take a short walk or stretch.",
			"Practice a few minutes of deep breathing.",
			"Try a 5-minute meditation.",
			"Listen to some calming music.",
			"Connect with a friend or family member.",
		},
		triage.Medium: {
			"Jot down your thoughts in a journal.",
			"Distract yourself with a hobby you enjoy.",
			"Limit social media and news consumption.",
			"Remember to stay hydrated and eat well.",
			"Consider scheduling a time to talk with a professional.",
		},
		triage.High: {
			"Reach out to a trusted friend or family member immediately.",
			"Contact a local crisis hotline or helpline.",
			"Consider visiting an emergency room or walk-in clinic if you feel unsafe.",
			"Focus on one thing in your immediate surroundings to ground yourself.",
			"Remember this feeling will pass. You are not alone.",
		},
		triage.Emergency: {
			"Call your local emergency services immediately.",
			"Go to the nearest emergency room.",
			"Reach out to a crisis hotline or text line right now.",
		},
	}
}

// Resolver looks up guidance in an immutable table.
type Resolver struct {
	table map[triage.Level][]string
}

// NewResolver copies table so later changes by the caller are not observed.
func NewResolver(table map[triage.Level][]string) *Resolver {
	owned := make(map[triage.Level][]string, len(table))
	for level, items := range table {
		owned[level] = slices.Clone(items)
	}
	return &Resolver{table: owned}
}

// Get returns a copy of the guidance for level. Unknown levels yield an
// empty, non-nil list.
func (r *Resolver) Get(level triage.Level) []string {
	items, ok := r.table[level]
	if !ok {
		return []string{}
	}
	return slices.Clone(items)
}

// Levels returns the levels present in the table, least urgent first.
func (r *Resolver) Levels() []triage.Level {
	return slices.Sorted(maps.Keys(r.table))
}

// Format renders items as a Markdown bullet list under a fixed header.
func Format(items []string) string {
	if len(items) == 0 {
		return emptyMessage
	}
	var b strings.Builder
	b.WriteString(header)
	for _, item := range items {
		b.WriteString("- ")
		b.WriteString(item)
		b.WriteByte('\n')
	}
	return b.String()
}
