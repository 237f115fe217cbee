// Package triage classifies a free-text message into a severity level.
//
// Classification walks a fixed ladder and stops at the first rung that
// fires: emergency phrases, high-risk phrases, strongly negative sentiment,
// an optional nuance oracle for mildly negative text (with a keyword
// fallback), and finally Low.
package triage

import (
	"fmt"
	"strings"
)

// Level is a severity label. Higher values are more urgent.
type Level int

const (
	Low Level = iota
	Medium
	High
	Emergency
)

var levelNames = [...]string{"Low", "Medium", "High", "Emergency"}

// Levels lists every level from least to most urgent.
func Levels() []Level {
	return []Level{Low, Medium, High, Emergency}
}

// Valid reports whether l is one of the four defined levels.
func (l Level) Valid() bool {
	return l >= Low && l <= Emergency
}

func (l Level) String() string {
	if !l.Valid() {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return levelNames[l]
}

// ParseLevel accepts a level name in any case.
func ParseLevel(s string) (Level, error) {
	name := strings.TrimSpace(s)
	for i, n := range levelNames {
		if strings.EqualFold(n, name) {
			return Level(i), nil
		}
	}
	return Low, fmt.Errorf("unknown severity level %q", s)
}

// MarshalText encodes the level as its name.
func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("invalid severity level %d", int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText decodes a level name.
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
