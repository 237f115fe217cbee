// Package metrics defines the Prometheus metrics of the service.
// All Record methods are safe on a nil *Metrics so callers may run
// without a registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Chat metrics
	ChatRequestsTotal   *prometheus.CounterVec
	ChatDurationSeconds prometheus.Histogram

	// Triage metrics
	TriageTotal       *prometheus.CounterVec
	NuanceOracleTotal *prometheus.CounterVec

	// Reply metrics
	ReplySourceTotal *prometheus.CounterVec
	ReplyTopicTotal  *prometheus.CounterVec

	// Contact metrics
	ContactLookupsTotal  *prometheus.CounterVec
	ContactSearchesTotal *prometheus.CounterVec

	// LLM metrics
	LLMTotal         *prometheus.CounterVec
	LLMDuration      *prometheus.HistogramVec
	LLMFallbackTotal *prometheus.CounterVec

	// Auth metrics
	AuthTotal *prometheus.CounterVec

	// HTTP metrics
	HTTPErrorsTotal *prometheus.CounterVec

	// Rate limiter metrics
	RateLimiterDropped *prometheus.CounterVec

	// Reference data metrics
	ReferenceDataEntries *prometheus.GaugeVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		ChatRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "calmmate_chat_requests_total",
				Help: "Total number of chat requests by status",
			},
			[]string{"status"}, // status: success, invalid, rate_limited, error
		),

		ChatDurationSeconds: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "calmmate_chat_duration_seconds",
				Help:    "Chat request processing duration in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
			},
		),

		TriageTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "calmmate_triage_total",
				Help: "Total number of severity classifications by level and deciding rule",
			},
			[]string{"level", "rule"},
		),

		NuanceOracleTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "calmmate_nuance_oracle_total",
				Help: "Total number of nuance oracle consultations by outcome",
			},
			[]string{"outcome"}, // outcome: voted, failed, malformed, absent
		),

		ReplySourceTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "calmmate_reply_source_total",
				Help: "Total number of replies by source",
			},
			[]string{"source"}, // source: generative, contextual
		),

		ReplyTopicTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "calmmate_reply_topic_total",
				Help: "Total number of contextual replies by topic",
			},
			[]string{"topic"},
		),

		ContactLookupsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "calmmate_contact_lookups_total",
				Help: "Total number of contact lookups by match kind",
			},
			[]string{"match"}, // match: exact, fuzzy, none
		),

		ContactSearchesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "calmmate_contact_searches_total",
				Help: "Total number of free-text contact searches by result",
			},
			[]string{"result"}, // result: hit, miss
		),

		LLMTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "calmmate_llm_requests_total",
				Help: "Total number of LLM calls by provider, operation and status",
			},
			[]string{"provider", "operation", "status"}, // operation: reply, oracle
		),

		LLMDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "calmmate_llm_duration_seconds",
				Help:    "LLM call duration in seconds by provider and operation",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"provider", "operation"},
		),

		LLMFallbackTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "calmmate_llm_fallback_total",
				Help: "Total number of provider fallbacks",
			},
			[]string{"from", "to", "operation"},
		),

		AuthTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "calmmate_auth_total",
				Help: "Total number of authentication attempts by kind and status",
			},
			[]string{"kind", "status"}, // kind: register, login, student
		),

		HTTPErrorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "calmmate_http_errors_total",
				Help: "Total HTTP errors by type and route",
			},
			[]string{"error_type", "route"},
		),

		RateLimiterDropped: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "calmmate_rate_limiter_dropped_total",
				Help: "Total number of requests dropped by rate limiter",
			},
			[]string{"limiter_type"}, // limiter_type: chat, llm
		),

		ReferenceDataEntries: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "calmmate_reference_data_entries",
				Help: "Number of entries in each loaded reference table",
			},
			[]string{"kind"}, // kind: contacts, universities
		),
	}

	return m
}

// RecordChat records a chat request with status and duration
func (m *Metrics) RecordChat(status string, duration float64) {
	if m == nil {
		return
	}
	m.ChatRequestsTotal.WithLabelValues(status).Inc()
	m.ChatDurationSeconds.Observe(duration)
}

// RecordTriage records a severity classification
func (m *Metrics) RecordTriage(level, rule, oracleOutcome string) {
	if m == nil {
		return
	}
	m.TriageTotal.WithLabelValues(level, rule).Inc()
	if oracleOutcome != "" && oracleOutcome != "not_consulted" {
		m.NuanceOracleTotal.WithLabelValues(oracleOutcome).Inc()
	}
}

// RecordReply records where a reply came from
func (m *Metrics) RecordReply(source, topic string) {
	if m == nil {
		return
	}
	m.ReplySourceTotal.WithLabelValues(source).Inc()
	if topic != "" {
		m.ReplyTopicTotal.WithLabelValues(topic).Inc()
	}
}

// RecordContactLookup records a country/city/category lookup
func (m *Metrics) RecordContactLookup(match string) {
	if m == nil {
		return
	}
	m.ContactLookupsTotal.WithLabelValues(match).Inc()
}

// RecordContactSearch records a free-text search
func (m *Metrics) RecordContactSearch(hits int) {
	if m == nil {
		return
	}
	result := "hit"
	if hits == 0 {
		result = "miss"
	}
	m.ContactSearchesTotal.WithLabelValues(result).Inc()
}

// RecordLLM records one LLM call
func (m *Metrics) RecordLLM(provider, operation, status string, duration float64) {
	if m == nil {
		return
	}
	m.LLMTotal.WithLabelValues(provider, operation, status).Inc()
	m.LLMDuration.WithLabelValues(provider, operation).Observe(duration)
}

// RecordLLMFallback records a switch to another provider
func (m *Metrics) RecordLLMFallback(from, to, operation string) {
	if m == nil {
		return
	}
	m.LLMFallbackTotal.WithLabelValues(from, to, operation).Inc()
}

// RecordAuth records an authentication attempt
func (m *Metrics) RecordAuth(kind, status string) {
	if m == nil {
		return
	}
	m.AuthTotal.WithLabelValues(kind, status).Inc()
}

// RecordHTTPError records an HTTP error
func (m *Metrics) RecordHTTPError(errorType, route string) {
	if m == nil {
		return
	}
	m.HTTPErrorsTotal.WithLabelValues(errorType, route).Inc()
}

// RecordRateLimiterDrop records a dropped request
func (m *Metrics) RecordRateLimiterDrop(limiterType string) {
	if m == nil {
		return
	}
	m.RateLimiterDropped.WithLabelValues(limiterType).Inc()
}

// SetReferenceDataEntries records the size of a loaded reference table
func (m *Metrics) SetReferenceDataEntries(kind string, n int) {
	if m == nil {
		return
	}
	m.ReferenceDataEntries.WithLabelValues(kind).Set(float64(n))
}
