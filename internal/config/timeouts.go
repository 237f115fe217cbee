// Package config provides centralized timeout constants for the application.
//
// Chat requests are interactive: a reply that takes longer than a few seconds
// is worse than the canned contextual reply, so LLM budgets are kept short
// and every failure path degrades to the rule-based answer.
package config

import "time"

// HTTP server timeouts
const (
	// HTTPRead bounds reading a request. Chat payloads are small JSON bodies.
	HTTPRead = 10 * time.Second

	// HTTPWrite must exceed ChatProcessing so a slow reply is still written.
	HTTPWrite = 35 * time.Second

	// HTTPIdle is the keep-alive idle timeout.
	HTTPIdle = 120 * time.Second

	// ReadinessCheck bounds the database ping behind /readyz.
	ReadinessCheck = 3 * time.Second
)

// Chat pipeline timeouts
const (
	// ChatProcessing is the default budget for the generative reply.
	// On expiry the contextual selector answers instead.
	ChatProcessing = 30 * time.Second

	// NuanceOracle bounds the single borderline-message oracle call.
	NuanceOracle = 5 * time.Second
)

// Database timeouts
const (
	// DatabaseBusyTimeout is how long SQLite waits on a locked database.
	DatabaseBusyTimeout = 30 * time.Second

	// DatabaseConnMaxLifetime recycles pooled connections.
	DatabaseConnMaxLifetime = time.Hour
)

// Background task intervals
const (
	// RateLimiterCleanupInterval drops idle per-IP buckets.
	RateLimiterCleanupInterval = 5 * time.Minute
)

// Startup and shutdown
const (
	// ReferenceDataLoad bounds loading every reference table at startup,
	// including remote fetches.
	ReferenceDataLoad = 60 * time.Second

	// GracefulShutdown is the default time allowed for in-flight requests.
	GracefulShutdown = 30 * time.Second
)
