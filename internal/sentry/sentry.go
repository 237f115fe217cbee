// Package sentry wires the Sentry SDK for error reporting. Chat messages
// and credentials never leave the process: request bodies, cookies and
// auth headers are scrubbed before an event is sent.
package sentry

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/garyellow/calmmate-go/internal/ctxutil"
	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
)

// Config holds Sentry settings.
type Config struct {
	// DSN is the project DSN. Empty disables reporting.
	DSN string

	// Environment identifies the deployment, e.g. "production".
	Environment string

	// Release identifies the build.
	Release string

	// SampleRate is the share of errors sent, within (0, 1]. Zero means 1.
	SampleRate float64

	Debug bool
}

// Filtered is the placeholder for scrubbed values.
const Filtered = "[Filtered]"

var sensitiveHeaders = []string{"Authorization", "Cookie", "Proxy-Authorization", "X-Api-Key"}

// Initialize sets up the SDK. An empty DSN leaves Sentry disabled.
func Initialize(cfg Config) error {
	if cfg.DSN == "" {
		return nil
	}
	if cfg.SampleRate < 0 || cfg.SampleRate > 1 {
		return errors.New("sentry sample rate must be within [0,1]")
	}

	sampleRate := cfg.SampleRate
	if sampleRate == 0 {
		sampleRate = 1.0
	}

	return sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		SampleRate:       sampleRate,
		Debug:            cfg.Debug,
		AttachStacktrace: true,
		SendDefaultPII:   false,
		BeforeSend:       scrub,
	})
}

// scrub removes user content from an event.
func scrub(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	if event == nil {
		return nil
	}
	if req := event.Request; req != nil {
		if req.Data != "" {
			req.Data = Filtered
		}
		if req.Cookies != "" {
			req.Cookies = Filtered
		}
		for _, h := range sensitiveHeaders {
			if _, ok := req.Headers[h]; ok {
				req.Headers[h] = Filtered
			}
		}
	}
	event.User.Email = ""
	event.User.IPAddress = ""
	return event
}

// Middleware returns the gin middleware that recovers panics into Sentry
// events and re-panics so gin's own recovery still answers 500.
// It is a no-op handler when Sentry is disabled.
func Middleware() gin.HandlerFunc {
	if !IsEnabled() {
		return func(c *gin.Context) { c.Next() }
	}
	return sentrygin.New(sentrygin.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         2 * time.Second,
	})
}

// Flush waits for buffered events. It reports whether all were sent.
func Flush(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}

// IsEnabled reports whether a client is bound to the current hub.
func IsEnabled() bool {
	return sentry.CurrentHub().Client() != nil
}

// CaptureException reports err through the request's hub when the gin
// middleware attached one, tagging it with the request id.
func CaptureException(ctx context.Context, err error) {
	if err == nil || !IsEnabled() {
		return
	}
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub().Clone()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		if id, ok := ctxutil.GetRequestID(ctx); ok {
			scope.SetTag("request_id", id)
		}
		hub.CaptureException(err)
	})
}

// CaptureHTTPError reports a server-side failure on a route. Client
// errors below 500 are not reported.
func CaptureHTTPError(c *gin.Context, status int, err error) {
	if status < http.StatusInternalServerError || err == nil || !IsEnabled() {
		return
	}
	if hub := sentrygin.GetHubFromContext(c); hub != nil {
		hub.WithScope(func(scope *sentry.Scope) {
			scope.SetTag("route", c.FullPath())
			if id, ok := ctxutil.GetRequestID(c.Request.Context()); ok {
				scope.SetTag("request_id", id)
			}
			hub.CaptureException(err)
		})
		return
	}
	CaptureException(c.Request.Context(), err)
}
