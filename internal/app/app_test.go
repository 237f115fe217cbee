package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/garyellow/calmmate-go/internal/chat"
	"github.com/garyellow/calmmate-go/internal/config"
	"github.com/garyellow/calmmate-go/internal/contacts"
	"github.com/garyellow/calmmate-go/internal/genai"
	"github.com/garyellow/calmmate-go/internal/logger"
	"github.com/garyellow/calmmate-go/internal/metrics"
	"github.com/garyellow/calmmate-go/internal/ratelimit"
	"github.com/garyellow/calmmate-go/internal/refdata"
	"github.com/garyellow/calmmate-go/internal/reply"
	"github.com/garyellow/calmmate-go/internal/sentiment"
	"github.com/garyellow/calmmate-go/internal/storage"
	"github.com/garyellow/calmmate-go/internal/suggestion"
	"github.com/garyellow/calmmate-go/internal/triage"
	"github.com/garyellow/calmmate-go/internal/university"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const (
	testUniversity = "Example State University"
	testStudentID  = "S1001"
	testPassword   = "campus-pass"
)

// setupTestApp builds an Application over a temp database, the embedded
// location table and a one-student university directory. Sentiment is
// fixed at a mildly positive score so levels depend only on keywords.
func setupTestApp(t *testing.T) *Application {
	t.Helper()

	db, err := storage.New(context.Background(), filepath.Join(t.TempDir(), "test.db"),
		storage.WithHashCost(bcrypt.MinCost))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	table, err := refdata.DefaultLocations()
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	dir, err := university.NewDirectory(university.RawDirectory{
		testUniversity: {
			Resources: []university.Resource{
				{Kind: "counseling", Name: "Counseling Center", Phone: "555-0100"},
			},
			Students: map[string]university.Student{
				testStudentID: {Name: "Jordan Lee", PasswordHash: string(hash)},
			},
		},
	})
	require.NoError(t, err)

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	log := logger.NewWithWriter("error", io.Discard)

	classifier := triage.NewClassifier(triage.DefaultTiers(),
		sentiment.ScorerFunc(func(string) float64 { return 0.1 }))

	return &Application{
		cfg:      &config.Config{MaxMessageSize: 4000},
		logger:   log,
		db:       db,
		metrics:  m,
		registry: registry,
		data: &refdata.Data{
			Contacts:         table,
			Universities:     dir,
			LocationOrigin:   "embedded",
			UniversityOrigin: "test",
			LoadedAt:         time.Now(),
		},
		contacts:     contacts.NewResolver(table),
		universities: dir,
		classifier:   classifier,
		chat: chat.NewService(chat.ServiceConfig{
			Classifier:     classifier,
			Suggestions:    suggestion.NewResolver(suggestion.DefaultTable()),
			Selector:       reply.NewDefaultSelector(),
			Recorder:       m,
			Logger:         log,
			MaxMessageSize: 4000,
			NuanceTimeout:  time.Second,
		}),
	}
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if r != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestLivenessCheck(t *testing.T) {
	t.Parallel()
	app := setupTestApp(t)
	_ = app.db.Close()

	w := doJSON(t, app.router(), http.MethodGet, "/livez", nil)

	assert.Equal(t, http.StatusOK, w.Code, "liveness must not depend on the database")
	assert.Equal(t, "alive", decode(t, w)["status"])
}

func TestReadinessCheckHealthy(t *testing.T) {
	t.Parallel()
	app := setupTestApp(t)

	w := doJSON(t, app.router(), http.MethodGet, "/readyz", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, "ready", body["status"])
	assert.Equal(t, "connected", body["database"])
	assert.EqualValues(t, 0, body["users"])

	features, ok := body["features"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, false, features["llm_reply"])
	assert.Equal(t, false, features["nuance_oracle"])

	ref, ok := body["reference_data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "embedded", ref["locations"])
	assert.EqualValues(t, app.data.Contacts.Size(), ref["contacts"])
}

func TestReadinessCheckDatabaseFailure(t *testing.T) {
	t.Parallel()
	app := setupTestApp(t)
	_ = app.db.Close()

	w := doJSON(t, app.router(), http.MethodGet, "/readyz", nil)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decode(t, w)
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "database unavailable", body["reason"])
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()
	app := setupTestApp(t)
	r := app.router()

	doJSON(t, r, http.MethodPost, "/api/chat", map[string]string{"message": "hello"})
	w := doJSON(t, r, http.MethodGet, "/metrics", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "calmmate_chat_requests_total")
}

func TestMetricsEndpointRequiresAuth(t *testing.T) {
	t.Parallel()
	app := setupTestApp(t)
	app.cfg.MetricsAuthEnabled = true
	app.cfg.MetricsUsername = "prometheus"
	app.cfg.MetricsPassword = "secret"

	w := doJSON(t, app.router(), http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBuildLLMConfig(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		LLMProviders:      []string{"groq", "bogus", "gemini"},
		LLMMaxAttempts:    3,
		GroqAPIKey:        "gk",
		GeminiAPIKey:      "gm",
		GroqReplyModels:   []string{"custom-groq"},
		GeminiOracleModel: "custom-oracle",
	}

	got := buildLLMConfig(cfg)

	assert.Equal(t, []genai.Provider{genai.ProviderGroq, genai.ProviderGemini}, got.Providers)
	assert.Equal(t, 3, got.RetryConfig.MaxAttempts)
	assert.Equal(t, "gk", got.Groq.APIKey)
	assert.Equal(t, []string{"custom-groq"}, got.Groq.ReplyModels)
	assert.Equal(t, genai.DefaultGeminiReplyModels, got.Gemini.ReplyModels)
	assert.Equal(t, "custom-oracle", got.Gemini.OracleModel)
	assert.Equal(t, genai.DefaultCerebrasOracleModel, got.Cerebras.OracleModel)
	assert.Empty(t, got.Cerebras.APIKey)
}

func TestChatRateLimit(t *testing.T) {
	t.Parallel()
	app := setupTestApp(t)
	app.chatLimiter = ratelimit.NewKeyedLimiter(ratelimit.KeyedConfig{
		Name:       "chat",
		Burst:      1,
		RefillRate: 0.01,
		Metrics:    app.metrics,
	})
	t.Cleanup(app.chatLimiter.Stop)
	r := app.router()

	first := doJSON(t, r, http.MethodPost, "/api/chat", map[string]string{"message": "hello"})
	require.Equal(t, http.StatusOK, first.Code)

	second := doJSON(t, r, http.MethodPost, "/api/chat", map[string]string{"message": "hello"})
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
	assert.Contains(t, decode(t, second)["error"], "Too many messages")

	// other routes are not throttled
	other := doJSON(t, r, http.MethodGet, "/api/countries", nil)
	assert.Equal(t, http.StatusOK, other.Code)
}
