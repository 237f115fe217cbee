// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/garyellow/calmmate-go/internal/buildinfo"
	"github.com/garyellow/calmmate-go/internal/chat"
	"github.com/garyellow/calmmate-go/internal/config"
	"github.com/garyellow/calmmate-go/internal/contacts"
	"github.com/garyellow/calmmate-go/internal/genai"
	"github.com/garyellow/calmmate-go/internal/logger"
	"github.com/garyellow/calmmate-go/internal/metrics"
	"github.com/garyellow/calmmate-go/internal/r2client"
	"github.com/garyellow/calmmate-go/internal/ratelimit"
	"github.com/garyellow/calmmate-go/internal/refdata"
	"github.com/garyellow/calmmate-go/internal/reply"
	"github.com/garyellow/calmmate-go/internal/sentiment"
	"github.com/garyellow/calmmate-go/internal/sentry"
	"github.com/garyellow/calmmate-go/internal/storage"
	"github.com/garyellow/calmmate-go/internal/suggestion"
	"github.com/garyellow/calmmate-go/internal/triage"
	"github.com/garyellow/calmmate-go/internal/university"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Application manages the application lifecycle and dependencies.
type Application struct {
	cfg          *config.Config
	logger       *logger.Logger
	db           *storage.DB
	metrics      *metrics.Metrics
	registry     *prometheus.Registry
	data         *refdata.Data
	contacts     *contacts.Resolver
	universities *university.Directory
	chat         *chat.Service
	classifier   *triage.Classifier
	generator    *genai.Generator
	chatLimiter  *ratelimit.KeyedLimiter
	llmBudget    *ratelimit.Budget
	server       *http.Server
}

// Initialize creates and initializes a new application with all dependencies.
func Initialize(ctx context.Context, cfg *config.Config) (*Application, error) {
	var logOpts logger.Options
	if cfg.BetterStackActive() {
		logOpts.BetterStackToken = cfg.BetterStackToken
		logOpts.BetterStackEndpoint = cfg.BetterStackEndpoint
	}
	log := logger.NewWithOptions(cfg.LogLevel, os.Stdout, logOpts)

	log = log.WithField("service", "calmmate-go")
	if host, err := os.Hostname(); err == nil && host != "" {
		log = log.WithField("instance_id", host)
	}

	// Package-level slog calls pick up request ids through the context handler.
	slog.SetDefault(log.Logger)

	log.WithField("version", buildinfo.Release()).Info("Initializing application...")
	if cfg.BetterStackActive() {
		log.WithField("endpoint", cfg.BetterStackEndpoint).Info("Better Stack logging enabled")
	}

	if cfg.SentryEnabled {
		release := cfg.SentryRelease
		if release == "" {
			release = buildinfo.Release()
		}
		if err := sentry.Initialize(sentry.Config{
			DSN:         cfg.SentryDSN,
			Environment: cfg.Environment,
			Release:     release,
			SampleRate:  cfg.SentrySampleRate,
		}); err != nil {
			log.WithError(err).Warn("Sentry initialization failed")
		} else {
			log.Info("Sentry error reporting enabled")
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewBuildInfoCollector(),
	)
	m := metrics.New(registry)

	data, err := loadReferenceData(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("reference data: %w", err)
	}
	m.SetReferenceDataEntries(string(refdata.Locations), data.Contacts.Size())
	m.SetReferenceDataEntries(string(refdata.Universities), data.Universities.Size())

	db, err := storage.New(ctx, cfg.SQLitePath())
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	log.WithField("path", cfg.SQLitePath()).Info("Database connected")

	var (
		generator *genai.Generator
		oracle    *genai.NuanceOracle
	)
	if cfg.LLMEnabled && cfg.HasLLMProvider() {
		llmCfg := buildLLMConfig(cfg)
		generator = genai.CreateGenerator(ctx, llmCfg, m)
		if cfg.NuanceOracleEnabled {
			oracle = genai.CreateNuanceOracle(ctx, llmCfg, m)
		}

		providers := llmCfg.ConfiguredProviders()
		names := make([]string, len(providers))
		for i, p := range providers {
			names[i] = p.String()
		}
		log.WithField("providers", names).Info("LLM features enabled")
	}

	var triageOpts []triage.Option
	if oracle != nil {
		triageOpts = append(triageOpts, triage.WithOracle(oracle))
	}
	classifier := triage.NewClassifier(triage.DefaultTiers(), sentiment.NewVader(), triageOpts...)

	chatLimiter := ratelimit.NewKeyedLimiter(ratelimit.KeyedConfig{
		Name:          "chat",
		Burst:         cfg.ChatRateBurst,
		RefillRate:    cfg.ChatRateRefill,
		CleanupPeriod: config.RateLimiterCleanupInterval,
		Metrics:       m,
	})
	llmBudget := ratelimit.NewBudget(ratelimit.BudgetConfig{
		Name:          "llm",
		Burst:         cfg.LLMRateBurst,
		RefillPerHour: cfg.LLMRateRefill,
		DailyLimit:    cfg.LLMRateDaily,
		Metrics:       m,
	})

	chatService := chat.NewService(chat.ServiceConfig{
		Classifier:     classifier,
		Suggestions:    suggestion.NewResolver(suggestion.DefaultTable()),
		Selector:       reply.NewDefaultSelector(),
		Generator:      generator,
		Budget:         llmBudget,
		Recorder:       m,
		Logger:         log,
		MaxMessageSize: cfg.MaxMessageSize,
		NuanceTimeout:  cfg.NuanceTimeout,
		ReplyTimeout:   cfg.ChatTimeout,
	})

	app := &Application{
		cfg:          cfg,
		logger:       log,
		db:           db,
		metrics:      m,
		registry:     registry,
		data:         data,
		contacts:     contacts.NewResolver(data.Contacts),
		universities: data.Universities,
		chat:         chatService,
		classifier:   classifier,
		generator:    generator,
		chatLimiter:  chatLimiter,
		llmBudget:    llmBudget,
	}

	gin.SetMode(gin.ReleaseMode)
	app.server = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.router(),
		ReadHeaderTimeout: config.HTTPRead,
		ReadTimeout:       config.HTTPRead,
		WriteTimeout:      config.HTTPWrite,
		IdleTimeout:       config.HTTPIdle,
	}

	log.Info("Initialization complete")
	return app, nil
}

// loadReferenceData reads the location and university tables, preferring
// R2 when it is enabled. An R2 client that cannot be built is logged and
// skipped so the local sources still load.
func loadReferenceData(ctx context.Context, cfg *config.Config, log *logger.Logger) (*refdata.Data, error) {
	ctx, cancel := context.WithTimeout(ctx, config.ReferenceDataLoad)
	defer cancel()

	opts := refdata.Options{
		Locations:    refdata.Source{Path: cfg.LocationDataPath},
		Universities: refdata.Source{Path: cfg.UniversityDataPath},
		Logger:       log.Logger,
	}

	if cfg.R2Enabled {
		client, err := r2client.New(ctx, r2client.Config{
			Endpoint:    r2client.EndpointForAccount(cfg.R2AccountID),
			AccessKeyID: cfg.R2AccessKeyID,
			SecretKey:   cfg.R2SecretAccessKey,
			BucketName:  cfg.R2BucketName,
		})
		if err != nil {
			log.WithError(err).Warn("R2 client unavailable, using local reference data")
		} else {
			opts.Remote = client
			opts.Locations.RemoteKey = cfg.R2LocationKey
			opts.Universities.RemoteKey = cfg.R2UniversityKey
		}
	}

	return refdata.Load(ctx, opts)
}

// buildLLMConfig creates an LLMConfig from the application config.
func buildLLMConfig(cfg *config.Config) genai.LLMConfig {
	llmCfg := genai.DefaultLLMConfig()

	llmCfg.Gemini.APIKey = cfg.GeminiAPIKey
	llmCfg.Groq.APIKey = cfg.GroqAPIKey
	llmCfg.Cerebras.APIKey = cfg.CerebrasAPIKey

	if len(cfg.GeminiReplyModels) > 0 {
		llmCfg.Gemini.ReplyModels = cfg.GeminiReplyModels
	}
	if len(cfg.GroqReplyModels) > 0 {
		llmCfg.Groq.ReplyModels = cfg.GroqReplyModels
	}
	if len(cfg.CerebrasReplyModels) > 0 {
		llmCfg.Cerebras.ReplyModels = cfg.CerebrasReplyModels
	}
	if cfg.GeminiOracleModel != "" {
		llmCfg.Gemini.OracleModel = cfg.GeminiOracleModel
	}
	if cfg.GroqOracleModel != "" {
		llmCfg.Groq.OracleModel = cfg.GroqOracleModel
	}
	if cfg.CerebrasOracleModel != "" {
		llmCfg.Cerebras.OracleModel = cfg.CerebrasOracleModel
	}
	if cfg.LLMMaxAttempts > 0 {
		llmCfg.RetryConfig.MaxAttempts = cfg.LLMMaxAttempts
	}

	if len(cfg.LLMProviders) > 0 {
		providers := make([]genai.Provider, 0, len(cfg.LLMProviders))
		for _, p := range cfg.LLMProviders {
			switch p {
			case "gemini":
				providers = append(providers, genai.ProviderGemini)
			case "groq":
				providers = append(providers, genai.ProviderGroq)
			case "cerebras":
				providers = append(providers, genai.ProviderCerebras)
			default:
				slog.Warn("ignoring unknown provider", "name", p)
			}
		}
		if len(providers) > 0 {
			llmCfg.Providers = providers
		}
	}

	return llmCfg
}

// router builds the gin engine with every route.
func (a *Application) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(sentry.Middleware())
	r.Use(securityHeadersMiddleware())
	r.Use(requestContextMiddleware())
	r.Use(loggingMiddleware(a.logger))

	r.GET("/livez", a.livenessCheck)
	r.HEAD("/livez", a.livenessCheck)
	r.GET("/readyz", a.readinessCheck)
	r.HEAD("/readyz", a.readinessCheck)

	enabled, user, pass := false, "", ""
	if a.cfg != nil {
		enabled, user, pass = a.cfg.MetricsAuthEnabled, a.cfg.MetricsUsername, a.cfg.MetricsPassword
	}
	r.GET("/metrics",
		metricsAuthMiddleware(enabled, user, pass, a.metrics),
		gin.WrapH(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))

	api := r.Group("/api")
	api.POST("/chat", chatRateLimitMiddleware(a.chatLimiter), a.handleChat)
	api.POST("/contacts", a.handleContacts)
	api.GET("/contacts/search", a.handleContactSearch)
	api.GET("/countries", a.handleCountries)
	api.GET("/cities/:country", a.handleCities)
	api.POST("/university_resources", a.handleUniversityResources)
	api.POST("/university/login", a.handleUniversityLogin)
	api.POST("/register", a.handleRegister)
	api.POST("/login", a.handleLogin)

	return r
}

func (a *Application) livenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

func (a *Application) features() map[string]bool {
	return map[string]bool{
		"llm_reply":     a.generator.Enabled(),
		"nuance_oracle": a.classifier != nil && a.classifier.HasOracle(),
		"sentry":        sentry.IsEnabled(),
	}
}

func (a *Application) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), config.ReadinessCheck)
	defer cancel()

	if err := a.db.Ping(ctx); err != nil {
		a.logger.WithError(err).Warn("Readiness check failed: database unavailable")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "database unavailable",
		})
		return
	}

	body := gin.H{
		"status":   "ready",
		"database": "connected",
		"features": a.features(),
		"build":    buildinfo.Fields(),
	}
	if a.data != nil {
		body["reference_data"] = gin.H{
			"locations":    a.data.LocationOrigin,
			"contacts":     a.data.Contacts.Size(),
			"universities": a.data.UniversityOrigin,
			"loaded_at":    a.data.LoadedAt.UTC().Format(time.RFC3339),
		}
	}
	if users, err := a.db.CountUsers(ctx); err == nil {
		body["users"] = users
	} else {
		a.logger.WithError(err).Warn("Failed to count users for readiness")
	}

	c.JSON(http.StatusOK, body)
}

// Run starts the HTTP server and blocks until SIGINT or SIGTERM, then
// shuts down gracefully.
func (a *Application) Run() error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.WithField("port", a.cfg.Port).Info("Starting HTTP server")
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		a.logger.WithField("signal", sig.String()).Info("Received shutdown signal")
	case err := <-errCh:
		a.logger.WithError(err).Error("HTTP server error")
		_ = a.shutdown()
		return fmt.Errorf("http server: %w", err)
	}

	return a.shutdown()
}

// shutdown stops accepting requests, waits for in-flight ones, then
// closes resources.
func (a *Application) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	a.logger.Info("Stopping HTTP server...")
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.WithError(err).Error("HTTP server shutdown error")
	}

	a.logger.Info("Closing resources...")
	if err := a.db.Close(); err != nil {
		a.logger.WithError(err).WithField("component", "database").Error("Component close error")
	}
	if a.chatLimiter != nil {
		a.chatLimiter.Stop()
	}

	if sentry.IsEnabled() && !sentry.Flush(2*time.Second) {
		a.logger.Warn("Sentry flush timed out")
	}
	if err := a.logger.Shutdown(shutdownCtx); err != nil {
		a.logger.WithError(err).Warn("Logger shutdown timed out")
	}

	a.logger.Info("Shutdown complete")
	return nil
}
