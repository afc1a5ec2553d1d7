package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/futureaiitofficial/prosumeai-sub005/internal"
	"github.com/futureaiitofficial/prosumeai-sub005/internal/address"
	"github.com/futureaiitofficial/prosumeai-sub005/internal/billing"
	"github.com/futureaiitofficial/prosumeai-sub005/internal/cache"
	"github.com/futureaiitofficial/prosumeai-sub005/internal/domain"
	"github.com/futureaiitofficial/prosumeai-sub005/internal/events"
	"github.com/futureaiitofficial/prosumeai-sub005/internal/handler/api"
	"github.com/futureaiitofficial/prosumeai-sub005/internal/middleware"
	"github.com/futureaiitofficial/prosumeai-sub005/internal/postgres"
	"github.com/futureaiitofficial/prosumeai-sub005/internal/repository"
	"github.com/futureaiitofficial/prosumeai-sub005/internal/router"
	"github.com/futureaiitofficial/prosumeai-sub005/internal/routes"
	"github.com/futureaiitofficial/prosumeai-sub005/internal/service"
	"github.com/futureaiitofficial/prosumeai-sub005/internal/telemetry"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize Sentry (no-op when disabled)
	flushSentry, err := telemetry.InitSentry(cfg.Sentry, logger)
	if err != nil {
		return fmt.Errorf("sentry initialization failed: %w", err)
	}
	defer flushSentry()

	// Load country rules
	rules, err := loadRules(cfg.RulesFile)
	if err != nil {
		return err
	}
	logger.Info("Country rules loaded", "countries", len(rules.Countries()), "file", cfg.RulesFile)

	// Initialize database/sql connection for migrations
	logger.Info("Connecting to database...")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	logger.Info("Database connection established")

	// Run migrations
	logger.Info("Running database migrations...")
	if err := internal.RunMigrations(sqlDB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if version, err := internal.MigrationVersion(sqlDB); err == nil {
		logger.Info("Database migrations completed successfully", "version", version)
	}

	// Initialize pgx connection pool for application
	pool, err := pgxpool.New(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	// Metrics
	businessMetrics := telemetry.InitBusinessMetrics(cfg.MetricsNamespace)
	httpMetrics := middleware.NewMetrics(prometheus.DefaultRegisterer, prometheus.DefaultGatherer, cfg.MetricsNamespace)

	checks := map[string]api.HealthCheck{
		"postgres": pool.Ping,
	}

	// Repository, optionally behind the Redis cache
	var repo domain.BillingDetailsRepository = postgres.NewBillingDetailsStore(repository.New(pool))
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()

		repo = cache.NewBillingDetails(repo, rdb, cfg.Redis.TTL, logger, businessMetrics)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		logger.Info("Redis cache enabled", "ttl", cfg.Redis.TTL)
	}

	// Event publisher
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.NATS.URL != "" {
		nc, err := events.Connect(cfg.NATS.URL, logger, middleware.GetRequestID)
		if err != nil {
			return err
		}
		defer func() {
			if err := nc.Close(); err != nil {
				logger.Warn("failed to drain NATS connection", "error", err)
			}
		}()
		publisher = nc
		logger.Info("NATS publisher enabled")
	}

	// Payment gateway
	var gateway billing.Provider
	if cfg.Stripe.Enabled() {
		stripeConfig := billing.StripeConfig{
			APIKey:         cfg.Stripe.SecretKey,
			MaxRetries:     cfg.Stripe.MaxRetries,
			TimeoutSeconds: cfg.Stripe.TimeoutSeconds,
		}
		provider, err := billing.NewStripeProvider(stripeConfig)
		if err != nil {
			return fmt.Errorf("failed to initialize Stripe provider: %w", err)
		}
		gateway = provider
		logger.Info("Stripe customer sync enabled", "test_mode", stripeConfig.IsTestMode())
	} else {
		logger.Warn("STRIPE_SECRET_KEY not set, billing details are stored locally only")
	}

	billingService := service.NewBillingDetailsService(service.BillingDetailsDeps{
		Rules:   rules,
		Repo:    repo,
		Gateway: gateway,
		Events:  publisher,
		Metrics: businessMetrics,
		Logger:  logger,
	})

	// ==========================================================================
	// Router
	// ==========================================================================

	keystrokeLimiter := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	defer keystrokeLimiter.Stop()
	saveLimiter := middleware.NewRateLimiter(middleware.StrictRateLimiterConfig())
	defer saveLimiter.Stop()

	r := router.New(
		middleware.RequestID,
		middleware.WithClientIP(),
		middleware.WithRequestLogger(logger),
		telemetry.SentryMiddleware(),
		middleware.Recover,
		httpMetrics.Middleware,
		middleware.MaxBodySize(middleware.DefaultMaxBodySize),
		middleware.Timeout(middleware.DefaultTimeout),
		router.Logger(logger),
	)

	routes.RegisterAPIRoutes(r, routes.APIDeps{
		AddressHandler:        api.NewAddressHandler(billingService),
		BillingDetailsHandler: api.NewBillingDetailsHandler(billingService),
		KeystrokeLimit:        keystrokeLimiter.Middleware,
		SaveLimit:             saveLimiter.Middleware,
	})
	routes.RegisterOpsRoutes(r, routes.OpsDeps{
		HealthHandler:  api.NewHealthHandler(checks),
		MetricsHandler: httpMetrics.Handler(),
	})

	logger.Debug("Routes registered", "routes", r.Routes())

	var h http.Handler = r
	if len(cfg.AllowedOrigins) > 0 {
		h = router.CORS(cfg.AllowedOrigins)(r)
	}

	// ==========================================================================
	// Serve
	// ==========================================================================

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting billing address server", "address", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		logger.Info("Server stopped")
	}

	return nil
}

func loadRules(path string) (*address.RuleBook, error) {
	if path == "" {
		rules, err := address.DefaultRules()
		if err != nil {
			return nil, fmt.Errorf("failed to load embedded country rules: %w", err)
		}
		return rules, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open RULES_FILE: %w", err)
	}
	defer f.Close()

	rules, err := address.LoadRules(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load RULES_FILE %s: %w", path, err)
	}
	return rules, nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
