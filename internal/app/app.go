package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/movelaria/search-service/internal/config"
	"github.com/movelaria/search-service/internal/engine"
	"github.com/movelaria/search-service/internal/engine/memory"
	pgengine "github.com/movelaria/search-service/internal/engine/postgres"
	"github.com/movelaria/search-service/internal/event"
	handler "github.com/movelaria/search-service/internal/handler/http"
	redisrepo "github.com/movelaria/search-service/internal/repository/redis"
	"github.com/movelaria/search-service/internal/service"
	"github.com/movelaria/search-service/pkg/database"
	"github.com/movelaria/search-service/pkg/health"
	pkgkafka "github.com/movelaria/search-service/pkg/kafka"
	"github.com/movelaria/search-service/pkg/middleware"
	"github.com/movelaria/search-service/pkg/tracing"
)

// App wires together all dependencies and runs the search service.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	pool        *pgxpool.Pool
	redisClient *redis.Client
	producer    *pkgkafka.Producer

	httpServer      *http.Server
	tracingShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	tracingShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "search-service",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.TracingEndpoint,
		SampleRate:     cfg.TracingSampleRatio,
		Enabled:        cfg.TracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	healthHandler := health.NewHandler()

	// The search engine hosts all search computation; the service layer only
	// orchestrates calls into it.
	var eng engine.Engine
	var pool *pgxpool.Pool
	switch cfg.SearchEngine {
	case "postgres":
		pgCfg := cfg.PostgresConfig()
		pool, err = database.NewPostgresPoolWithLogger(ctx, &pgCfg, logger)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		pgEng := pgengine.New(pool, logger)
		eng = pgEng

		healthHandler.Register("postgres", pgEng.Ping)
		prometheus.MustRegister(database.NewPoolStatsCollector(pool, "search"))

		logger.Info("postgres search engine initialized",
			slog.String("host", cfg.DBHost),
			slog.String("database", cfg.DBName),
		)
	default:
		eng = memory.New()
		logger.Info("in-memory search engine initialized")
	}

	opts := []service.Option{}

	// Recent searches are a best-effort feature: an unreachable redis must
	// not keep the service from starting.
	var redisClient *redis.Client
	redisClient, err = database.NewRedisClient(ctx, cfg.RedisConfig())
	if err != nil {
		logger.Warn("redis unavailable, recent searches disabled",
			slog.String("error", err.Error()),
		)
		redisClient = nil
	} else {
		opts = append(opts, service.WithRecentSearchStore(redisrepo.NewRecentSearchStore(redisClient)))
		healthHandler.Register("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	var producer *pkgkafka.Producer
	if cfg.KafkaEventsEnable {
		producer = pkgkafka.NewProducer(
			pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers, cfg.KafkaSearchTopic), logger)
		opts = append(opts, service.WithEventPublisher(event.NewProducer(producer)))
		healthHandler.Register("kafka", func(ctx context.Context) error {
			return pkgkafka.PingBrokers(ctx, cfg.KafkaBrokers)
		})
		logger.Info("kafka event producer initialized",
			slog.Any("brokers", cfg.KafkaBrokers),
			slog.String("topic", cfg.KafkaSearchTopic),
		)
	}

	searchService := service.NewSearchService(eng, logger, opts...)

	router := handler.NewRouter(handler.RouterConfig{
		Service:         searchService,
		Health:          healthHandler,
		TokenValidator:  staticTokenValidator(cfg.APIToken, cfg.APIAccountID),
		PublicAccountID: cfg.APIAccountID,
		CORS:            corsConfig(cfg),
		Logger:          logger,
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:             cfg,
		logger:          logger,
		pool:            pool,
		redisClient:     redisClient,
		producer:        producer,
		httpServer:      httpServer,
		tracingShutdown: tracingShutdown,
	}, nil
}

// staticTokenValidator accepts the single configured API token and maps it to
// an account with full SEARCH grants. An empty token rejects everything,
// effectively disabling the internal surface.
func staticTokenValidator(apiToken string, accountID int64) middleware.TokenValidator {
	return func(token string) (*middleware.Principal, error) {
		if apiToken == "" || token != apiToken {
			return nil, errors.New("invalid token")
		}
		return &middleware.Principal{
			AccountID: accountID,
			Grants:    map[string][]string{"SEARCH": {"READ", "CREATE"}},
		}, nil
	}
}

func corsConfig(cfg *config.Config) middleware.CORSConfig {
	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.CORSAllowedOrigins) > 0 {
		corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins
	}
	return corsCfg
}

// Run starts the HTTP server, blocking until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.pool != nil {
		a.pool.Close()
	}

	if err := a.tracingShutdown(shutdownCtx); err != nil {
		a.logger.Error("tracing shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
