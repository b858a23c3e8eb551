package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/DonatHalimi/OmniShop/pkg/database"
	"github.com/DonatHalimi/OmniShop/pkg/health"
	"github.com/DonatHalimi/OmniShop/pkg/httpclient"
	pkgkafka "github.com/DonatHalimi/OmniShop/pkg/kafka"
	"github.com/DonatHalimi/OmniShop/pkg/middleware"
	"github.com/DonatHalimi/OmniShop/pkg/tracing"

	"github.com/DonatHalimi/OmniShop/internal/catalog"
	"github.com/DonatHalimi/OmniShop/internal/catalog/cache"
	"github.com/DonatHalimi/OmniShop/internal/catalog/fakestore"
	"github.com/DonatHalimi/OmniShop/internal/config"
	"github.com/DonatHalimi/OmniShop/internal/event"
	handler "github.com/DonatHalimi/OmniShop/internal/handler/http"
	"github.com/DonatHalimi/OmniShop/internal/service"
	"github.com/DonatHalimi/OmniShop/internal/session"
)

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	rdb            *redis.Client
	producer       *pkgkafka.Producer
	sessions       *session.Registry
	limiter        *middleware.RateLimiter
	httpServer     *http.Server
	shutdownTracer func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, version string, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	shutdownTracer, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "storefront",
		ServiceVersion: version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTelEndpoint,
		SampleRate:     cfg.OTelSampleRate,
		Enabled:        cfg.OTelEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	a := &App{cfg: cfg, logger: logger, shutdownTracer: shutdownTracer}
	healthHandler := health.NewHandler()

	// Catalog gateway: retrying HTTP client behind a circuit breaker.
	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.CatalogTimeout
	httpCfg.MaxRetries = cfg.CatalogMaxRetries
	breaker := httpclient.NewCircuitBreakerClient(
		httpclient.New(httpCfg),
		httpclient.DefaultCircuitBreakerConfig("catalog"),
		logger,
	)
	var gw catalog.Gateway = fakestore.NewClient(cfg.CatalogBaseURL, breaker, logger)
	logger.Info("catalog gateway configured", slog.String("base_url", cfg.CatalogBaseURL))

	if cfg.CatalogCache {
		redisCfg := database.DefaultRedisConfig()
		redisCfg.Addr = cfg.RedisAddr
		redisCfg.Password = cfg.RedisPass
		redisCfg.DB = cfg.RedisDB

		rdb, err := database.NewRedisClient(ctx, redisCfg)
		if err != nil {
			_ = shutdownTracer(context.Background())
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		logger.Info("connected to Redis",
			slog.String("addr", cfg.RedisAddr),
			slog.Int("db", cfg.RedisDB),
		)
		a.rdb = rdb
		gw = cache.New(gw, rdb, cfg.CatalogCacheTTL, logger)
		healthHandler.Register("redis", database.RedisChecker(rdb))
	}
	healthHandler.RegisterOptional("catalog", catalog.Checker(gw))

	// Change events.
	var publisher event.Publisher
	if cfg.EventsEnabled {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		publisher = a.producer
		healthHandler.RegisterOptional("kafka", a.producer.Ping)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}
	eventProducer := event.NewProducer(publisher, logger)

	// Build the dependency graph.
	a.sessions = session.NewRegistry(session.Options{
		IdleTTL:   cfg.SessionIdleTTL,
		SortDelay: cfg.SortDelay,
	}, logger)
	a.limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, logger)
	storefront := service.NewStorefront(gw, a.sessions, eventProducer, logger)

	routerCfg := handler.DefaultRouterConfig()
	routerCfg.RequestTimeout = cfg.RequestTimeout
	routerCfg.PprofCIDRs = cfg.PprofAllowedCIDRs
	routerCfg.CORS.AllowedOrigins = cfg.CORSOrigins
	router := handler.NewRouter(storefront, healthHandler, a.limiter, logger, routerCfg)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return a, nil
}

// Run starts the HTTP server and background workers and blocks until the
// context is canceled.
func (a *App) Run(ctx context.Context) error {
	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		a.sessions.Run(workerCtx)
	}()
	go func() {
		defer wg.Done()
		a.limiter.Run(workerCtx)
	}()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case runErr = <-errCh:
	}

	stopWorkers()
	wg.Wait()

	if err := a.Shutdown(); err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}

	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}

	if err := a.shutdownTracer(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete",
		slog.Int("sessions_dropped", a.sessions.Len()),
	)
	return nil
}
