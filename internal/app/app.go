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
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"

	"github.com/martinmiralles/mar-pokemart/internal/auth"
	"github.com/martinmiralles/mar-pokemart/internal/config"
	"github.com/martinmiralles/mar-pokemart/internal/event"
	handler "github.com/martinmiralles/mar-pokemart/internal/handler/http"
	"github.com/martinmiralles/mar-pokemart/internal/repository/postgres"
	"github.com/martinmiralles/mar-pokemart/internal/repository/redis"
	"github.com/martinmiralles/mar-pokemart/internal/service"
	"github.com/martinmiralles/mar-pokemart/migrations"
	"github.com/martinmiralles/mar-pokemart/pkg/database"
	"github.com/martinmiralles/mar-pokemart/pkg/health"
	pkgkafka "github.com/martinmiralles/mar-pokemart/pkg/kafka"
	"github.com/martinmiralles/mar-pokemart/pkg/middleware"
	"github.com/martinmiralles/mar-pokemart/pkg/tracing"
)

const serviceName = "pokemart"

// App wires together all dependencies and runs the pokemart server.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redis          *goredis.Client
	producer       *pkgkafka.Producer
	limiter        *middleware.RateLimiter
	httpServer     *http.Server
	tracerShutdown tracing.Shutdown
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.Init(ctx, tracing.Config{
		Enabled:        cfg.OTELEnabled,
		ServiceName:    serviceName,
		ServiceVersion: cfg.Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Initialize PostgreSQL connection pool.
	pool, err := database.NewPostgresPool(ctx, database.PostgresConfig{
		URL:             cfg.DatabaseURL,
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: cfg.DBMaxConnLifetime,
		MaxConnIdleTime: cfg.DBMaxConnIdleTime,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL")
	if err := database.RegisterPoolMetrics(registry, pool, serviceName); err != nil {
		pool.Close()
		return nil, fmt.Errorf("register pool metrics: %w", err)
	}

	// Run database migrations.
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	// Configure slow query logging.
	database.SetSlowQueryLogging(cfg.SlowQueryThreshold(), logger)

	// Initialize Redis for the top products cache.
	redisClient, err := database.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis")

	// Initialize Kafka producer.
	producer := pkgkafka.NewProducer(pkgkafka.ProducerConfig{Brokers: cfg.KafkaBrokers}, registry, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	accessExpiry, err := cfg.AccessExpiry()
	if err != nil {
		_ = redisClient.Close()
		pool.Close()
		return nil, err
	}

	// Build the dependency graph.
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, accessExpiry)
	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	topCache := redis.NewTopProductsCache(redisClient, cfg.TopCacheTTL)
	eventProducer := event.NewProducer(producer, logger)

	loader := auth.NewIdentityLoader(userRepo)
	checker := auth.NewOwnershipChecker(loader)

	userService := service.NewUserService(userRepo, jwtManager, eventProducer, logger)
	productService := service.NewProductService(productRepo, topCache, checker, eventProducer, logger)
	reviewService := service.NewReviewService(productRepo, topCache, eventProducer, registry, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, checker, eventProducer, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.RegisterCritical("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})
	healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
		return producer.Ping(ctx)
	})

	limiter := middleware.NewRateLimiter(cfg.AuthRateLimitRPS, cfg.AuthRateLimitBurst, 10*time.Minute, logger)
	if err := limiter.TrustProxies(cfg.TrustedProxyCIDRs); err != nil {
		_ = producer.Close()
		_ = redisClient.Close()
		pool.Close()
		return nil, fmt.Errorf("configure rate limiter: %w", err)
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSAllowedOrigins

	// HTTP router.
	router := handler.NewRouter(handler.RouterConfig{
		ServiceName:    serviceName,
		UserService:    userService,
		ProductService: productService,
		ReviewService:  reviewService,
		OrderService:   orderService,
		Authenticator:  handler.NewAuthenticator(auth.NewVerifier(jwtManager), loader, registry, logger),
		Health:         healthHandler,
		Metrics:        middleware.NewHTTPMetrics(registry, serviceName),
		MetricsRoute:   promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		AuthLimiter:    limiter,
		CORS:           cors,
		EnablePprof:    cfg.PprofEnabled,
		PprofCIDRs:     cfg.PprofAllowedCIDRs,
		Logger:         logger,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		redis:          redisClient,
		producer:       producer,
		limiter:        limiter,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go a.limiter.Run(ctx)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
			slog.String("environment", a.cfg.Environment),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

// Shutdown gracefully stops all components in order: the HTTP server drains
// first, then the tracer flushes, then Kafka, Redis and PostgreSQL close.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	// Flush after the HTTP drain so in-flight request spans are captured.
	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.redis.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
