package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	httpAdapter "github.com/iho/cipherledger/internal/adapter/http"
	"github.com/iho/cipherledger/internal/adapter/http/handler"
	"github.com/iho/cipherledger/internal/adapter/http/middleware"
	"github.com/iho/cipherledger/internal/adapter/relay"
	memoryRepo "github.com/iho/cipherledger/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/cipherledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/cipherledger/internal/adapter/repository/redis"
	"github.com/iho/cipherledger/internal/infrastructure/auth"
	"github.com/iho/cipherledger/internal/infrastructure/config"
	"github.com/iho/cipherledger/internal/infrastructure/logger"
	"github.com/iho/cipherledger/internal/infrastructure/metrics"
	"github.com/iho/cipherledger/internal/infrastructure/postgres"
	"github.com/iho/cipherledger/internal/infrastructure/redis"
	"github.com/iho/cipherledger/internal/usecase"
)

const limiterIdleTTL = 10 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	app, err := newApp(ctx, cfg, log, prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	defer app.Close()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      app.router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	if app.limiter != nil {
		go sweepLimiters(ctx, app.limiter)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.HTTPPort).
			Str("storage", cfg.StorageDriver).
			Str("relay", cfg.RelayMode).
			Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}

// app is the wired object graph of the server.
type app struct {
	router  http.Handler
	limiter *middleware.RateLimiter
	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func newApp(ctx context.Context, cfg *config.Config, log zerolog.Logger, reg prometheus.Registerer) (*app, error) {
	a := &app{}
	built := false
	defer func() {
		if !built {
			a.Close()
		}
	}()

	ctx = log.WithContext(ctx)

	publicKey, err := cfg.PublicKey()
	if err != nil {
		return nil, err
	}
	privateKey, err := cfg.PrivateKey()
	if err != nil {
		return nil, err
	}
	keyring, err := cfg.Keyring()
	if err != nil {
		return nil, err
	}
	if cfg.UsesLegacyAtRestKey() {
		log.Warn().Msg("AT_REST_KEY is the legacy default; set a new key and rotate")
	}

	recorder := metrics.New(reg)
	health := handler.NewHealthHandler()

	// Storage
	var (
		txManager usecase.TransactionManager
		entryRepo usecase.LedgerEntryRepository
		retrier   usecase.Retrier
	)

	switch cfg.StorageDriver {
	case config.StorageMemory:
		store := memoryRepo.NewStore()
		txManager = memoryRepo.NewTxManager(store)
		entryRepo = memoryRepo.NewLedgerEntryRepository(store)
		log.Warn().Msg("using in-memory storage; entries are lost on restart")

	default:
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
			return nil, err
		}

		pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
			DatabaseURL:    cfg.DatabaseURL,
			MaxConns:       cfg.DatabaseMaxConns,
			MinConns:       cfg.DatabaseMinConns,
			ConnectTimeout: cfg.DatabaseTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		log.Info().Msg("connected to postgres")

		txManager = postgresRepo.NewTxManager(pool)
		entryRepo = postgresRepo.NewLedgerEntryRepository(pool)
		retrier = postgresRepo.NewRetrier(log)
		health.WithCheck("postgres", pool.Ping)
	}

	// Entry cache
	var cache usecase.EntryCache
	if cfg.RedisURL != "" {
		client, err := redis.Connect(ctx, cfg.RedisURL, 5*time.Second)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.closers = append(a.closers, func() { client.Close() })
		log.Info().Msg("connected to redis")

		cache = redisRepo.NewEntryCache(client)
		health.WithCheck("redis", func(ctx context.Context) error {
			return redis.Ping(ctx, client, 0)
		})
	}

	// Use cases
	idGen := postgresRepo.NewIDGenerator(cfg.EntryIDFormat)
	encodeUC := usecase.NewEncodeUseCase(publicKey, idGen, recorder)
	materializeUC := usecase.NewMaterializeUseCase(txManager, entryRepo, retrier, privateKey, keyring, recorder)
	entryUC := usecase.NewEntryUseCase(entryRepo, cache).
		WithCacheTTL(cfg.EntryCacheTTL).
		WithCacheRecorder(recorder)

	// Relay
	var (
		gateway   usecase.Relay
		verifier  middleware.TokenVerifier
		jwtSigner *auth.JWTManager
	)
	if cfg.RelayJWTSecret != "" {
		jwtSigner = auth.NewJWTManager(cfg.RelayJWTSecret, auth.DefaultTokenDuration)
		verifier = jwtSigner
	}

	switch cfg.RelayMode {
	case config.RelayLocal:
		gateway = relay.NewLocalRelay(materializeUC)
	default:
		var signer relay.TokenSigner
		if jwtSigner != nil {
			signer = jwtSigner
		}
		gateway = relay.NewHTTPRelay(cfg.RelayURL, cfg.RelayTimeout, signer)
	}

	intakeUC := usecase.NewIntakeUseCase(encodeUC, gateway, recorder)

	// HTTP
	if cfg.RateLimitRPS > 0 {
		a.limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).OnLimit(recorder.RateLimited)
	}

	var metricsHandler http.Handler
	if gatherer, ok := reg.(prometheus.Gatherer); ok {
		metricsHandler = promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
	}

	a.router = httpAdapter.NewRouter(httpAdapter.RouterConfig{
		TransactionHandler: handler.NewTransactionHandler(intakeUC, materializeUC, entryUC),
		HealthHandler:      health,
		Logger:             log,
		RateLimiter:        a.limiter,
		RelayVerifier:      verifier,
		MetricsHandler:     metricsHandler,
	})

	built = true
	return a, nil
}

func sweepLimiters(ctx context.Context, limiter *middleware.RateLimiter) {
	ticker := time.NewTicker(limiterIdleTTL)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			limiter.CleanupLimiters(limiterIdleTTL)
		}
	}
}
