// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/recims/backend/internal/admin"
	"github.com/recims/backend/internal/auth"
	"github.com/recims/backend/internal/bootstrap"
	"github.com/recims/backend/internal/config"
	"github.com/recims/backend/internal/core"
	"github.com/recims/backend/internal/health"
	"github.com/recims/backend/internal/locale"
	"github.com/recims/backend/internal/metrics"
	"github.com/recims/backend/internal/middleware"
	"github.com/recims/backend/internal/permission"
	"github.com/recims/backend/internal/server"
	"github.com/recims/backend/internal/setting"
	"github.com/recims/backend/internal/tenant"
	"github.com/recims/backend/internal/user"
)

const (
	drainDelay = 5 * time.Second

	credentialRequestsPerMinute = 10
	credentialBurst             = 5
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	genKeys := flag.Bool("generate-keys", false, "write a new ES256 key pair to the configured paths and exit")
	flag.Parse()

	if err := run(*configPath, *genKeys); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // wiring code is inherently verbose
func run(configPath string, genKeys bool) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	if genKeys {
		if err := auth.GenerateKeyPair(cfg.JWT.PrivateKeyPath, cfg.JWT.PublicKeyPath); err != nil {
			return err
		}
		logger.Info("key pair written",
			"private", cfg.JWT.PrivateKeyPath,
			"public", cfg.JWT.PublicKeyPath,
		)
		return nil
	}

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	if cfg.Metrics.Enabled {
		metrics.Register(nil)
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	healthHandler := health.NewHandler(
		health.Check{Name: "database", Checker: db},
		health.Check{Name: "redis", Checker: redis},
	)

	bootstrapper := bootstrap.New(db.DB, cfg.Bootstrap, logger)
	if cfg.Bootstrap.Enabled {
		bootCtx, cancel := context.WithTimeout(ctx, cfg.Bootstrap.Timeout)
		_, bootErr := bootstrapper.Run(bootCtx)
		cancel()
		if bootErr != nil {
			return fmt.Errorf("bootstrap: %w", bootErr)
		}
	}
	healthHandler.SetReady(true)

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.GetKeyID(),
	)

	configCache := tenant.NewConfigCache(
		redis.Client,
		cfg.Tenant.CachePrefix,
		cfg.Tenant.CacheTTL,
	)

	settingSvc := setting.NewService(setting.NewRepository(db.DB), configCache)
	settingHandler := setting.NewHandler(settingSvc)

	tenantSvc := tenant.NewService(
		tenant.NewRepository(db.DB),
		settingSvc,
		configCache,
		tenant.DefaultConfig(),
	)
	tenantHandler := tenant.NewHandler(tenantSvc, locale.NewCache())

	userSvc := user.NewService(user.NewRepository(db.DB))
	userHandler := user.NewHandler(userSvc)

	authSvc := auth.NewService(auth.NewRepository(db.DB), jwtManager, userSvc, tenantSvc)
	authHandler := auth.NewHandler(authSvc)

	go auth.RunCleanup(ctx, authSvc, cfg.JWT.CleanupInterval, logger)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:      db.Stats,
		RedisStats:   redis.PoolStats,
		DBPing:       db.Ping,
		RedisPing:    redis.Ping,
		Bootstrapper: bootstrapper,
		Cache:        configCache,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	if cfg.Metrics.Enabled {
		router.Handle(cfg.Metrics.Path, metrics.Handler())
	}

	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())

	apiLimiter := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Limit: middleware.PerMinute(
			cfg.RateLimit.Requests,
			cfg.RateLimit.Burst,
		),
		KeyFunc:  middleware.KeyByTenantUser,
		FailOpen: true,
	})
	defer apiLimiter.Close()

	credentialLimiter := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Limit: middleware.PerMinute(
			credentialRequestsPerMinute,
			credentialBurst,
		),
		KeyFunc:  middleware.KeyByIPAndEndpoint,
		FailOpen: true,
	})
	defer credentialLimiter.Close()

	optionalAuth := middleware.OptionalAuth(authSvc)
	authenticator := middleware.Authenticator(authSvc)

	router.Route("/v1", func(r chi.Router) {
		r.Use(optionalAuth)
		r.Use(apiLimiter.Handler)

		authHandler.RegisterRoutes(r, authenticator, credentialLimiter.Handler)
		userHandler.RegisterRoutes(r, authenticator)
		tenantHandler.RegisterRoutes(r, optionalAuth, authenticator)

		userHandler.RegisterAdminRoutes(r, authenticator,
			guard(permission.ManageUsers, "SuperAdmin"))
		tenantHandler.RegisterAdminRoutes(r, authenticator,
			guard(permission.ManageTenants, "TenantSettings"))
		settingHandler.RegisterAdminRoutes(r, authenticator,
			guard(permission.ManageSettings, "TenantSettings"))
		adminHandler.RegisterRoutes(r, authenticator, middleware.RequirePermission)
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

// guard requires both the capability and phase access to the admin page
// backing the route group.
func guard(c permission.Capability, page string) func(http.Handler) http.Handler {
	return chi.Chain(
		middleware.RequirePermission(c),
		middleware.RequirePage(page),
	).Handler
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
