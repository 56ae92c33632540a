package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/TaraScho/gameday-demo-app-services/internal/app/migrate"
	httpx "github.com/TaraScho/gameday-demo-app-services/internal/http"
	"github.com/TaraScho/gameday-demo-app-services/internal/repository/postgres"
	"github.com/TaraScho/gameday-demo-app-services/internal/service/auth"
	"github.com/TaraScho/gameday-demo-app-services/internal/service/match"
	"github.com/TaraScho/gameday-demo-app-services/internal/service/probe"
	"github.com/TaraScho/gameday-demo-app-services/pkg/config"
	"github.com/TaraScho/gameday-demo-app-services/pkg/logger"
	"github.com/TaraScho/gameday-demo-app-services/pkg/usermgmt"
)

func main() {
	cfg := config.LoadMatchingConfig()
	log := logger.New("matching", logger.ParseLevel(config.GetString("LOG_LEVEL", "info")))

	if strings.TrimSpace(cfg.JWTSecret) == "" {
		log.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	runner, err := migrate.New(pool, cfg.DatabaseURL, cfg.MigrationsDir, log)
	if err != nil {
		log.Error("failed to configure migrations", "error", err)
		os.Exit(1)
	}
	defer runner.Close()
	if err := runner.Ping(ctx); err != nil {
		log.Error("database ping failed", "error", err)
		os.Exit(1)
	}
	if err := runner.Ensure(ctx); err != nil {
		log.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	users, err := usermgmt.New(cfg.UserManagementURL)
	if err != nil {
		log.Error("invalid user management url", "error", err)
		os.Exit(1)
	}

	repo := postgres.New(pool)
	prober := probe.New(cfg.ProbeTimeout, log)
	matchSvc := match.New(repo, repo, repo, prober, log)
	validator := auth.NewValidator(cfg.JWTSecret)

	limiter := httpx.NewMemoryRateLimiter()
	if addr := strings.TrimSpace(cfg.RateLimitRedisAddr); addr != "" {
		redisLimiter, err := httpx.NewRedisRateLimiter(addr, cfg.RateLimitRedisPass, cfg.RateLimitRedisDB, log)
		if err != nil {
			log.Warn("redis rate limiter unavailable", "error", err)
		} else {
			limiter = redisLimiter
		}
	}

	router := httpx.NewMatchingRouter(users, matchSvc, prober, validator, limiter, log)
	defer router.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errorCh := make(chan error, 1)
	go func() {
		log.Info("matching server starting", "addr", cfg.Addr)
		errorCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
		log.Info("matching server stopped")
	case err := <-errorCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}
}
