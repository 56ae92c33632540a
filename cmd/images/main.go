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

	httpx "github.com/TaraScho/gameday-demo-app-services/internal/http"
	"github.com/TaraScho/gameday-demo-app-services/internal/service/images"
	"github.com/TaraScho/gameday-demo-app-services/pkg/config"
	"github.com/TaraScho/gameday-demo-app-services/pkg/logger"
)

func main() {
	cfg := config.LoadImagesConfig()
	log := logger.New("images", logger.ParseLevel(config.GetString("LOG_LEVEL", "info")))

	if strings.TrimSpace(cfg.AssetBucket) == "" {
		log.Error("WEB_ASSET_BUCKET is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	imageSvc := images.New(cfg, log)

	router := httpx.NewImagesRouter(imageSvc, httpx.NewMemoryRateLimiter(), log)
	defer router.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errorCh := make(chan error, 1)
	go func() {
		log.Info("images server starting", "addr", cfg.Addr)
		errorCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
		log.Info("images server stopped")
	case err := <-errorCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}
}
