package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/dgnsrekt/gexbot-levels/internal/config"
	"github.com/dgnsrekt/gexbot-levels/internal/metrics"
	"github.com/dgnsrekt/gexbot-levels/internal/server"
)

func main() {
	os.Exit(run())
}

func run() int {
	// .env is optional
	_ = godotenv.Load()

	// Setup logger
	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	// Load config
	cfg, err := config.LoadServerConfig()
	if err != nil {
		logger.Error("failed to load config", zap.Error(err))
		return 1
	}

	logger.Info("configuration loaded",
		zap.String("port", cfg.Port),
		zap.String("configPath", cfg.ConfigPath),
		zap.Float64("ratePerSecond", cfg.RatePerSecond),
		zap.Int("rateBurst", cfg.RateBurst),
		zap.Int64("maxBodyBytes", cfg.MaxBodyBytes),
	)

	reload, err := server.NewReloadManager(cfg.ConfigPath, logger)
	if err != nil {
		logger.Error("failed to load analysis config", zap.Error(err))
		return 1
	}

	params := reload.Service().Config().Engine
	logger.Info("analysis engine ready",
		zap.Float64("multiplier", params.ContractMultiplier),
		zap.Float64("flipWindowPct", params.GammaFlipWindowPct),
		zap.Int("topK", params.TopK),
	)

	srv := server.NewServer(reload, metrics.NewRegistry(), cfg, logger)
	router := server.NewRouter(srv, logger)

	// Setup HTTP server
	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Reload config on SIGHUP
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for range hup {
			if _, err := reload.Reload(context.Background()); err != nil {
				logger.Error("config reload failed", zap.Error(err))
			}
		}
	}()

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
		return 1
	}

	logger.Info("shutting down server...")

	// Graceful HTTP server shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
		return 1
	}

	logger.Info("server stopped")
	return 0
}
