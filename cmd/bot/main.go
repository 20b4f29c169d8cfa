package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/grvsrs/matrixbot/internal/admin"
	"github.com/grvsrs/matrixbot/internal/bot"
	"github.com/grvsrs/matrixbot/internal/command"
	"github.com/grvsrs/matrixbot/internal/config"
	"github.com/grvsrs/matrixbot/internal/health"
	"github.com/grvsrs/matrixbot/internal/matrix"
	"github.com/grvsrs/matrixbot/internal/metrics"
	"github.com/grvsrs/matrixbot/internal/storage"
)

func main() {
	// .env is optional; environment variables win either way.
	_ = godotenv.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENVIRONMENT") == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	log.Logger = logger

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	logger.Info().
		Str("homeserver", cfg.HomeserverURL).
		Str("user", cfg.UserID).
		Str("prefix", cfg.Prefix).
		Str("data_dir", cfg.DataDir).
		Msg("starting matrixbot")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	store, err := storage.Open(cfg.BotStorePath(), logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open bot store")
	}

	registry := command.NewRegistry()
	command.RegisterBuiltins(registry)

	aliases, err := config.LoadAliases(cfg.AliasFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load command aliases")
	}
	if skipped := command.RegisterAliases(registry, aliases); len(skipped) > 0 {
		logger.Warn().Strs("aliases", skipped).Msg("aliases with unknown targets skipped")
	}

	client, err := matrix.NewClient(cfg.HomeserverURL, cfg.UserID, cfg.AccessToken, cfg.DeviceID, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create matrix client")
	}

	m := metrics.New()
	m.RegisterStorageFlushes(func() float64 { return float64(store.FlushCount()) })

	b := bot.New(bot.Config{UserID: cfg.UserID, Prefix: cfg.Prefix}, client, store, registry, m, logger)
	client.AttachDispatcher(b, b.StartTime())

	checker := health.NewChecker(logger)
	checker.Register("storage", func(ctx context.Context) health.Status {
		if err := store.Flush(); err != nil {
			return health.StatusDown
		}
		return health.StatusOK
	})
	checker.Register("homeserver", func(ctx context.Context) health.Status {
		if err := client.Whoami(ctx); err != nil {
			return health.StatusDown
		}
		return health.StatusOK
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/health", health.LivenessHandler())
	mux.HandleFunc("/ready", checker.ReadinessHandler())
	mux.Handle("/metrics", m.Handler())

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	var adminServer *admin.Server
	if cfg.AdminEnabled() {
		adminServer = admin.NewServer(admin.ServerConfig{
			ListenAddr: cfg.AdminListenAddr,
			APIKey:     cfg.AdminAPIKey,
		}, b, store, checker, logger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := adminServer.Start(); err != nil {
				logger.Error().Err(err).Msg("admin API server error")
			}
		}()
	} else {
		logger.Info().Msg("admin API key not set, admin API disabled")
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info().Msg("sync loop starting")
		if err := client.Sync(ctx); err != nil && ctx.Err() == nil {
			logger.Error().Err(err).Msg("sync loop error")
		}
	}()

	sig := <-sigCh
	logger.Info().Str("signal", sig.String()).Msg("shutting down gracefully")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	}
	if adminServer != nil {
		if err := adminServer.Shutdown(); err != nil {
			logger.Error().Err(err).Msg("admin API server shutdown error")
		}
	}
	if err := store.Flush(); err != nil {
		logger.Error().Err(err).Msg("final store flush failed")
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info().Msg("all goroutines stopped")
	case <-time.After(15 * time.Second):
		logger.Warn().Msg("forced shutdown after timeout")
	}

	logger.Info().Msg("matrixbot stopped")
}
