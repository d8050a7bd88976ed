package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"appliance-recon/internal/config"
	"appliance-recon/internal/inventory"
	"appliance-recon/internal/store"
	"appliance-recon/internal/store/memory"
	"appliance-recon/internal/store/redisstore"
	"appliance-recon/internal/store/sqlite"
	serverhttp "appliance-recon/server/http"
)

func openStore(cfg config.Config, logger zerolog.Logger) (store.Store, error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		logger.Warn().Msg("memory store: data is lost on restart")
		return memory.New(), nil
	case config.StoreSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
		return sqlite.Open(cfg.DBPath)
	case config.StoreRedis:
		return redisstore.Open(redisstore.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}

func main() {
	cfg := config.Load()
	logger := config.SetupLogger(cfg)

	st, err := openStore(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("open store")
	}
	defer st.Close()

	svc := inventory.New(st, logger.With().Str("component", "inventory").Logger())
	svc.SetSearchThreshold(cfg.SearchThreshold)

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 30*time.Second)
	err = svc.Load(loadCtx)
	cancelLoad()
	if err != nil {
		logger.Fatal().Err(err).Msg("load inventory")
	}

	r := serverhttp.NewRouter(cfg, svc, logger)
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info().Str("addr", cfg.Addr()).Str("store", cfg.StoreDriver).Msg("server starting")

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("listen")
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
	logger.Info().Msg("bye")
}
