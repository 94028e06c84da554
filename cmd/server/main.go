package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sudo-init-do/campusgigs/internal/catalog"
	"github.com/sudo-init-do/campusgigs/internal/config"
	"github.com/sudo-init-do/campusgigs/internal/handlers"
	"github.com/sudo-init-do/campusgigs/internal/logging"
	"github.com/sudo-init-do/campusgigs/internal/marketplace"
	"github.com/sudo-init-do/campusgigs/internal/metrics"
	"github.com/sudo-init-do/campusgigs/internal/store/backend"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := cfg.Backend()
	if opts.Driver == backend.DriverJSON {
		opts.Seed = catalog.Seed()
	}
	s, err := backend.Open(ctx, opts, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open store")
	}
	defer s.Close()

	m := metrics.New()
	mp := marketplace.New(s,
		marketplace.WithDescriptionPolicy(cfg.DescriptionPolicy()),
		marketplace.WithEvents(m),
	)

	e := handlers.NewRouter(handlers.RouterConfig{
		Marketplace:    mp,
		Logger:         logger,
		Metrics:        m,
		LoginRateLimit: cfg.LoginRateLimit,
		AllowOrigins:   cfg.AllowOrigins(),
	})

	addr := ":" + strconv.Itoa(cfg.Port)
	go func() {
		logger.Info().Str("addr", addr).Str("driver", cfg.StoreDriver).Msg("server listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("server error")
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
	logger.Info().Msg("server stopped")
}
