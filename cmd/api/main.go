package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	server "gangwongo/internal/adapters/http_server"
	"gangwongo/internal/adapters/observability"
	redisad "gangwongo/internal/adapters/redis"
	"gangwongo/internal/adapters/tourapi"
	"gangwongo/internal/app"
	"gangwongo/internal/domain"
	"gangwongo/internal/shared"
)

func main() {
	shared.LoadDotEnv()
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// upstream
	client, err := tourapi.New(cfg.Tour)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tour api client")
	}
	agg := app.NewAggregator(client, domain.DefaultTaxonomy(), cfg.Tour)

	// preferences
	prefs := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, cfg.PrefsTTL)
	defer prefs.Close()
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	if err := prefs.Ping(pingCtx); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable; preference routes will fail")
	} else {
		log.Info().Msg("redis connection ok")
	}
	cancel()

	// http
	srv := server.New(server.DefaultTimeout)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Agg: agg, Prefs: app.NewPreferenceService(prefs)})

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Int("area", cfg.Tour.AreaCode).Msg("API listening")
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}
