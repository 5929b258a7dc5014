package main

import (
	"bufio"
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"gangwongo/internal/adapters/observability"
	"gangwongo/internal/adapters/tourapi"
	"gangwongo/internal/app"
	"gangwongo/internal/domain"
	"gangwongo/internal/shared"
)

func main() {
	sigungu := flag.String("sigungu", "", "sigungu code; empty sweeps the whole province")
	listOnly := flag.Bool("list-only", false, "emit list items without detail lookups")
	flag.Parse()

	shared.LoadDotEnv()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise); stdout carries data
	log.Logger = observability.NewLoggerTo(os.Stderr, cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := tourapi.New(cfg.Tour)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tour api client")
	}

	log.Info().
		Str("base", cfg.Tour.BaseURL).
		Str("sigungu", *sigungu).
		Int("workers", cfg.Workers).
		Msg("export starting")

	e := &exporter{
		agg:      app.NewAggregator(client, domain.DefaultTaxonomy(), cfg.Tour),
		workers:  cfg.Workers,
		listOnly: *listOnly,
	}
	out := bufio.NewWriter(os.Stdout)
	s := e.run(ctx, *sigungu, out)
	if err := out.Flush(); err != nil {
		log.Error().Err(err).Msg("flush stdout failed")
	}

	log.Info().
		Int("items", s.Items).
		Int64("written", s.Written).
		Int64("skipped", s.Skipped).
		Int64("failed", s.Failed).
		Msg("export completed")
}
