package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/rankbench/internal/bench"
	"github.com/tensorplex-labs/rankbench/internal/config"
	"github.com/tensorplex-labs/rankbench/internal/dataset"
	"github.com/tensorplex-labs/rankbench/internal/utils/logger"
)

var configPath = flag.String("config", "", "optional YAML config file; environment variables override it")

func main() {
	logger.Init()
	log.Info().Msg("Starting ranking benchmark...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// setup signal handling so an interrupted run stops between methods
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info().Msg("shutdown signal received, stopping benchmark")
		cancel()
	}()

	cfg, err := config.LoadConfig(ctx, *configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	ds, err := dataset.Load(cfg.Dataset.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Dataset.Path).Msg("failed to load dataset")
	}

	writer, err := bench.NewFileWriter(cfg.Output.Dir, cfg.Output.Compress)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init result writer")
	}

	runner, err := bench.NewRunner(ds, writer, bench.FromConfig(cfg)...)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init runner")
	}

	results, err := runner.Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Str("run_id", runner.RunID()).Msg("benchmark failed")
	}

	bench.WriteSummary(os.Stdout, bench.Summarize(results, runner.Methods()))
	log.Info().Str("run_id", runner.RunID()).Str("output_dir", cfg.Output.Dir).Int("results", len(results)).Msg("DONE!")
}
