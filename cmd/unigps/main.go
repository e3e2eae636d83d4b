package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"unigps/internal/config"
	"unigps/internal/logging"
)

func main() {
	var configPath string
	var summaryPath string
	flag.StringVar(&configPath, "config", "./unigps.yaml", "Path to YAML config")
	flag.StringVar(&summaryPath, "log-summary", "", "Print a summary of a capture log and exit")
	flag.Parse()

	if summaryPath != "" {
		if err := printLogSummary(os.Stdout, summaryPath); err != nil {
			fmt.Fprintf(os.Stderr, "log summary failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	lcfg := logging.DefaultConfig(logging.ProfileRuntime)
	lcfg.JSON = cfg.Log.JSON
	levelOK := true
	if lvl, ok := logging.ParseLevel(cfg.Log.Level); ok {
		lcfg.Level = lvl
	} else {
		levelOK = false
	}
	logger := logging.Configure("unigps", lcfg)
	if !levelOK {
		logger.Warn().Str("level", cfg.Log.Level).Msg("unknown log level, using info")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Info().Str("config", configPath).Msg("unigps starting")
	if err := run(ctx, cfg, logger); err != nil {
		logger.Error().Err(err).Msg("unigps stopped")
		cancel()
		os.Exit(1)
	}
	logger.Info().Msg("unigps stopping")
}
