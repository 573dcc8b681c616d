package main

import (
	"fmt"
	"os"

	"github.com/skillbridge-dev/skillbridge/internal/config"
	"github.com/skillbridge-dev/skillbridge/internal/logger"
	"github.com/skillbridge-dev/skillbridge/internal/portal"
)

var version = "dev" // Will be set during build with -ldflags

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.GetLogger()

	srv, err := portal.New(cfg, log, version)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create portal")
	}

	log.Info().Str("version", version).Str("api_url", cfg.API.URL).Msg("Starting SkillBridge portal...")

	// Start HTTP server (this blocks)
	if err := srv.Start(); err != nil {
		log.Fatal().Err(err).Msg("Portal failed to start")
	}
}
