package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/skillbridge-dev/skillbridge/internal/api"
	"github.com/skillbridge-dev/skillbridge/internal/config"
	"github.com/skillbridge-dev/skillbridge/internal/database"
	"github.com/skillbridge-dev/skillbridge/internal/logger"
	"github.com/skillbridge-dev/skillbridge/internal/session"
	"github.com/skillbridge-dev/skillbridge/internal/workers"
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

	if err := cfg.ValidateReports(); err != nil {
		log.Fatal().Err(err).Msg("Invalid report worker configuration")
	}

	log.Info().Str("version", version).Msg("Starting SkillBridge report worker")

	db, err := database.Open(cfg.Database.URL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer database.Close(db)

	// Initialize Asynq client (for fan-out and scheduled refreshes)
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr: cfg.Redis.Address,
	})
	defer asynqClient.Close()

	asynqServer := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr: cfg.Redis.Address,
		},
		asynq.Config{
			Concurrency: 4,
			Queues: map[string]int{
				"default": 3,
				"low":     1,
			},
			Logger: workers.NewAsynqLogger(log),
		},
	)

	// The service account session lives only as long as the process
	client := api.New(cfg.API.URL,
		api.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
		api.WithCredentials(api.NewMemoryCredentials()),
		api.WithLogger(log),
	)
	resolver := session.NewResolver(session.NewMemoryStore(), client, log)
	client.SetUnauthorizedHandler(resolver.Invalidate)

	reporter := workers.NewReporter(db, client, resolver,
		cfg.Reports.Email, cfg.Reports.Password, cfg.Reports.TopLimit, log)

	mux := asynq.NewServeMux()
	reporter.Register(mux, asynqClient)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Reports.Schedule != "" {
		scheduler, err := workers.NewReportScheduler(asynqClient, cfg.Reports.Schedule, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create report scheduler")
		}
		go scheduler.Run(ctx)
	} else {
		log.Info().Msg("REPORTS_SCHEDULE is empty, scheduled refreshes disabled")
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Msg("Starting Asynq worker server...")
		if err := asynqServer.Run(mux); err != nil {
			log.Fatal().Err(err).Msg("Asynq worker server failed")
		}
	}()

	<-sigChan
	log.Info().Msg("Received shutdown signal, shutting down gracefully...")
	cancel()

	asynqServer.Shutdown()
	log.Info().Msg("Worker shutdown complete")
}
