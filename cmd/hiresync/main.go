package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hiresync/hiresync/adapter/cli"
	"github.com/hiresync/hiresync/adapter/cli/feedback"
	"github.com/hiresync/hiresync/adapter/cli/progression"
	"github.com/hiresync/hiresync/adapter/cli/schedule"
	"github.com/hiresync/hiresync/adapter/cli/talent"
	"github.com/hiresync/hiresync/internal/app"
	"github.com/hiresync/hiresync/pkg/config"
)

func main() {
	// Setup logger
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Warn("failed to load config, using development mode", "error", err)
		cfg = &config.Config{AppEnv: "development"}
	}

	// Update logger level based on config
	if cfg.IsDevelopment() {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	cli.SetLogger(logger)

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	// Start outbox processor in background (optional in CLI)
	if cfg.OutboxProcessorEnabled {
		go func() {
			if err := container.OutboxProcessor.Start(ctx); err != nil {
				logger.Warn("outbox processor stopped", "error", err)
			}
		}()
	} else {
		logger.Info("outbox processor disabled in CLI")
	}

	cli.SetApp(&cli.App{
		ShortlistHandler:         container.ShortlistHandler,
		BookRoundHandler:         container.BookRoundHandler,
		RescheduleRoundHandler:   container.RescheduleRoundHandler,
		CancelRoundHandler:       container.CancelRoundHandler,
		SubmitFeedbackHandler:    container.SubmitFeedbackHandler,
		DeleteProgressionHandler: container.DeleteProgressionHandler,
		GetProgressionHandler:    container.GetProgressionHandler,
		ListProgressionsHandler:  container.ListProgressionsHandler,
		TrackingStatsHandler:     container.TrackingStatsHandler,
		Resolver:                 container.Resolver,
		JobStore:                 container.JobStore,
		CandidateStore:           container.CandidateStore,
		InterviewerStore:         container.InterviewerStore,
	})

	// Register command groups
	cli.AddCommand(schedule.Cmd)
	cli.AddCommand(feedback.Cmd)
	cli.AddCommand(progression.Cmd)
	cli.AddCommand(talent.Cmd)

	cli.ExecuteContext(ctx)
}
