package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rosterdesk/platform/internal/infra"
	"github.com/rosterdesk/platform/internal/notify"
	"github.com/rosterdesk/platform/internal/provider"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("notifier failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	var sender provider.EmailSender
	if cfg.ResendAPIKey != "" {
		sender = provider.NewResendSender(cfg.ResendAPIKey, cfg.EmailFrom, logger)
	} else {
		logger.Warn("RESEND_API_KEY not set; emails are logged, not sent")
		sender = provider.NewLogSender(logger)
	}
	dispatcher := notify.NewDispatcher(sender, cfg.AppBaseURL, logger)

	consumer := infra.NewKafkaConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID, logger)
	defer func() {
		if err := consumer.Close(); err != nil {
			logger.Error("close kafka consumer", "error", err)
		}
	}()

	logger.Info("notifier starting", "topic", cfg.KafkaTopic, "group", cfg.KafkaGroupID)
	if err := consumer.Run(ctx, dispatcher.Handle); err != nil {
		return fmt.Errorf("consume events: %w", err)
	}
	logger.Info("notifier shutting down")
	return nil
}
