package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rosterdesk/platform/internal/app"
	"github.com/rosterdesk/platform/internal/auth"
	"github.com/rosterdesk/platform/internal/infra"
	"github.com/rosterdesk/platform/internal/notify"
	"github.com/rosterdesk/platform/internal/provider"
	"github.com/rosterdesk/platform/internal/service"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	store, err := infra.OpenStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	jwtMgr := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiry)

	events, closeEvents := newPublisher(cfg, logger)
	defer closeEvents()

	router := app.NewRouter(app.RouterDeps{
		Store:           store,
		JWTMgr:          jwtMgr,
		Logger:          logger,
		Events:          events,
		CORSOrigins:     cfg.CORSOrigins(),
		InviteTTL:       cfg.InviteTTL,
		InviteRateLimit: cfg.InviteRateLimit,
		OrgCacheSize:    cfg.OrgCacheSize,
		OrgCacheTTL:     cfg.OrgCacheTTL,
	})

	// Background jobs
	scheduler := infra.NewScheduler(logger)
	err = scheduler.Add("purge-expired-invitations", cfg.InvitePurgeSchedule, time.Minute, func(ctx context.Context) error {
		_, err := router.Invitations.PurgeExpired(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("schedule invitation purge: %w", err)
	}
	scheduler.Start()
	defer scheduler.Shutdown()

	// Start server
	addr := fmt.Sprintf(":%d", cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "addr", addr, "data_store", cfg.DataStore)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}

// newPublisher routes domain events to Kafka when enabled, otherwise it
// hands them straight to the notification dispatcher.
func newPublisher(cfg *infra.Config, logger *slog.Logger) (service.EventPublisher, func()) {
	if cfg.KafkaEnabled {
		producer := infra.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		logger.Info("publishing events to kafka", "topic", cfg.KafkaTopic)
		return producer, func() {
			if err := producer.Close(); err != nil {
				logger.Error("close kafka producer", "error", err)
			}
		}
	}
	return notify.InlinePublisher{Dispatcher: notify.NewDispatcher(emailSender(cfg, logger), cfg.AppBaseURL, logger)}, func() {}
}

func emailSender(cfg *infra.Config, logger *slog.Logger) provider.EmailSender {
	if cfg.ResendAPIKey == "" {
		logger.Warn("RESEND_API_KEY not set; emails are logged, not sent")
		return provider.NewLogSender(logger)
	}
	return provider.NewResendSender(cfg.ResendAPIKey, cfg.EmailFrom, logger)
}
