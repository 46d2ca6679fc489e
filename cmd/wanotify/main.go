package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"wanotify/internal/config"
	"wanotify/internal/constants"
	"wanotify/internal/database"
	"wanotify/internal/models"
	"wanotify/internal/retry"
	"wanotify/internal/service"
	"wanotify/internal/tracing"
	"wanotify/pkg/whatsapp"
	"wanotify/pkg/whatsapp/types"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "wanotify: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Missing .env is fine; production deployments inject real env vars.
	_ = godotenv.Load()

	configPath := flag.String("config", "config.json", "path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := newLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracingManager := tracing.NewManager(cfg.Tracing, logger)
	if err := tracingManager.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		if err := tracingManager.Shutdown(context.Background()); err != nil {
			logger.WithError(err).Warn("Tracing shutdown failed")
		}
	}()

	if err := os.MkdirAll(cfg.Media.CacheDir, 0750); err != nil {
		return fmt.Errorf("failed to create media cache dir: %w", err)
	}

	db, err := openDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	client := whatsapp.NewClient(types.ClientConfig{
		BaseURL:    cfg.WhatsApp.BaseURL,
		APIVersion: cfg.WhatsApp.APIVersion,
		PhoneID:    cfg.WhatsApp.PhoneID,
		Token:      cfg.WhatsApp.Token,
		Timeout:    time.Duration(cfg.WhatsApp.TimeoutSec) * time.Second,
	})

	share := service.NewShareLinker(cfg.Share.PublicBaseURL, cfg.Share.Secret)
	notifier := service.NewNotifier(db, client, share, logger)
	reporter := service.NewReporter(db)
	forwarder := service.NewAutomationForwarder(
		cfg.Automation.WebhookURL,
		time.Duration(cfg.Automation.TimeoutSec)*time.Second,
	)
	processor := service.NewWebhookProcessor(
		db, db, client, reporter, forwarder, notifier,
		cfg.WhatsApp.VerifyToken, cfg.Media.CacheDir, logger,
	)

	srv := NewServer(cfg, notifier, processor, logger)

	errCh := make(chan error, constants.ServerErrorChannelSize)
	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		constants.DefaultGracefulShutdownSec*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

func newLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)
	return logger
}

// openDatabase initializes the store with backoff, riding out transient file
// lock contention on restart.
func openDatabase(ctx context.Context, cfg *models.Config, logger *logrus.Logger) (*database.Database, error) {
	backoff := retry.NewBackoff(retry.BackoffConfig{
		InitialDelay: time.Duration(cfg.Retry.InitialBackoffMs) * time.Millisecond,
		MaxDelay:     time.Duration(cfg.Retry.MaxBackoffMs) * time.Millisecond,
		Multiplier:   2.0,
		MaxAttempts:  cfg.Retry.MaxAttempts,
		Jitter:       true,
	})

	var db *database.Database
	err := backoff.Retry(ctx, func() error {
		var initErr error
		db, initErr = database.New(cfg.Database.Path)
		if initErr != nil {
			logger.WithError(initErr).Warn("Database initialization failed, retrying")
		}
		return initErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return db, nil
}
