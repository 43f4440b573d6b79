package main

import (
	"context"
	"errors"
	"net"
	"os/signal"
	"syscall"
	"time"

	"absence-tracker/internal/api"
	"absence-tracker/internal/app"
	"absence-tracker/internal/config"
	"absence-tracker/internal/redisstore"

	"github.com/sirupsen/logrus"
)

func main() {
	logrus.Info("Initializing config...")
	cfg := config.GetConfig()
	logrus.Info("Config initialized...")

	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize application")
	}

	server := api.NewApp(api.Services{
		Auth:     application.Auth,
		Users:    application.Users,
		Absences: application.Absences,
		Export:   application.Export,
	}, api.Options{
		RequestTimeout: cfg.RequestTimeout,
		LoginRateLimit: cfg.LoginRateLimit,
		LoginLimiter:   redisstore.NewLimiter(application.Redis, cfg.LoginRateLimit, time.Minute, "absence-tracker:login"),
		CORSOrigins:    cfg.CORSOrigins,
		Logger:         log,
	})

	errCh := make(chan error, 1)
	go func() {
		logrus.Infof("HTTP server listening on %s", cfg.HTTPAddr)
		if err := server.Listen(cfg.HTTPAddr); err != nil && !errors.Is(err, net.ErrClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		logrus.WithError(err).Error("HTTP server failed")
	}

	logrus.Info("Shutting down...")
	if err := server.ShutdownWithTimeout(10 * time.Second); err != nil {
		logrus.WithError(err).Warn("Error shutting down HTTP server")
	}

	if err := application.Close(); err != nil {
		logrus.WithError(err).Warn("Error closing resources")
	}

	logrus.Info("Server stopped gracefully")
}
