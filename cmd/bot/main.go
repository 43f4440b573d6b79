package main

import (
	"context"
	"os/signal"
	"syscall"

	"absence-tracker/internal/app"
	"absence-tracker/internal/config"
	"absence-tracker/internal/handler"
	"absence-tracker/pkg/telegram"

	"github.com/sirupsen/logrus"
)

func main() {
	logrus.Info("Initializing config...")
	cfg := config.GetConfig()
	logrus.Info("Config initialized...")

	if cfg.TelegramToken == "" {
		logrus.Fatal("TELEGRAM_BOT_TOKEN is not set")
	}

	log := logrus.StandardLogger()

	// Обработка сигналов для graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize application")
	}

	// Создаем клиент Telegram
	client, err := telegram.NewClient(cfg.TelegramToken, cfg.TelegramDebug)
	if err != nil {
		logrus.Fatal("Failed to create Telegram client:", err)
	}

	logrus.Infof("Authorized on account %s", client.Bot.Self.UserName)

	botHandler := handler.NewHandler(
		client,
		application.Users,
		application.Absences,
		application.Calendar,
		log,
		cfg.RequestTimeout,
	)

	done := make(chan struct{})
	go func() {
		botHandler.HandleUpdates(ctx, client.Updates())
		close(done)
	}()

	logrus.Info("Bot started. Press Ctrl+C to stop.")
	<-ctx.Done()

	client.Stop()
	<-done

	// Закрываем соединение с БД
	if err := application.Close(); err != nil {
		logrus.Infof("Error closing database: %v", err)
	}

	logrus.Info("Bot stopped gracefully")
}
