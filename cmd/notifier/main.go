package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"docsign-backend-go/internal/config"
	"docsign-backend-go/internal/events"
	"docsign-backend-go/internal/mailer"
	"docsign-backend-go/internal/notify"
)

// The notifier consumes document events from RabbitMQ and mails the recipients.
func main() {
	if strings.ToLower(os.Getenv("GIN_MODE")) != "release" {
		_ = godotenv.Load()
	}

	newLogger := zap.NewDevelopment
	if strings.ToLower(os.Getenv("GIN_MODE")) == "release" {
		newLogger = zap.NewProduction
	}
	zapLogger, err := newLogger()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync()

	appConfig, err := config.LoadNotifierConfig()
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to load notifier configuration", zap.Error(err))
	}

	m := mailer.New(mailer.Config{
		Host:     appConfig.SMTPHost,
		Port:     appConfig.SMTPPort,
		Username: appConfig.SMTPUsername,
		Password: appConfig.SMTPPassword,
		From:     appConfig.MailFrom,
	})
	notifier := notify.NewNotifier(m, appConfig.ClientURL, zapLogger)

	consumer, err := events.NewConsumer(appConfig.RabbitMQURL, appConfig.RabbitMQQueue, zapLogger)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to connect to RabbitMQ", zap.Error(err))
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zapLogger.Info("Notifier consuming events", zap.String("queue", appConfig.RabbitMQQueue))
	if err := consumer.Run(ctx, notifier.Handle); err != nil && ctx.Err() == nil {
		zapLogger.Error("Consumer stopped", zap.Error(err))
		return
	}
	zapLogger.Info("Notifier exiting gracefully.")
}
