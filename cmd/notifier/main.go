package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"bookline/internal/notifier"
	"bookline/pkg/config"
	"bookline/pkg/kafka"
	kafkaconfig "bookline/pkg/kafka/config"
)

const ServiceName = "notifier"

func main() {
	cfg := config.Load(ServiceName)

	worker := notifier.NewNotifier(notifier.NewLogSender(cfg.Log), cfg.Log)

	consumer, err := kafka.NewConsumer(
		kafkaconfig.Load(),
		cfg.AppointmentEventsTopic,
		cfg.NotifierGroupID,
		cfg.AppointmentEventsDLQ,
		worker.HandleMessage,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg.Log.Info("Starting Notifier service",
		"topic", cfg.AppointmentEventsTopic,
		"group_id", cfg.NotifierGroupID,
	)

	err = consumer.Start(ctx)
	if closeErr := consumer.Close(); closeErr != nil {
		cfg.Log.Error("Failed to close consumer", "error", closeErr)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Fatal("Consumer stopped with error", "error", err)
	}

	cfg.Log.Info("Notifier stopped gracefully")
}
