package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/iyhunko/magical-emporium/internal/config"
	sqspkg "github.com/iyhunko/magical-emporium/internal/sqs"
	"github.com/spf13/cobra"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Consume new-listing notifications from SQS and log them",
	Args:  cobra.NoArgs,
	RunE:  runNotify,
}

func runNotify(cmd *cobra.Command, _ []string) error {
	if !conf.NotificationsEnabled() {
		return fmt.Errorf("%w for key: %s", config.ErrMissingConfig, config.SQSQueueURLEnv)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sqsClient, err := sqspkg.NewClient(ctx, conf.AWS)
	if err != nil {
		return fmt.Errorf("error while creating SQS client: %w", err)
	}

	slog.Info("Notification consumer started. Listening for messages...")
	err = sqspkg.NewConsumer(sqsClient, conf.AWS.SQSQueueURL, nil).Start(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("consumer error: %w", err)
	}
	slog.Info("Shutting down gracefully...")
	return nil
}
