package sqs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// ConsumerAPI defines the interface for SQS operations used by Consumer.
type ConsumerAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Handler processes one decoded announcement. A returned error leaves the
// message on the queue.
type Handler func(ctx context.Context, msg ProductMessage) error

// Consumer handles consuming messages from AWS SQS.
type Consumer struct {
	client   ConsumerAPI
	queueURL string
	handler  Handler
}

// NewConsumer creates a new SQS Consumer with the given client and queue URL.
// A nil handler logs each announcement.
func NewConsumer(client ConsumerAPI, queueURL string, handler Handler) *Consumer {
	if handler == nil {
		handler = LogAnnouncement
	}
	return &Consumer{
		client:   client,
		queueURL: queueURL,
		handler:  handler,
	}
}

// LogAnnouncement writes a listing announcement to the log.
func LogAnnouncement(_ context.Context, msg ProductMessage) error {
	slog.Info("New listing in the emporium",
		slog.String("action", msg.Action),
		slog.Int64("product_id", msg.ProductID),
		slog.String("name", msg.Name),
		slog.String("price", msg.Price),
		slog.String("rarity", msg.Rarity),
		slog.String("image_path", msg.ImagePath),
	)
	return nil
}

// Start begins consuming messages from the SQS queue until the context is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	slog.Info("Starting SQS consumer", slog.String("queueURL", c.queueURL))

	for {
		select {
		case <-ctx.Done():
			slog.Info("Stopping SQS consumer")
			return ctx.Err()
		default:
			if err := c.receiveMessages(ctx); err != nil && ctx.Err() == nil {
				slog.Error("Error receiving messages", slog.Any("err", err))
			}
		}
	}
}

func (c *Consumer) receiveMessages(ctx context.Context) error {
	result, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(c.queueURL),
		MaxNumberOfMessages: 10,
		WaitTimeSeconds:     20, // Long polling
	})
	if err != nil {
		return fmt.Errorf("failed to receive messages: %w", err)
	}

	for _, message := range result.Messages {
		if err := c.processMessage(ctx, message); err != nil {
			slog.Error("Error processing message", slog.Any("err", err))
			continue
		}

		if err := c.deleteMessage(ctx, message); err != nil {
			slog.Error("Error deleting message", slog.Any("err", err))
		}
	}

	return nil
}

func (c *Consumer) processMessage(ctx context.Context, message types.Message) error {
	if message.Body == nil {
		return fmt.Errorf("message body is nil")
	}

	var productMsg ProductMessage
	if err := json.Unmarshal([]byte(*message.Body), &productMsg); err != nil {
		return fmt.Errorf("failed to unmarshal message: %w", err)
	}

	if err := c.handler(ctx, productMsg); err != nil {
		return fmt.Errorf("failed to handle message: %w", err)
	}
	return nil
}

func (c *Consumer) deleteMessage(ctx context.Context, message types.Message) error {
	_, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: message.ReceiptHandle,
	})
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}
