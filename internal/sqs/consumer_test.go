package sqs

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSQSConsumerClient is a mock implementation of the SQS client for consumer testing.
type mockSQSConsumerClient struct {
	receiveMessageFunc func(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	deleteMessageFunc  func(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

func (m *mockSQSConsumerClient) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	if m.receiveMessageFunc != nil {
		return m.receiveMessageFunc(ctx, params, optFns...)
	}
	return &sqs.ReceiveMessageOutput{Messages: []types.Message{}}, nil
}

func (m *mockSQSConsumerClient) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	if m.deleteMessageFunc != nil {
		return m.deleteMessageFunc(ctx, params, optFns...)
	}
	return &sqs.DeleteMessageOutput{}, nil
}

func TestConsumer_processMessage(t *testing.T) {
	t.Run("successful message processing", func(t *testing.T) {
		// given
		consumer := NewConsumer(&mockSQSConsumerClient{}, "https://sqs.us-east-1.amazonaws.com/123456789/test-queue", nil)

		messageBody := `{"action":"created","product_id":123,"name":"Orb of Seeing","price":"Priceless","rarity":"Legendary","image_path":"/images/abc.jpg"}`
		message := types.Message{
			Body:          aws.String(messageBody),
			ReceiptHandle: aws.String("test-receipt-handle"),
		}

		// when
		err := consumer.processMessage(context.Background(), message)

		// then
		require.NoError(t, err)
	})

	t.Run("nil message body", func(t *testing.T) {
		// given
		consumer := NewConsumer(&mockSQSConsumerClient{}, "https://sqs.us-east-1.amazonaws.com/123456789/test-queue", nil)

		message := types.Message{
			Body:          nil,
			ReceiptHandle: aws.String("test-receipt-handle"),
		}

		// when
		err := consumer.processMessage(context.Background(), message)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "message body is nil")
	})

	t.Run("invalid JSON message body", func(t *testing.T) {
		// given
		consumer := NewConsumer(&mockSQSConsumerClient{}, "https://sqs.us-east-1.amazonaws.com/123456789/test-queue", nil)

		messageBody := `{"invalid json`
		message := types.Message{
			Body:          aws.String(messageBody),
			ReceiptHandle: aws.String("test-receipt-handle"),
		}

		// when
		err := consumer.processMessage(context.Background(), message)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to unmarshal message")
	})
}

func TestConsumer_deleteMessage(t *testing.T) {
	t.Run("successful message deletion", func(t *testing.T) {
		// given
		queueURL := "https://sqs.us-east-1.amazonaws.com/123456789/test-queue"
		ctx := context.Background()

		mockClient := &mockSQSConsumerClient{
			deleteMessageFunc: func(_ context.Context, params *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
				assert.Equal(t, queueURL, *params.QueueUrl)
				assert.NotNil(t, params.ReceiptHandle)
				return &sqs.DeleteMessageOutput{}, nil
			},
		}

		consumer := NewConsumer(mockClient, queueURL, nil)

		message := types.Message{
			ReceiptHandle: aws.String("test-receipt-handle"),
		}

		// when
		err := consumer.deleteMessage(ctx, message)

		// then
		require.NoError(t, err)
	})

	t.Run("error deleting message", func(t *testing.T) {
		// given
		queueURL := "https://sqs.us-east-1.amazonaws.com/123456789/test-queue"
		ctx := context.Background()

		expectedErr := errors.New("failed to delete")
		mockClient := &mockSQSConsumerClient{
			deleteMessageFunc: func(_ context.Context, _ *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
				return nil, expectedErr
			},
		}

		consumer := NewConsumer(mockClient, queueURL, nil)

		message := types.Message{
			ReceiptHandle: aws.String("test-receipt-handle"),
		}

		// when
		err := consumer.deleteMessage(ctx, message)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to delete message")
	})
}

func TestConsumer_receiveMessages(t *testing.T) {
	t.Run("receives and processes messages successfully", func(t *testing.T) {
		// given
		queueURL := "https://sqs.us-east-1.amazonaws.com/123456789/test-queue"
		ctx := context.Background()

		messageBody := `{"action":"created","product_id":123,"name":"Orb of Seeing","price":"Priceless","rarity":"Legendary","image_path":"/images/abc.jpg"}`
		mockClient := &mockSQSConsumerClient{
			receiveMessageFunc: func(_ context.Context, params *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
				assert.Equal(t, queueURL, *params.QueueUrl)
				assert.Equal(t, int32(10), params.MaxNumberOfMessages)
				assert.Equal(t, int32(20), params.WaitTimeSeconds)
				return &sqs.ReceiveMessageOutput{
					Messages: []types.Message{
						{
							Body:          aws.String(messageBody),
							ReceiptHandle: aws.String("test-receipt-handle"),
						},
					},
				}, nil
			},
			deleteMessageFunc: func(_ context.Context, _ *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
				return &sqs.DeleteMessageOutput{}, nil
			},
		}

		consumer := NewConsumer(mockClient, queueURL, nil)

		// when
		err := consumer.receiveMessages(ctx)

		// then
		require.NoError(t, err)
	})

	t.Run("handles receive message error", func(t *testing.T) {
		// given
		queueURL := "https://sqs.us-east-1.amazonaws.com/123456789/test-queue"
		ctx := context.Background()

		expectedErr := errors.New("failed to receive")
		mockClient := &mockSQSConsumerClient{
			receiveMessageFunc: func(_ context.Context, _ *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
				return nil, expectedErr
			},
		}

		consumer := NewConsumer(mockClient, queueURL, nil)

		// when
		err := consumer.receiveMessages(ctx)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to receive messages")
	})

	t.Run("continues processing on message processing error", func(t *testing.T) {
		// given
		queueURL := "https://sqs.us-east-1.amazonaws.com/123456789/test-queue"
		ctx := context.Background()

		invalidMessageBody := `{"invalid json`
		mockClient := &mockSQSConsumerClient{
			receiveMessageFunc: func(_ context.Context, _ *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
				return &sqs.ReceiveMessageOutput{
					Messages: []types.Message{
						{
							Body:          aws.String(invalidMessageBody),
							ReceiptHandle: aws.String("test-receipt-handle"),
						},
					},
				}, nil
			},
		}

		consumer := NewConsumer(mockClient, queueURL, nil)

		// when
		err := consumer.receiveMessages(ctx)

		// then
		require.NoError(t, err, "processing errors are logged, not returned")
	})
}

func TestNewConsumer(t *testing.T) {
	t.Run("creates consumer successfully", func(t *testing.T) {
		// given
		mockClient := &mockSQSConsumerClient{}
		queueURL := "https://sqs.us-east-1.amazonaws.com/123456789/test-queue"

		// when
		consumer := NewConsumer(mockClient, queueURL, nil)

		// then
		require.NotNil(t, consumer)
		assert.Equal(t, queueURL, consumer.queueURL)
		assert.NotNil(t, consumer.handler, "nil handler should default to logging")
	})
}

func TestConsumer_handler(t *testing.T) {
	t.Run("decoded message reaches the handler and is deleted", func(t *testing.T) {
		// given
		var received []ProductMessage
		deleted := 0
		mockClient := &mockSQSConsumerClient{
			receiveMessageFunc: func(_ context.Context, _ *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
				return &sqs.ReceiveMessageOutput{Messages: []types.Message{{
					Body:          aws.String(`{"action":"created","product_id":7,"name":"Boots of Haste","price":"300 gold","rarity":"Rare","image_path":"/images/b.jpg"}`),
					ReceiptHandle: aws.String("rh"),
				}}}, nil
			},
			deleteMessageFunc: func(_ context.Context, _ *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
				deleted++
				return &sqs.DeleteMessageOutput{}, nil
			},
		}
		consumer := NewConsumer(mockClient, "queue", func(_ context.Context, msg ProductMessage) error {
			received = append(received, msg)
			return nil
		})

		// when
		err := consumer.receiveMessages(context.Background())

		// then
		require.NoError(t, err)
		require.Len(t, received, 1)
		assert.Equal(t, ProductMessage{
			Action:    ActionCreated,
			ProductID: 7,
			Name:      "Boots of Haste",
			Price:     "300 gold",
			Rarity:    "Rare",
			ImagePath: "/images/b.jpg",
		}, received[0])
		assert.Equal(t, 1, deleted)
	})

	t.Run("handler error keeps the message on the queue", func(t *testing.T) {
		// given
		deleted := 0
		mockClient := &mockSQSConsumerClient{
			receiveMessageFunc: func(_ context.Context, _ *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
				return &sqs.ReceiveMessageOutput{Messages: []types.Message{{
					Body:          aws.String(`{"action":"created","product_id":1}`),
					ReceiptHandle: aws.String("rh"),
				}}}, nil
			},
			deleteMessageFunc: func(_ context.Context, _ *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
				deleted++
				return &sqs.DeleteMessageOutput{}, nil
			},
		}
		consumer := NewConsumer(mockClient, "queue", func(context.Context, ProductMessage) error {
			return errors.New("downstream unavailable")
		})

		// when
		err := consumer.receiveMessages(context.Background())

		// then
		require.NoError(t, err)
		assert.Zero(t, deleted)
	})
}

func TestConsumer_Start_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	mockClient := &mockSQSConsumerClient{
		receiveMessageFunc: func(ctx context.Context, _ *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
			calls++
			if calls == 2 {
				cancel()
			}
			return &sqs.ReceiveMessageOutput{}, ctx.Err()
		},
	}

	err := NewConsumer(mockClient, "queue", nil).Start(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, calls)
}
