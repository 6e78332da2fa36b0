package sqs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/iyhunko/magical-emporium/internal/model"
)

// ActionCreated marks a listing announcement for a newly created product.
const ActionCreated = "created"

// PublisherAPI defines the interface for SQS operations used by Publisher.
type PublisherAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// Publisher handles publishing messages to AWS SQS.
type Publisher struct {
	client   PublisherAPI
	queueURL string
}

// NewPublisher creates a new SQS Publisher with the given client and queue URL.
func NewPublisher(client PublisherAPI, queueURL string) *Publisher {
	return &Publisher{
		client:   client,
		queueURL: queueURL,
	}
}

// ProductMessage announces a new listing.
type ProductMessage struct {
	Action    string `json:"action"`
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Rarity    string `json:"rarity"`
	ImagePath string `json:"image_path"`
}

// NewProductMessage builds the announcement for a stored product.
func NewProductMessage(action string, p *model.Product) ProductMessage {
	return ProductMessage{
		Action:    action,
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Rarity:    p.Rarity,
		ImagePath: p.ImagePath,
	}
}

// NotifyCreated publishes a "created" announcement for product.
func (p *Publisher) NotifyCreated(ctx context.Context, product *model.Product) error {
	return p.PublishProductMessage(ctx, NewProductMessage(ActionCreated, product))
}

// PublishProductMessage publishes a product message to the SQS queue.
func (p *Publisher) PublishProductMessage(ctx context.Context, msg ProductMessage) error {
	messageBody, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	_, err = p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(messageBody)),
	})
	if err != nil {
		return fmt.Errorf("failed to send message to SQS: %w", err)
	}

	return nil
}
