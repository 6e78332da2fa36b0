package sqs

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/iyhunko/magical-emporium/internal/config"
)

// NewClient creates and configures a new AWS SQS client.
// It loads the AWS configuration from the environment and optionally sets a custom
// endpoint, e.g. LocalStack for development.
func NewClient(ctx context.Context, conf config.AWSConfig) (*sqs.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(conf.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	if endpoint := conf.Endpoint; endpoint != "" {
		awsCfg.BaseEndpoint = aws.String(endpoint)
	}

	return sqs.NewFromConfig(awsCfg), nil
}
