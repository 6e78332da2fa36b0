package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/iyhunko/magical-emporium/internal/config"
	"github.com/iyhunko/magical-emporium/internal/gemini"
	sqlrepo "github.com/iyhunko/magical-emporium/internal/repository/sql"
	"github.com/iyhunko/magical-emporium/internal/service"
	sqspkg "github.com/iyhunko/magical-emporium/internal/sqs"
)

// newProductService opens the store and builds the creation pipeline. The
// returned DB must be closed by the caller.
func newProductService(ctx context.Context, conf *config.Config) (*service.ProductService, *sqlrepo.DB, error) {
	db, err := sqlrepo.StartDB(ctx, conf.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("error while starting database: %w", err)
	}

	generator, err := gemini.NewClient(ctx, conf.Gemini)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("error while creating Gemini client: %w", err)
	}

	var notifier service.Notifier
	if conf.NotificationsEnabled() {
		sqsClient, err := sqspkg.NewClient(ctx, conf.AWS)
		if err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("error while creating SQS client: %w", err)
		}
		notifier = sqspkg.NewPublisher(sqsClient, conf.AWS.SQSQueueURL)
		slog.Info("Listing notifications enabled", slog.String("queueURL", conf.AWS.SQSQueueURL))
	}

	productService := service.NewProductService(
		sqlrepo.NewProductRepository(db),
		generator,
		service.ImageOptions{
			Dir:     conf.ImageDir(),
			Size:    conf.Image.Size,
			Quality: conf.Image.Quality,
		},
		notifier,
	)
	return productService, db, nil
}
