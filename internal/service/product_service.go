package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/iyhunko/magical-emporium/internal/gemini"
	"github.com/iyhunko/magical-emporium/internal/imaging"
	"github.com/iyhunko/magical-emporium/internal/metrics"
	"github.com/iyhunko/magical-emporium/internal/model"
	"github.com/iyhunko/magical-emporium/internal/repository"
)

// ImageURLPrefix is the public path under which product images are served.
const ImageURLPrefix = "/images"

// Pipeline stages reported by CreationError and the failure metric.
const (
	StageDescription = "description"
	StageImagePrompt = "image_prompt"
	StageImage       = "image"
	StageConversion  = "conversion"
	StageStorage     = "storage"
)

// ErrEmptySeed is returned when the one-line product idea is blank.
var ErrEmptySeed = errors.New("product idea must not be empty")

// CreationError reports which pipeline stage aborted a product creation.
type CreationError struct {
	Stage string
	Err   error
}

func (e *CreationError) Error() string {
	return fmt.Sprintf("product creation failed at %s stage: %v", e.Stage, e.Err)
}

func (e *CreationError) Unwrap() error {
	return e.Err
}

// ContentGenerator produces the generated parts of a product.
type ContentGenerator interface {
	GenerateDescription(ctx context.Context, seed string) (string, error)
	GenerateImagePrompt(ctx context.Context, description string) (string, error)
	GenerateImage(ctx context.Context, prompt string, size int, outputPath string) (string, error)
}

var _ ContentGenerator = (*gemini.Client)(nil)

// Notifier announces newly stored products.
type Notifier interface {
	NotifyCreated(ctx context.Context, product *model.Product) error
}

// ImageOptions locate and shape the stored product images.
type ImageOptions struct {
	Dir     string
	Size    int
	Quality int
}

type ProductService struct {
	repo      repository.ProductRepository
	generator ContentGenerator
	images    ImageOptions
	notifier  Notifier
	convert   func(src, dst string, opts imaging.Options) (string, error)
}

// NewProductService wires the creation pipeline. notifier may be nil.
func NewProductService(repo repository.ProductRepository, generator ContentGenerator, images ImageOptions, notifier Notifier) *ProductService {
	return &ProductService{
		repo:      repo,
		generator: generator,
		images:    images,
		notifier:  notifier,
		convert:   imaging.ConvertToJPEG,
	}
}

// CreateProduct turns a one-line idea into a stored product. The steps run
// strictly in order and the row is inserted last; on failure no row exists
// and the image files of this attempt are removed.
func (ps *ProductService) CreateProduct(ctx context.Context, seed string) (*model.Product, error) {
	seed = strings.TrimSpace(seed)
	if seed == "" {
		return nil, ErrEmptySeed
	}

	slog.Info("Creating product", slog.String("seed", seed))

	description, err := ps.generator.GenerateDescription(ctx, seed)
	if err != nil {
		return nil, ps.fail(StageDescription, err)
	}

	imagePrompt, err := ps.generator.GenerateImagePrompt(ctx, description)
	if err != nil {
		return nil, ps.fail(StageImagePrompt, err)
	}

	name := uuid.New().String()
	pngPath := filepath.Join(ps.images.Dir, name+".png")
	jpgPath := filepath.Join(ps.images.Dir, name+".jpg")

	if _, err := ps.generator.GenerateImage(ctx, imagePrompt, ps.images.Size, pngPath); err != nil {
		removeFiles(pngPath)
		return nil, ps.fail(StageImage, err)
	}

	if _, err := ps.convert(pngPath, jpgPath, imaging.Options{Size: ps.images.Size, Quality: ps.images.Quality}); err != nil {
		removeFiles(pngPath, jpgPath)
		return nil, ps.fail(StageConversion, err)
	}

	meta := ExtractMetadata(description, seed)
	slog.Debug("Extracted metadata",
		slog.String("name", meta.Name),
		slog.String("price", meta.Price),
		slog.String("category", meta.Category),
		slog.String("rarity", meta.Rarity),
		slog.Any("tags", meta.Tags),
	)

	created, err := ps.repo.Create(ctx, &model.Product{
		Name:        meta.Name,
		Description: description,
		ImagePath:   path.Join(ImageURLPrefix, name+".jpg"),
		Price:       meta.Price,
		Category:    meta.Category,
		Tags:        meta.Tags,
		Rarity:      meta.Rarity,
	})
	if err != nil {
		removeFiles(pngPath, jpgPath)
		return nil, ps.fail(StageStorage, err)
	}

	metrics.ProductsCreated.Inc()
	slog.Info("Product created", slog.Int64("product_id", created.ID), slog.String("name", created.Name))

	if ps.notifier != nil {
		if err := ps.notifier.NotifyCreated(ctx, created); err != nil {
			slog.Error("Failed to send SQS message", slog.Any("err", err), slog.String("action", "created"), slog.Int64("product_id", created.ID))
		}
	}

	return created, nil
}

// ListProducts returns products most recent first.
func (ps *ProductService) ListProducts(ctx context.Context, query repository.Query) ([]*model.Product, error) {
	return ps.repo.List(ctx, query)
}

// GetProduct returns repository.ErrNotFound when id does not exist.
func (ps *ProductService) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	return ps.repo.FindByID(ctx, id)
}

func (ps *ProductService) CountProducts(ctx context.Context) (int, error) {
	return ps.repo.Count(ctx)
}

func (ps *ProductService) fail(stage string, err error) error {
	metrics.ProductCreationFailures.WithLabelValues(stage).Inc()
	slog.Error("Product creation failed", slog.String("stage", stage), slog.Any("err", err))
	return &CreationError{Stage: stage, Err: err}
}

func removeFiles(paths ...string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("Failed to remove image file", slog.String("path", p), slog.Any("err", err))
		}
	}
}
