package main

import (
	"fmt"
	"strings"

	"github.com/iyhunko/magical-emporium/internal/model"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var generateCmd = &cobra.Command{
	Use:     "generate <idea>",
	Short:   "Conjure one product from a one-line idea and print it",
	Example: `  emporium generate "A glowing crystal orb that shows visions of the future"`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runGenerate,
}

// generatedProduct is the printed form of a new product.
type generatedProduct struct {
	ID          int64    `yaml:"id"`
	Name        string   `yaml:"name"`
	Price       string   `yaml:"price"`
	Category    string   `yaml:"category"`
	Rarity      string   `yaml:"rarity"`
	Tags        []string `yaml:"tags"`
	ImagePath   string   `yaml:"image_path"`
	CreatedAt   string   `yaml:"created_at"`
	Description string   `yaml:"description"`
}

func runGenerate(cmd *cobra.Command, args []string) error {
	productService, db, err := newProductService(cmd.Context(), conf)
	if err != nil {
		return err
	}
	defer db.Close()

	product, err := productService.CreateProduct(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}

	out, err := yaml.Marshal(toGeneratedProduct(product))
	if err != nil {
		return fmt.Errorf("failed to encode product: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

func toGeneratedProduct(p *model.Product) generatedProduct {
	return generatedProduct{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Category:    p.Category,
		Rarity:      p.Rarity,
		Tags:        []string(p.Tags),
		ImagePath:   p.ImagePath,
		CreatedAt:   p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		Description: p.Description,
	}
}
