package controller

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/magical-emporium/internal/model"
	"github.com/iyhunko/magical-emporium/internal/repository"
)

// ProductController handles the JSON product API.
type ProductController struct {
	productService ProductService
}

// NewProductController creates a new ProductController with the given product service.
func NewProductController(productService ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

// ProductResponse represents the response body for a product.
type ProductResponse struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	ImagePath   string   `json:"image_path"`
	Price       string   `json:"price"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Rarity      string   `json:"rarity"`
	CreatedAt   string   `json:"created_at"`
}

// ListProductsRequest represents the query parameters for listing products.
type ListProductsRequest struct {
	Limit int32  `form:"limit"`
	Token string `form:"token"`
}

// ListProductsResponse represents the response body for listing products.
type ListProductsResponse struct {
	Products      []ProductResponse `json:"products"`
	NextPageToken string            `json:"next_page_token,omitempty"`
}

// ListProducts handles the HTTP GET request for listing products with pagination.
func (pc *ProductController) ListProducts(c *gin.Context) {
	var req ListProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	query := repository.NewQuery()
	if err := query.ApplyPagination(req.Limit, req.Token); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	products, err := pc.productService.ListProducts(c.Request.Context(), *query)
	if err != nil {
		slog.Error("Failed to list products", slog.Any("err", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list products"})
		return
	}

	productResponses := make([]ProductResponse, 0, len(products))
	for _, product := range products {
		productResponses = append(productResponses, toProductResponse(product))
	}

	response := ListProductsResponse{
		Products: productResponses,
	}

	// A full page may have a successor.
	if len(products) > 0 && len(products) == query.Limit {
		lastProduct := products[len(products)-1]
		paginator := repository.Paginator{
			LastID:        lastProduct.ID,
			LastCreatedAt: lastProduct.CreatedAt,
		}
		response.NextPageToken = paginator.Encode()
	}

	c.JSON(http.StatusOK, response)
}

// GetProduct handles the HTTP GET request for a single product.
func (pc *ProductController) GetProduct(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}

	product, err := pc.productService.GetProduct(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	if err != nil {
		slog.Error("Failed to load product", slog.Any("err", err), slog.Int64("product_id", id))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load product"})
		return
	}

	c.JSON(http.StatusOK, toProductResponse(product))
}

func toProductResponse(product *model.Product) ProductResponse {
	tags := []string(product.Tags)
	if tags == nil {
		tags = []string{}
	}
	return ProductResponse{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		ImagePath:   product.ImagePath,
		Price:       product.Price,
		Category:    product.Category,
		Tags:        tags,
		Rarity:      product.Rarity,
		CreatedAt:   product.CreatedAt.Format(time.RFC3339),
	}
}
