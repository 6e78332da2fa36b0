package controller

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/magical-emporium/internal/repository"
)

// StorefrontController renders the public catalog.
type StorefrontController struct {
	productService ProductService
}

// NewStorefrontController creates a new StorefrontController with the given product service.
func NewStorefrontController(productService ProductService) *StorefrontController {
	return &StorefrontController{
		productService: productService,
	}
}

// Index renders every product, most recent first.
func (sc *StorefrontController) Index(c *gin.Context) {
	products, err := sc.productService.ListProducts(c.Request.Context(), *repository.NewQuery())
	if err != nil {
		slog.Error("Failed to list products", slog.Any("err", err))
		c.String(http.StatusInternalServerError, "failed to list products")
		return
	}

	c.HTML(http.StatusOK, "index.html", gin.H{
		"Products": products,
	})
}

// Product renders one product. Unknown or malformed ids get the 404 page.
func (sc *StorefrontController) Product(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		renderNotFound(c, "")
		return
	}

	product, err := sc.productService.GetProduct(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		renderNotFound(c, "")
		return
	}
	if err != nil {
		slog.Error("Failed to load product", slog.Any("err", err), slog.Int64("product_id", id))
		c.String(http.StatusInternalServerError, "failed to load product")
		return
	}

	c.HTML(http.StatusOK, "product.html", gin.H{
		"Title":   product.Name,
		"Product": product,
	})
}

func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
