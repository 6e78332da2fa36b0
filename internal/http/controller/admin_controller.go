package controller

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/magical-emporium/internal/gemini"
	"github.com/iyhunko/magical-emporium/internal/imaging"
	"github.com/iyhunko/magical-emporium/internal/repository"
	"github.com/iyhunko/magical-emporium/internal/service"
)

// AdminController serves the password protected product management pages.
type AdminController struct {
	productService ProductService
}

// NewAdminController creates a new AdminController with the given product service.
func NewAdminController(productService ProductService) *AdminController {
	return &AdminController{
		productService: productService,
	}
}

// CreateProductRequest is the htmx form posted by the creation page.
type CreateProductRequest struct {
	Description string `form:"description"`
}

// Dashboard lists every product in a table.
func (ac *AdminController) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()

	products, err := ac.productService.ListProducts(ctx, *repository.NewQuery())
	if err != nil {
		slog.Error("Failed to list products", slog.Any("err", err))
		c.String(http.StatusInternalServerError, "failed to list products")
		return
	}
	count, err := ac.productService.CountProducts(ctx)
	if err != nil {
		slog.Error("Failed to count products", slog.Any("err", err))
		c.String(http.StatusInternalServerError, "failed to count products")
		return
	}

	c.HTML(http.StatusOK, "admin.html", gin.H{
		"Title":    "Admin",
		"Products": products,
		"Count":    count,
	})
}

// NewProductForm renders the creation form.
func (ac *AdminController) NewProductForm(c *gin.Context) {
	c.HTML(http.StatusOK, "admin_new.html", gin.H{
		"Title": "New product",
	})
}

// CreateProduct runs the generation pipeline for the posted idea and answers
// with an HTML fragment. The request blocks until the pipeline finishes.
func (ac *AdminController) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBind(&req); err != nil {
		renderCreateError(c, http.StatusBadRequest, "The form could not be read.", false)
		return
	}

	product, err := ac.productService.CreateProduct(c.Request.Context(), req.Description)
	if err != nil {
		status, message := creationFailure(err)
		renderCreateError(c, status, message, status != http.StatusBadRequest)
		return
	}

	c.HTML(http.StatusOK, "create_success.html", gin.H{
		"Product": product,
	})
}

func creationFailure(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrEmptySeed):
		return http.StatusBadRequest, "Please describe the item first."
	case errors.Is(err, gemini.ErrGenerationFailed):
		return http.StatusBadGateway, "The AI could not conjure this item: " + err.Error()
	case errors.Is(err, imaging.ErrImageProcessing):
		return http.StatusBadGateway, "The generated image could not be processed: " + err.Error()
	default:
		return http.StatusInternalServerError, "Something went wrong while saving the item."
	}
}

func renderCreateError(c *gin.Context, status int, message string, retry bool) {
	c.HTML(status, "create_error.html", gin.H{
		"Message": message,
		"Retry":   retry,
	})
}
