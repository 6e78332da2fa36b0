package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/magical-emporium/internal/model"
	"github.com/iyhunko/magical-emporium/internal/repository"
	"github.com/iyhunko/magical-emporium/internal/service"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "magical-emporium"

// ProductService is the product API the controllers depend on.
type ProductService interface {
	CreateProduct(ctx context.Context, seed string) (*model.Product, error)
	ListProducts(ctx context.Context, query repository.Query) ([]*model.Product, error)
	GetProduct(ctx context.Context, id int64) (*model.Product, error)
	CountProducts(ctx context.Context) (int, error)
}

var _ ProductService = (*service.ProductService)(nil)

// Controller handles general HTTP requests.
type Controller struct{}

// New creates a new Controller.
func New() *Controller {
	return &Controller{}
}

// Health handles the HTTP GET request for the health check endpoint.
func (con *Controller) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": ServiceName,
	})
}

// NotFound renders the 404 page for unknown routes.
func (con *Controller) NotFound(c *gin.Context) {
	renderNotFound(c, "")
}

func renderNotFound(c *gin.Context, message string) {
	c.HTML(http.StatusNotFound, "not_found.html", gin.H{
		"Title":   "Not found",
		"Message": message,
	})
}
