package http

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/magical-emporium/internal/config"
	"github.com/iyhunko/magical-emporium/internal/http/controller"
	"github.com/iyhunko/magical-emporium/internal/http/middleware"
	"github.com/iyhunko/magical-emporium/internal/service"
	"github.com/iyhunko/magical-emporium/internal/web"
)

func InitRouter(conf *config.Config, server *gin.Engine, productService controller.ProductService) (*gin.Engine, error) {
	templates, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	server.SetHTMLTemplate(templates)

	httpMiddleware := middleware.New(conf)
	ctr := controller.New()
	storefrontCtr := controller.NewStorefrontController(productService)
	adminCtr := controller.NewAdminController(productService)
	productCtr := controller.NewProductController(productService)

	// Apply recovery middleware globally to prevent panics from crashing the server
	server.Use(middleware.Recovery(), middleware.Logger())

	server.GET("/health", ctr.Health)
	server.Static(service.ImageURLPrefix, conf.ImageDir())
	server.NoRoute(ctr.NotFound)

	// Storefront
	server.GET("/", storefrontCtr.Index)
	server.GET("/product/:id", storefrontCtr.Product)

	// Admin panel
	admin := server.Group("/admin", httpMiddleware.AdminAuth())
	{
		admin.GET("", adminCtr.Dashboard)
		admin.GET("/new", adminCtr.NewProductForm)
		admin.POST("/create", adminCtr.CreateProduct)
	}

	// Product endpoints
	products := server.Group("/api/products")
	{
		products.GET("", productCtr.ListProducts)
		products.GET("/:id", productCtr.GetProduct)
	}

	return server, nil
}
