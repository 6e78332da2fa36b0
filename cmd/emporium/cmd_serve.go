package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	httpAPI "github.com/iyhunko/magical-emporium/internal/http"
	"github.com/iyhunko/magical-emporium/internal/metrics"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the storefront, admin panel and metrics server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := conf.RequireSecrets(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	productService, db, err := newProductService(ctx, conf)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := os.MkdirAll(conf.ImageDir(), 0o755); err != nil {
		return fmt.Errorf("error while creating image directory: %w", err)
	}

	if !conf.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router, err := httpAPI.InitRouter(conf, gin.New(), productService)
	if err != nil {
		return fmt.Errorf("error while building router: %w", err)
	}

	httpServer := &http.Server{
		Addr:              ":" + conf.HTTPServer.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      conf.HTTPServer.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}
	metricsServer := metrics.StartMetricsServer(conf.MetricsServer)

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("HTTP server starting", slog.String("port", conf.HTTPServer.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("error while listening to HTTP requests: %w", err)
		}
	case <-ctx.Done():
		slog.Info("Shutting down gracefully...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown failed", slog.Any("err", err))
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Metrics server shutdown failed", slog.Any("err", err))
	}
	return nil
}
