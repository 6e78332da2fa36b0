package metrics_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/iyhunko/magical-emporium/internal/config"
	"github.com/iyhunko/magical-emporium/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductCreationFailures(t *testing.T) {
	before := testutil.ToFloat64(metrics.ProductCreationFailures.WithLabelValues("image"))

	metrics.ProductCreationFailures.WithLabelValues("image").Inc()

	assert.Equal(t, before+1, testutil.ToFloat64(metrics.ProductCreationFailures.WithLabelValues("image")))
}

func TestObserveGeneration(t *testing.T) {
	metrics.ObserveGeneration("test_operation", time.Now(), nil)
	metrics.ObserveGeneration("test_operation", time.Now(), errors.New("boom"))

	assert.GreaterOrEqual(t, testutil.CollectAndCount(metrics.GenerationDuration, "generation_duration_seconds"), 2)
}

func TestNewMetricsServer(t *testing.T) {
	server := metrics.NewMetricsServer(config.Server{Port: "9999"})
	require.NotNil(t, server)
	assert.Equal(t, ":9999", server.Addr)

	metrics.ProductsCreated.Inc()

	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "products_created_total")
}
