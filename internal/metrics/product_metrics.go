package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultSuccess = "success"
	resultError   = "error"
)

var (
	// ProductsCreated is a Prometheus counter for tracking the total number of products created.
	ProductsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "products_created_total",
		Help: "The total number of products created",
	})

	// ProductCreationFailures counts aborted product creations by the pipeline stage that failed.
	ProductCreationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "product_creation_failures_total",
		Help: "The total number of product creations that failed, by stage",
	}, []string{"stage"})

	// GenerationDuration tracks the latency of remote generation calls.
	GenerationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "generation_duration_seconds",
		Help:    "Duration of generative content calls",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 160},
	}, []string{"operation", "result"})
)

// ObserveGeneration records the duration of one generation call started at start.
func ObserveGeneration(operation string, start time.Time, err error) {
	result := resultSuccess
	if err != nil {
		result = resultError
	}
	GenerationDuration.WithLabelValues(operation, result).Observe(time.Since(start).Seconds())
}
