package inventory

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// scansTotal counts finished scans by terminal state
	scansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_scans_total",
			Help: "Finished barcode scans by terminal state",
		},
		[]string{"state"},
	)

	// apiRequestDuration times calls to the Alma API
	apiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inventory_api_request_duration_seconds",
			Help:    "Duration of Alma API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)
)

func observeAPI(op string, start time.Time) {
	apiRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
