// Package metrics exposes Prometheus collectors for the upload pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Upload outcomes used as the "outcome" label.
const (
	OutcomeSuccess          = "success"
	OutcomeInvalidExtension = "invalid_extension"
	OutcomeMalformed        = "malformed_document"
	OutcomeCancelled        = "cancelled"
)

// Uploads records upload pipeline activity.
type Uploads struct {
	total       *prometheus.CounterVec
	duration    prometheus.Histogram
	routePoints prometheus.Histogram
}

// NewUploads registers the upload collectors with reg.
func NewUploads(reg prometheus.Registerer) *Uploads {
	f := promauto.With(reg)
	return &Uploads{
		total: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tcxview_uploads_total",
			Help: "Uploads processed, by outcome.",
		}, []string{"outcome"}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "tcxview_upload_processing_seconds",
			Help:    "Time spent reading, parsing and aggregating an upload, excluding the pacing delay.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		}),
		routePoints: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "tcxview_route_points",
			Help:    "Route points per successful upload.",
			Buckets: prometheus.ExponentialBuckets(10, 4, 8),
		}),
	}
}

// Outcome counts one finished upload.
func (u *Uploads) Outcome(outcome string) {
	if u == nil {
		return
	}
	u.total.WithLabelValues(outcome).Inc()
}

// Processed records the processing time and route size of a successful upload.
func (u *Uploads) Processed(d time.Duration, points int) {
	if u == nil {
		return
	}
	u.duration.Observe(d.Seconds())
	u.routePoints.Observe(float64(points))
}
