package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Upload outcomes used as the "outcome" label.
const (
	OutcomeSuccess   = "success"
	OutcomeHTTPError = "http_error"
	OutcomeTransport = "transport_error"
	OutcomeMalformed = "malformed_body"
)

var (
	registry = prometheus.NewRegistry()

	uploadsStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "paper_review",
		Subsystem: "upload",
		Name:      "started_total",
		Help:      "Total uploads sent to the analysis service.",
	})
	uploadsFinished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "paper_review",
		Subsystem: "upload",
		Name:      "finished_total",
		Help:      "Total uploads finished, by outcome.",
	}, []string{"outcome"})
	uploadsRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "paper_review",
		Subsystem: "upload",
		Name:      "rejected_total",
		Help:      "Uploads refused before any network call, by reason.",
	}, []string{"reason"})
	uploadDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "paper_review",
		Subsystem: "upload",
		Name:      "duration_seconds",
		Help:      "Wall time of the upstream analysis call.",
		Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	})
	uploadBytes = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "paper_review",
		Subsystem: "upload",
		Name:      "bytes_total",
		Help:      "Request body bytes written to the analysis service.",
	})
)

func init() {
	registry.MustRegister(uploadsStarted, uploadsFinished, uploadsRejected, uploadDuration, uploadBytes)
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
}

// IncUploadStarted increments the started counter.
func IncUploadStarted() {
	uploadsStarted.Inc()
}

// ObserveUpload records a finished upload.
func ObserveUpload(outcome string, elapsed time.Duration, bytesSent int64) {
	uploadsFinished.WithLabelValues(outcome).Inc()
	uploadDuration.Observe(elapsed.Seconds())
	if bytesSent > 0 {
		uploadBytes.Add(float64(bytesSent))
	}
}

// IncUploadRejected counts an upload refused locally (no file, already uploading).
func IncUploadRejected(reason string) {
	uploadsRejected.WithLabelValues(reason).Inc()
}

// Registry exposes the registry for tests.
func Registry() *prometheus.Registry {
	return registry
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}
