package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/it-hub-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry         *prometheus.Registry
	handler          http.Handler
	requestDuration  *prometheus.HistogramVec
	requestTotal     *prometheus.CounterVec
	storeWrite       *prometheus.HistogramVec
	downloads        prometheus.Counter
	ratings          *prometheus.CounterVec
	assistantReplies *prometheus.CounterVec
	cleanupJobs      *prometheus.CounterVec
	uploadedBytes    prometheus.Counter

	requestCount         uint64
	requestDurationTotal uint64
	storeWriteCount      uint64
	storeWriteTotal      uint64
	downloadCount        uint64
	ratingCount          uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	storeWrite := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_store_write_seconds",
		Help:    "Latency of whole-collection writes to the storage backend",
		Buckets: prometheus.DefBuckets,
	}, []string{"key"})

	downloads := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "catalog_downloads_total",
		Help: "Study file downloads served",
	})

	ratings := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_ratings_total",
		Help: "Ratings submitted, by star value",
	}, []string{"stars"})

	assistantReplies := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_replies_total",
		Help: "Assistant replies by outcome",
	}, []string{"outcome"})

	cleanupJobs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "blob_cleanup_jobs_total",
		Help: "Uploaded body cleanup jobs by result",
	}, []string{"result"})

	uploadedBytes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "catalog_uploaded_bytes_total",
		Help: "Bytes accepted through file uploads",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, storeWrite, downloads, ratings, assistantReplies, cleanupJobs, uploadedBytes, goroutines)

	return &MetricsService{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		storeWrite:       storeWrite,
		downloads:        downloads,
		ratings:          ratings,
		assistantReplies: assistantReplies,
		cleanupJobs:      cleanupJobs,
		uploadedBytes:    uploadedBytes,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// ObserveStoreWrite records the latency of one backend slot write.
func (m *MetricsService) ObserveStoreWrite(key string, duration time.Duration) {
	if m == nil {
		return
	}
	m.storeWrite.WithLabelValues(key).Observe(duration.Seconds())
	atomic.AddUint64(&m.storeWriteCount, 1)
	atomic.AddUint64(&m.storeWriteTotal, uint64(duration.Nanoseconds()))
}

// RecordDownload counts a served download.
func (m *MetricsService) RecordDownload() {
	if m == nil {
		return
	}
	m.downloads.Inc()
	atomic.AddUint64(&m.downloadCount, 1)
}

// RecordRating counts a submitted rating.
func (m *MetricsService) RecordRating(stars int) {
	if m == nil {
		return
	}
	m.ratings.WithLabelValues(fmt.Sprintf("%d", stars)).Inc()
	atomic.AddUint64(&m.ratingCount, 1)
}

// RecordUpload adds accepted upload bytes.
func (m *MetricsService) RecordUpload(bytes int64) {
	if m == nil || bytes <= 0 {
		return
	}
	m.uploadedBytes.Add(float64(bytes))
}

// RecordAssistantReply counts an assistant reply by outcome (ok, fallback, error, unavailable).
func (m *MetricsService) RecordAssistantReply(outcome string) {
	if m == nil {
		return
	}
	m.assistantReplies.WithLabelValues(outcome).Inc()
}

// RecordCleanup counts a finished blob cleanup job.
func (m *MetricsService) RecordCleanup(success bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !success {
		result = "error"
	}
	m.cleanupJobs.WithLabelValues(result).Inc()
}

// Snapshot returns aggregated metrics for the admin dashboard.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{GeneratedAt: time.Now().UTC()}
	}
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)
	writes := atomic.LoadUint64(&m.storeWriteCount)
	writeDuration := atomic.LoadUint64(&m.storeWriteTotal)

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	var avgWriteMs float64
	if writes > 0 {
		avgWriteMs = float64(writeDuration) / float64(writes) / float64(time.Millisecond)
	}

	return models.SystemMetrics{
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		StoreWrites:              writes,
		AverageStoreWriteMs:      avgWriteMs,
		DownloadsServed:          atomic.LoadUint64(&m.downloadCount),
		RatingsReceived:          atomic.LoadUint64(&m.ratingCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
