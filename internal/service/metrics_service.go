package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP
// surface and the rewards ledger.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	foodPosts       *prometheus.CounterVec
	stationClaims   *prometheus.CounterVec
	persistFailures prometheus.Counter
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
}

// NewMetricsService registers the core collectors.
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

	foodPosts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "food_posts_total",
		Help: "Total food submissions recorded, by category",
	}, []string{"food_type"})

	stationClaims := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "station_claims_total",
		Help: "Total station claim attempts, by outcome",
	}, []string{"result"})

	persistFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "document_persist_failures_total",
		Help: "Total document store writes that failed after an in-memory mutation",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, foodPosts, stationClaims, persistFailures, cacheHits, cacheMisses, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		foodPosts:       foodPosts,
		stationClaims:   stationClaims,
		persistFailures: persistFailures,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
	}
}

// Handler exposes the metrics endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveHTTPRequest records one served request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := []string{method, path, fmt.Sprintf("%d", status)}
	s.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(labels...).Inc()
}

// RecordFoodPost counts one recorded submission.
func (s *MetricsService) RecordFoodPost(foodType string) {
	s.foodPosts.WithLabelValues(foodType).Inc()
}

// RecordStationClaim counts one claim attempt by outcome.
func (s *MetricsService) RecordStationClaim(result string) {
	s.stationClaims.WithLabelValues(result).Inc()
}

// RecordPersistFailure counts one failed document store write.
func (s *MetricsService) RecordPersistFailure() {
	s.persistFailures.Inc()
}

// RecordCacheOperation counts one cache lookup.
func (s *MetricsService) RecordCacheOperation(hit bool) {
	if hit {
		s.cacheHits.Inc()
		return
	}
	s.cacheMisses.Inc()
}
