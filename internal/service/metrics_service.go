package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API and the
// optimization engine.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	runDuration     prometheus.Histogram
	runsTotal       *prometheus.CounterVec
	assignmentsMade *prometheus.CounterVec
	conflictsTotal  *prometheus.CounterVec
	unassignedTotal prometheus.Counter
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
}

// NewMetricsService registers core Prometheus collectors on a private registry.
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

	runDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "optimization_run_duration_seconds",
		Help:    "Duration of optimization engine runs",
		Buckets: prometheus.DefBuckets,
	})

	runsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "optimization_runs_total",
		Help: "Total optimization runs by outcome",
	}, []string{"outcome"})

	assignmentsMade := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "optimization_assignments_total",
		Help: "Assignments produced by optimization runs",
	}, []string{"kind"})

	conflictsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "optimization_conflicts_total",
		Help: "Conflicts detected during optimization runs",
	}, []string{"type"})

	unassignedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "optimization_unassigned_courses_total",
		Help: "Courses left unassigned by optimization runs",
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

	registry.MustRegister(requestDuration, requestTotal, runDuration, runsTotal, assignmentsMade, conflictsTotal, unassignedTotal, cacheHits, cacheMisses, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		runDuration:     runDuration,
		runsTotal:       runsTotal,
		assignmentsMade: assignmentsMade,
		conflictsTotal:  conflictsTotal,
		unassignedTotal: unassignedTotal,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
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

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveOptimizationRun records one engine invocation.
func (m *MetricsService) ObserveOptimizationRun(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.runDuration.Observe(duration.Seconds())
	m.runsTotal.WithLabelValues(outcome).Inc()
}

// RecordAssignment counts a produced assignment by kind (direct or fallback).
func (m *MetricsService) RecordAssignment(fallback bool) {
	if m == nil {
		return
	}
	kind := "direct"
	if fallback {
		kind = "fallback"
	}
	m.assignmentsMade.WithLabelValues(kind).Inc()
}

// RecordConflict counts a detected conflict by type.
func (m *MetricsService) RecordConflict(conflictType string) {
	if m == nil {
		return
	}
	m.conflictsTotal.WithLabelValues(conflictType).Inc()
}

// RecordUnassigned counts courses no teacher could take.
func (m *MetricsService) RecordUnassigned(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.unassignedTotal.Add(float64(count))
}

// RecordCacheLookup records a cache hit or miss.
func (m *MetricsService) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}
