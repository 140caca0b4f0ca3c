package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"time"
)

// Metrics holds all Prometheus metrics for the similarity-search library.
type Metrics struct {
	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestErrors   *prometheus.CounterVec

	// Object ingestion metrics
	ObjectsInserted prometheus.Counter
	ObjectsDeleted  prometheus.Counter

	// Index metrics
	IndexSize       *prometheus.GaugeVec
	IndexMaxLayer   *prometheus.GaugeVec
	IndexBuildTotal *prometheus.CounterVec
	IndexBuildTime  *prometheus.HistogramVec

	// Search metrics
	SearchLatency          *prometheus.HistogramVec
	SearchRecall           prometheus.Histogram
	SearchResultSize       prometheus.Histogram
	DistanceComputations   *prometheus.CounterVec
	CandidatesConsidered   *prometheus.HistogramVec

	// Collection metrics
	CollectionsTotal prometheus.Gauge

	// System metrics
	GoroutinesCount prometheus.Gauge
	MemoryUsage     prometheus.Gauge
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "simsearch_requests_total",
				Help: "Total number of requests by method and status",
			},
			[]string{"method", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "simsearch_request_duration_seconds",
				Help:    "Request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method"},
		),
		RequestErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "simsearch_request_errors_total",
				Help: "Total number of request errors by method and error type",
			},
			[]string{"method", "error_type"},
		),

		ObjectsInserted: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "simsearch_objects_inserted_total",
				Help: "Total number of objects inserted across all collections",
			},
		),
		ObjectsDeleted: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "simsearch_objects_deleted_total",
				Help: "Total number of objects deleted across all collections",
			},
		),

		IndexSize: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "simsearch_index_size",
				Help: "Number of objects in the index by collection",
			},
			[]string{"collection", "method"},
		),
		IndexMaxLayer: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "simsearch_index_max_layer",
				Help: "Maximum layer in the HNSW graph by collection",
			},
			[]string{"collection"},
		),
		IndexBuildTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "simsearch_index_build_total",
				Help: "Total number of index builds by collection and method",
			},
			[]string{"collection", "method"},
		),
		IndexBuildTime: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "simsearch_index_build_duration_seconds",
				Help:    "Index build duration in seconds by method",
				Buckets: []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60, 300},
			},
			[]string{"method"},
		),

		SearchLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "simsearch_search_latency_seconds",
				Help:    "Search latency in seconds by method",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"method"},
		),
		SearchRecall: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "simsearch_search_recall",
				Help:    "Sampled recall@k against brute-force ground truth (0-1)",
				Buckets: []float64{.8, .85, .9, .92, .94, .95, .96, .97, .98, .99, 1.0},
			},
		),
		SearchResultSize: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "simsearch_search_result_size",
				Help:    "Number of results returned by search",
				Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
			},
		),
		DistanceComputations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "simsearch_distance_computations_total",
				Help: "Total number of distance-function evaluations by method",
			},
			[]string{"method"},
		),
		CandidatesConsidered: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "simsearch_candidates_considered",
				Help:    "Number of candidate objects verified per query by method",
				Buckets: []float64{1, 10, 50, 100, 500, 1000, 5000, 10000},
			},
			[]string{"method"},
		),

		CollectionsTotal: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "simsearch_collections_total",
				Help: "Total number of active collections",
			},
		),

		GoroutinesCount: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "simsearch_goroutines",
				Help: "Current number of goroutines",
			},
		),
		MemoryUsage: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "simsearch_memory_bytes",
				Help: "Memory usage in bytes",
			},
		),
	}

	return m
}

// RecordRequest records a request with duration and status.
func (m *Metrics) RecordRequest(method, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, status).Inc()
	m.RequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordError records an error.
func (m *Metrics) RecordError(method, errorType string) {
	m.RequestErrors.WithLabelValues(method, errorType).Inc()
}

// RecordInsert records object insertions into a collection.
func (m *Metrics) RecordInsert(collection string, count int) {
	m.ObjectsInserted.Add(float64(count))
}

// RecordDelete records object deletions from a collection.
func (m *Metrics) RecordDelete(collection string, count int) {
	m.ObjectsDeleted.Add(float64(count))
}

// RecordSearch records a search operation: latency, candidates examined,
// and distance computations charged by the search method.
func (m *Metrics) RecordSearch(method string, duration time.Duration, resultSize, candidates, distanceComputations int) {
	m.SearchLatency.WithLabelValues(method).Observe(duration.Seconds())
	m.SearchResultSize.Observe(float64(resultSize))
	m.CandidatesConsidered.WithLabelValues(method).Observe(float64(candidates))
	m.DistanceComputations.WithLabelValues(method).Add(float64(distanceComputations))
}

// RecordRecallSample records a sampled recall@k measurement (§8).
func (m *Metrics) RecordRecallSample(recall float64) {
	m.SearchRecall.Observe(recall)
}

// RecordBuild records an index build operation.
func (m *Metrics) RecordBuild(collection, method string, duration time.Duration) {
	m.IndexBuildTotal.WithLabelValues(collection, method).Inc()
	m.IndexBuildTime.WithLabelValues(method).Observe(duration.Seconds())
}

// UpdateIndexSize updates the index size gauge for a collection.
func (m *Metrics) UpdateIndexSize(collection, method string, size int) {
	m.IndexSize.WithLabelValues(collection, method).Set(float64(size))
}

// UpdateIndexMaxLayer updates the HNSW max-layer gauge for a collection.
func (m *Metrics) UpdateIndexMaxLayer(collection string, maxLayer int) {
	m.IndexMaxLayer.WithLabelValues(collection).Set(float64(maxLayer))
}

// UpdateCollectionCount updates the total collection count.
func (m *Metrics) UpdateCollectionCount(count int) {
	m.CollectionsTotal.Set(float64(count))
}

// UpdateGoroutineCount updates the goroutine count gauge.
func (m *Metrics) UpdateGoroutineCount(count int) {
	m.GoroutinesCount.Set(float64(count))
}

// UpdateMemoryUsage updates the memory-usage gauge.
func (m *Metrics) UpdateMemoryUsage(bytes uint64) {
	m.MemoryUsage.Set(float64(bytes))
}
