// Package metrics provides Prometheus metrics for the query pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Query outcome label values.
const (
	StatusOK    = "ok"
	StatusEmpty = "empty"
	StatusError = "error"
)

// Pipeline stage label values, one per external call.
const (
	StageEmbed    = "embed"
	StageRetrieve = "retrieve"
	StageGenerate = "generate"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Query pipeline metrics
	QueriesTotal     *prometheus.CounterVec
	QueryDuration    prometheus.Histogram
	StageDuration    *prometheus.HistogramVec
	ChunksRetrieved  prometheus.Histogram
	ChunksCited      prometheus.Histogram
	AnswerConfidence prometheus.Histogram

	// Ingest metrics
	FilingsIngestedTotal prometheus.Counter
	ChunksIndexedTotal   prometheus.Counter

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates and registers all metrics on the given registerer.
// Pass prometheus.DefaultRegisterer in production; tests use a fresh
// prometheus.NewRegistry() to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	m := &Metrics{}

	m.QueriesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edgarai_queries_total",
			Help: "Total number of answered queries by outcome",
		},
		[]string{"status"},
	)

	m.QueryDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "edgarai_query_duration_seconds",
			Help:    "End-to-end query pipeline duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	m.StageDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "edgarai_stage_duration_seconds",
			Help:    "Duration of individual pipeline stages in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"stage"},
	)

	m.ChunksRetrieved = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "edgarai_chunks_retrieved",
			Help:    "Number of chunks returned by retrieval per query",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 40},
		},
	)

	m.ChunksCited = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "edgarai_chunks_cited",
			Help:    "Number of distinct chunks cited in the answer per query",
			Buckets: []float64{0, 1, 2, 3, 5, 10, 20},
		},
	)

	m.AnswerConfidence = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "edgarai_answer_confidence",
			Help:    "Confidence score of answered queries",
			Buckets: []float64{0, .1, .2, .3, .4, .5, .6, .7, .8, .9, 1},
		},
	)

	m.FilingsIngestedTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "edgarai_filings_ingested_total",
			Help: "Total number of filings ingested",
		},
	)

	m.ChunksIndexedTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "edgarai_chunks_indexed_total",
			Help: "Total number of chunks written to the vector index",
		},
	)

	m.HTTPRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edgarai_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	m.HTTPRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "edgarai_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	return m
}

// RecordQuery records a completed query with its outcome.
func (m *Metrics) RecordQuery(status string, duration time.Duration) {
	m.QueriesTotal.WithLabelValues(status).Inc()
	m.QueryDuration.Observe(duration.Seconds())
}

// RecordStage records the duration of one pipeline stage.
func (m *Metrics) RecordStage(stage string, duration time.Duration) {
	m.StageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordRetrieval records per-query retrieval and citation counts.
func (m *Metrics) RecordRetrieval(retrieved, cited int) {
	m.ChunksRetrieved.Observe(float64(retrieved))
	m.ChunksCited.Observe(float64(cited))
}

// ObserveConfidence records the confidence score of an answer.
func (m *Metrics) ObserveConfidence(confidence float64) {
	m.AnswerConfidence.Observe(confidence)
}

// RecordIngest records an ingested filing and its chunk count.
func (m *Metrics) RecordIngest(chunks int) {
	m.FilingsIngestedTotal.Inc()
	m.ChunksIndexedTotal.Add(float64(chunks))
}

// RecordHTTPRequest records one served HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
