/*-------------------------------------------------------------------------
 *
 * prometheus.go
 *    Prometheus metrics for FormGen
 *
 * Copyright (c) 2024-2026, FormGen, Inc. <support@formgen.dev>
 *
 * IDENTIFICATION
 *    internal/metrics/prometheus.go
 *
 *-------------------------------------------------------------------------
 */

package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	/* Request metrics */
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formgen_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "formgen_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	/* Generation metrics */
	formGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formgen_form_generations_total",
			Help: "Total number of form generations",
		},
		[]string{"status"},
	)

	llmCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formgen_llm_calls_total",
			Help: "Total number of LLM generation calls",
		},
		[]string{"model", "status"},
	)

	/* Semantic memory metrics */
	embeddingGenerationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formgen_embedding_generations_total",
			Help: "Total number of embedding generations",
		},
		[]string{"provider", "status"},
	)

	embeddingGenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "formgen_embedding_generation_duration_seconds",
			Help:    "Embedding generation duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"provider"},
	)

	vectorSearchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formgen_vector_searches_total",
			Help: "Total number of vector similarity searches",
		},
		[]string{"status"},
	)

	memoryCacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formgen_memory_cache_lookups_total",
			Help: "Semantic memory cache lookups",
		},
		[]string{"result"},
	)

	/* Webhook metrics */
	webhookDeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formgen_webhook_deliveries_total",
			Help: "Total number of completed webhook delivery sequences",
		},
		[]string{"event", "status"},
	)

	webhookAttemptsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "formgen_webhook_attempts_total",
			Help: "Total number of webhook delivery attempts",
		},
	)

	webhookQueueDropsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "formgen_webhook_queue_drops_total",
			Help: "Webhook deliveries dropped because the queue was full",
		},
	)

	/* Submission metrics */
	submissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formgen_submissions_total",
			Help: "Total number of form submissions",
		},
		[]string{"status"},
	)

	/* Background job metrics */
	jobsQueued = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "formgen_jobs_queued",
			Help: "Number of queued background tasks",
		},
	)

	jobsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formgen_jobs_processed_total",
			Help: "Total number of processed background tasks",
		},
		[]string{"task", "status"},
	)
)

/* RecordHTTPRequest records HTTP request metrics */
func RecordHTTPRequest(method, endpoint string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

/* RecordFormGeneration records a form generation outcome */
func RecordFormGeneration(status string) {
	formGenerationsTotal.WithLabelValues(status).Inc()
}

/* RecordLLMCall records an LLM generation call */
func RecordLLMCall(model, status string) {
	llmCallsTotal.WithLabelValues(model, status).Inc()
}

/* RecordEmbeddingGeneration records an embedding provider call */
func RecordEmbeddingGeneration(provider, status string, duration time.Duration) {
	embeddingGenerationTotal.WithLabelValues(provider, status).Inc()
	embeddingGenerationDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

/* RecordVectorSearch records a vector store query */
func RecordVectorSearch(status string) {
	vectorSearchTotal.WithLabelValues(status).Inc()
}

/* RecordMemoryCacheLookup records a semantic memory cache hit or miss */
func RecordMemoryCacheLookup(result string) {
	memoryCacheHitsTotal.WithLabelValues(result).Inc()
}

/* RecordWebhookDelivery records a completed delivery sequence */
func RecordWebhookDelivery(event, status string) {
	webhookDeliveriesTotal.WithLabelValues(event, status).Inc()
}

/* RecordWebhookAttempt records a single delivery attempt */
func RecordWebhookAttempt() {
	webhookAttemptsTotal.Inc()
}

/* RecordWebhookQueueDrop records a dropped delivery */
func RecordWebhookQueueDrop() {
	webhookQueueDropsTotal.Inc()
}

/* RecordSubmission records a form submission outcome */
func RecordSubmission(status string) {
	submissionsTotal.WithLabelValues(status).Inc()
}

/* RecordJobQueued adjusts the queued background task gauge */
func RecordJobQueued(delta int) {
	jobsQueued.Add(float64(delta))
}

/* RecordJobProcessed records a completed background task */
func RecordJobProcessed(task, status string) {
	jobsProcessedTotal.WithLabelValues(task, status).Inc()
}

/* Handler returns the Prometheus metrics HTTP handler */
func Handler() http.Handler {
	return promhttp.Handler()
}
