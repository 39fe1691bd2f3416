package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	Namespace = "leadstream"

	APISubsystem    = "api"
	EngineSubsystem = "engine"
)

// Общие метрики для всех сервисов.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"service", "method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "endpoint"},
	)
)

// Метрики конвейера оценки.
var (
	TasksScheduledTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: EngineSubsystem,
			Name:      "tasks_scheduled_total",
			Help:      "Total number of evaluation tasks scheduled",
		},
		[]string{"reason"},
	)

	TasksEvaluatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: EngineSubsystem,
			Name:      "tasks_evaluated_total",
			Help:      "Total number of evaluation tasks completed",
		},
		[]string{"outcome"},
	)

	TasksFailedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: EngineSubsystem,
			Name:      "tasks_failed_total",
			Help:      "Total number of evaluation tasks failed",
		},
		[]string{"reason"},
	)

	LeadsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: EngineSubsystem,
			Name:      "leads_created_total",
			Help:      "Total number of leads materialized",
		},
	)

	MessagesIngestedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: EngineSubsystem,
			Name:      "messages_ingested_total",
			Help:      "Total number of messages ingested per channel",
		},
		[]string{"channel", "status"},
	)

	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: EngineSubsystem,
			Name:      "llm_request_duration_seconds",
			Help:      "LLM request duration in seconds (p50, p95, p99)",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"operation", "status"},
	)

	LLMCacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: EngineSubsystem,
			Name:      "llm_cache_hits_total",
			Help:      "Total number of LLM response cache lookups",
		},
		[]string{"result"},
	)
)

// Метрики доставки уведомлений и событий.
var (
	NotificationsDispatchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: APISubsystem,
			Name:      "notifications_dispatched_total",
			Help:      "Total number of notifications dispatched per channel",
		},
		[]string{"channel", "status"},
	)

	LeadEventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: EngineSubsystem,
			Name:      "lead_events_published_total",
			Help:      "Total number of lead events published",
		},
		[]string{"transport", "status"},
	)

	DatabaseQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: EngineSubsystem,
			Name:      "database_queries_total",
			Help:      "Total number of database queries",
		},
		[]string{"operation", "status"},
	)
)

func RecordHTTPRequest(service, method, endpoint string, statusCode int, duration time.Duration) {
	status := "success"
	if statusCode >= 400 {
		status = "error"
	}

	HTTPRequestsTotal.WithLabelValues(service, method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(service, method, endpoint).Observe(duration.Seconds())
}

func RecordTaskScheduled(reason string) {
	TasksScheduledTotal.WithLabelValues(reason).Inc()
}

func RecordTaskEvaluated(outcome string) {
	TasksEvaluatedTotal.WithLabelValues(outcome).Inc()
}

func RecordTaskFailed(reason string) {
	TasksFailedTotal.WithLabelValues(reason).Inc()
}

func RecordLeadCreated() {
	LeadsCreatedTotal.Inc()
}

func RecordMessageIngested(channel, status string) {
	MessagesIngestedTotal.WithLabelValues(channel, status).Inc()
}

func RecordLLMRequest(operation, status string, duration time.Duration) {
	LLMRequestDuration.WithLabelValues(operation, status).Observe(duration.Seconds())
}

func RecordLLMCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}

	LLMCacheHitsTotal.WithLabelValues(result).Inc()
}

func RecordNotificationDispatched(channel, status string) {
	NotificationsDispatchedTotal.WithLabelValues(channel, status).Inc()
}

func RecordLeadEventPublished(transport, status string) {
	LeadEventsPublishedTotal.WithLabelValues(transport, status).Inc()
}

func RecordDatabaseQuery(operation, status string) {
	DatabaseQueriesTotal.WithLabelValues(operation, status).Inc()
}
