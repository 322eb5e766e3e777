package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Command metrics
	CommandsHandled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketpulse_commands_total",
			Help: "Total number of bot commands handled",
		},
		[]string{"command", "status"}, // status: success|error
	)

	CommandDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marketpulse_command_duration_seconds",
			Help:    "Command handling duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"command"},
	)

	UpdatesDispatched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketpulse_updates_total",
			Help: "Inbound updates by route",
		},
		[]string{"route"}, // route: callback|voice|command|text|ignored
	)

	PollerOffset = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "marketpulse_poller_offset",
			Help: "Last update id seen by the long-poll loop",
		},
	)

	PollerFetchErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "marketpulse_poller_fetch_errors_total",
			Help: "Failed getUpdates calls",
		},
	)

	// Provider metrics
	ProviderRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketpulse_provider_requests_total",
			Help: "Upstream data provider requests",
		},
		[]string{"provider", "operation", "status"}, // status: success|error
	)

	ProviderLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marketpulse_provider_latency_seconds",
			Help:    "Upstream data provider latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"provider", "operation"},
	)

	ResolverLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketpulse_resolver_lookups_total",
			Help: "Ticker resolver lookups by outcome",
		},
		[]string{"outcome"}, // outcome: hit|miss|not_found
	)

	// LLM metrics
	LLMRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketpulse_llm_requests_total",
			Help: "LLM completion requests",
		},
		[]string{"provider", "model", "status"},
	)

	LLMLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marketpulse_llm_latency_seconds",
			Help:    "LLM completion latency in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"provider", "model"},
	)

	// Worker metrics
	WorkerExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketpulse_worker_executions_total",
			Help: "Total number of worker executions",
		},
		[]string{"worker", "status"},
	)

	WorkerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marketpulse_worker_duration_seconds",
			Help:    "Worker execution duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"worker"},
	)

	WorkerLastRun = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "marketpulse_worker_last_run_timestamp",
			Help: "Unix timestamp of last worker execution",
		},
		[]string{"worker"},
	)

	AlertsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketpulse_alerts_sent_total",
			Help: "Alerts delivered to users",
		},
		[]string{"kind"}, // kind: price|news|volume|briefing
	)

	// System metrics
	KafkaMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketpulse_kafka_messages_total",
			Help: "Total Kafka messages produced/consumed",
		},
		[]string{"topic", "direction", "status"},
	)
)

var registerOnce sync.Once

// Init registers all metrics with Prometheus. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			CommandsHandled,
			CommandDuration,
			UpdatesDispatched,
			PollerOffset,
			PollerFetchErrors,
			ProviderRequests,
			ProviderLatency,
			ResolverLookups,
			LLMRequests,
			LLMLatency,
			WorkerExecutions,
			WorkerDuration,
			WorkerLastRun,
			AlertsSent,
			KafkaMessages,
		)
	})
}

// Handler returns Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordUpdate counts an inbound update by dispatch route
func RecordUpdate(route string) {
	UpdatesDispatched.WithLabelValues(route).Inc()
}

// RecordPollOffset publishes the poller's last seen update id
func RecordPollOffset(offset int) {
	PollerOffset.Set(float64(offset))
}

// RecordFetchError counts a failed getUpdates call
func RecordFetchError(error) {
	PollerFetchErrors.Inc()
}

// RecordCommand records a handled command
func RecordCommand(command string, success bool, duration time.Duration) {
	s := "success"
	if !success {
		s = "error"
	}
	CommandsHandled.WithLabelValues(command, s).Inc()
	CommandDuration.WithLabelValues(command).Observe(duration.Seconds())
}

// RecordProviderCall records an upstream data provider call
func RecordProviderCall(provider, operation string, latency time.Duration, err error) {
	ProviderRequests.WithLabelValues(provider, operation, status(err)).Inc()
	ProviderLatency.WithLabelValues(provider, operation).Observe(latency.Seconds())
}

// RecordLLMCall records an LLM completion
func RecordLLMCall(provider, model string, latency time.Duration, err error) {
	LLMRequests.WithLabelValues(provider, model, status(err)).Inc()
	LLMLatency.WithLabelValues(provider, model).Observe(latency.Seconds())
}

// RecordWorkerExecution records a worker execution
func RecordWorkerExecution(worker string, duration time.Duration, err error) {
	WorkerExecutions.WithLabelValues(worker, status(err)).Inc()
	WorkerDuration.WithLabelValues(worker).Observe(duration.Seconds())
	WorkerLastRun.WithLabelValues(worker).SetToCurrentTime()
}

// RecordResolverLookup records a resolver outcome: hit, miss or not_found
func RecordResolverLookup(outcome string) {
	ResolverLookups.WithLabelValues(outcome).Inc()
}

// RecordAlert records a delivered alert
func RecordAlert(kind string) {
	AlertsSent.WithLabelValues(kind).Inc()
}

// RecordKafkaMessage records a produced or consumed Kafka message
func RecordKafkaMessage(topic, direction string, err error) {
	KafkaMessages.WithLabelValues(topic, direction, status(err)).Inc()
}
