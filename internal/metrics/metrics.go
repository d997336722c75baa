// Package metrics provides Prometheus metrics for the chat service
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors. A nil *Metrics is valid and
// records nothing, so components can be built without instrumentation.
type Metrics struct {
	// AI provider metrics
	AIRequestsTotal   *prometheus.CounterVec
	AIRequestDuration *prometheus.HistogramVec
	AITokensTotal     *prometheus.CounterVec

	// Conversation metrics
	MessagesSentTotal *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers all collectors on reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{}

	m.AIRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aichat_ai_requests_total",
			Help: "Total number of chat-completion requests by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	m.AIRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aichat_ai_request_duration_seconds",
			Help:    "Duration of chat-completion requests in seconds",
			Buckets: []float64{.25, .5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"mode"},
	)

	m.AITokensTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aichat_ai_tokens_total",
			Help: "Tokens reported by the provider",
		},
		[]string{"kind"},
	)

	m.MessagesSentTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aichat_messages_sent_total",
			Help: "Send-message attempts by result",
		},
		[]string{"result"},
	)

	m.HTTPRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aichat_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	m.HTTPRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aichat_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	return m
}

// ObserveAIRequest records one provider call. mode is "sync" or "stream".
func (m *Metrics) ObserveAIRequest(mode, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.AIRequestsTotal.WithLabelValues(mode, outcome).Inc()
	m.AIRequestDuration.WithLabelValues(mode).Observe(d.Seconds())
}

func (m *Metrics) AddTokens(prompt, completion int) {
	if m == nil {
		return
	}
	m.AITokensTotal.WithLabelValues("prompt").Add(float64(prompt))
	m.AITokensTotal.WithLabelValues("completion").Add(float64(completion))
}

// MessageSent records a send-message outcome ("ok", "rejected", "not_found", "ai_error", "error").
func (m *Metrics) MessageSent(result string) {
	if m == nil {
		return
	}
	m.MessagesSentTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveHTTP(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(route).Observe(d.Seconds())
}
