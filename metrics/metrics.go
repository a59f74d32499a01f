// Package metrics exposes Prometheus instrumentation for the chat service.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "julenisse"

type Metrics struct {
	registry *prometheus.Registry

	chatTurns         prometheus.Counter
	toolCalls         *prometheus.CounterVec
	deedScores        prometheus.Histogram
	responderLatency  *prometheus.HistogramVec
	httpRequests      *prometheus.CounterVec
	httpRequestLength *prometheus.HistogramVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		chatTurns: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_turns_total",
			Help:      "User messages processed by the agent loop.",
		}),
		toolCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Tool invocations requested by the responder.",
		}, []string{"tool", "outcome"}),
		deedScores: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "deed_score",
			Help:      "Scores assigned to recorded deeds.",
			Buckets:   []float64{-100, -50, -20, -5, 0, 5, 20, 50, 100},
		}),
		responderLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "responder_duration_seconds",
			Help:      "Latency of language model responder calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider", "outcome"}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"route", "method", "status"}),
		httpRequestLength: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

func (m *Metrics) IncChatTurn() {
	if m == nil {
		return
	}
	m.chatTurns.Inc()
}

func (m *Metrics) IncToolCall(tool, outcome string) {
	if m == nil {
		return
	}
	m.toolCalls.WithLabelValues(tool, outcome).Inc()
}

func (m *Metrics) ObserveDeedScore(score int) {
	if m == nil {
		return
	}
	m.deedScores.Observe(float64(score))
}

func (m *Metrics) ObserveResponder(provider string, started time.Time, err error) {
	if m == nil {
		return
	}
	m.responderLatency.WithLabelValues(provider, outcome(err)).Observe(time.Since(started).Seconds())
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency keyed by the mux route
// template, so path parameters do not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		route := "unmatched"
		if current := mux.CurrentRoute(r); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}

		m.httpRequests.WithLabelValues(route, r.Method, strconv.Itoa(recorder.status)).Inc()
		m.httpRequestLength.WithLabelValues(route, r.Method).Observe(time.Since(started).Seconds())
	})
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Flush() {
	if flusher, ok := r.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return hijacker.Hijack()
}

// Unwrap lets http.ResponseController and the websocket upgrader reach the
// underlying writer.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
