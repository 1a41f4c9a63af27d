// Package metrics exports request and assistant metrics in Prometheus format.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"note-assistant/internal/llm"
	"note-assistant/internal/service"
)

const namespace = "note_assistant"

// Exporter owns the metric collectors and their registry.
type Exporter struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec

	replies      *prometheus.CounterVec
	replyLatency *prometheus.HistogramVec
}

// NewExporter creates an Exporter with its own registry. A nil registry is
// replaced by a fresh one.
func NewExporter(registry *prometheus.Registry) *Exporter {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	buckets := []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60}

	e := &Exporter{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   buckets,
			},
			[]string{"method", "route"},
		),
		replies: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "assistant",
				Name:      "replies_total",
				Help:      "Assistant invocations by mode and outcome",
			},
			[]string{"mode", "outcome"},
		),
		replyLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "assistant",
				Name:      "reply_duration_seconds",
				Help:      "Assistant invocation latency in seconds",
				Buckets:   buckets,
			},
			[]string{"mode"},
		),
	}

	registry.MustRegister(e.httpRequests, e.httpLatency, e.replies, e.replyLatency)
	return e
}

// Handler serves the metrics endpoint.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// Middleware counts requests by chi route pattern, so path parameters do not
// explode label cardinality.
func (e *Exporter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		e.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(rw.status)).Inc()
		e.httpLatency.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Outcome labels an assistant result: "success", a provider error category,
// "invalid_input", "not_found" or "error".
func Outcome(err error) string {
	if err == nil {
		return "success"
	}
	var llmErr *llm.Error
	switch {
	case errors.As(err, &llmErr):
		return llmErr.Category.String()
	case errors.Is(err, service.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, service.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}

// instrumentedAssistant records every Respond call.
type instrumentedAssistant struct {
	next     service.AssistantService
	exporter *Exporter
}

// InstrumentAssistant wraps an AssistantService so each call is counted and timed.
func InstrumentAssistant(next service.AssistantService, e *Exporter) service.AssistantService {
	return &instrumentedAssistant{next: next, exporter: e}
}

func (a *instrumentedAssistant) Respond(ctx context.Context, req service.RespondRequest) (service.RespondResponse, error) {
	start := time.Now()
	resp, err := a.next.Respond(ctx, req)

	mode := string(req.Mode)
	a.exporter.replies.WithLabelValues(mode, Outcome(err)).Inc()
	a.exporter.replyLatency.WithLabelValues(mode).Observe(time.Since(start).Seconds())
	return resp, err
}
