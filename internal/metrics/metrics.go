// Package metrics exposes Prometheus collectors for quiz conversations.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/abhisek/codequiz/internal/llm"
	"github.com/abhisek/codequiz/internal/questions"
	"github.com/abhisek/codequiz/internal/session"
)

// Metrics holds the collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	Turns           *prometheus.CounterVec
	QuestionsServed *prometheus.CounterVec
	Errors          *prometheus.CounterVec
	TurnDuration    prometheus.Histogram
	ActiveSessions  prometheus.Gauge
	HTTPRequests    *prometheus.CounterVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Turns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "codequiz_turns_total",
				Help: "Graded answers by outcome",
			},
			[]string{"outcome"},
		),
		QuestionsServed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "codequiz_questions_served_total",
				Help: "Questions presented, split by whether the store had a match",
			},
			[]string{"available"},
		),
		Errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "codequiz_errors_total",
				Help: "Failed turns by node and error kind",
			},
			[]string{"node", "kind"},
		),
		TurnDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "codequiz_turn_duration_seconds",
				Help:    "Wall-clock time of a user turn, including grading and the next fetch",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
			},
		),
		ActiveSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "codequiz_active_sessions",
				Help: "Sessions currently held by the server",
			},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "codequiz_http_requests_total",
				Help: "HTTP requests by route and status",
			},
			[]string{"method", "route", "status"},
		),
	}
	m.registry.MustRegister(m.Turns, m.QuestionsServed, m.Errors, m.TurnDuration, m.ActiveSessions, m.HTTPRequests)
	return m
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveTurn records the duration of one turn.
func (m *Metrics) ObserveTurn(d time.Duration) {
	m.TurnDuration.Observe(d.Seconds())
}

// Hooks returns controller hooks that update the collectors.
func (m *Metrics) Hooks() session.Hooks {
	return session.Hooks{
		OnQuestion: func(_ context.Context, _ *session.State, rec questions.Record) {
			if rec.Available() {
				m.QuestionsServed.WithLabelValues("true").Inc()
			} else {
				m.QuestionsServed.WithLabelValues("false").Inc()
			}
		},
		OnGraded: func(_ context.Context, _ *session.State, g session.Graded) {
			m.Turns.WithLabelValues(string(g.Outcome)).Inc()
		},
		OnError: func(_ context.Context, _ *session.State, node session.Node, err error) {
			m.Errors.WithLabelValues(string(node), ErrorKind(err)).Inc()
		},
	}
}

// ErrorKind maps an error to a low-cardinality label.
func ErrorKind(err error) string {
	var rl *llm.ErrRateLimit
	switch {
	case errors.As(err, &rl):
		return "rate_limit"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, llm.ErrUnknownModel):
		return "unknown_model"
	case errors.Is(err, session.ErrModelUnavailable):
		return "model_unavailable"
	case errors.Is(err, session.ErrStoreUnavailable):
		return "store_unavailable"
	}
	return "other"
}
