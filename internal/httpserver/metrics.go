package httpserver

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/robalobadob/sevenboom/internal/alexa"
	"github.com/robalobadob/sevenboom/internal/game"
)

// metrics holds the server's collectors on a private registry so that
// several servers (tests) can coexist in one process.
type metrics struct {
	reg          *prometheus.Registry
	events       *prometheus.CounterVec
	gamesStarted *prometheus.CounterVec
	turns        *prometheus.CounterVec
	verifyFailed prometheus.Counter
}

func newMetrics() *metrics {
	m := &metrics{
		reg: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sevenboom_events_total",
			Help: "Webhook requests by decoded event.",
		}, []string{"event"}),
		gamesStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sevenboom_games_started_total",
			Help: "Games started or restarted, by starter.",
		}, []string{"starter"}),
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sevenboom_turns_total",
			Help: "Resolved turns by result.",
		}, []string{"result"}),
		verifyFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sevenboom_verification_failures_total",
			Help: "Requests rejected by signature verification.",
		}),
	}
	m.reg.MustRegister(
		m.events, m.gamesStarted, m.turns, m.verifyFailed,
		collectors.NewGoCollector(),
	)
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{ErrorHandling: promhttp.ContinueOnError})
}

func (m *metrics) observeEvent(k alexa.EventKind) {
	m.events.WithLabelValues(k.String()).Inc()
}

// observeResult records a game start or a resolved turn.
func (m *metrics) observeResult(res game.Result) {
	if res.NewGame {
		m.gamesStarted.WithLabelValues(res.Starter.String()).Inc()
		return
	}
	if res.Outcome == nil {
		return
	}
	switch {
	case res.Outcome.Success():
		m.turns.WithLabelValues("success").Inc()
	case res.Outcome.Restarted:
		m.turns.WithLabelValues("restart").Inc()
		m.gamesStarted.WithLabelValues(res.Starter.String()).Inc()
	default:
		m.turns.WithLabelValues("retry").Inc()
	}
}
