// Package metrics exposes Prometheus collectors for the session core.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "meet_active_connections",
		Help: "Open session-protocol connections.",
	})

	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meet_events_published_total",
		Help: "Events published to the room broadcast stream, by type.",
	}, []string{"type"})

	LaggedEvents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "meet_lagged_events_total",
		Help: "Events skipped by subscribers that fell behind the stream retention window.",
	})
)

// Handler exposes Prometheus metrics at /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
