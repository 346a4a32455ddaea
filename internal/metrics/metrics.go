package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
)

const namespace = "tictactoe"

// Metrics holds the Prometheus collectors of the session server.
type Metrics struct {
	activeSessions   prometheus.Gauge
	connectedPlayers prometheus.Gauge
	moves            *prometheus.CounterVec
	matchesFinished  *prometheus.CounterVec
	deliveryFailures prometheus.Counter
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions",
			Help:      "Number of sessions in the registry",
		}),
		connectedPlayers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connected_players",
			Help:      "Number of open player connections",
		}),
		moves: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moves_total",
			Help:      "Moves received, by result",
		}, []string{"result"}),
		matchesFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_finished_total",
			Help:      "Matches that ended, by outcome",
		}, []string{"outcome"}),
		deliveryFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delivery_failures_total",
			Help:      "Events that could not be handed to a connection",
		}),
	}
}

func (that *Metrics) SessionCreated() {
	that.activeSessions.Inc()
}

func (that *Metrics) SessionRemoved() {
	that.activeSessions.Dec()
}

func (that *Metrics) PlayerConnected() {
	that.connectedPlayers.Inc()
}

func (that *Metrics) PlayerDisconnected() {
	that.connectedPlayers.Dec()
}

func (that *Metrics) MoveAccepted() {
	that.moves.WithLabelValues("accepted").Inc()
}

// MoveRejected - counts a rejected move under a short reason label.
func (that *Metrics) MoveRejected(reason string) {
	that.moves.WithLabelValues(reason).Inc()
}

func (that *Metrics) MatchFinished(outcome entity.OutcomeStatus) {
	that.matchesFinished.WithLabelValues(string(outcome)).Inc()
}

func (that *Metrics) DeliveryFailed() {
	that.deliveryFailures.Inc()
}
