package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/cory-johannsen/turnarena/internal/game/combat"
)

// Metrics holds the arena's Prometheus collectors. Every label has a bounded
// value set.
type Metrics struct {
	tickDuration      prometheus.Histogram
	abilitiesResolved *prometheus.CounterVec
	gamesConcluded    *prometheus.CounterVec
	messagesRejected  *prometheus.CounterVec
	clientsConnected  prometheus.Gauge
}

// NewMetrics registers the arena collectors with reg.
//
// Precondition: reg must be non-nil and must not already hold these collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		tickDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "arena_tick_duration_seconds",
			Help:    "Time spent in one session tick",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}),
		abilitiesResolved: f.NewCounterVec(prometheus.CounterOpts{
			Name: "arena_abilities_resolved_total",
			Help: "Abilities resolved, by ability and acting side",
		}, []string{"ability", "side"}),
		gamesConcluded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "arena_games_concluded_total",
			Help: "Games concluded, by outcome",
		}, []string{"outcome"}),
		messagesRejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "arena_client_messages_rejected_total",
			Help: "Inbound client messages dropped before reaching the session",
		}, []string{"reason"}), // "decode", "rate_limit", "inbox_full"
		clientsConnected: f.NewGauge(prometheus.GaugeOpts{
			Name: "arena_clients_connected",
			Help: "Currently connected controlling clients",
		}),
	}
}

// AbilityResolved counts one resolved ability.
func (m *Metrics) AbilityResolved(a combat.Ability, side combat.Side) {
	m.abilitiesResolved.WithLabelValues(a.String(), side.String()).Inc()
}

// GameConcluded counts one concluded game.
func (m *Metrics) GameConcluded(o combat.Outcome) {
	m.gamesConcluded.WithLabelValues(o.String()).Inc()
}

// ObserveTick records the duration of one tick.
func (m *Metrics) ObserveTick(d time.Duration) {
	m.tickDuration.Observe(d.Seconds())
}

// MessageRejected counts one dropped inbound message.
func (m *Metrics) MessageRejected(reason string) {
	m.messagesRejected.WithLabelValues(reason).Inc()
}

// ClientConnected increments the connected client gauge.
func (m *Metrics) ClientConnected() { m.clientsConnected.Inc() }

// ClientDisconnected decrements the connected client gauge.
func (m *Metrics) ClientDisconnected() { m.clientsConnected.Dec() }
