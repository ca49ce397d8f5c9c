// Package metrics holds the bot's Prometheus collectors and small helpers to
// update them. Collectors live in package variables and are registered once.
package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	deliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promobot_broadcast_deliveries_total",
			Help: "Per-recipient broadcast outcomes by delivery path (forward/resend/none).",
		},
		[]string{"via", "outcome"},
	)

	deliveryErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promobot_broadcast_delivery_errors_total",
			Help: "Platform errors during broadcast delivery by stage (forward/resend) and reason.",
		},
		[]string{"stage", "reason"},
	)

	broadcastsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promobot_broadcasts_total",
			Help: "Broadcast invocations by outcome.",
		},
		[]string{"outcome"},
	)

	broadcastDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "promobot_broadcast_duration_seconds",
			Help:    "Wall time of completed broadcasts.",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
		},
	)

	adminCommandTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promobot_admin_command_total",
			Help: "Attempts to use admin commands.",
		},
		[]string{"command", "status"}, // status: 'authorized', 'unauthorized', 'bootstrapped'
	)

	knownUsers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "promobot_known_users",
		Help: "Distinct users that sent /start.",
	})

	knownAdmins = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "promobot_admins",
		Help: "Current number of administrators.",
	})
)

// MustRegister registers collectors with the default registry (idempotent).
func MustRegister() {
	once.Do(func() {
		prometheus.MustRegister(
			deliveriesTotal, deliveryErrorsTotal,
			broadcastsTotal, broadcastDuration,
			adminCommandTotal, knownUsers, knownAdmins,
		)
	})
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// -------- Broadcast helpers --------

// ObserveDelivery counts one recipient outcome of a broadcast by delivery route.
func ObserveDelivery(via, outcome string) {
	deliveriesTotal.WithLabelValues(norm(via), norm(outcome)).Inc()
}

// ObserveDeliveryError counts a failed forward or resend by failure reason.
func ObserveDeliveryError(stage, reason string) {
	deliveryErrorsTotal.WithLabelValues(norm(stage), norm(reason)).Inc()
}

// ObserveBroadcast counts a finished broadcast and records how long it ran.
func ObserveBroadcast(outcome string, d time.Duration) {
	broadcastsTotal.WithLabelValues(norm(outcome)).Inc()
	if d > 0 {
		broadcastDuration.Observe(d.Seconds())
	}
}

// -------- Admin / audience helpers --------

// IncAdminCommand counts an admin command invocation by result status.
func IncAdminCommand(command, status string) {
	adminCommandTotal.WithLabelValues(norm(strings.TrimPrefix(command, "/")), norm(status)).Inc()
}

// SetAudience sets the known-user and administrator gauges.
func SetAudience(users, admins int) {
	knownUsers.Set(float64(users))
	knownAdmins.Set(float64(admins))
}
