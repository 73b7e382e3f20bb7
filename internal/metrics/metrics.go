// Package metrics exposes per-run election counters on an isolated
// Prometheus registry: one Registry per instance, never the global
// default, so concurrent harness runs in the same test binary never
// collide.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder tracks election activity across a set of peers in one run.
type Recorder struct {
	Registry *prometheus.Registry

	MessagesSentTotal   *prometheus.CounterVec
	ElectionsStarted    *prometheus.CounterVec
	AnnouncementsTotal  *prometheus.CounterVec
	ProbesSentTotal     *prometheus.CounterVec
	ObservedCoordinator *prometheus.GaugeVec
	ConsensusFailures   prometheus.Counter
}

// NewRecorder creates a Recorder with all collectors registered.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()

	r := &Recorder{
		Registry: reg,

		MessagesSentTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bully_messages_sent_total",
				Help: "Total datagrams sent by a peer.",
			},
			[]string{"protocol", "peer_id"},
		),
		ElectionsStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bully_elections_started_total",
				Help: "Total number of times a peer entered its election entry point.",
			},
			[]string{"protocol", "peer_id"},
		),
		AnnouncementsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bully_coordinator_announcements_total",
				Help: "Total coordinator broadcasts sent by a peer.",
			},
			[]string{"protocol", "peer_id"},
		),
		ProbesSentTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bully_probes_sent_total",
				Help: "Total are_you_alive probes sent (Improved Bully only).",
			},
			[]string{"peer_id"},
		),
		ObservedCoordinator: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bully_observed_coordinator_id",
				Help: "Last coordinator id observed by a peer.",
			},
			[]string{"protocol", "peer_id"},
		),
		ConsensusFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "bully_consensus_failures_total",
				Help: "Total runs where not every peer converged on max(alive).",
			},
		),
	}

	reg.MustRegister(
		r.MessagesSentTotal,
		r.ElectionsStarted,
		r.AnnouncementsTotal,
		r.ProbesSentTotal,
		r.ObservedCoordinator,
		r.ConsensusFailures,
	)

	return r
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.Registry, promhttp.HandlerOpts{})
}
