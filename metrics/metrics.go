// Package metrics provides a Prometheus registry for connected-peer and
// message-throughput counters labeled by engine. The engines do not
// report to it themselves; in this module the cmd/nilservice bench
// command records into it. This is observability plumbing only —
// spec.md's Non-goals exclude message routing/topics, not metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry wraps a dedicated *prometheus.Registry so embedding
// applications aren't forced onto the global default registry.
type Registry struct {
	reg *prometheus.Registry

	ConnectedPeers *prometheus.GaugeVec
	MessagesIn     *prometheus.CounterVec
	MessagesOut    *prometheus.CounterVec
	BytesIn        *prometheus.CounterVec
	BytesOut       *prometheus.CounterVec
}

// NewRegistry builds and registers every metric under the given
// namespace (typically "nilservice").
func NewRegistry(namespace string) *Registry {
	reg := prometheus.NewRegistry()
	r := &Registry{
		reg: reg,
		ConnectedPeers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connected_peers",
			Help:      "Current number of connected peers, by engine.",
		}, []string{"engine"}),
		MessagesIn: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_in_total",
			Help:      "Total messages received, by engine.",
		}, []string{"engine"}),
		MessagesOut: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_out_total",
			Help:      "Total messages sent, by engine.",
		}, []string{"engine"}),
		BytesIn: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_in_total",
			Help:      "Total payload bytes received, by engine.",
		}, []string{"engine"}),
		BytesOut: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_out_total",
			Help:      "Total payload bytes sent, by engine.",
		}, []string{"engine"}),
	}
	reg.MustRegister(r.ConnectedPeers, r.MessagesIn, r.MessagesOut, r.BytesIn, r.BytesOut)
	return r
}

// Gatherer exposes the underlying registry for mounting a /metrics route.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// ObserveMessageIn records one received message of length bytes for engine.
func (r *Registry) ObserveMessageIn(engine string, length int) {
	r.MessagesIn.WithLabelValues(engine).Inc()
	r.BytesIn.WithLabelValues(engine).Add(float64(length))
}

// ObserveMessageOut records one sent message of length bytes for engine.
func (r *Registry) ObserveMessageOut(engine string, length int) {
	r.MessagesOut.WithLabelValues(engine).Inc()
	r.BytesOut.WithLabelValues(engine).Add(float64(length))
}

// SetConnectedPeers updates the current peer gauge for engine.
func (r *Registry) SetConnectedPeers(engine string, n int) {
	r.ConnectedPeers.WithLabelValues(engine).Set(float64(n))
}
