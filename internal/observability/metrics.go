package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	packetsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rcon",
			Name:      "packets_sent_total",
			Help:      "Outbound RCON packets and datagrams.",
		},
		[]string{"network", "type"},
	)
	packetsReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rcon",
			Name:      "packets_received_total",
			Help:      "Inbound RCON packets and datagrams by classification.",
		},
		[]string{"network", "kind"},
	)
	authFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "rcon",
			Name:      "auth_failures_total",
			Help:      "Password rejections reported by servers.",
		},
	)
	malformedInbound = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "rcon",
			Name:      "malformed_inbound_total",
			Help:      "Inbound traffic that failed protocol decoding.",
		},
	)
	engineEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rcon",
			Name:      "events_total",
			Help:      "Engine notifications by kind.",
		},
		[]string{"kind"},
	)
	pendingCommands = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "rcon",
			Name:      "pending_commands",
			Help:      "Commands awaiting replies, per target.",
		},
		[]string{"target"},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gateway",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total gateway HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gateway",
			Subsystem: "http",
			Name:      "request_seconds",
			Help:      "Gateway HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			packetsSent, packetsReceived, authFailures, malformedInbound,
			engineEvents, pendingCommands, httpRequests, httpDuration,
		)
	})
}

func RecordPacketSent(network, packetType string) {
	RegisterMetrics()
	packetsSent.WithLabelValues(network, packetType).Inc()
}

func RecordPacketReceived(network, kind string) {
	RegisterMetrics()
	packetsReceived.WithLabelValues(network, kind).Inc()
}

func RecordAuthFailure() {
	RegisterMetrics()
	authFailures.Inc()
}

func RecordMalformedInbound() {
	RegisterMetrics()
	malformedInbound.Inc()
}

func RecordEvent(kind string) {
	RegisterMetrics()
	engineEvents.WithLabelValues(kind).Inc()
}

func SetPendingCommands(target string, n int) {
	RegisterMetrics()
	pendingCommands.WithLabelValues(target).Set(float64(n))
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
