package observability

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "nftmarket"

func counter(subsystem, name, help string, labels ...string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}, labels)
}

func histogram(subsystem, name, help string, labels ...string) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
		Buckets:   prometheus.DefBuckets,
	}, labels)
}

// RPCMetrics tracks the JSON-RPC surface.
type RPCMetrics struct {
	calls     *prometheus.CounterVec
	failures  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	throttled *prometheus.CounterVec
}

// MarketMetrics tracks operations executed against the ledger.
type MarketMetrics struct {
	ops      *prometheus.CounterVec
	duration *prometheus.HistogramVec
	clock    prometheus.Gauge
}

var (
	rpcOnce    sync.Once
	rpcMetrics *RPCMetrics

	marketOnce    sync.Once
	marketMetrics *MarketMetrics
)

// RPC returns the process-wide RPC metrics, registering them on first use.
func RPC() *RPCMetrics {
	rpcOnce.Do(func() {
		m := &RPCMetrics{
			calls:     counter("rpc", "requests_total", "JSON-RPC calls by module, method and outcome.", "module", "method", "outcome"),
			failures:  counter("rpc", "errors_total", "JSON-RPC calls answered with an HTTP error status.", "module", "method", "status"),
			duration:  histogram("rpc", "request_duration_seconds", "JSON-RPC handler latency.", "module", "method"),
			throttled: counter("rpc", "throttles_total", "Requests refused by a limiter.", "module", "reason"),
		}
		prometheus.MustRegister(m.calls, m.failures, m.duration, m.throttled)
		rpcMetrics = m
	})
	return rpcMetrics
}

// Observe records one call. status is the HTTP status written to the client.
func (m *RPCMetrics) Observe(module, method string, status int, took time.Duration) {
	if m == nil {
		return
	}
	module = normalizeLabel(module, "unknown")
	method = normalizeLabel(method, "unknown")
	outcome := "success"
	if status >= 400 {
		outcome = "error"
		m.failures.WithLabelValues(module, method, strconv.Itoa(status)).Inc()
	}
	m.calls.WithLabelValues(module, method, outcome).Inc()
	m.duration.WithLabelValues(module, method).Observe(took.Seconds())
}

func (m *RPCMetrics) RecordThrottle(module, reason string) {
	if m == nil {
		return
	}
	m.throttled.WithLabelValues(normalizeLabel(module, "unknown"), normalizeLabel(reason, "unspecified")).Inc()
}

// Market returns the process-wide ledger metrics.
func Market() *MarketMetrics {
	marketOnce.Do(func() {
		m := &MarketMetrics{
			ops:      counter("market", "operations_total", "Market operations by name and error kind.", "op", "outcome"),
			duration: histogram("market", "operation_duration_seconds", "Time to execute and commit a market operation.", "op"),
			clock:    prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "market",
				Name:      "ledger_time_seconds",
				Help:      "Ledger clock of the last committed operation.",
			}),
		}
		prometheus.MustRegister(m.ops, m.duration, m.clock)
		marketMetrics = m
	})
	return marketMetrics
}

// RecordOperation counts an executed operation. An empty outcome means it
// committed.
func (m *MarketMetrics) RecordOperation(op, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	op = normalizeLabel(op, "unknown")
	m.ops.WithLabelValues(op, normalizeLabel(outcome, "ok")).Inc()
	m.duration.WithLabelValues(op).Observe(took.Seconds())
}

func (m *MarketMetrics) SetLedgerTime(ts int64) {
	if m == nil {
		return
	}
	m.clock.Set(float64(ts))
}

func normalizeLabel(value, fallback string) string {
	if value = strings.TrimSpace(value); value == "" {
		return fallback
	}
	return value
}
