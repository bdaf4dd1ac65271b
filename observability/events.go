package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"nftmarket/core/events"
)

type eventMetrics struct {
	emitted  *prometheus.CounterVec
	escrowed *prometheus.CounterVec
}

var (
	eventMetricsOnce sync.Once
	eventRegistry    *eventMetrics
)

// Events returns the metrics registry tracking committed market events.
func Events() *eventMetrics {
	eventMetricsOnce.Do(func() {
		eventRegistry = &eventMetrics{
			emitted:  counter("events", "emitted_total", "Committed events by type.", "type"),
			escrowed: counter("events", "escrow_credits_total", "Deliveries redirected to escrow by asset or collectible type.", "asset"),
		}
		prometheus.MustRegister(eventRegistry.emitted, eventRegistry.escrowed)
	})
	return eventRegistry
}

// Emit implements events.Emitter so the registry can sit behind the market's
// commit fan-out.
func (m *eventMetrics) Emit(evt events.Event) {
	if m == nil || evt == nil {
		return
	}
	payload := events.Payload(evt)
	m.emitted.WithLabelValues(normalizeLabel(payload.Type, "unknown")).Inc()
	switch payload.Type {
	case "escrow.payout.credited":
		m.escrowed.WithLabelValues(normalizeLabel(payload.Attributes["asset"], "unknown")).Inc()
	case "escrow.nft.credited":
		m.escrowed.WithLabelValues(normalizeLabel(payload.Attributes["type"], "unknown")).Inc()
	}
}
