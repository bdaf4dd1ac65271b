package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRPCObserveSplitsFailures(t *testing.T) {
	m := RPC()
	m.Observe("auction", "auction_metricsProbe", 200, time.Millisecond)
	m.Observe("auction", "auction_metricsProbe", 409, time.Millisecond)
	m.Observe("", "", 500, time.Millisecond)

	require.Equal(t, 1.0, testutil.ToFloat64(m.calls.WithLabelValues("auction", "auction_metricsProbe", "success")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.calls.WithLabelValues("auction", "auction_metricsProbe", "error")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("auction", "auction_metricsProbe", "409")))
	require.GreaterOrEqual(t, testutil.ToFloat64(m.failures.WithLabelValues("unknown", "unknown", "500")), 1.0)
}

func TestMarketOperationDefaultsOutcome(t *testing.T) {
	m := Market()
	m.RecordOperation("metrics_probe", "", time.Millisecond)
	m.RecordOperation("metrics_probe", "timing", time.Millisecond)
	m.SetLedgerTime(1_700_000_000)

	require.Equal(t, 1.0, testutil.ToFloat64(m.ops.WithLabelValues("metrics_probe", "ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.ops.WithLabelValues("metrics_probe", "timing")))
	require.Equal(t, 1.7e9, testutil.ToFloat64(m.clock))
}

func TestNilRegistriesAreInert(t *testing.T) {
	var r *RPCMetrics
	var mk *MarketMetrics
	r.Observe("a", "b", 200, 0)
	r.RecordThrottle("a", "b")
	mk.RecordOperation("a", "", 0)
	mk.SetLedgerTime(1)
}
