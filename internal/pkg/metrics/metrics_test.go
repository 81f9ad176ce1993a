package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	m := New()
	m.LoginAttempt("local", LoginSuccess)
	m.LoginAttempt("local", LoginSuccess)
	m.Export("public-export", ExportCacheHit)
	m.NetworkDenied()

	if got := testutil.ToFloat64(m.loginAttempts.WithLabelValues("local", LoginSuccess)); got != 2 {
		t.Fatalf("login success = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.exports.WithLabelValues("public-export", ExportCacheHit)); got != 1 {
		t.Fatalf("cache hits = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.networkDenied); got != 1 {
		t.Fatalf("network denied = %v, want 1", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.LoginAttempt("local", LoginFailure)
	m.Export("x", ExportError)
	m.ObserveUpstream("x", 0)
	m.NetworkDenied()
}
