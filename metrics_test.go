package tenauth

import (
	"context"
	"sync"
	"testing"
)

func TestMetricsDisabledNoIncrement(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	m.Inc(MetricLoginSuccess)

	if got := m.Value(MetricLoginSuccess); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestMetricsEnabledIncrement(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Inc(MetricLoginSuccess)
	m.Inc(MetricLoginSuccess)
	m.Inc(MetricLoginSuccess)

	if got := m.Value(MetricLoginSuccess); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.Inc(MetricLoginSuccess)
	if got := m.Value(MetricLoginSuccess); got != 0 {
		t.Fatalf("expected 0 from nil metrics, got %d", got)
	}
}

func TestMetricsConcurrentIncrementSafe(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	const goroutines = 32
	const perG = 4000

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perG; j++ {
				m.Inc(MetricRefreshSuccess)
			}
		}()
	}
	wg.Wait()

	want := uint64(goroutines * perG)
	if got := m.Value(MetricRefreshSuccess); got != want {
		t.Fatalf("expected %d, got %d", want, got)
	}
}

func TestMetricsSnapshotConsistency(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Inc(MetricLoginSuccess)
	m.Inc(MetricLoginFailure)
	m.Inc(MetricLoginFailure)

	snap := m.Snapshot()

	if snap.Counters[MetricLoginSuccess] != 1 {
		t.Fatalf("expected MetricLoginSuccess=1 got %d", snap.Counters[MetricLoginSuccess])
	}
	if snap.Counters[MetricLoginFailure] != 2 {
		t.Fatalf("expected MetricLoginFailure=2 got %d", snap.Counters[MetricLoginFailure])
	}
}

func TestMetricNamesCoverEveryID(t *testing.T) {
	for id := MetricID(0); id < metricIDCount; id++ {
		if _, ok := MetricNames[id]; !ok {
			t.Fatalf("metric %d has no export name", id)
		}
		if _, ok := MetricHelp[id]; !ok {
			t.Fatalf("metric %d has no help text", id)
		}
	}
	if len(MetricNames) != int(metricIDCount) {
		t.Fatalf("expected %d names, got %d", metricIDCount, len(MetricNames))
	}
}

func TestEngineCountersAcrossLifecycle(t *testing.T) {
	engine, up, done := newTestEngine(t, func(b *Builder) {
		b.WithMetricsEnabled(true)
	})
	defer done()

	seedUser(t, engine, up, "alice@example.com", "correct-horse")

	pair, err := engine.Login(context.Background(), "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	_, _ = engine.Login(context.Background(), "alice@example.com", "wrong-password")

	rotated, err := engine.Refresh(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if _, err := engine.Refresh(context.Background(), pair.RefreshToken); err == nil {
		t.Fatal("expected replayed refresh to fail")
	}
	if err := engine.Logout(context.Background(), rotated.RefreshToken); err != nil {
		t.Fatalf("logout failed: %v", err)
	}

	snap := engine.MetricsSnapshot()
	checks := map[MetricID]uint64{
		MetricLoginSuccess:   1,
		MetricLoginFailure:   1,
		MetricRefreshSuccess: 1,
		MetricRefreshRevoked: 1,
		MetricLogout:         1,
	}
	for id, want := range checks {
		if got := snap.Counters[id]; got != want {
			t.Fatalf("metric %s: expected %d, got %d", MetricNames[id], want, got)
		}
	}
}
