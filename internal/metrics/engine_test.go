package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestEngine_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewEngine(reg)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	m.Observe("search", time.Now(), nil)
	m.Observe("search", time.Now(), errors.New("boom"))
	m.Observe("scroll_open", time.Now(), nil)

	if v := testutil.ToFloat64(m.Operations.WithLabelValues("search", "ok")); v != 1 {
		t.Errorf("search ok = %f, want 1", v)
	}
	if v := testutil.ToFloat64(m.Operations.WithLabelValues("search", "error")); v != 1 {
		t.Errorf("search error = %f, want 1", v)
	}
	if n := testutil.CollectAndCount(m.Duration); n != 2 {
		t.Errorf("duration series = %d, want 2", n)
	}
}

func TestEngine_CacheResult(t *testing.T) {
	m, err := NewEngine(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	m.CacheResult(true)
	m.CacheResult(false)
	m.CacheResult(false)

	if v := testutil.ToFloat64(m.Cache.WithLabelValues("hit")); v != 1 {
		t.Errorf("hit = %f", v)
	}
	if v := testutil.ToFloat64(m.Cache.WithLabelValues("miss")); v != 2 {
		t.Errorf("miss = %f", v)
	}
}

func TestNewEngine_ReusesRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewEngine(reg)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	b, err := NewEngine(reg)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	a.Observe("search", time.Now(), nil)
	if v := testutil.ToFloat64(b.Operations.WithLabelValues("search", "ok")); v != 1 {
		t.Errorf("collectors not shared, got %f", v)
	}
}

func TestNewEngine_IncompatibleCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "esb",
		Subsystem: "engine",
		Name:      "operations_total",
		Help:      "Total search engine operations by type and status.",
	}, []string{"operation", "status"}))

	if _, err := NewEngine(reg); err == nil {
		t.Fatal("expected error for incompatible collector")
	}
}

func TestEngine_NilSafe(t *testing.T) {
	var m *Engine
	m.Observe("search", time.Now(), nil)
	m.CacheResult(true)
}
