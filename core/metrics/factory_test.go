package metrics_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/kilianp07/gridpulse/core/factory"
	metrics "github.com/kilianp07/gridpulse/core/metrics"
	_ "github.com/kilianp07/gridpulse/infra/metrics"
)

/*
TestMetricsFactory_Builtins verifies registration via infra/metrics/factory.go.

	Cases:
	- instantiate builtin nop sink
	- unknown type returns error
*/
func TestMetricsFactory_Builtins(t *testing.T) {
	s, err := metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "nop"}})
	if err != nil {
		t.Fatalf("create nop: %v", err)
	}
	if s == nil {
		t.Fatal("expected sink instance")
	}
	if _, err := metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "missing"}}); err == nil {
		t.Fatal("expected error for unknown type")
	}
}

/*
TestNewMetricsSink_Multi validates NewMetricsSink behavior with zero, one, and multiple configs.
Cases:
  - no config -> NopSink
  - two configs -> MultiSink with two sub-sinks
*/
func TestNewMetricsSink_Multi(t *testing.T) {
	s, err := metrics.NewMetricsSink(nil)
	if err != nil {
		t.Fatalf("create nop default: %v", err)
	}
	if _, ok := s.(metrics.NopSink); !ok {
		t.Fatalf("expected NopSink, got %T", s)
	}

	cfgs := []factory.ModuleConfig{{Type: "nop"}, {Type: "nop"}}
	s, err = metrics.NewMetricsSink(cfgs)
	if err != nil {
		t.Fatalf("create multi: %v", err)
	}
	m, ok := s.(*metrics.MultiSink)
	if !ok {
		t.Fatalf("expected MultiSink, got %T", s)
	}
	if len(m.Sinks) != 2 {
		t.Fatalf("expected 2 sinks, got %d", len(m.Sinks))
	}
}

// Test decoding from JSON with invalid sink type.
func TestMetricsConfigDecodeJSON_Invalid(t *testing.T) {
	data := `{"sinks":[{"type":"missing"}]}`
	var cfg metrics.Config
	if err := json.Unmarshal([]byte(data), &cfg); err != nil {
		t.Fatalf("json unmarshal: %v", err)
	}
	if _, err := metrics.NewMetricsSink(cfg.Sinks); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}

type closingSink struct {
	metrics.NopSink
	closed *bool
}

func (c closingSink) Close() { *c.closed = true }

func TestNewMetricsSink_ClosesOnFailure(t *testing.T) {
	var closed bool
	if err := metrics.RegisterMetricsSink("test-closing", func(map[string]any) (metrics.MetricsSink, error) {
		return closingSink{closed: &closed}, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err := metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "test-closing"}, {Type: "missing"}})
	if err == nil || !strings.Contains(err.Error(), "metrics sink 1") {
		t.Fatalf("expected indexed error, got %v", err)
	}
	if !closed {
		t.Fatal("expected first sink to be closed")
	}
	found := false
	for _, n := range metrics.SinkTypes() {
		found = found || n == "influx"
	}
	if !found {
		t.Fatalf("influx not registered: %v", metrics.SinkTypes())
	}
}
