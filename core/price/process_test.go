package price

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/gridpulse/core/events"
	"github.com/kilianp07/gridpulse/core/model"
	"github.com/kilianp07/gridpulse/core/scheduler"
	"github.com/kilianp07/gridpulse/internal/eventbus"
)

var t0 = time.Date(2025, 9, 13, 12, 0, 0, 0, time.UTC)

func newTestProcess(t *testing.T, cfg Config, opts ...Option) (*Process, *scheduler.ManualClock) {
	t.Helper()
	ResetMetrics(prometheus.NewRegistry())
	clk := scheduler.NewManualClock(t0)
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}
	return NewProcess(cfg, append([]Option{WithClock(clk)}, opts...)...), clk
}

func TestDefaultsAndValidate(t *testing.T) {
	var c Config
	c.SetDefaults()
	require.NoError(t, c.Validate())
	assert.Equal(t, 52.0, c.Initial)
	assert.Equal(t, 5*time.Second, c.TickInterval)
	assert.Equal(t, 3*time.Second, c.ProbeTimeout)

	bad := c
	bad.Max = 10
	assert.Error(t, bad.Validate())
	bad = c
	bad.Initial = 1000
	assert.Error(t, bad.Validate())
}

func TestTickStaysInBand(t *testing.T) {
	p, _ := newTestProcess(t, Config{Jitter: 1000})
	for i := 0; i < 500; i++ {
		q := p.Tick()
		if q.Price < 20 || q.Price > 450 {
			t.Fatalf("price escaped band: %v", q.Price)
		}
	}
}

func TestBasePriceDeterministic(t *testing.T) {
	v, _ := model.LookupVenue("DKR-Texas Memorial Stadium")
	game := model.Event{Category: model.Football, Attendance: 96000, Venue: v}

	a := BasePrice("2025-09-13", []model.Event{game})
	b := BasePrice("2025-09-13", []model.Event{game})
	assert.Equal(t, a, b)
	// summer 65 + weekend 12 + crowd cap 40 + marquee 25, noise within ±5
	assert.InDelta(t, 142, a, 5)

	quiet := BasePrice("2026-01-14", nil)
	assert.InDelta(t, 35, quiet, 5)
	assert.InDelta(t, 35, BasePrice("not-a-date", nil), 5)
	assert.NotEqual(t, BasePrice("2025-09-13", nil), BasePrice("2025-09-14", nil))
}

func TestReseedIndependentOfProcessState(t *testing.T) {
	p1, _ := newTestProcess(t, Config{Seed: 1})
	p2, _ := newTestProcess(t, Config{Seed: 99})
	p2.Tick()
	p2.Tick()
	q1 := p1.Reseed("2025-10-04", nil)
	q2 := p2.Reseed("2025-10-04", nil)
	assert.Equal(t, q1.Price, q2.Price)
	assert.True(t, q1.Ramping)
}

func TestRampActsAsFloorAndEnds(t *testing.T) {
	p, clk := newTestProcess(t, Config{Jitter: 0.01})
	start := p.Reseed("2026-01-14", nil)
	require.Less(t, start.Price, 41.0)

	clk.Advance(24 * time.Second)
	q := p.Tick()
	assert.GreaterOrEqual(t, q.Price, 89.99)
	assert.False(t, q.Ramping)

	// without a ramp the price only drifts by the jitter
	next := p.Tick()
	assert.InDelta(t, q.Price, next.Price, 0.02)
}

func TestRampPartialProgress(t *testing.T) {
	p, clk := newTestProcess(t, Config{Jitter: 0.01, RampMin: 200, RampMax: 200})
	start := p.Reseed("2026-01-14", nil)
	clk.Advance(12 * time.Second)
	q := p.Tick()
	want := start.Price + (200-start.Price)/2
	assert.InDelta(t, want, q.Price, 0.02)
	assert.True(t, q.Ramping)
}

func feedServer(status int, body string, delay time.Duration) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestProbeSuccess(t *testing.T) {
	srv := feedServer(http.StatusOK, `[{"settlementPoint":{"price":73.456}}]`, 0)
	defer srv.Close()
	p, _ := newTestProcess(t, Config{FeedURL: srv.URL})
	q, err := p.Probe(context.Background())
	require.NoError(t, err)
	assert.False(t, q.Simulated)
	assert.Equal(t, 73.46, q.Price)
	assert.Equal(t, "Elevated", q.Tier)
}

func TestProbeFailuresFallBackToSimulation(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		delay  time.Duration
	}{
		{"server error", http.StatusInternalServerError, `[]`, 0},
		{"malformed", http.StatusOK, `{not json`, 0},
		{"string price", http.StatusOK, `[{"settlementPoint":{"price":"45"}}]`, 0},
		{"negative price", http.StatusOK, `[{"settlementPoint":{"price":-3}}]`, 0},
		{"zero price", http.StatusOK, `[{"settlementPoint":{"price":0}}]`, 0},
		{"empty list", http.StatusOK, `[]`, 0},
		{"missing price", http.StatusOK, `[{"settlementPoint":{}}]`, 0},
		{"timeout", http.StatusOK, `[{"settlementPoint":{"price":80}}]`, 500 * time.Millisecond},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := feedServer(tc.status, tc.body, tc.delay)
			defer srv.Close()
			p, _ := newTestProcess(t, Config{FeedURL: srv.URL, ProbeTimeout: 50 * time.Millisecond})
			q, err := p.Probe(context.Background())
			assert.Error(t, err)
			assert.True(t, q.Simulated)
			assert.Equal(t, 52.0, q.Price)
		})
	}
}

func TestProbeWithoutFeed(t *testing.T) {
	p, _ := newTestProcess(t, Config{})
	q, err := p.Probe(context.Background())
	assert.True(t, errors.Is(err, ErrNoFeed))
	assert.True(t, q.Simulated)
}

func TestRunTicksUntilCancelled(t *testing.T) {
	bus := eventbus.New()
	sub := bus.Subscribe()
	p, clk := newTestProcess(t, Config{}, WithBus(bus))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool { return clk.Pending() == 1 }, time.Second, time.Millisecond)
	clk.Advance(5 * time.Second)
	select {
	case ev := <-sub:
		_, ok := ev.(events.PriceEvent)
		assert.True(t, ok, "expected PriceEvent got %T", ev)
	case <-time.After(time.Second):
		t.Fatal("no tick published")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
	assert.Equal(t, 0, clk.Pending())
}

func TestReseedPublishesEvent(t *testing.T) {
	bus := eventbus.New()
	sub := bus.Subscribe()
	p, _ := newTestProcess(t, Config{}, WithBus(bus))
	p.Reseed("2025-09-13", nil)
	ev := (<-sub).(events.PriceEvent)
	assert.True(t, ev.Reseeded)
	assert.True(t, ev.Simulated)
}
