package price

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/kilianp07/gridpulse/core/events"
	"github.com/kilianp07/gridpulse/core/impact"
	"github.com/kilianp07/gridpulse/core/logger"
	"github.com/kilianp07/gridpulse/core/model"
	"github.com/kilianp07/gridpulse/core/scheduler"
	"github.com/kilianp07/gridpulse/internal/eventbus"
)

// ErrNoFeed is returned by Probe when no feed URL is configured.
var ErrNoFeed = errors.New("no price feed configured")

// Quote is the current state of the price process.
type Quote struct {
	Price     float64   `json:"price"`
	Simulated bool      `json:"simulated"`
	Tier      string    `json:"tier"`
	Ramping   bool      `json:"ramping"`
	Time      time.Time `json:"time"`
}

type ramp struct {
	from   float64
	target float64
	start  time.Time
}

// Process is a synthetic market price series: jitter on every tick, an
// optional ramp acting as a floor, and a deterministic reseed per date.
// The price never leaves [Config.Min, Config.Max].
type Process struct {
	cfg    Config
	clock  scheduler.Clock
	client *http.Client
	bus    eventbus.EventBus
	log    logger.Logger

	mu        sync.Mutex
	rng       *rand.Rand
	price     float64
	simulated bool
	ramp      *ramp
}

// Option configures a Process.
type Option func(*Process)

// WithClock sets the time source used for ramps and the ticker.
func WithClock(c scheduler.Clock) Option { return func(p *Process) { p.clock = c } }

// WithBus publishes a PriceEvent after every update. Metrics sinks receive
// prices through the bus collector.
func WithBus(b eventbus.EventBus) Option { return func(p *Process) { p.bus = b } }

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option { return func(p *Process) { p.log = l } }

// WithHTTPClient overrides the client used by Probe.
func WithHTTPClient(c *http.Client) Option { return func(p *Process) { p.client = c } }

// NewProcess builds a process starting at cfg.Initial, flagged simulated
// until a probe succeeds.
func NewProcess(cfg Config, opts ...Option) *Process {
	cfg.SetDefaults()
	p := &Process{cfg: cfg, price: clamp(cfg.Initial, cfg.Min, cfg.Max), simulated: true}
	for _, o := range opts {
		o(p)
	}
	p.clock = scheduler.OrReal(p.clock)
	p.log = logger.OrNop(p.log)
	if p.client == nil {
		p.client = &http.Client{}
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = p.clock.Now().UnixNano()
	}
	p.rng = rand.New(rand.NewSource(seed))
	return p
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func roundCents(v float64) float64 { return math.Round(v*100) / 100 }

type feedEntry struct {
	SettlementPoint struct {
		Price *float64 `json:"price"`
	} `json:"settlementPoint"`
}

// Probe tries the configured feed once. Any failure leaves the process in
// simulated mode; failure is the expected outcome and is logged at info.
func (p *Process) Probe(ctx context.Context) (Quote, error) {
	v, err := p.fetch(ctx)
	if err != nil {
		probeTotal.WithLabelValues("failure").Inc()
		p.log.Infof("price feed unavailable, simulating: %v", err)
		p.mu.Lock()
		p.simulated = true
		q := p.quoteLocked()
		p.mu.Unlock()
		p.emit(q, false)
		return q, err
	}
	probeTotal.WithLabelValues("success").Inc()
	p.mu.Lock()
	p.price = clamp(roundCents(v), p.cfg.Min, p.cfg.Max)
	p.simulated = false
	q := p.quoteLocked()
	p.mu.Unlock()
	p.log.Infof("price feed reachable, starting at %.2f", q.Price)
	p.emit(q, false)
	return q, nil
}

func (p *Process) fetch(ctx context.Context) (float64, error) {
	if p.cfg.FeedURL == "" {
		return 0, ErrNoFeed
	}
	ctx, cancel := context.WithTimeout(ctx, p.cfg.ProbeTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.FeedURL, nil)
	if err != nil {
		return 0, fmt.Errorf("build probe request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("probe feed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("probe feed: status %d", resp.StatusCode)
	}
	var body []feedEntry
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode feed: %w", err)
	}
	if len(body) == 0 || body[0].SettlementPoint.Price == nil {
		return 0, errors.New("feed returned no price")
	}
	v := *body[0].SettlementPoint.Price
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, fmt.Errorf("feed returned invalid price %v", v)
	}
	return v, nil
}

// Tick applies one jitter step and the ramp floor.
func (p *Process) Tick() Quote {
	p.mu.Lock()
	next := p.price + (p.rng.Float64()*2-1)*p.cfg.Jitter
	if r := p.ramp; r != nil {
		progress := 1.0
		if p.cfg.RampDuration > 0 {
			progress = math.Min(float64(p.clock.Now().Sub(r.start))/float64(p.cfg.RampDuration), 1)
		}
		next = math.Max(next, r.from+(r.target-r.from)*progress)
		if progress >= 1 {
			p.ramp = nil
		}
	}
	p.price = clamp(roundCents(next), p.cfg.Min, p.cfg.Max)
	q := p.quoteLocked()
	p.mu.Unlock()
	ticksTotal.Inc()
	p.emit(q, false)
	return q
}

// Reseed moves the price to the deterministic base of the date key and
// starts a ramp toward a random target.
func (p *Process) Reseed(key string, evs []model.Event) Quote {
	base := clamp(roundCents(BasePrice(key, evs)), p.cfg.Min, p.cfg.Max)
	p.mu.Lock()
	p.price = base
	target := p.cfg.RampMin + p.rng.Float64()*(p.cfg.RampMax-p.cfg.RampMin)
	p.ramp = &ramp{from: base, target: target, start: p.clock.Now()}
	q := p.quoteLocked()
	p.mu.Unlock()
	p.log.Debugw("price reseeded", map[string]any{"key": key, "base": base, "ramp_target": roundCents(target)})
	p.emit(q, true)
	return q
}

// Current returns the latest quote.
func (p *Process) Current() Quote {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.quoteLocked()
}

// Price returns the latest price.
func (p *Process) Price() float64 { return p.Current().Price }

// Run ticks every Config.TickInterval until ctx is cancelled.
func (p *Process) Run(ctx context.Context) error {
	t := p.clock.NewTicker(p.cfg.TickInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C():
			p.Tick()
		}
	}
}

func (p *Process) quoteLocked() Quote {
	return Quote{
		Price:     p.price,
		Simulated: p.simulated,
		Tier:      impact.TierFor(p.price).Label,
		Ramping:   p.ramp != nil,
		Time:      p.clock.Now(),
	}
}

func (p *Process) emit(q Quote, reseeded bool) {
	priceGauge.Set(q.Price)
	if p.bus != nil {
		p.bus.Publish(events.PriceEvent{Price: q.Price, Simulated: q.Simulated, Tier: q.Tier, Reseeded: reseeded, Time: q.Time})
	}
}
