package dispatch

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kilianp07/gridpulse/core/events"
	"github.com/kilianp07/gridpulse/core/impact"
	"github.com/kilianp07/gridpulse/core/ledger"
	"github.com/kilianp07/gridpulse/core/logger"
	"github.com/kilianp07/gridpulse/core/metrics"
	"github.com/kilianp07/gridpulse/core/model"
	"github.com/kilianp07/gridpulse/core/monitoring"
	"github.com/kilianp07/gridpulse/core/price"
	"github.com/kilianp07/gridpulse/core/scheduler"
	"github.com/kilianp07/gridpulse/internal/eventbus"
)

// UpcomingWindowDays is the look-ahead used for Snapshot.UpcomingDates.
const UpcomingWindowDays = 7

// Pricer supplies the live market price and reacts to selection changes.
type Pricer interface {
	Price() float64
	Reseed(key string, events []model.Event) price.Quote
}

// Recorder appends confirmed dispatches to the history.
type Recorder interface {
	Record(e ledger.Entry) ledger.Entry
}

// Selection names either a calendar date or a single event. EventID wins
// when both are set.
type Selection struct {
	Date    string `json:"date,omitempty"`
	EventID string `json:"event_id,omitempty"`
}

// ParseSelection treats a YYYY-MM-DD string as a date and anything else as
// an event id.
func ParseSelection(s string) Selection {
	if _, err := time.Parse(model.DateLayout, s); err == nil {
		return Selection{Date: s}
	}
	return Selection{EventID: s}
}

type session struct {
	state      State
	dateKey    string
	events     []model.Event
	brief      string
	briefErr   string
	confirmErr string
	command    *Command

	activating     int
	active         []string
	phase          int
	dispatchActive bool
	revenue        decimal.Decimal
	ticks          int
	closed         bool
}

// Orchestrator owns the dispatch session. Every mutation happens under one
// lock; remote calls run outside it and their results are applied only if
// the generation they started in is still current. Timer callbacks carry the
// generation too, so switching the selection both stops pending timers and
// neutralises any that already fired.
type Orchestrator struct {
	cfg       Config
	catalog   *model.Catalog
	pricer    Pricer
	briefer   BriefGenerator
	confirmer Confirmer
	ledger    Recorder
	clock     scheduler.Clock
	bus       eventbus.EventBus
	sink      metrics.MetricsSink
	log       logger.Logger

	mu       sync.Mutex
	rng      *rand.Rand
	gen      uint64
	briefSeq uint64
	timers   scheduler.Group
	sess     session
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

func WithClock(c scheduler.Clock) Option { return func(o *Orchestrator) { o.clock = c } }

func WithBus(b eventbus.EventBus) Option { return func(o *Orchestrator) { o.bus = b } }

// WithSink records every confirmation outcome. Rollout samples reach sinks
// through the bus.
func WithSink(s metrics.MetricsSink) Option { return func(o *Orchestrator) { o.sink = s } }

func WithLogger(l logger.Logger) Option { return func(o *Orchestrator) { o.log = l } }

func WithLedger(r Recorder) Option { return func(o *Orchestrator) { o.ledger = r } }

func WithBriefGenerator(g BriefGenerator) Option {
	return func(o *Orchestrator) { o.briefer = g }
}

func WithConfirmer(c Confirmer) Option { return func(o *Orchestrator) { o.confirmer = c } }

// New builds an orchestrator over catalog. Without explicit strategies the
// brief and confirmation are produced locally.
func New(cfg Config, catalog *model.Catalog, pricer Pricer, opts ...Option) (*Orchestrator, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("dispatch config: %w", err)
	}
	if catalog == nil || pricer == nil {
		return nil, fmt.Errorf("dispatch: catalog and pricer are required")
	}
	o := &Orchestrator{cfg: cfg, catalog: catalog, pricer: pricer}
	for _, opt := range opts {
		opt(o)
	}
	o.clock = scheduler.OrReal(o.clock)
	o.log = logger.OrNop(o.log)
	if o.briefer == nil {
		o.briefer = LocalBriefer{Delay: 800 * time.Millisecond, Clock: o.clock}
	}
	if o.confirmer == nil {
		o.confirmer = LocalConfirmer{Delay: 900 * time.Millisecond, Clock: o.clock}
	}
	if o.ledger == nil {
		o.ledger = ledger.NewWithClock(o.clock.Now)
	}
	if o.sink == nil {
		o.sink = metrics.NopSink{}
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = o.clock.Now().UnixNano()
	}
	o.rng = rand.New(rand.NewSource(seed))
	o.sess = session{state: Idle}
	return o, nil
}

func (o *Orchestrator) resolve(sel Selection) (string, []model.Event, error) {
	if sel.EventID != "" {
		e, ok := o.catalog.Event(sel.EventID)
		if !ok {
			return "", nil, fmt.Errorf("%w: event %q", ErrUnknownSelection, sel.EventID)
		}
		return e.DateKey(), []model.Event{e}, nil
	}
	if sel.Date == "" {
		return "", nil, ErrNoSelection
	}
	evs := o.catalog.OnDate(sel.Date)
	if len(evs) == 0 {
		return "", nil, fmt.Errorf("%w: date %s", ErrUnknownSelection, sel.Date)
	}
	return sel.Date, evs, nil
}

// Select switches the session to a new date or event. Pending rollout and
// accrual timers are cancelled, the brief and confirmation are cleared and
// the price is reseeded for the new date.
func (o *Orchestrator) Select(sel Selection) (Snapshot, error) {
	key, evs, err := o.resolve(sel)
	if err != nil {
		return o.Snapshot(), err
	}
	o.mu.Lock()
	stopped := o.timers.StopAll()
	o.gen++
	gen := o.gen
	o.sess = session{state: Idle, dateKey: key, events: evs}
	o.pricer.Reseed(key, evs)
	snap := o.snapshotLocked()
	now := o.clock.Now()
	o.mu.Unlock()

	selectionsTotal.Inc()
	timersCancelled.Add(float64(stopped))
	ids := make([]string, len(evs))
	for i, e := range evs {
		ids[i] = e.ID
	}
	o.log.Infow("selection changed", map[string]any{
		"generation": gen, "date": key, "events": len(evs), "timers_stopped": stopped,
	})
	o.publish(events.SelectionEvent{Generation: gen, DateKey: key, EventIDs: ids, Time: now})
	return snap, nil
}

// RequestBrief generates the operator brief for the current selection. A
// newer request or a selection change supersedes this one; the superseded
// result is dropped without error.
func (o *Orchestrator) RequestBrief(ctx context.Context) (Snapshot, error) {
	o.mu.Lock()
	if len(o.sess.events) == 0 {
		snap := o.snapshotLocked()
		o.mu.Unlock()
		return snap, ErrNoSelection
	}
	if !o.sess.state.canRequestBrief() {
		snap := o.snapshotLocked()
		o.mu.Unlock()
		return snap, fmt.Errorf("%w: brief requested while %s", ErrInvalidState, snap.State)
	}
	o.briefSeq++
	seq, gen := o.briefSeq, o.gen
	o.sess.state = BriefPending
	o.sess.brief, o.sess.briefErr = "", ""
	p := o.pricer.Price()
	in := BriefInput{
		DateKey:   o.sess.dateKey,
		DateLabel: DateLabel(o.sess.dateKey),
		Events:    append([]model.Event(nil), o.sess.events...),
		Stats:     impact.Aggregate(o.sess.events, p),
		Price:     p,
		FleetSize: model.FleetSize,
	}
	o.mu.Unlock()

	start := o.clock.Now()
	text, err := o.briefer.GenerateBrief(ctx, in)
	latency := o.clock.Now().Sub(start)
	source := o.briefer.Name()

	o.mu.Lock()
	if gen != o.gen || seq != o.briefSeq {
		snap := o.snapshotLocked()
		o.mu.Unlock()
		briefsTotal.WithLabelValues(source, "superseded").Inc()
		o.log.Debugw("brief result superseded", map[string]any{"generation": gen, "seq": seq})
		return snap, nil
	}
	if err != nil {
		o.sess.state = BriefFailed
		o.sess.briefErr = err.Error()
	} else {
		o.sess.state = BriefReady
		o.sess.brief = text
	}
	snap := o.snapshotLocked()
	o.mu.Unlock()

	outcome := "success"
	ev := events.BriefEvent{Generation: gen, Source: source, Text: text, Latency: latency}
	if err != nil {
		outcome = "failure"
		ev.Err = err.Error()
		o.log.Warnf("brief from %s failed: %v", source, err)
		monitoring.CaptureException(err, map[string]string{"stage": "brief", "strategy": source, "date": in.DateKey})
	}
	briefsTotal.WithLabelValues(source, outcome).Inc()
	o.publish(ev)
	if err != nil {
		return snap, fmt.Errorf("generate brief: %w", err)
	}
	return snap, nil
}

// Confirm validates the dispatch command built from the current selection.
// It is only allowed once a brief is ready. On success the dispatch is
// recorded in the ledger and the cluster rollout starts; on failure the
// session returns to the brief-ready state.
func (o *Orchestrator) Confirm(ctx context.Context) (Snapshot, error) {
	o.mu.Lock()
	if len(o.sess.events) == 0 {
		snap := o.snapshotLocked()
		o.mu.Unlock()
		return snap, ErrNoSelection
	}
	if o.sess.state != BriefReady {
		snap := o.snapshotLocked()
		o.mu.Unlock()
		return snap, fmt.Errorf("%w: confirm requested while %s", ErrInvalidState, snap.State)
	}
	gen := o.gen
	stats := impact.Aggregate(o.sess.events, o.pricer.Price())
	cmd, err := BuildCommand(o.sess.events, stats, o.cfg.ChargeTarget, o.rng.Intn(900)+100)
	if err != nil {
		snap := o.snapshotLocked()
		o.mu.Unlock()
		return snap, err
	}
	o.sess.state = Confirming
	o.sess.confirmErr = ""
	req := ConfirmRequest{Command: cmd, Brief: o.sess.brief}
	key := o.sess.dateKey
	evs := append([]model.Event(nil), o.sess.events...)
	o.mu.Unlock()

	start := o.clock.Now()
	err = o.confirmer.ConfirmDispatch(ctx, req)
	latency := o.clock.Now().Sub(start)
	now := o.clock.Now()
	if err == nil {
		o.ledger.Record(ledgerEntry(key, evs, stats, cmd))
	}

	o.mu.Lock()
	stale := gen != o.gen
	switch {
	case stale:
	case err != nil:
		o.sess.state = BriefReady
		o.sess.confirmErr = err.Error()
	default:
		o.sess.state = Confirmed
		c := cmd
		o.sess.command = &c
		o.startRolloutLocked(gen, cmd, stats)
	}
	snap := o.snapshotLocked()
	o.mu.Unlock()

	outcome := "accepted"
	switch {
	case err != nil:
		outcome = "rejected"
	case stale:
		outcome = "stale"
	}
	confirmsTotal.WithLabelValues(outcome).Inc()
	if rerr := o.sink.RecordDispatch(metrics.DispatchRecord{
		DispatchID:   cmd.DispatchID,
		DateKey:      key,
		Batteries:    cmd.Batteries,
		Zones:        cmd.ZipCodes,
		Spread:       stats.Spread,
		TotalCapture: stats.Revenue,
		DemandMW:     stats.DemandMW,
		Accepted:     err == nil,
		Latency:      latency,
		Time:         now,
	}); rerr != nil {
		o.log.Warnf("record dispatch: %v", rerr)
	}

	ev := events.ConfirmEvent{
		Generation:   gen,
		DispatchID:   cmd.DispatchID,
		Accepted:     err == nil,
		Batteries:    cmd.Batteries,
		Zones:        cmd.ZipCodes,
		TotalCapture: stats.Revenue,
		Stale:        stale,
		Latency:      latency,
		Time:         now,
	}
	if err != nil {
		ev.Err = err.Error()
		o.log.Errorf("dispatch %s rejected by %s: %v", cmd.DispatchID, o.confirmer.Name(), err)
		monitoring.CaptureException(err, map[string]string{
			"stage": "confirm", "strategy": o.confirmer.Name(), "dispatch_id": cmd.DispatchID,
		})
	} else {
		if payload, jerr := cmd.JSON(); jerr == nil {
			ev.Payload = payload
		}
		o.log.Infow("dispatch confirmed", map[string]any{
			"dispatch_id": cmd.DispatchID, "batteries": cmd.Batteries, "zones": cmd.ZipCodes, "stale": stale,
		})
	}
	o.publish(ev)
	if err != nil {
		return snap, fmt.Errorf("confirm dispatch: %w", err)
	}
	return snap, nil
}

func ledgerEntry(key string, evs []model.Event, st impact.Stats, cmd Command) ledger.Entry {
	e := ledger.Entry{
		DispatchID:    cmd.DispatchID,
		DateKey:       key,
		Batteries:     st.Batteries,
		SpreadPerUnit: st.Spread,
		TotalCapture:  st.Revenue,
		ProjectedMW:   st.DemandMW,
		Zones:         append([]string(nil), st.Zones...),
	}
	for _, ev := range evs {
		e.EventIDs = append(e.EventIDs, ev.ID)
		e.EventNames = append(e.EventNames, ev.Name)
		e.Categories = append(e.Categories, ev.Category)
	}
	return e
}

// Snapshot returns a copy of the session at the live price.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

func (o *Orchestrator) snapshotLocked() Snapshot {
	s := o.sess
	p := o.pricer.Price()
	snap := Snapshot{
		Generation:       o.gen,
		State:            s.state,
		DateKey:          s.dateKey,
		Events:           append([]model.Event{}, s.events...),
		Stats:            impact.Aggregate(s.events, p),
		Price:            p,
		ProjectedRevenue: impact.ProjectedRevenue(s.events, p),
		Brief:            s.brief,
		BriefError:       s.briefErr,
		BriefLoading:     s.state == BriefPending,
		ConfirmLoading:   s.state == Confirming,
		Confirmed:        s.state >= Confirmed,
		ConfirmError:     s.confirmErr,
		Activating:       s.activating,
		ActiveClusters:   append([]string{}, s.active...),
		Phase:            s.phase,
		DispatchActive:   s.dispatchActive,
		Revenue:          s.revenue.InexactFloat64(),
		AccrualTicks:     s.ticks,
		AccrualClosed:    s.closed,
	}
	if s.dateKey != "" {
		snap.UpcomingDates = o.catalog.UpcomingDates(s.dateKey, UpcomingWindowDays)
	}
	if s.command != nil {
		c := *s.command
		c.ZipCodes = append([]string(nil), c.ZipCodes...)
		c.Events = append([]CommandEvent(nil), c.Events...)
		snap.Command = &c
	}
	return snap
}

// Close cancels every pending timer. Callbacks already running are dropped
// as stale.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	n := o.timers.StopAll()
	o.gen++
	o.mu.Unlock()
	timersCancelled.Add(float64(n))
}

func (o *Orchestrator) publish(ev events.Named) {
	if o.bus != nil {
		o.bus.Publish(ev)
	}
}
