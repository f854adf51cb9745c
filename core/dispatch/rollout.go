package dispatch

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kilianp07/gridpulse/core/events"
	"github.com/kilianp07/gridpulse/core/impact"
	"github.com/kilianp07/gridpulse/core/model"
)

// scheduleLocked runs fn after d with the session lock held, unless the
// generation moved on in the meantime. Events returned by fn are published
// after the lock is released.
func (o *Orchestrator) scheduleLocked(gen uint64, d time.Duration, fn func() []events.Named) {
	o.timers.Add(o.clock.AfterFunc(d, func() {
		o.mu.Lock()
		if gen != o.gen {
			o.mu.Unlock()
			staleCallbacks.Inc()
			return
		}
		out := fn()
		o.mu.Unlock()
		for _, ev := range out {
			o.record(ev)
			o.publish(ev)
		}
	}))
}

// startRolloutLocked schedules the cluster activations over the activation
// window, then phase two and phase three. Phase three starts accrual.
func (o *Orchestrator) startRolloutLocked(gen uint64, cmd Command, st impact.Stats) {
	o.sess.state = Animating
	clusters := model.ClustersInZones(st.Zones)
	n := len(clusters)
	step := time.Duration(0)
	if n > 0 {
		step = time.Duration(o.cfg.ActivationWindow.Milliseconds()/int64(n)) * time.Millisecond
	}
	for i, c := range clusters {
		o.scheduleLocked(gen, time.Duration(i)*step, func() []events.Named {
			o.sess.active = append(o.sess.active, c.ID)
			o.sess.activating = activatingAfter(st.Batteries, i, n)
			return []events.Named{events.ClusterActivatedEvent{
				Generation: gen,
				DispatchID: cmd.DispatchID,
				ClusterID:  c.ID,
				Zone:       c.Zone,
				Units:      c.Count,
				Index:      i,
				Total:      n,
				Activating: o.sess.activating,
			}}
		})
	}
	o.scheduleLocked(gen, o.cfg.PhaseTwoAt, func() []events.Named {
		o.sess.phase = 2
		return []events.Named{events.PhaseEvent{Generation: gen, DispatchID: cmd.DispatchID, Phase: 2}}
	})
	o.scheduleLocked(gen, o.cfg.PhaseThreeAt, func() []events.Named {
		o.sess.phase = 3
		o.sess.dispatchActive = true
		o.scheduleAccrualLocked(gen, cmd.DispatchID, st.DemandMW)
		return []events.Named{events.PhaseEvent{Generation: gen, DispatchID: cmd.DispatchID, Phase: 3}}
	})
}

// activatingAfter is the battery count shown once cluster i of n is live.
// It reaches exactly batteries on the last cluster.
func activatingAfter(batteries, i, n int) int {
	if n <= 0 {
		return 0
	}
	v := int(math.Round(float64(batteries) * float64(i+1) / float64(n)))
	return min(batteries, v)
}

// scheduleAccrualLocked chains one accrual tick per interval until the
// accrual window is exhausted.
func (o *Orchestrator) scheduleAccrualLocked(gen uint64, id string, demandMW float64) {
	o.scheduleLocked(gen, o.cfg.AccrualInterval, func() []events.Named {
		factor := 0.8 + o.rng.Float64()*0.4
		inc := decimal.NewFromFloat(demandMW).
			Mul(decimal.NewFromFloat(o.cfg.RatePerMW)).
			Mul(decimal.NewFromFloat(factor)).
			Round(2)
		o.sess.revenue = o.sess.revenue.Add(inc)
		o.sess.ticks++
		if o.sess.ticks >= o.cfg.accrualTicks() {
			o.sess.closed = true
			o.sess.state = AccrualClosed
		} else {
			o.scheduleAccrualLocked(gen, id, demandMW)
		}
		return []events.Named{events.AccrualEvent{
			Generation: gen,
			DispatchID: id,
			Tick:       o.sess.ticks,
			Increment:  inc.InexactFloat64(),
			Revenue:    o.sess.revenue.InexactFloat64(),
			Closed:     o.sess.closed,
		}}
	})
}

// record updates the rollout counters.
func (o *Orchestrator) record(ev events.Named) {
	switch e := ev.(type) {
	case events.ClusterActivatedEvent:
		clustersActivated.Inc()
	case events.AccrualEvent:
		accruedRevenue.Add(e.Increment)
		if e.Closed {
			o.log.Infow("accrual window closed", map[string]any{"dispatch_id": e.DispatchID, "revenue": e.Revenue})
		}
	case events.PhaseEvent:
		o.log.Debugw("rollout phase", map[string]any{"dispatch_id": e.DispatchID, "phase": e.Phase})
	}
}
