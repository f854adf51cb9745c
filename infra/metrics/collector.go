package metrics

import (
	"context"
	"time"

	"github.com/kilianp07/gridpulse/core/events"
	coremetrics "github.com/kilianp07/gridpulse/core/metrics"
	"github.com/kilianp07/gridpulse/infra/logger"
	"github.com/kilianp07/gridpulse/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and forwards price, brief,
// cluster and accrual events to the sink recorders it implements. It stops
// when the context is canceled or the bus closes. The returned channel is
// closed once the collector has exited.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	log := logger.New("metrics-collector")
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := collect(sink, ev, time.Now()); err != nil {
					log.Warnf("record %T: %v", ev, err)
				}
			}
		}
	}()
	return done
}

func collect(sink coremetrics.MetricsSink, ev eventbus.Event, now time.Time) error {
	switch e := ev.(type) {
	case events.PriceEvent:
		if r, ok := sink.(coremetrics.PriceRecorder); ok {
			return r.RecordPrice(coremetrics.PriceSample{Price: e.Price, Simulated: e.Simulated, Tier: e.Tier, Time: e.Time})
		}
	case events.BriefEvent:
		if r, ok := sink.(coremetrics.BriefRecorder); ok {
			return r.RecordBrief(coremetrics.BriefRecord{Source: e.Source, Success: e.Err == "", Latency: e.Latency, Time: now})
		}
	case events.ClusterActivatedEvent:
		if r, ok := sink.(coremetrics.ClusterRecorder); ok {
			return r.RecordClusterActivation(coremetrics.ClusterActivation{
				DispatchID: e.DispatchID, ClusterID: e.ClusterID, Zone: e.Zone, Units: e.Units, Time: now,
			})
		}
	case events.AccrualEvent:
		if r, ok := sink.(coremetrics.AccrualRecorder); ok {
			return r.RecordAccrual(coremetrics.AccrualSample{
				DispatchID: e.DispatchID, Increment: e.Increment, Total: e.Revenue, Time: now,
			})
		}
	}
	return nil
}
