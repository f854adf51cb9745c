package mqtt

import (
	"context"
	"encoding/json"

	"github.com/kilianp07/gridpulse/core/events"
	coremqtt "github.com/kilianp07/gridpulse/core/mqtt"
	"github.com/kilianp07/gridpulse/infra/logger"
	"github.com/kilianp07/gridpulse/internal/eventbus"
)

// StartBridge forwards bus events to the broker until ctx ends or the bus
// closes:
//
//	<prefix>/dispatch/<id>             accepted dispatch command (JSON payload)
//	<prefix>/cluster/<id>/activate     cluster activation
//	<prefix>/dispatch/<id>/revenue     accrual ticks
//	<prefix>/price                     market price updates
//
// Stale and rejected confirmations are not announced. The returned channel
// is closed when the bridge exits.
func StartBridge(ctx context.Context, bus eventbus.EventBus, pub coremqtt.Publisher, topics coremqtt.Topics) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || pub == nil {
		close(done)
		return done
	}
	log := logger.New("mqtt_bridge")
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
				topic, payload, ok := route(topics, ev)
				if !ok {
					continue
				}
				if err := pub.Publish(topic, payload); err != nil {
					log.Errorf("announce %s: %v", topic, err)
				}
			}
		}
	}()
	return done
}

func route(t coremqtt.Topics, ev eventbus.Event) (string, []byte, bool) {
	var topic string
	var body any = ev
	switch e := ev.(type) {
	case events.ConfirmEvent:
		if !e.Accepted || e.Stale || len(e.Payload) == 0 {
			return "", nil, false
		}
		return t.Dispatch(e.DispatchID), e.Payload, true
	case events.ClusterActivatedEvent:
		topic = t.Cluster(e.ClusterID)
	case events.AccrualEvent:
		topic = t.Revenue(e.DispatchID)
	case events.PriceEvent:
		topic = t.Price()
	default:
		return "", nil, false
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", nil, false
	}
	return topic, payload, true
}
