package mqtt

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/gridpulse/core/events"
	coremqtt "github.com/kilianp07/gridpulse/core/mqtt"
	"github.com/kilianp07/gridpulse/internal/eventbus"
)

func TestBridgeRoutesEvents(t *testing.T) {
	bus := eventbus.New()
	pub := NewMockPublisher()
	ctx, cancel := context.WithCancel(context.Background())
	done := StartBridge(ctx, bus, pub, coremqtt.Topics{Prefix: "gp"})

	cmd := json.RawMessage(`{"dispatch_id":"GP-2025-0913-417"}`)
	bus.Publish(events.ConfirmEvent{DispatchID: "GP-2025-0913-417", Accepted: true, Payload: cmd})
	bus.Publish(events.ConfirmEvent{DispatchID: "GP-2025-0913-418", Accepted: false})
	bus.Publish(events.ConfirmEvent{DispatchID: "GP-2025-0913-419", Accepted: true, Stale: true, Payload: cmd})
	bus.Publish(events.ClusterActivatedEvent{DispatchID: "GP-2025-0913-417", ClusterID: "bc04", Units: 118})
	bus.Publish(events.AccrualEvent{DispatchID: "GP-2025-0913-417", Tick: 1, Revenue: 6})
	bus.Publish(events.PriceEvent{Price: 88})
	bus.Publish(events.PhaseEvent{Phase: 2})

	require.Eventually(t, func() bool { return len(pub.Published()) == 4 }, time.Second, 5*time.Millisecond)
	msgs := pub.Published()
	assert.Equal(t, "gp/dispatch/GP-2025-0913-417", msgs[0].Topic)
	assert.JSONEq(t, string(cmd), string(msgs[0].Payload))
	assert.Equal(t, "gp/cluster/bc04/activate", msgs[1].Topic)
	assert.Contains(t, string(msgs[1].Payload), `"units":118`)
	assert.Equal(t, "gp/dispatch/GP-2025-0913-417/revenue", msgs[2].Topic)
	assert.Equal(t, "gp/price", msgs[3].Topic)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("bridge did not stop")
	}
}

func TestBridgeKeepsRunningOnPublishError(t *testing.T) {
	bus := eventbus.New()
	pub := NewMockPublisher()
	pub.FailTopics["gridpulse/price"] = true
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	StartBridge(ctx, bus, pub, coremqtt.Topics{})

	bus.Publish(events.PriceEvent{Price: 88})
	bus.Publish(events.ClusterActivatedEvent{ClusterID: "bc01"})
	require.Eventually(t, func() bool { return len(pub.Published()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "gridpulse/cluster/bc01/activate", pub.Published()[0].Topic)
}

func TestBridgeStopsWhenBusCloses(t *testing.T) {
	bus := eventbus.New()
	done := StartBridge(context.Background(), bus, NewMockPublisher(), coremqtt.Topics{})
	bus.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("bridge did not stop on bus close")
	}
}
