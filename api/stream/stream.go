// Package stream pushes bus events to WebSocket clients so a dashboard can
// follow price ticks, cluster activations and accrual live.
package stream

import (
	"encoding/json"
	"net/http"
	"slices"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/gridpulse/core/events"
	"github.com/kilianp07/gridpulse/core/logger"
	"github.com/kilianp07/gridpulse/internal/eventbus"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var clientsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "gridpulse_stream_clients",
	Help: "Connected WebSocket stream clients",
})

func init() {
	if err := prometheus.Register(clientsGauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			clientsGauge = are.ExistingCollector.(prometheus.Gauge)
		}
	}
}

// Envelope is the frame written for every event.
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// SnapshotFunc returns the value sent as the first "snapshot" frame.
type SnapshotFunc func() any

// Hub upgrades requests and forwards bus events to each connection.
type Hub struct {
	bus      eventbus.EventBus
	snapshot SnapshotFunc
	log      logger.Logger
	upgrader websocket.Upgrader
	clients  atomic.Int64
}

// NewHub creates a Hub. An empty origins list accepts any origin.
func NewHub(bus eventbus.EventBus, snapshot SnapshotFunc, origins []string, log logger.Logger) *Hub {
	h := &Hub{bus: bus, snapshot: snapshot, log: logger.OrNop(log)}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(origins) == 0 {
				return true
			}
			return slices.Contains(origins, r.Header.Get("Origin"))
		},
	}
	return h
}

// Clients is the number of open connections.
func (h *Hub) Clients() int { return int(h.clients.Load()) }

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnf("websocket upgrade: %v", err)
		return
	}
	sub := h.bus.Subscribe()
	h.clients.Add(1)
	clientsGauge.Inc()
	done := make(chan struct{})
	go h.readPump(conn, done)
	h.writePump(conn, sub, done)
	h.bus.Unsubscribe(sub)
	h.clients.Add(-1)
	clientsGauge.Dec()
	_ = conn.Close()
}

// readPump discards client frames and closes done when the peer goes away.
func (h *Hub) readPump(conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(conn *websocket.Conn, sub <-chan eventbus.Event, done <-chan struct{}) {
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	if h.snapshot != nil {
		if err := h.write(conn, Envelope{Type: "snapshot", Data: h.snapshot()}); err != nil {
			return
		}
	}
	for {
		select {
		case ev, ok := <-sub:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutdown"), time.Now().Add(writeWait))
				return
			}
			named, ok := ev.(events.Named)
			if !ok {
				continue
			}
			if err := h.write(conn, Envelope{Type: named.EventName(), Data: named}); err != nil {
				h.log.Debugf("stream write: %v", err)
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (h *Hub) write(conn *websocket.Conn, env Envelope) error {
	b, err := json.Marshal(env)
	if err != nil {
		h.log.Errorf("encode %s frame: %v", env.Type, err)
		return nil
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, b)
}
