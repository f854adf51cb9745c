package events

import (
	"encoding/json"
	"time"
)

// Named is implemented by every event so transports can route them.
type Named interface {
	EventName() string
}

// PriceEvent is published after every price update.
type PriceEvent struct {
	Price     float64   `json:"price"`
	Simulated bool      `json:"simulated"`
	Tier      string    `json:"tier"`
	Reseeded  bool      `json:"reseeded,omitempty"`
	Time      time.Time `json:"time"`
}

func (PriceEvent) EventName() string { return "price" }

// SelectionEvent is published when the session switches to a new date or
// event. Generation identifies the new session state.
type SelectionEvent struct {
	Generation uint64    `json:"generation"`
	DateKey    string    `json:"date"`
	EventIDs   []string  `json:"event_ids"`
	Time       time.Time `json:"time"`
}

func (SelectionEvent) EventName() string { return "selection" }

// BriefEvent reports the outcome of a brief request.
type BriefEvent struct {
	Generation uint64        `json:"generation"`
	Source     string        `json:"source"`
	Text       string        `json:"text,omitempty"`
	Err        string        `json:"error,omitempty"`
	Latency    time.Duration `json:"latency"`
}

func (BriefEvent) EventName() string { return "brief" }

// ConfirmEvent reports the outcome of a dispatch confirmation. Payload holds
// the JSON dispatch command when Accepted is true.
type ConfirmEvent struct {
	Generation   uint64          `json:"generation"`
	DispatchID   string          `json:"dispatch_id"`
	Accepted     bool            `json:"accepted"`
	Batteries    int             `json:"batteries"`
	Zones        []string        `json:"zones"`
	TotalCapture float64         `json:"total_capture"`
	Payload      json.RawMessage `json:"payload,omitempty"`
	Err          string          `json:"error,omitempty"`
	Stale        bool            `json:"stale,omitempty"`
	Latency      time.Duration   `json:"latency"`
	Time         time.Time       `json:"time"`
}

func (ConfirmEvent) EventName() string { return "confirm" }

// ClusterActivatedEvent is published for each cluster joining the rollout.
type ClusterActivatedEvent struct {
	Generation uint64 `json:"generation"`
	DispatchID string `json:"dispatch_id"`
	ClusterID  string `json:"cluster_id"`
	Zone       string `json:"zone"`
	Units      int    `json:"units"`
	Index      int    `json:"index"`
	Total      int    `json:"total"`
	Activating int    `json:"activating"`
}

func (ClusterActivatedEvent) EventName() string { return "cluster" }

// PhaseEvent marks the later rollout phases. Phase 3 means the dispatch is
// active and accrual started.
type PhaseEvent struct {
	Generation uint64 `json:"generation"`
	DispatchID string `json:"dispatch_id"`
	Phase      int    `json:"phase"`
}

func (PhaseEvent) EventName() string { return "phase" }

// AccrualEvent carries the running revenue of the active dispatch.
type AccrualEvent struct {
	Generation uint64  `json:"generation"`
	DispatchID string  `json:"dispatch_id"`
	Tick       int     `json:"tick"`
	Increment  float64 `json:"increment"`
	Revenue    float64 `json:"revenue"`
	Closed     bool    `json:"closed"`
}

func (AccrualEvent) EventName() string { return "accrual" }
