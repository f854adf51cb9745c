package dispatch

import (
	"github.com/kilianp07/gridpulse/core/impact"
	"github.com/kilianp07/gridpulse/core/model"
)

// State is the position of the session in the dispatch lifecycle.
type State int

const (
	Idle State = iota
	BriefPending
	BriefReady
	BriefFailed
	Confirming
	Confirmed
	Animating
	AccrualClosed
)

var stateNames = [...]string{
	Idle:          "idle",
	BriefPending:  "brief_pending",
	BriefReady:    "brief_ready",
	BriefFailed:   "brief_failed",
	Confirming:    "confirming",
	Confirmed:     "confirmed",
	Animating:     "animating",
	AccrualClosed: "accrual_closed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// MarshalText renders the state name in JSON.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s State) canRequestBrief() bool {
	switch s {
	case Idle, BriefPending, BriefReady, BriefFailed:
		return true
	}
	return false
}

// Snapshot is a copy of the session visible to callers.
type Snapshot struct {
	Generation       uint64        `json:"generation"`
	State            State         `json:"state"`
	DateKey          string        `json:"date,omitempty"`
	Events           []model.Event `json:"events"`
	Stats            impact.Stats  `json:"stats"`
	Price            float64       `json:"price"`
	ProjectedRevenue float64       `json:"projected_revenue"`
	UpcomingDates    int           `json:"upcoming_dates"`
	Brief            string        `json:"brief,omitempty"`
	BriefError       string        `json:"brief_error,omitempty"`
	BriefLoading     bool          `json:"brief_loading"`
	ConfirmLoading   bool          `json:"confirm_loading"`
	Confirmed        bool          `json:"confirmed"`
	ConfirmError     string        `json:"confirm_error,omitempty"`
	Command          *Command      `json:"command,omitempty"`
	Activating       int           `json:"activating"`
	ActiveClusters   []string      `json:"active_clusters"`
	Phase            int           `json:"phase"`
	DispatchActive   bool          `json:"dispatch_active"`
	Revenue          float64       `json:"revenue"`
	AccrualTicks     int           `json:"accrual_ticks"`
	AccrualClosed    bool          `json:"accrual_closed"`
}
