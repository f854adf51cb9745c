package metrics

import "time"

// DispatchRecord describes a confirmed (or rejected) dispatch command.
type DispatchRecord struct {
	DispatchID   string
	DateKey      string
	Batteries    int
	Zones        []string
	Spread       float64
	TotalCapture float64
	DemandMW     float64
	Accepted     bool
	Latency      time.Duration
	Time         time.Time
}

// MetricsSink records dispatch outcomes for observability purposes.
type MetricsSink interface {
	RecordDispatch(rec DispatchRecord) error
}

// PriceSample is one observation of the market price process.
type PriceSample struct {
	Price     float64
	Simulated bool
	Tier      string
	Time      time.Time
}

// PriceRecorder records price samples.
type PriceRecorder interface {
	RecordPrice(s PriceSample) error
}

// BriefRecord captures a brief generation attempt.
type BriefRecord struct {
	Source  string
	Success bool
	Latency time.Duration
	Time    time.Time
}

// BriefRecorder records brief generation attempts.
type BriefRecorder interface {
	RecordBrief(rec BriefRecord) error
}

// ClusterActivation is emitted when a battery cluster joins a rollout.
type ClusterActivation struct {
	DispatchID string
	ClusterID  string
	Zone       string
	Units      int
	Time       time.Time
}

// ClusterRecorder records cluster activations.
type ClusterRecorder interface {
	RecordClusterActivation(ev ClusterActivation) error
}

// AccrualSample is one revenue accrual tick.
type AccrualSample struct {
	DispatchID string
	Increment  float64
	Total      float64
	Time       time.Time
}

// AccrualRecorder records revenue accrual ticks.
type AccrualRecorder interface {
	RecordAccrual(s AccrualSample) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordDispatch(DispatchRecord) error             { return nil }
func (NopSink) RecordPrice(PriceSample) error                   { return nil }
func (NopSink) RecordBrief(BriefRecord) error                   { return nil }
func (NopSink) RecordClusterActivation(ClusterActivation) error { return nil }
func (NopSink) RecordAccrual(AccrualSample) error               { return nil }
