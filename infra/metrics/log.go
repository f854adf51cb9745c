package metrics

import (
	coremetrics "github.com/kilianp07/gridpulse/core/metrics"
	"github.com/kilianp07/gridpulse/infra/logger"
)

// LogSink writes every record as a structured log line. It suits headless
// runs where no metrics backend is available.
type LogSink struct {
	log logger.Logger
}

// NewLogSink returns a LogSink on log, or on the "metrics" component logger
// when log is nil.
func NewLogSink(log logger.Logger) *LogSink {
	if log == nil {
		log = logger.New("metrics")
	}
	return &LogSink{log: log}
}

func (s *LogSink) RecordDispatch(rec coremetrics.DispatchRecord) error {
	s.log.Infow("dispatch", map[string]any{
		"dispatch_id": rec.DispatchID,
		"date":        rec.DateKey,
		"accepted":    rec.Accepted,
		"batteries":   rec.Batteries,
		"zones":       rec.Zones,
		"capture_usd": rec.TotalCapture,
		"latency_ms":  rec.Latency.Milliseconds(),
	})
	return nil
}

func (s *LogSink) RecordPrice(ps coremetrics.PriceSample) error {
	s.log.Debugw("price", map[string]any{"usd_mwh": ps.Price, "simulated": ps.Simulated, "tier": ps.Tier})
	return nil
}

func (s *LogSink) RecordBrief(rec coremetrics.BriefRecord) error {
	s.log.Infow("brief", map[string]any{"source": rec.Source, "success": rec.Success, "latency_ms": rec.Latency.Milliseconds()})
	return nil
}

func (s *LogSink) RecordClusterActivation(ev coremetrics.ClusterActivation) error {
	s.log.Debugw("cluster", map[string]any{"dispatch_id": ev.DispatchID, "cluster_id": ev.ClusterID, "zone": ev.Zone, "units": ev.Units})
	return nil
}

func (s *LogSink) RecordAccrual(as coremetrics.AccrualSample) error {
	s.log.Debugw("accrual", map[string]any{"dispatch_id": as.DispatchID, "increment_usd": as.Increment, "total_usd": as.Total})
	return nil
}
