package metrics

// MultiSink fans records out to multiple sinks. Optional recorder interfaces
// are forwarded only to the sinks implementing them.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordDispatch forwards the record to all sinks, returning the first error
// encountered.
func (m *MultiSink) RecordDispatch(rec DispatchRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordDispatch(rec); err != nil {
			return err
		}
	}
	return nil
}

// RecordPrice forwards price samples.
func (m *MultiSink) RecordPrice(ps PriceSample) error {
	for _, s := range m.Sinks {
		if r, ok := s.(PriceRecorder); ok {
			if err := r.RecordPrice(ps); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordBrief forwards brief attempts.
func (m *MultiSink) RecordBrief(rec BriefRecord) error {
	for _, s := range m.Sinks {
		if r, ok := s.(BriefRecorder); ok {
			if err := r.RecordBrief(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordClusterActivation forwards cluster activations.
func (m *MultiSink) RecordClusterActivation(ev ClusterActivation) error {
	for _, s := range m.Sinks {
		if r, ok := s.(ClusterRecorder); ok {
			if err := r.RecordClusterActivation(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordAccrual forwards accrual ticks.
func (m *MultiSink) RecordAccrual(as AccrualSample) error {
	for _, s := range m.Sinks {
		if r, ok := s.(AccrualRecorder); ok {
			if err := r.RecordAccrual(as); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close closes every sink that holds resources.
func (m *MultiSink) Close() {
	for _, s := range m.Sinks {
		if c, ok := s.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
