package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/gridpulse/core/metrics"
)

// PromSink records dispatch outcomes and session samples in Prometheus
// collectors.
type PromSink struct {
	dispatches *prometheus.CounterVec
	capture    prometheus.Counter
	batteries  prometheus.Histogram
	briefs     *prometheus.HistogramVec
	clusters   *prometheus.CounterVec
	revenue    *prometheus.GaugeVec
	price      *prometheus.GaugeVec
}

// NewPromSink registers the sink collectors on the default registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered by an earlier sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gridpulse_dispatches_total",
			Help: "Dispatch commands by validation outcome",
		}, []string{"accepted"}),
		capture: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gridpulse_dispatch_capture_usd_total",
			Help: "Estimated capture of accepted dispatches",
		}),
		batteries: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gridpulse_dispatch_batteries",
			Help:    "Batteries per accepted dispatch",
			Buckets: []float64{50, 100, 250, 500, 1000, 2000, 4200},
		}),
		briefs: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gridpulse_brief_latency_seconds",
			Help:    "Brief generation latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"source", "success"}),
		clusters: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gridpulse_cluster_activations_total",
			Help: "Cluster activations by zone",
		}, []string{"zone"}),
		revenue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gridpulse_dispatch_revenue_usd",
			Help: "Running accrued revenue of a dispatch",
		}, []string{"dispatch_id"}),
		price: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gridpulse_market_price_usd_mwh",
			Help: "Latest market price by source",
		}, []string{"simulated"}),
	}
	var err error
	if s.dispatches, err = register(reg, s.dispatches); err != nil {
		return nil, err
	}
	if s.capture, err = register(reg, s.capture); err != nil {
		return nil, err
	}
	if s.batteries, err = register(reg, s.batteries); err != nil {
		return nil, err
	}
	if s.briefs, err = register(reg, s.briefs); err != nil {
		return nil, err
	}
	if s.clusters, err = register(reg, s.clusters); err != nil {
		return nil, err
	}
	if s.revenue, err = register(reg, s.revenue); err != nil {
		return nil, err
	}
	if s.price, err = register(reg, s.price); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (s *PromSink) RecordDispatch(rec coremetrics.DispatchRecord) error {
	s.dispatches.WithLabelValues(strconv.FormatBool(rec.Accepted)).Inc()
	if rec.Accepted {
		s.capture.Add(rec.TotalCapture)
		s.batteries.Observe(float64(rec.Batteries))
	}
	return nil
}

func (s *PromSink) RecordPrice(ps coremetrics.PriceSample) error {
	s.price.WithLabelValues(strconv.FormatBool(ps.Simulated)).Set(ps.Price)
	return nil
}

func (s *PromSink) RecordBrief(rec coremetrics.BriefRecord) error {
	s.briefs.WithLabelValues(rec.Source, strconv.FormatBool(rec.Success)).Observe(rec.Latency.Seconds())
	return nil
}

func (s *PromSink) RecordClusterActivation(ev coremetrics.ClusterActivation) error {
	s.clusters.WithLabelValues(ev.Zone).Inc()
	return nil
}

func (s *PromSink) RecordAccrual(as coremetrics.AccrualSample) error {
	s.revenue.WithLabelValues(as.DispatchID).Set(as.Total)
	return nil
}
