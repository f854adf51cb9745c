package price

import "github.com/prometheus/client_golang/prometheus"

var (
	priceGauge prometheus.Gauge
	ticksTotal prometheus.Counter
	probeTotal *prometheus.CounterVec
)

func newCollectors() (prometheus.Gauge, prometheus.Counter, *prometheus.CounterVec) {
	g := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "price_process_current_usd_mwh",
		Help: "Current synthetic market price",
	})
	t := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "price_process_ticks_total",
		Help: "Number of jitter ticks applied",
	})
	p := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "price_feed_probes_total",
		Help: "Price feed probe outcomes",
	}, []string{"outcome"})
	return g, t, p
}

func init() {
	priceGauge, ticksTotal, probeTotal = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers the price collectors on reg, or on the
// default registerer when reg is nil.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(priceGauge, ticksTotal, probeTotal)
}

// ResetMetrics recreates the collectors for tests and registers them on reg
// when it is not nil.
func ResetMetrics(reg prometheus.Registerer) {
	priceGauge, ticksTotal, probeTotal = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
