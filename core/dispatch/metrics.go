package dispatch

import "github.com/prometheus/client_golang/prometheus"

var (
	selectionsTotal   prometheus.Counter
	briefsTotal       *prometheus.CounterVec
	confirmsTotal     *prometheus.CounterVec
	staleCallbacks    prometheus.Counter
	timersCancelled   prometheus.Counter
	clustersActivated prometheus.Counter
	accruedRevenue    prometheus.Counter
)

func newCollectors() {
	selectionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_selections_total",
		Help: "Number of date or event selections",
	})
	briefsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_briefs_total",
		Help: "Brief requests by source and outcome",
	}, []string{"source", "outcome"})
	confirmsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_confirmations_total",
		Help: "Dispatch confirmations by outcome",
	}, []string{"outcome"})
	staleCallbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_stale_callbacks_total",
		Help: "Timer callbacks dropped because the selection changed",
	})
	timersCancelled = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_timers_cancelled_total",
		Help: "Rollout and accrual timers cancelled on reset",
	})
	clustersActivated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_clusters_activated_total",
		Help: "Battery clusters activated across rollouts",
	})
	accruedRevenue = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_accrued_revenue_usd_total",
		Help: "Revenue accrued by active dispatches",
	})
}

func init() {
	newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers the dispatch collectors on reg, or on the
// default registerer when reg is nil.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(selectionsTotal, briefsTotal, confirmsTotal, staleCallbacks,
		timersCancelled, clustersActivated, accruedRevenue)
}

// ResetMetrics recreates the collectors for tests and registers them on reg
// when it is not nil.
func ResetMetrics(reg prometheus.Registerer) {
	newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
