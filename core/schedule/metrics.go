package schedule

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	panelsScheduled *prometheus.CounterVec
	tierFallbacks   prometheus.Counter
	duplicateRows   prometheus.Counter
	slotScanDepth   prometheus.Histogram
	tier2Combos     prometheus.Histogram
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, prometheus.Counter, prometheus.Counter, prometheus.Histogram, prometheus.Histogram) {
	panels := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "defense_panels_total",
			Help: "Number of finalized scheduling decisions",
		},
		[]string{"status"},
	)
	fallbacks := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "defense_tier2_fallback_total",
			Help: "Number of requests that fell back to time-only matching",
		},
	)
	dups := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "defense_duplicate_results_total",
			Help: "Number of duplicate result rows dropped by the compiler",
		},
	)
	scan := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "defense_slot_scan_depth",
			Help:    "Start slots examined before a feasible run was found",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)
	combos := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "defense_tier2_combinations_evaluated",
			Help:    "Examiner combinations evaluated in the time-only tier",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)
	return panels, fallbacks, dups, scan, combos
}

func init() {
	panelsScheduled, tierFallbacks, duplicateRows, slotScanDepth, tier2Combos = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers scheduling metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(panelsScheduled, tierFallbacks, duplicateRows, slotScanDepth, tier2Combos)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	panelsScheduled, tierFallbacks, duplicateRows, slotScanDepth, tier2Combos = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
