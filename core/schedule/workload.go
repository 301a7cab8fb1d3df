package schedule

import (
	"gonum.org/v1/gonum/stat"

	"github.com/martinmn/defsched/core/model"
)

// WorkloadTracker keeps per-examiner assignment counts for the fairness
// tie-break. Counts start at zero and only ever increase during a run.
type WorkloadTracker struct {
	counts map[string]int
}

// NewWorkloadTracker initializes zero counts for all known examiners.
func NewWorkloadTracker(examiners []*model.Examiner) *WorkloadTracker {
	counts := make(map[string]int, len(examiners))
	for _, e := range examiners {
		counts[e.Code] = 0
	}
	return &WorkloadTracker{counts: counts}
}

// Count returns the current assignment count for the examiner.
func (w *WorkloadTracker) Count(code string) int {
	return w.counts[code]
}

// Increment records one committed panel membership for the examiner.
func (w *WorkloadTracker) Increment(code string) {
	w.counts[code]++
}

// Snapshot returns a copy of the per-examiner counts.
func (w *WorkloadTracker) Snapshot() map[string]int {
	out := make(map[string]int, len(w.counts))
	for k, v := range w.counts {
		out[k] = v
	}
	return out
}

// WorkloadReport summarizes the assignment distribution at the end of a run.
type WorkloadReport struct {
	Min         int
	Max         int
	Mean        float64
	StdDev      float64
	PerExaminer map[string]int
}

// Report computes the distribution summary over all tracked examiners.
func (w *WorkloadTracker) Report() WorkloadReport {
	rep := WorkloadReport{PerExaminer: w.Snapshot()}
	if len(w.counts) == 0 {
		return rep
	}
	vals := make([]float64, 0, len(w.counts))
	first := true
	for _, c := range w.counts {
		if first || c < rep.Min {
			rep.Min = c
		}
		if first || c > rep.Max {
			rep.Max = c
		}
		first = false
		vals = append(vals, float64(c))
	}
	rep.Mean = stat.Mean(vals, nil)
	if len(vals) > 1 {
		rep.StdDev = stat.StdDev(vals, nil)
	}
	return rep
}
