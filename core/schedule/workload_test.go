package schedule

import (
	"math"
	"testing"

	"github.com/martinmn/defsched/core/model"
)

func TestWorkloadTracker(t *testing.T) {
	exs := []*model.Examiner{{Code: "E1"}, {Code: "E2"}}
	w := NewWorkloadTracker(exs)
	if got := w.Count("E1"); got != 0 {
		t.Fatalf("initial count = %d", got)
	}
	w.Increment("E1")
	w.Increment("E1")
	if got := w.Count("E1"); got != 2 {
		t.Errorf("count = %d, want 2", got)
	}
	snap := w.Snapshot()
	snap["E1"] = 99
	if w.Count("E1") != 2 {
		t.Error("snapshot must be a copy")
	}
}

func TestWorkloadReport(t *testing.T) {
	exs := []*model.Examiner{{Code: "E1"}, {Code: "E2"}}
	w := NewWorkloadTracker(exs)
	w.Increment("E2")
	w.Increment("E2")

	rep := w.Report()
	if rep.Min != 0 || rep.Max != 2 {
		t.Errorf("min/max = %d/%d, want 0/2", rep.Min, rep.Max)
	}
	if rep.Mean != 1 {
		t.Errorf("mean = %f, want 1", rep.Mean)
	}
	if math.Abs(rep.StdDev-math.Sqrt2) > 1e-9 {
		t.Errorf("stddev = %f, want %f", rep.StdDev, math.Sqrt2)
	}
	if rep.PerExaminer["E2"] != 2 {
		t.Errorf("per-examiner = %v", rep.PerExaminer)
	}
}
