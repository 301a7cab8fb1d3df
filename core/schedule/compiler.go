package schedule

import (
	"sort"

	"github.com/martinmn/defsched/core/model"
)

// Compiled is the final output of a scheduling run: the deduplicated result
// rows plus the derived occupancy and per-examiner tables.
type Compiled struct {
	Results    []model.Result
	Duplicates int
	Occupancy  []SlotOccupancy
	Examiners  []ExaminerSchedule
	Summary    Summary
}

// SlotOccupancy lists the sessions held in one slot.
type SlotOccupancy struct {
	Slot     string
	Sessions []string
	Count    int
}

// ExaminerSchedule is one examiner's view of the run: the slots they occupy
// and the number of examiner-seat assignments they accrued.
type ExaminerSchedule struct {
	Code        string
	Name        string
	Slots       []string
	Assignments int
}

// Summary aggregates a run for reporting.
type Summary struct {
	RunID        string
	Requests     int
	Duplicates   int
	FieldAndTime int
	TimeOnly     int
	NotScheduled int
	Workload     WorkloadReport
}

// Compile deduplicates the raw results and derives the occupancy, examiner
// and summary tables from the engine's final state.
//
// Duplicate submissions keep the last occurrence: when several rows share a
// requester id, the latest row survives at its own position and the earlier
// ones are dropped. Rows with distinct ids keep their input order.
func Compile(e *Engine, results []model.Result) Compiled {
	deduped, dropped := dedupeKeepLast(results)
	duplicateRows.Add(float64(dropped))

	c := Compiled{
		Results:    deduped,
		Duplicates: dropped,
	}

	for _, slot := range e.grid.UsedSlots() {
		sessions := e.grid.Sessions(slot)
		c.Occupancy = append(c.Occupancy, SlotOccupancy{
			Slot:     slot,
			Sessions: sessions,
			Count:    len(sessions),
		})
	}

	for _, ex := range e.examiners {
		row := ExaminerSchedule{
			Code:        ex.Code,
			Name:        ex.Name,
			Assignments: e.loads.Count(ex.Code),
		}
		for _, slot := range e.grid.UsedSlots() {
			if e.grid.Occupies(slot, ex.Code) {
				row.Slots = append(row.Slots, slot)
			}
		}
		sort.Strings(row.Slots)
		c.Examiners = append(c.Examiners, row)
	}

	c.Summary = Summary{
		RunID:      e.runID,
		Requests:   len(deduped),
		Duplicates: dropped,
		Workload:   e.loads.Report(),
	}
	for _, r := range deduped {
		switch r.Status {
		case model.StatusFieldAndTime:
			c.Summary.FieldAndTime++
		case model.StatusTimeOnly:
			c.Summary.TimeOnly++
		default:
			c.Summary.NotScheduled++
		}
	}
	return c
}

// dedupeKeepLast removes earlier rows sharing a requester id with a later
// one. The surviving row keeps its own (later) position.
func dedupeKeepLast(results []model.Result) ([]model.Result, int) {
	seen := make(map[string]bool, len(results))
	kept := make([]model.Result, 0, len(results))
	for i := len(results) - 1; i >= 0; i-- {
		if seen[results[i].RequestID] {
			continue
		}
		seen[results[i].RequestID] = true
		kept = append(kept, results[i])
	}
	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}
	return kept, len(results) - len(kept)
}
