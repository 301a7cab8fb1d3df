package schedule

import (
	"testing"

	"github.com/martinmn/defsched/core/model"
)

func TestDedupeKeepLast(t *testing.T) {
	in := []model.Result{
		{RequestID: "R1", Slot: "20250610_0800"},
		{RequestID: "R2", Slot: "20250610_0900"},
		{RequestID: "R1", Slot: "20250610_1000"},
	}
	out, dropped := dedupeKeepLast(in)
	if dropped != 1 {
		t.Fatalf("dropped = %d, want 1", dropped)
	}
	if len(out) != 2 || out[0].RequestID != "R2" || out[1].RequestID != "R1" {
		t.Fatalf("rows = %v", out)
	}
	// The later submission survives at its later position.
	if out[1].Slot != "20250610_1000" {
		t.Errorf("kept slot = %s, want the later row", out[1].Slot)
	}
}

func TestCompile(t *testing.T) {
	h := testHorizon(t, 4)
	exs := []*model.Examiner{
		{Code: "E1", Name: "Dr. One", Expertise: []string{"AI"}, Availability: availAll(h)},
		{Code: "E2", Name: "Dr. Two", Expertise: []string{"Data"}, Availability: availAll(h)},
		{Code: "E3", Name: "Dr. Three", Availability: availAll(h)},
	}
	e := newTestEngine(t, defaultConfig(), h, exs)

	results, err := e.ScheduleAll([]model.Request{
		{ID: "R1", Name: "Ana", Field1: "AI", Field2: "Data"},
		{ID: "R2", Name: "Ben", Field1: "AI", Field2: "Data"},
		{ID: "R1", Name: "Ana", Field1: "AI", Field2: "Data"}, // resubmission
	})
	if err != nil {
		t.Fatalf("ScheduleAll: %v", err)
	}

	c := Compile(e, results)
	if c.Duplicates != 1 {
		t.Fatalf("duplicates = %d", c.Duplicates)
	}
	if len(c.Results) != 2 || c.Results[0].RequestID != "R2" || c.Results[1].RequestID != "R1" {
		t.Fatalf("results = %v", c.Results)
	}
	if c.Summary.Requests != 2 || c.Summary.RunID != e.RunID() {
		t.Errorf("summary = %+v", c.Summary)
	}
	if c.Summary.FieldAndTime+c.Summary.TimeOnly+c.Summary.NotScheduled != 2 {
		t.Errorf("status counts do not add up: %+v", c.Summary)
	}

	if len(c.Occupancy) == 0 {
		t.Fatal("occupancy table empty")
	}
	for _, row := range c.Occupancy {
		if row.Count != len(row.Sessions) || row.Count < 1 {
			t.Errorf("occupancy row %s inconsistent: %+v", row.Slot, row)
		}
	}

	byCode := make(map[string]ExaminerSchedule)
	for _, row := range c.Examiners {
		byCode[row.Code] = row
	}
	if row := byCode["E1"]; row.Assignments != e.Workloads().Count("E1") {
		t.Errorf("examiner row = %+v", row)
	}
	if row := byCode["E1"]; row.Assignments > 0 && len(row.Slots) == 0 {
		t.Error("assigned examiner has no occupied slots")
	}
}
