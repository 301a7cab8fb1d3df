package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/martinmn/defsched/core/model"
	"github.com/martinmn/defsched/core/schedule"
)

func TestWriteResultsCSV(t *testing.T) {
	results := []model.Result{
		{
			RequestID: "1101",
			Name:      "Ana",
			Status:    model.StatusFieldAndTime,
			Slot:      "20250610_0800",
			Slots:     []string{"20250610_0800", "20250610_0830"},
			Examiner1: "E1",
			Examiner2: "E2",
			Panel: model.Panel{Members: []model.PanelMember{
				{Code: "S1", Role: model.RoleSupervisor},
				{Code: "E1", Role: model.RoleExaminer},
				{Code: "E2", Role: model.RoleExaminer},
			}},
		},
		{
			RequestID: "1102",
			Name:      "Ben",
			Status:    model.StatusNotScheduled,
			Reason:    "no common free slot of required length",
			Examiner1: model.NoneExaminer,
			Examiner2: model.NoneExaminer,
		},
	}

	var buf bytes.Buffer
	if err := WriteResultsCSV(&buf, results); err != nil {
		t.Fatalf("WriteResultsCSV: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows", len(rows))
	}
	if rows[1][3] != "Field and Time Match" || rows[1][4] != "20250610_0800" {
		t.Errorf("scheduled row = %v", rows[1])
	}
	if rows[1][8] != "S1 | E1 | E2" {
		t.Errorf("panel cell = %q", rows[1][8])
	}
	if !strings.HasPrefix(rows[2][4], "NOT_SCHEDULED: ") {
		t.Errorf("unscheduled slot cell = %q", rows[2][4])
	}
	if rows[2][6] != model.NoneExaminer {
		t.Errorf("unscheduled examiner cell = %q", rows[2][6])
	}
}

func TestWriteOccupancyCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteOccupancyCSV(&buf, []schedule.SlotOccupancy{
		{Slot: "20250610_0800", Sessions: []string{"1101", "C01"}, Count: 2},
	})
	if err != nil {
		t.Fatalf("WriteOccupancyCSV: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if rows[1][1] != "1101 | C01" || rows[1][2] != "2" {
		t.Errorf("row = %v", rows[1])
	}
}

func TestWriteExaminerScheduleCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteExaminerScheduleCSV(&buf, []schedule.ExaminerSchedule{
		{Code: "E1", Name: "Dr. One", Assignments: 2, Slots: []string{"20250610_0800", "20250610_0900"}},
	})
	if err != nil {
		t.Fatalf("WriteExaminerScheduleCSV: %v", err)
	}
	if !strings.Contains(buf.String(), "E1,Dr. One,2,20250610_0800 | 20250610_0900") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestWriteSummaryJSON(t *testing.T) {
	var buf bytes.Buffer
	err := WriteSummaryJSON(&buf, schedule.Summary{RunID: "r1", Requests: 3, FieldAndTime: 2, NotScheduled: 1})
	if err != nil {
		t.Fatalf("WriteSummaryJSON: %v", err)
	}
	if !strings.Contains(buf.String(), `"Requests": 3`) {
		t.Errorf("output = %s", buf.String())
	}
}
