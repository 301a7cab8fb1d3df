// Package export writes scheduling run outputs as CSV and JSON tables.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/martinmn/defsched/core/model"
	"github.com/martinmn/defsched/core/schedule"
)

// seatSeparator joins multi-value cells, e.g. "E1 | E2".
const seatSeparator = " | "

// WriteResultsJSON writes the result rows to w in JSON format.
func WriteResultsJSON(w io.Writer, results []model.Result) error {
	enc := json.NewEncoder(w)
	return enc.Encode(results)
}

// WriteResultsCSV writes one row per request. Unscheduled rows carry the
// failure reason in the slot column so a reviewer sees it without opening
// another table.
func WriteResultsCSV(w io.Writer, results []model.Result) error {
	cw := csv.NewWriter(w)
	header := []string{"student_id", "name", "group_code", "status", "slot", "duration_slots", "examiner_1", "examiner_2", "panel"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range results {
		slot := r.Slot
		if !r.Scheduled() {
			slot = "NOT_SCHEDULED: " + r.Reason
		}
		rec := []string{
			r.RequestID,
			r.Name,
			r.GroupID,
			r.Status.String(),
			slot,
			strconv.Itoa(len(r.Slots)),
			r.Examiner1,
			r.Examiner2,
			strings.Join(r.Panel.Codes(), seatSeparator),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteOccupancyCSV writes the per-slot session table.
func WriteOccupancyCSV(w io.Writer, rows []schedule.SlotOccupancy) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"slot", "sessions", "count"}); err != nil {
		return err
	}
	for _, row := range rows {
		rec := []string{row.Slot, strings.Join(row.Sessions, seatSeparator), strconv.Itoa(row.Count)}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteExaminerScheduleCSV writes the per-examiner view of the run.
func WriteExaminerScheduleCSV(w io.Writer, rows []schedule.ExaminerSchedule) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"code", "name", "assignments", "slots"}); err != nil {
		return err
	}
	for _, row := range rows {
		rec := []string{row.Code, row.Name, strconv.Itoa(row.Assignments), strings.Join(row.Slots, seatSeparator)}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSummaryJSON writes the run summary.
func WriteSummaryJSON(w io.Writer, s schedule.Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
