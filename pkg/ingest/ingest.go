// Package ingest reads the cleaned availability matrix and defense request
// list. Both files are plain CSV with a single header row; the cleanup of
// raw exports (merged header rows, renamed columns) happens upstream.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/martinmn/defsched/core/model"
	"github.com/martinmn/defsched/core/schedule"
)

const (
	codeColumn      = "code"
	nameColumn      = "name"
	expertisePrefix = "expertise_"

	requestIDColumn   = "student_id"
	requestNameColumn = "name"
	titleColumn       = "title"
	groupColumn       = "group_code"
	field1Column      = "field_1"
	field2Column      = "field_2"
	spv1Column        = "supervisor_1"
	spv2Column        = "supervisor_2"
)

// ReadExaminers parses the availability matrix. Columns are detected by
// header: "code" and "name" identify the examiner, "expertise_N" columns
// carry field tags, and any column parseable as a slot id is an availability
// column on the input granularity. Input slots are subdivided to the
// internal granularity, and the horizon is the union of all subdivided
// slots.
func ReadExaminers(r io.Reader, inputStep, step time.Duration) ([]*model.Examiner, *schedule.Horizon, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("availability header: %w", err)
	}

	codeIdx, nameIdx := -1, -1
	var expertiseIdx []int
	type slotColumn struct {
		idx   int
		slots []string
	}
	var slotCols []slotColumn
	var horizonIDs []string
	for i, col := range header {
		col = strings.TrimSpace(col)
		switch {
		case strings.EqualFold(col, codeColumn):
			codeIdx = i
		case strings.EqualFold(col, nameColumn):
			nameIdx = i
		case strings.HasPrefix(strings.ToLower(col), expertisePrefix):
			expertiseIdx = append(expertiseIdx, i)
		default:
			if _, err := schedule.ParseSlotID(col); err != nil {
				continue
			}
			sub, err := schedule.Subdivide(col, inputStep, step)
			if err != nil {
				return nil, nil, fmt.Errorf("column %s: %w", col, err)
			}
			slotCols = append(slotCols, slotColumn{idx: i, slots: sub})
			horizonIDs = append(horizonIDs, sub...)
		}
	}
	if codeIdx < 0 {
		return nil, nil, fmt.Errorf("availability matrix has no %q column", codeColumn)
	}
	if len(slotCols) == 0 {
		return nil, nil, fmt.Errorf("availability matrix has no slot columns")
	}

	var examiners []*model.Examiner
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("availability line %d: %w", line, err)
		}
		code := strings.TrimSpace(rec[codeIdx])
		if code == "" {
			continue
		}
		ex := &model.Examiner{Code: code, Availability: make(map[string]bool)}
		if nameIdx >= 0 {
			ex.Name = strings.TrimSpace(rec[nameIdx])
		}
		for _, i := range expertiseIdx {
			if v := strings.TrimSpace(rec[i]); v != "" {
				ex.Expertise = append(ex.Expertise, v)
			}
		}
		for _, sc := range slotCols {
			avail := truthy(rec[sc.idx])
			for _, slot := range sc.slots {
				ex.Availability[slot] = avail
			}
		}
		examiners = append(examiners, ex)
	}

	h, err := schedule.NewHorizonFromSlots(horizonIDs, step)
	if err != nil {
		return nil, nil, err
	}
	return examiners, h, nil
}

// ReadRequests parses the defense request list. Duplicate submissions are
// not dropped here; the result compiler resolves them keeping the latest.
func ReadRequests(r io.Reader) ([]model.Request, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("request header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[strings.ToLower(strings.TrimSpace(col))] = i
	}
	if _, ok := idx[requestIDColumn]; !ok {
		return nil, fmt.Errorf("request list has no %q column", requestIDColumn)
	}
	field := func(rec []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var requests []model.Request
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("request line %d: %w", line, err)
		}
		id := field(rec, requestIDColumn)
		if id == "" {
			continue
		}
		requests = append(requests, model.Request{
			ID:          id,
			Name:        field(rec, requestNameColumn),
			Title:       field(rec, titleColumn),
			Field1:      field(rec, field1Column),
			Field2:      field(rec, field2Column),
			Supervisor1: field(rec, spv1Column),
			Supervisor2: field(rec, spv2Column),
			GroupID:     field(rec, groupColumn),
		})
	}
	return requests, nil
}

// LoadExaminers reads the availability matrix from a file.
func LoadExaminers(path string, inputStep, step time.Duration) ([]*model.Examiner, *schedule.Horizon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return ReadExaminers(f, inputStep, step)
}

// LoadRequests reads the request list from a file.
func LoadRequests(path string) ([]model.Request, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadRequests(f)
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "x":
		return true
	}
	return false
}
