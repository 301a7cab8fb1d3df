package metrics

import (
	"time"

	"github.com/martinmn/defsched/core/model"
)

// ScheduleEvent represents one finalized scheduling decision to be recorded.
type ScheduleEvent struct {
	RunID     string
	RequestID string
	GroupID   string
	Status    model.Status
	Slot      string
	Duration  int // contiguous internal slots reserved
	Tier      int // 1 or 2; 0 when not scheduled
	Reason    string
	Recorded  time.Time
}

// WorkloadSample is a per-examiner assignment count at the end of a run.
type WorkloadSample struct {
	RunID       string
	Code        string
	Assignments int
}

// ScheduleSink records scheduling outcomes for observability purposes.
type ScheduleSink interface {
	RecordScheduleEvents(events []ScheduleEvent) error
}

// WorkloadRecorder is implemented by sinks that also persist the final
// workload distribution of a run.
type WorkloadRecorder interface {
	RecordWorkload(samples []WorkloadSample) error
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) RecordScheduleEvents([]ScheduleEvent) error { return nil }
func (NopSink) RecordWorkload([]WorkloadSample) error      { return nil }

// MultiSink fans events out to several sinks, returning the first error.
type MultiSink struct {
	sinks []ScheduleSink
}

// NewMultiSink combines the given sinks.
func NewMultiSink(sinks ...ScheduleSink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) RecordScheduleEvents(events []ScheduleEvent) error {
	for _, s := range m.sinks {
		if err := s.RecordScheduleEvents(events); err != nil {
			return err
		}
	}
	return nil
}

func (m *MultiSink) RecordWorkload(samples []WorkloadSample) error {
	for _, s := range m.sinks {
		if wr, ok := s.(WorkloadRecorder); ok {
			if err := wr.RecordWorkload(samples); err != nil {
				return err
			}
		}
	}
	return nil
}
