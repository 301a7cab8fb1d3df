package model

// Status is the terminal outcome tag of a scheduling attempt.
type Status int

const (
	StatusNotScheduled Status = iota
	StatusFieldAndTime
	StatusTimeOnly
)

// String returns the status tag used in result tables.
func (s Status) String() string {
	switch s {
	case StatusFieldAndTime:
		return "Field and Time Match"
	case StatusTimeOnly:
		return "Time Match Only"
	case StatusNotScheduled:
		return "Not Scheduled"
	default:
		return "unknown"
	}
}

// NoneExaminer is the placeholder emitted for an unfilled examiner seat.
const NoneExaminer = "NONE"

// Result is the outcome of one request's scheduling attempt.
type Result struct {
	RequestID string
	Name      string
	GroupID   string

	Status Status
	// Reason explains a Not Scheduled status; empty on success.
	Reason string

	// Slot is the id of the first slot of the reserved run; empty when
	// not scheduled. Slots lists the full contiguous run.
	Slot  string
	Slots []string

	Panel Panel

	// Examiner1 and Examiner2 are the recommended examiner seats, filled
	// with NoneExaminer when fewer examiners were selected.
	Examiner1 string
	Examiner2 string
}

// Scheduled reports whether the request received a slot.
func (r Result) Scheduled() bool {
	return r.Status != StatusNotScheduled
}
