package model

import "strings"

// Examiner represents a committee member that can sit on defense panels.
// Identity and expertise are fixed at load time; only the assignment count
// changes during a scheduling run.
type Examiner struct {
	Code      string
	Name      string
	Expertise []string

	// Availability maps internal slot ids to declared availability.
	// Missing slots count as unavailable.
	Availability map[string]bool

	// Order is the position of the examiner in the input, used as the
	// stable tie-break when workloads are equal.
	Order int
}

// AvailableAt reports whether the examiner declared availability for slot.
func (e *Examiner) AvailableAt(slot string) bool {
	return e.Availability[slot]
}

// HasExpertise reports whether the examiner carries the given field tag.
// Matching is case-insensitive; empty fields never match.
func (e *Examiner) HasExpertise(field string) bool {
	if field == "" {
		return false
	}
	for _, exp := range e.Expertise {
		if strings.EqualFold(exp, field) {
			return true
		}
	}
	return false
}
