package model

import "strings"

// Request is a single defense scheduling request as produced by ingestion.
type Request struct {
	ID    string // requester identity (NIM), unique key for results
	Name  string
	Title string

	Field1 string
	Field2 string

	Supervisor1 string
	Supervisor2 string

	// GroupID links capstone members; empty for individual defenses.
	// All members of a group receive identical panel, slot and status.
	GroupID string
}

// IsGroup reports whether the request belongs to a capstone group.
func (r Request) IsGroup() bool {
	return strings.TrimSpace(r.GroupID) != ""
}

// Fields returns the non-empty required field tags.
func (r Request) Fields() []string {
	var fields []string
	for _, f := range []string{r.Field1, r.Field2} {
		if strings.TrimSpace(f) != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

// Supervisors returns the supervisor references, skipping empty values and
// the "-" placeholder used in the input to mark a missing second supervisor.
func (r Request) Supervisors() []string {
	var sups []string
	for _, s := range []string{r.Supervisor1, r.Supervisor2} {
		s = strings.TrimSpace(s)
		if s != "" && s != "-" {
			sups = append(sups, s)
		}
	}
	return sups
}
