package schedule

import "github.com/martinmn/defsched/core/model"

// ScheduledEvent is published when a request or group receives a panel.
type ScheduledEvent struct {
	RunID     string
	RequestID string
	GroupID   string
	Slot      string
	Status    model.Status
	Panel     model.Panel
	Tier      int
}

// FallbackEvent is published when the field-constrained tier fails and the
// engine drops to the time-only tier.
type FallbackEvent struct {
	RunID     string
	RequestID string
	Reason    string
}

// UnresolvedSupervisorEvent is published when a supervisor reference cannot
// be matched to any examiner.
type UnresolvedSupervisorEvent struct {
	RunID     string
	RequestID string
	Reference string
}

// FailedEvent is published when both tiers are exhausted.
type FailedEvent struct {
	RunID     string
	RequestID string
	GroupID   string
	Reason    string
}
