package schedule

import (
	"fmt"
	"sort"
	"time"
)

// slotLayout is the reference layout for slot identifiers, e.g. "20250610_0800".
const slotLayout = "20060102_1504"

// SlotID formats a point in time as a slot identifier.
func SlotID(t time.Time) string {
	return t.Format(slotLayout)
}

// ParseSlotID parses a slot identifier back into a time.
func ParseSlotID(id string) (time.Time, error) {
	t, err := time.Parse(slotLayout, id)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid slot id %q: %w", id, err)
	}
	return t, nil
}

// Subdivide expands one coarse input slot into the internal slots that cover
// it. The input grid is coarser than the internal one (e.g. 60-minute columns
// over 30-minute internal units); every internal slot inherits the coarse
// slot's availability value.
func Subdivide(id string, inputStep, step time.Duration) ([]string, error) {
	if step <= 0 || inputStep <= 0 {
		return nil, fmt.Errorf("slot steps must be positive")
	}
	if inputStep%step != 0 {
		return nil, fmt.Errorf("input step %v not divisible by internal step %v", inputStep, step)
	}
	start, err := ParseSlotID(id)
	if err != nil {
		return nil, err
	}
	n := int(inputStep / step)
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, SlotID(start.Add(time.Duration(i)*step)))
	}
	return out, nil
}

// Horizon is the ordered set of internal slots a run may schedule into.
type Horizon struct {
	slots []string
	times []time.Time
	index map[string]int
	step  time.Duration
}

// HorizonConfig bounds a generated horizon: consecutive days from First to
// Last inclusive, slots from DayStart (minutes from midnight) up to DayEnd.
type HorizonConfig struct {
	First    time.Time
	Last     time.Time
	DayStart time.Duration
	DayEnd   time.Duration
	Step     time.Duration
}

// NewHorizon generates the slot grid described by cfg.
func NewHorizon(cfg HorizonConfig) (*Horizon, error) {
	if cfg.Step <= 0 {
		return nil, fmt.Errorf("horizon step must be positive")
	}
	if cfg.DayEnd <= cfg.DayStart {
		return nil, fmt.Errorf("horizon day window is empty")
	}
	if cfg.Last.Before(cfg.First) {
		return nil, fmt.Errorf("horizon ends before it starts")
	}
	var ids []string
	first := time.Date(cfg.First.Year(), cfg.First.Month(), cfg.First.Day(), 0, 0, 0, 0, time.UTC)
	last := time.Date(cfg.Last.Year(), cfg.Last.Month(), cfg.Last.Day(), 0, 0, 0, 0, time.UTC)
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		for off := cfg.DayStart; off < cfg.DayEnd; off += cfg.Step {
			ids = append(ids, SlotID(day.Add(off)))
		}
	}
	return NewHorizonFromSlots(ids, cfg.Step)
}

// NewHorizonFromSlots builds a horizon from explicit slot ids, e.g. the
// column headers of an availability matrix. Ids are sorted chronologically
// and deduplicated.
func NewHorizonFromSlots(ids []string, step time.Duration) (*Horizon, error) {
	if step <= 0 {
		return nil, fmt.Errorf("horizon step must be positive")
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("horizon has no slots")
	}
	seen := make(map[string]struct{}, len(ids))
	h := &Horizon{step: step, index: make(map[string]int, len(ids))}
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		t, err := ParseSlotID(id)
		if err != nil {
			return nil, err
		}
		h.slots = append(h.slots, id)
		h.times = append(h.times, t)
	}
	sort.Sort(bySlotTime{h})
	for i, id := range h.slots {
		h.index[id] = i
	}
	return h, nil
}

type bySlotTime struct{ h *Horizon }

func (s bySlotTime) Len() int           { return len(s.h.slots) }
func (s bySlotTime) Less(i, j int) bool { return s.h.times[i].Before(s.h.times[j]) }
func (s bySlotTime) Swap(i, j int) {
	s.h.slots[i], s.h.slots[j] = s.h.slots[j], s.h.slots[i]
	s.h.times[i], s.h.times[j] = s.h.times[j], s.h.times[i]
}

// Len returns the number of slots in the horizon.
func (h *Horizon) Len() int { return len(h.slots) }

// Slots returns the slot ids in chronological order. The returned slice is
// shared; callers must not modify it.
func (h *Horizon) Slots() []string { return h.slots }

// Step returns the internal slot granularity.
func (h *Horizon) Step() time.Duration { return h.step }

// Contains reports whether the slot id belongs to the horizon.
func (h *Horizon) Contains(id string) bool {
	_, ok := h.index[id]
	return ok
}

// Run returns the contiguous run of length slots starting at index start.
// It fails when the horizon ends too early or the slots are not adjacent in
// real time (a gap between days, or a lunch break carved out of the grid).
func (h *Horizon) Run(start, length int) ([]string, bool) {
	if length <= 0 || start < 0 || start+length > len(h.slots) {
		return nil, false
	}
	for i := 1; i < length; i++ {
		if !h.times[start+i].Equal(h.times[start+i-1].Add(h.step)) {
			return nil, false
		}
	}
	return h.slots[start : start+length], true
}
