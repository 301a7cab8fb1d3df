package schedule

import (
	"errors"
	"fmt"
)

// ErrUnmappedGroupSize is returned when a capstone group size has no entry in
// the duration table and no default duration exists.
var ErrUnmappedGroupSize = errors.New("unmapped group size")

// DurationResolver maps group size to the required contiguous slot count.
type DurationResolver struct {
	defaultSlots int
	bySize       map[int]int
}

// NewDurationResolver builds a resolver from the run configuration.
func NewDurationResolver(cfg Config) *DurationResolver {
	return &DurationResolver{
		defaultSlots: cfg.DefaultSlots,
		bySize:       cfg.groupSlotTable(),
	}
}

// Resolve returns the required slot count for a group of the given size.
// Size 0 or 1 means an individual defense. An unmapped size falls back to
// the default; with no default it is a configuration error.
func (r *DurationResolver) Resolve(groupSize int) (int, error) {
	if groupSize > 1 {
		if slots, ok := r.bySize[groupSize]; ok {
			return slots, nil
		}
	}
	if r.defaultSlots > 0 {
		return r.defaultSlots, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrUnmappedGroupSize, groupSize)
}
