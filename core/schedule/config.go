package schedule

import (
	"fmt"
	"strconv"
)

// Config defines the scheduling parameters of a run.
type Config struct {
	// RequiredExaminers is the number of examiner seats on each panel.
	RequiredExaminers int `json:"required_examiners"`
	// ParallelLimit bounds the number of distinct sessions per slot.
	ParallelLimit int `json:"parallel_limit"`
	// DefaultSlots is the contiguous internal slot count for individual
	// defenses and the fallback for unmapped group sizes. Zero means no
	// default, making unmapped group sizes a configuration error.
	DefaultSlots int `json:"default_slots"`
	// GroupSlots maps capstone group size to required slot count. Keys are
	// strings because they arrive from configuration files.
	GroupSlots map[string]int `json:"group_slots"`
	// Tier2MaxCandidates bounds the candidate list before combination
	// enumeration in the time-only tier. Zero means no bound.
	Tier2MaxCandidates int `json:"tier2_max_candidates"`
	// SlotMinutes is the internal slot granularity.
	SlotMinutes int `json:"slot_minutes"`
	// InputSlotMinutes is the granularity of input availability columns.
	InputSlotMinutes int `json:"input_slot_minutes"`
}

// SetDefaults fills unset fields with the standard values.
func (c *Config) SetDefaults() {
	if c.RequiredExaminers == 0 {
		c.RequiredExaminers = 2
	}
	if c.ParallelLimit == 0 {
		c.ParallelLimit = 1
	}
	if c.DefaultSlots == 0 {
		c.DefaultSlots = 2
	}
	if c.GroupSlots == nil {
		c.GroupSlots = map[string]int{"2": 3, "3": 4, "4": 5}
	}
	if c.Tier2MaxCandidates == 0 {
		c.Tier2MaxCandidates = 16
	}
	if c.SlotMinutes == 0 {
		c.SlotMinutes = 30
	}
	if c.InputSlotMinutes == 0 {
		c.InputSlotMinutes = 60
	}
}

// Validate checks the configuration for inconsistencies.
func (c Config) Validate() error {
	if c.RequiredExaminers < 0 {
		return fmt.Errorf("required_examiners must not be negative")
	}
	if c.ParallelLimit < 1 {
		return fmt.Errorf("parallel_limit must be at least 1")
	}
	if c.SlotMinutes <= 0 || c.InputSlotMinutes <= 0 {
		return fmt.Errorf("slot granularities must be positive")
	}
	if c.InputSlotMinutes%c.SlotMinutes != 0 {
		return fmt.Errorf("input_slot_minutes %d not divisible by slot_minutes %d", c.InputSlotMinutes, c.SlotMinutes)
	}
	for k, v := range c.GroupSlots {
		size, err := strconv.Atoi(k)
		if err != nil || size < 1 {
			return fmt.Errorf("invalid group size key %q", k)
		}
		if v < 1 {
			return fmt.Errorf("group size %s maps to non-positive duration %d", k, v)
		}
	}
	return nil
}

// groupSlotTable converts the string-keyed configuration table.
func (c Config) groupSlotTable() map[int]int {
	table := make(map[int]int, len(c.GroupSlots))
	for k, v := range c.GroupSlots {
		size, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		table[size] = v
	}
	return table
}
