package schedule

import (
	"sort"
	"sync"
)

// Grid is the authoritative occupancy state of the slot horizon. Each slot
// holds up to the parallel limit of distinct sessions, and an identity may
// occupy a slot at most once regardless of session.
//
// Feasibility checking and reservation are exposed separately for read-only
// scans, but TryReserve re-validates under the same lock before writing, so
// check-and-reserve is one atomic step for concurrent callers.
type Grid struct {
	mu        sync.Mutex
	limit     int
	occupants map[string]map[string]struct{}
	sessions  map[string][]string
}

// NewGrid creates an empty grid with the given parallel-session limit.
func NewGrid(limit int) *Grid {
	if limit < 1 {
		limit = 1
	}
	return &Grid{
		limit:     limit,
		occupants: make(map[string]map[string]struct{}),
		sessions:  make(map[string][]string),
	}
}

// Limit returns the parallel-session limit.
func (g *Grid) Limit() int { return g.limit }

func (g *Grid) feasible(run, identities []string) bool {
	for _, slot := range run {
		if len(g.sessions[slot]) >= g.limit {
			return false
		}
		occ := g.occupants[slot]
		for _, id := range identities {
			if _, busy := occ[id]; busy {
				return false
			}
		}
	}
	return true
}

// CheckResult classifies why a run can or cannot host another session.
type CheckResult int

const (
	// CheckOK means the run is free for the identities.
	CheckOK CheckResult = iota
	// CheckIdentityBusy means some identity already occupies a slot of the run.
	CheckIdentityBusy
	// CheckLimit means every identity is free but a slot of the run has
	// reached the parallel-session limit.
	CheckLimit
)

// Check classifies the feasibility of the run for the identities. Identity
// conflicts take precedence over the parallel limit.
func (g *Grid) Check(run, identities []string) CheckResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	limited := false
	for _, slot := range run {
		occ := g.occupants[slot]
		for _, id := range identities {
			if _, busy := occ[id]; busy {
				return CheckIdentityBusy
			}
		}
		if len(g.sessions[slot]) >= g.limit {
			limited = true
		}
	}
	if limited {
		return CheckLimit
	}
	return CheckOK
}

// Feasible reports whether the run can host one more session with the given
// identities: no identity already occupies any slot of the run and every
// slot is below the parallel-session limit.
func (g *Grid) Feasible(run, identities []string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.feasible(run, identities)
}

// TryReserve atomically re-checks feasibility and reserves the run for the
// identities under the given session tag. It returns false, leaving the grid
// untouched, when the state changed since the caller's scan.
func (g *Grid) TryReserve(run, identities []string, session string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.feasible(run, identities) {
		return false
	}
	for _, slot := range run {
		occ := g.occupants[slot]
		if occ == nil {
			occ = make(map[string]struct{})
			g.occupants[slot] = occ
		}
		for _, id := range identities {
			occ[id] = struct{}{}
		}
		g.sessions[slot] = append(g.sessions[slot], session)
	}
	return true
}

// OccupancyCount returns the number of distinct sessions occupying the slot.
func (g *Grid) OccupancyCount(slot string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.sessions[slot])
}

// Occupies reports whether the identity occupies the slot.
func (g *Grid) Occupies(slot, identity string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.occupants[slot][identity]
	return busy
}

// Occupants returns the identities occupying the slot, sorted.
func (g *Grid) Occupants(slot string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	ids := make([]string, 0, len(g.occupants[slot]))
	for id := range g.occupants[slot] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Sessions returns the session tags occupying the slot in reservation order.
func (g *Grid) Sessions(slot string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.sessions[slot]...)
}

// UsedSlots returns all slots holding at least one session, sorted.
func (g *Grid) UsedSlots() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	slots := make([]string, 0, len(g.sessions))
	for slot := range g.sessions {
		slots = append(slots, slot)
	}
	sort.Strings(slots)
	return slots
}
