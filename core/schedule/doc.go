// Package schedule implements the defense scheduling engine. It matches
// examiner panels to requests over a discrete slot grid using a two-tier
// strategy: expertise-constrained first, expertise-agnostic with workload
// balancing as fallback. Reservations go through an availability grid that
// checks and writes under one lock.
package schedule
