package schedule

import "testing"

func TestGridParallelLimit(t *testing.T) {
	g := NewGrid(1)
	run := []string{"20250610_0800", "20250610_0830"}
	if !g.TryReserve(run, []string{"A", "B"}, "s1") {
		t.Fatal("first reservation should succeed")
	}
	if g.Feasible(run[:1], []string{"C"}) {
		t.Error("slot at the limit must not be feasible for another session")
	}
	if got := g.Check(run[:1], []string{"C"}); got != CheckLimit {
		t.Errorf("Check = %v, want CheckLimit", got)
	}
}

func TestGridDoubleBooking(t *testing.T) {
	g := NewGrid(2)
	run := []string{"20250610_0800"}
	if !g.TryReserve(run, []string{"A"}, "s1") {
		t.Fatal("reservation should succeed")
	}
	if got := g.Check(run, []string{"A"}); got != CheckIdentityBusy {
		t.Errorf("Check = %v, want CheckIdentityBusy", got)
	}
	if !g.Feasible(run, []string{"B"}) {
		t.Error("another identity should fit below the limit")
	}
	// Identity conflicts outrank the limit in classification.
	if !g.TryReserve(run, []string{"B"}, "s2") {
		t.Fatal("second reservation should succeed")
	}
	if got := g.Check(run, []string{"A", "C"}); got != CheckIdentityBusy {
		t.Errorf("Check = %v, want CheckIdentityBusy", got)
	}
	if got := g.Check(run, []string{"C"}); got != CheckLimit {
		t.Errorf("Check = %v, want CheckLimit", got)
	}
}

func TestGridTryReserveRevalidates(t *testing.T) {
	g := NewGrid(1)
	run := []string{"20250610_0800"}
	if !g.Feasible(run, []string{"A"}) {
		t.Fatal("empty grid should be feasible")
	}
	// A competing reservation lands between the check and the reserve.
	if !g.TryReserve(run, []string{"B"}, "other") {
		t.Fatal("competing reservation should succeed")
	}
	if g.TryReserve(run, []string{"A"}, "mine") {
		t.Fatal("stale reservation must be rejected")
	}
	if g.Occupies("20250610_0800", "A") {
		t.Error("rejected reservation must not leave partial state")
	}
	if got := g.OccupancyCount("20250610_0800"); got != 1 {
		t.Errorf("occupancy = %d, want 1", got)
	}
}

func TestGridAccessors(t *testing.T) {
	g := NewGrid(3)
	g.TryReserve([]string{"20250610_0830"}, []string{"Z", "A"}, "s1")
	g.TryReserve([]string{"20250610_0800"}, []string{"B"}, "s2")
	g.TryReserve([]string{"20250610_0830"}, []string{"M"}, "s3")

	occ := g.Occupants("20250610_0830")
	if len(occ) != 3 || occ[0] != "A" || occ[1] != "M" || occ[2] != "Z" {
		t.Errorf("occupants not sorted: %v", occ)
	}
	sess := g.Sessions("20250610_0830")
	if len(sess) != 2 || sess[0] != "s1" || sess[1] != "s3" {
		t.Errorf("sessions out of reservation order: %v", sess)
	}
	used := g.UsedSlots()
	if len(used) != 2 || used[0] != "20250610_0800" {
		t.Errorf("used slots not sorted: %v", used)
	}
}
