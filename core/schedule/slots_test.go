package schedule

import (
	"testing"
	"time"
)

func TestSubdivide(t *testing.T) {
	got, err := Subdivide("20250610_0800", time.Hour, 30*time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"20250610_0800", "20250610_0830"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("slot %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestSubdivideRejectsUnevenSteps(t *testing.T) {
	if _, err := Subdivide("20250610_0800", 50*time.Minute, 30*time.Minute); err == nil {
		t.Fatal("expected error for non-divisible steps")
	}
}

func TestParseSlotIDInvalid(t *testing.T) {
	if _, err := ParseSlotID("not-a-slot"); err == nil {
		t.Fatal("expected error")
	}
}

func TestHorizonFromSlotsSortsAndDeduplicates(t *testing.T) {
	h, err := NewHorizonFromSlots([]string{
		"20250610_0900",
		"20250610_0800",
		"20250610_0900",
		"20250610_0830",
	}, 30*time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"20250610_0800", "20250610_0830", "20250610_0900"}
	if h.Len() != len(want) {
		t.Fatalf("got %d slots, want %d", h.Len(), len(want))
	}
	for i, id := range h.Slots() {
		if id != want[i] {
			t.Errorf("slot %d: got %s, want %s", i, id, want[i])
		}
	}
	if !h.Contains("20250610_0830") {
		t.Error("Contains should report known slot")
	}
	if h.Contains("20250611_0800") {
		t.Error("Contains should reject unknown slot")
	}
}

func TestNewHorizonGeneratesDayWindows(t *testing.T) {
	h, err := NewHorizon(HorizonConfig{
		First:    time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		Last:     time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC),
		DayStart: 8 * time.Hour,
		DayEnd:   10 * time.Hour,
		Step:     30 * time.Minute,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Len() != 8 {
		t.Fatalf("got %d slots, want 8", h.Len())
	}
	if h.Slots()[0] != "20250610_0800" {
		t.Errorf("first slot %s", h.Slots()[0])
	}
	if h.Slots()[7] != "20250611_0930" {
		t.Errorf("last slot %s", h.Slots()[7])
	}
}

func TestRunRejectsGaps(t *testing.T) {
	h, err := NewHorizonFromSlots([]string{
		"20250610_0800",
		"20250610_0830",
		"20250610_1000", // break in the grid
		"20250610_1030",
	}, 30*time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run, ok := h.Run(0, 2); !ok || run[1] != "20250610_0830" {
		t.Errorf("contiguous run should succeed, got %v %v", run, ok)
	}
	if _, ok := h.Run(1, 2); ok {
		t.Error("run across the gap should fail")
	}
	if _, ok := h.Run(3, 2); ok {
		t.Error("run past the horizon end should fail")
	}
}
