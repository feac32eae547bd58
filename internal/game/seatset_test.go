package game

import (
	"slices"
	"testing"
)

func TestSeatSet(t *testing.T) {
	t.Parallel()
	s := NewSeatSet(3)

	if s.Count() != 3 || !s.Has(0) || !s.Has(1) || !s.Has(2) {
		t.Errorf("NewSeatSet(3) should enable seats 0-2, got %v", s.Ones())
	}
	if s.Has(3) {
		t.Error("Seat 3 should not be enabled")
	}

	s.Disable(1)
	if s.Has(1) || s.Count() != 2 {
		t.Errorf("Disable failed: %v", s.Ones())
	}
	s.Disable(1) // idempotent
	if s.Count() != 2 {
		t.Errorf("Repeated disable changed the set: %v", s.Ones())
	}

	s.Enable(1)
	if !s.Has(1) || s.Count() != 3 {
		t.Errorf("Enable failed: %v", s.Ones())
	}
}

func TestSeatSetOnesAndFirst(t *testing.T) {
	t.Parallel()
	s := NewSeatSet(5)
	s.Disable(0)
	s.Disable(3)

	if got := s.Ones(); !slices.Equal(got, []int{1, 2, 4}) {
		t.Errorf("Ones() = %v, want [1 2 4]", got)
	}
	if s.First() != 1 {
		t.Errorf("First() = %d, want 1", s.First())
	}

	var empty SeatSet
	if !empty.Empty() || empty.First() != -1 {
		t.Errorf("Empty set misbehaves: empty=%v first=%d", empty.Empty(), empty.First())
	}
}

func TestSeatSetCopySemantics(t *testing.T) {
	t.Parallel()
	// The hand engine snapshots the active set into each betting round;
	// mutating the copy must not touch the original.
	orig := NewSeatSet(4)
	snap := orig
	snap.Disable(2)

	if !orig.Has(2) {
		t.Error("Mutating a copy must not change the original")
	}
	if snap.Has(2) {
		t.Error("Copy should have seat 2 disabled")
	}
}
