package game

import "math/bits"

// SeatSet is a bit-set over seat indices. Tables hold at most nine seats so
// sixteen bits are plenty.
type SeatSet uint16

// NewSeatSet returns a set with seats 0..n-1 enabled.
func NewSeatSet(n int) SeatSet {
	return SeatSet(1<<n - 1)
}

// Enable adds a seat to the set.
func (s *SeatSet) Enable(idx int) {
	*s |= 1 << idx
}

// Disable removes a seat from the set.
func (s *SeatSet) Disable(idx int) {
	*s &^= 1 << idx
}

// Has reports whether a seat is in the set.
func (s SeatSet) Has(idx int) bool {
	return s&(1<<idx) != 0
}

// Count returns the number of seats in the set.
func (s SeatSet) Count() int {
	return bits.OnesCount16(uint16(s))
}

// Empty reports whether the set has no seats.
func (s SeatSet) Empty() bool {
	return s == 0
}

// Ones returns the enabled seat indices in ascending order.
func (s SeatSet) Ones() []int {
	idxs := make([]int, 0, s.Count())
	for i := 0; i < 16; i++ {
		if s.Has(i) {
			idxs = append(idxs, i)
		}
	}
	return idxs
}

// First returns the lowest enabled seat, or -1 if the set is empty.
func (s SeatSet) First() int {
	if s == 0 {
		return -1
	}
	return bits.TrailingZeros16(uint16(s))
}
