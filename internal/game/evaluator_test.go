package game

import "testing"

func TestEvaluateHandOrdering(t *testing.T) {
	t.Parallel()
	board := cards("Qd", "Jc", "9s", "6h", "3d")

	aces := EvaluateHand(cards("As", "Ah"), board)
	kings := EvaluateHand(cards("Ks", "Kh"), board)
	nothing := EvaluateHand(cards("7s", "2h"), board)

	if !aces.Beats(kings) {
		t.Error("Aces should beat kings")
	}
	if !kings.Beats(nothing) {
		t.Error("Kings should beat seven-deuce")
	}
	if nothing.Beats(aces) {
		t.Error("Seven-deuce should not beat aces")
	}
}

func TestEvaluateHandTies(t *testing.T) {
	t.Parallel()
	board := cards("Qs", "Js", "9d", "5c", "2h")

	a := EvaluateHand(cards("Ah", "Kd"), board)
	b := EvaluateHand(cards("As", "Kc"), board)

	if a != b {
		t.Errorf("Identical hands should rank equally: %d vs %d", a, b)
	}
	if a.Beats(b) || b.Beats(a) {
		t.Error("Equal ranks must not beat each other")
	}
}

func TestEvaluateHandWheel(t *testing.T) {
	t.Parallel()
	// The wheel is a straight but the lowest one.
	board := cards("3c", "4h", "5s", "Kd", "Qh")
	wheel := EvaluateHand(cards("As", "2d"), board)
	broadway := EvaluateHand(cards("Th", "Jd"), cards("Qc", "Kh", "As", "2d", "3h"))

	if wheel.String() != "Straight" {
		t.Errorf("A-2-3-4-5 should be a straight, got %q", wheel.String())
	}
	if !broadway.Beats(wheel) {
		t.Error("Broadway should beat the wheel")
	}
}

func TestHandRankString(t *testing.T) {
	t.Parallel()
	board := cards("Qd", "Jc", "9s", "6h", "3d")
	if got := EvaluateHand(cards("As", "Ah"), board).String(); got != "Pair" {
		t.Errorf("Pair of aces should describe as Pair, got %q", got)
	}
	if got := EvaluateHand(cards("As", "Kh"), board).String(); got != "High Card" {
		t.Errorf("Ace high should describe as High Card, got %q", got)
	}
}
