package game

import (
	"github.com/chehsunliu/poker"
)

// HandRank is the absolute strength of a seat's best five-card hand as
// reported by the evaluator. Lower values are stronger.
type HandRank int32

// String returns the rank class description, e.g. "Pair" or "Flush".
func (r HandRank) String() string {
	return poker.RankString(int32(r))
}

// Beats reports whether r is strictly stronger than other.
func (r HandRank) Beats(other HandRank) bool {
	return r < other
}

// EvaluateHand ranks the best five-card hand from a seat's hole cards and
// the board.
func EvaluateHand(hole []Card, board []Card) HandRank {
	cards := make([]poker.Card, 0, len(hole)+len(board))
	for _, c := range hole {
		cards = append(cards, poker.NewCard(c.String()))
	}
	for _, c := range board {
		cards = append(cards, poker.NewCard(c.String()))
	}
	return HandRank(poker.Evaluate(cards))
}
