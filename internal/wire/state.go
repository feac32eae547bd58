package wire

import (
	"github.com/pokerhall/pokerhall/internal/game"
)

// PublicGameState is the view of a hand that every subscriber may see. Hole
// cards never appear here; they travel in private dealHand messages.
type PublicGameState struct {
	ID                 string        `json:"id"`
	Players            []game.Player `json:"players"`
	DealerIdx          int           `json:"dealerIdx"`
	GameActivePlayers  []int         `json:"gameActivePlayers"`
	RoundActivePlayers []int         `json:"roundActivePlayers"`
	CurrentPlayerIdx   int           `json:"currentPlayerIdx"`
	CommunityCards     []game.Card   `json:"communityCards"`
	Stacks             []int         `json:"stacks"`
	Bets               []int         `json:"bets"`
	MinRaise           int           `json:"minRaise"`
	ToCall             int           `json:"toCall"`
	Pot                int           `json:"pot"`
}

// NewPublicGameState snapshots a hand.
func NewPublicGameState(h *game.Hand) PublicGameState {
	board := make([]game.Card, len(h.Board))
	copy(board, h.Board)
	stacks := make([]int, len(h.Stacks))
	copy(stacks, h.Stacks)
	bets := make([]int, len(h.Current.PlayerBet))
	copy(bets, h.Current.PlayerBet)

	return PublicGameState{
		ID:                 h.ID,
		Players:            h.PlayerInfos(),
		DealerIdx:          h.DealerIdx,
		GameActivePlayers:  h.Active.Ones(),
		RoundActivePlayers: h.Current.Active.Ones(),
		CurrentPlayerIdx:   h.Current.ToActIdx,
		CommunityCards:     board,
		Stacks:             stacks,
		Bets:               bets,
		MinRaise:           h.Current.MinRaise,
		ToCall:             h.Current.Bet,
		Pot:                h.TotalPot,
	}
}
