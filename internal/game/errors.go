package game

import "errors"

// Errors surfaced to clients keep the exact strings the protocol has always
// carried; clients match on them.
var (
	ErrTableFull        = errors.New("Table is full")
	ErrAlreadySeated    = errors.New("Already sitting at table")
	ErrNotEnoughPlayers = errors.New("Not enough players to start game")
	ErrGameInactive     = errors.New("Game is not active")
	ErrGameInProgress   = errors.New("Game already in progress")
	ErrNotYourTurn      = errors.New("Not your turn")
	ErrPlayerNotFound   = errors.New("Player not found")
	ErrInvalidBet       = errors.New("Invalid bet")
)

// IsClientError reports whether err is a rejection the originating client
// should see. Anything else coming out of the engine is an internal
// invariant failure: the action was applied but the hand cannot continue.
func IsClientError(err error) bool {
	for _, e := range []error{
		ErrTableFull, ErrAlreadySeated, ErrNotEnoughPlayers, ErrGameInactive,
		ErrGameInProgress, ErrNotYourTurn, ErrPlayerNotFound, ErrInvalidBet,
	} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
