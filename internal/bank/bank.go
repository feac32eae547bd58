// Package bank resolves chip balances for buy-ins. The room core never
// touches chips directly; it asks an injected ChipSource whether a player
// can cover the buy-in they requested.
package bank

import (
	"context"
	"errors"
)

// ErrUnknownPlayer reports a balance lookup for a player the source has
// never seen.
var ErrUnknownPlayer = errors.New("unknown player")

// ChipSource reports how many chips a player holds.
type ChipSource interface {
	Balance(ctx context.Context, playerID string) (int, error)
}

// Enroller is implemented by sources that track players and can add new
// ones. The server enrols a player when their connection authenticates.
type Enroller interface {
	EnsurePlayer(ctx context.Context, playerID, username string) error
}

// Fixed is a ChipSource crediting every player the same balance. It backs
// the in-memory bank driver and most tests.
type Fixed int

// Balance implements ChipSource.
func (f Fixed) Balance(context.Context, string) (int, error) {
	return int(f), nil
}
