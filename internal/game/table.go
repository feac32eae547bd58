package game

import (
	rand "math/rand/v2"
)

// TableConfig describes one table. Immutable once the room is running.
type TableConfig struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	MinPlayers int    `json:"minPlayers"`
	MaxPlayers int    `json:"maxPlayers"`
	SmallBlind int    `json:"smallBlind"`
	BigBlind   int    `json:"bigBlind"`
}

// Table is the long-lived seating roster for one room: who is seated, their
// next-hand flags, and at most one hand in progress. It has no actor of its
// own; the owning room serialises every call.
type Table struct {
	Config  TableConfig
	Players []*TablePlayer
	Game    *Hand

	rng        *rand.Rand
	startChips int

	// lastDealerIdx is the dealer seat of the previous hand, -1 before the
	// first. lastRoster records who was dealt into it, preserving the
	// "survivors first, then joiners" ordering across hands.
	lastDealerIdx int
	lastRoster    map[string]bool
}

// NewTable creates an empty table. The RNG shuffles each hand's deck;
// startChips is the uniform stack each seat begins a hand with.
func NewTable(config TableConfig, rng *rand.Rand, startChips int) *Table {
	return &Table{
		Config:        config,
		rng:           rng,
		startChips:    startChips,
		lastDealerIdx: -1,
		lastRoster:    map[string]bool{},
	}
}

// SitTable seats a player at the first free seat (the end of the roster)
// and returns the seat index.
func (t *Table) SitTable(player Player) (int, error) {
	if len(t.Players) >= t.Config.MaxPlayers {
		return 0, ErrTableFull
	}
	for _, p := range t.Players {
		if p.Info.ID == player.ID {
			return 0, ErrAlreadySeated
		}
	}
	t.Players = append(t.Players, NewTablePlayer(player))
	return len(t.Players) - 1, nil
}

// Remove stands a player up immediately and returns who left and the seat
// index they held. Mid-hand callers should prefer MarkForRemoval.
func (t *Table) Remove(playerID string) (Player, int, error) {
	for i, p := range t.Players {
		if p.Info.ID == playerID {
			t.Players = append(t.Players[:i], t.Players[i+1:]...)
			return p.Info, i, nil
		}
	}
	return Player{}, 0, ErrPlayerNotFound
}

// MarkForRemoval flags a seat to be dropped when the current hand
// completes.
func (t *Table) MarkForRemoval(playerID string) error {
	p, err := t.find(playerID)
	if err != nil {
		return err
	}
	p.pendingRemoval = true
	p.SitOutNextHand = true
	return nil
}

// RemovedSeat records one seat dropped by RemovePending, with the index it
// held at the moment of removal.
type RemovedSeat struct {
	Player Player
	Index  int
}

// RemovePending removes every seat marked for removal, one at a time, and
// returns the drops in order.
func (t *Table) RemovePending() []RemovedSeat {
	var removed []RemovedSeat
	for {
		idx := -1
		for i, p := range t.Players {
			if p.pendingRemoval {
				idx = i
				break
			}
		}
		if idx < 0 {
			return removed
		}
		removed = append(removed, RemovedSeat{Player: t.Players[idx].Info, Index: idx})
		t.Players = append(t.Players[:idx], t.Players[idx+1:]...)
	}
}

// IsSeated reports whether the player currently holds a seat.
func (t *Table) IsSeated(playerID string) bool {
	_, err := t.find(playerID)
	return err == nil
}

// StartNewGame deals a new hand if no hand is running and enough eligible
// players are seated. The eligible sequence is the survivors of the last
// hand in their seat order followed by the players who joined since, which
// keeps seat indices stable for returning players.
func (t *Table) StartNewGame() error {
	if t.Game != nil && !t.Game.Complete() {
		return ErrGameInProgress
	}

	eligible := t.eligiblePlayers()
	if len(eligible) < t.Config.MinPlayers {
		return ErrNotEnoughPlayers
	}

	dealerIdx := 0
	if t.lastDealerIdx >= 0 {
		dealerIdx = (t.lastDealerIdx + 1) % len(eligible)
	}

	players := make([]*GamePlayer, len(eligible))
	roster := make(map[string]bool, len(eligible))
	for i, tp := range eligible {
		players[i] = NewGamePlayer(tp.Info)
		roster[tp.Info.ID] = true
	}

	t.Game = NewHand(t.Config.ID, players, dealerIdx, t.Config.SmallBlind, t.Config.BigBlind,
		WithRNG(t.rng), WithStartingChips(t.startChips))
	t.lastDealerIdx = dealerIdx
	t.lastRoster = roster

	// The big-blind seat has now met its obligation; it is never skipped by
	// wait-for-big-blind filtering again.
	eligible[(dealerIdx+2)%len(eligible)].hasPaidBigBlind = true
	return nil
}

// ClearGame drops a completed hand. Leaving a finished hand in place blocks
// the next one, so the room clears it as part of completion handling.
func (t *Table) ClearGame() {
	t.Game = nil
}

// eligiblePlayers selects and orders the seats dealt into the next hand:
// last-hand survivors first, then joiners. A joiner who asked to wait for
// the big blind stays out until appending them would land them exactly in
// the big-blind seat of the hand being formed; before the first hand the
// filter does not apply, since nobody holds a blind obligation yet.
func (t *Table) eligiblePlayers() []*TablePlayer {
	var eligible []*TablePlayer
	for _, p := range t.Players {
		if t.lastRoster[p.Info.ID] && !p.SitOutNextHand {
			eligible = append(eligible, p)
		}
	}

	for _, p := range t.Players {
		if t.lastRoster[p.Info.ID] || p.SitOutNextHand {
			continue
		}
		if t.lastDealerIdx >= 0 && p.WaitForBigBlind && !p.hasPaidBigBlind {
			// Admitting this joiner would seat them at index len(eligible)
			// of a roster one larger; the button moves one past the last
			// dealer, so the big blind lands at lastDealerIdx+3 modulo
			// that size.
			if (t.lastDealerIdx+3)%(len(eligible)+1) != len(eligible) {
				continue
			}
		}
		eligible = append(eligible, p)
	}
	return eligible
}

// SetSitOutNextHand sets the sit-out-next-hand flag for a seated player.
func (t *Table) SetSitOutNextHand(playerID string, value bool) error {
	p, err := t.find(playerID)
	if err != nil {
		return err
	}
	p.SitOutNextHand = value
	return nil
}

// SetSitOutNextBigBlind sets the sit-out-next-big-blind flag for a seated
// player.
func (t *Table) SetSitOutNextBigBlind(playerID string, value bool) error {
	p, err := t.find(playerID)
	if err != nil {
		return err
	}
	p.SitOutNextBigBlind = value
	return nil
}

// SetWaitForBigBlind sets the wait-for-big-blind flag for a seated player.
func (t *Table) SetWaitForBigBlind(playerID string, value bool) error {
	p, err := t.find(playerID)
	if err != nil {
		return err
	}
	p.WaitForBigBlind = value
	return nil
}

// SetCheckFold arms check-fold for a player in the active hand.
func (t *Table) SetCheckFold(playerID string, value bool) error {
	if t.Game == nil {
		return ErrGameInactive
	}
	return t.Game.SetCheckFold(playerID, value)
}

// SetCallAny arms call-any for a player in the active hand.
func (t *Table) SetCallAny(playerID string, value bool) error {
	if t.Game == nil {
		return ErrGameInactive
	}
	return t.Game.SetCallAny(playerID, value)
}

// Bet forwards a bet to the active hand.
func (t *Table) Bet(playerID string, amount int) error {
	if t.Game == nil {
		return ErrGameInactive
	}
	return t.Game.Bet(playerID, amount)
}

// Fold forwards a fold to the active hand.
func (t *Table) Fold(playerID string) error {
	if t.Game == nil {
		return ErrGameInactive
	}
	return t.Game.Fold(playerID)
}

func (t *Table) find(playerID string) (*TablePlayer, error) {
	for _, p := range t.Players {
		if p.Info.ID == playerID {
			return p, nil
		}
	}
	return nil, ErrPlayerNotFound
}
