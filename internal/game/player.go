package game

// Player identifies a connected player. Immutable after construction.
type Player struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// GamePlayer is a seat in one hand. The auto-action flags are rebuilt from
// scratch every hand; they never survive across hands.
type GamePlayer struct {
	Info      Player
	CheckFold bool
	CallAny   bool
}

// NewGamePlayer creates a seat for the given player with no auto-actions
// armed.
func NewGamePlayer(info Player) *GamePlayer {
	return &GamePlayer{Info: info}
}

// TablePlayer is a seat at a table, alive for as long as the player stays
// seated. The flags steer next-hand selection, not the current hand.
type TablePlayer struct {
	Info               Player
	WaitForBigBlind    bool
	SitOutNextHand     bool
	SitOutNextBigBlind bool

	// hasPaidBigBlind records that this seat has posted a big blind at this
	// table, which exempts it from wait-for-big-blind filtering.
	hasPaidBigBlind bool

	// pendingRemoval marks a seat to be dropped when the current hand
	// completes (disconnect mid-hand).
	pendingRemoval bool
}

// NewTablePlayer seats the given player with all flags clear.
func NewTablePlayer(info Player) *TablePlayer {
	return &TablePlayer{Info: info}
}
