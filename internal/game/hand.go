package game

import (
	"fmt"
	rand "math/rand/v2"

	"github.com/pokerhall/pokerhall/internal/randutil"
)

// Round is the phase of a hand.
type Round int

const (
	RoundStarting Round = iota
	RoundPreflop
	RoundFlop
	RoundTurn
	RoundRiver
	RoundShowdown
	RoundComplete
)

func (r Round) String() string {
	if r < RoundStarting || r > RoundComplete {
		return "unknown"
	}
	return [...]string{"starting", "preflop", "flop", "turn", "river", "showdown", "complete"}[r]
}

// RoundData is the betting state for the current street.
type RoundData struct {
	// Bet is the highest total commitment any seat has made this street.
	Bet int
	// MinRaise is the smallest legal raise increment above Bet.
	MinRaise int
	// PlayerBet is each seat's total commitment this street.
	PlayerBet []int
	// Active holds the seats that still owe an action this street. A raise
	// re-opens it for every seat still in the hand.
	Active SeatSet
	// ToActIdx is the seat whose turn it is, valid while Active is
	// non-empty.
	ToActIdx int
}

// Result is the outcome of a completed hand.
type Result struct {
	Winner    int
	Pot       int
	Rank      HandRank
	Contested bool // false when everyone else folded
}

// Describe returns the winning hand description for broadcast.
func (r *Result) Describe() string {
	if !r.Contested {
		return "uncontested"
	}
	return r.Rank.String()
}

// Hand is the state machine for a single hand of Texas Hold'em. It performs
// no I/O; the room actor owns it and serialises access.
type Hand struct {
	ID         string
	Players    []*GamePlayer
	DealerIdx  int
	SmallBlind int
	BigBlind   int

	Round    Round
	Stacks   []int
	Active   SeatSet // seats still in the hand; folding or going all-in leaves it
	Board    []Card
	Hole     [][]Card
	TotalPot int
	Current  RoundData
	Result   *Result // set once Round is RoundComplete

	deck *Deck
}

// HandOption configures hand construction.
type HandOption func(*handConfig)

type handConfig struct {
	deck       *Deck
	rng        *rand.Rand
	startChips int
}

// WithDeck supplies a pre-arranged deck, bypassing the shuffle. Tests use
// this for deterministic boards.
func WithDeck(d *Deck) HandOption {
	return func(c *handConfig) { c.deck = d }
}

// WithRNG supplies the RNG used to shuffle the deck.
func WithRNG(rng *rand.Rand) HandOption {
	return func(c *handConfig) { c.rng = rng }
}

// WithStartingChips sets the uniform stack each seat begins the hand with.
func WithStartingChips(chips int) HandOption {
	return func(c *handConfig) { c.startChips = chips }
}

// NewHand deals a new hand: shuffles, deals two hole cards per seat
// round-robin starting left of the dealer, then advances into preflop,
// posting the blinds. Callers guarantee at least two players.
func NewHand(id string, players []*GamePlayer, dealerIdx, smallBlind, bigBlind int, opts ...HandOption) *Hand {
	if len(players) < 2 {
		panic("hand requires at least two players")
	}
	if dealerIdx < 0 || dealerIdx >= len(players) {
		panic("dealer index out of range")
	}

	cfg := &handConfig{startChips: 100}
	for _, opt := range opts {
		opt(cfg)
	}

	deck := cfg.deck
	if deck == nil {
		rng := cfg.rng
		if rng == nil {
			rng = randutil.NewRandom()
		}
		deck = NewDeck(rng)
	}

	n := len(players)
	h := &Hand{
		ID:         id,
		Players:    players,
		DealerIdx:  dealerIdx,
		SmallBlind: smallBlind,
		BigBlind:   bigBlind,
		Round:      RoundStarting,
		Stacks:     make([]int, n),
		Active:     NewSeatSet(n),
		Hole:       make([][]Card, n),
		deck:       deck,
	}
	for i := range h.Stacks {
		h.Stacks[i] = cfg.startChips
	}

	for pass := 0; pass < 2; pass++ {
		for off := 1; off <= n; off++ {
			seat := (dealerIdx + off) % n
			h.Hole[seat] = append(h.Hole[seat], deck.DealOne())
		}
	}

	h.advanceRound()
	return h
}

// Bet applies a bet by the identified player. The amount is the player's
// total desired commitment for the current street: matching the current bet
// checks or calls, exceeding it raises.
func (h *Hand) Bet(playerID string, amount int) error {
	seat, err := h.seatOf(playerID)
	if err != nil {
		return err
	}
	if h.Round == RoundComplete {
		return ErrGameInactive
	}
	if seat != h.Current.ToActIdx {
		return ErrNotYourTurn
	}
	if err := h.bet(seat, amount); err != nil {
		return err
	}
	return h.advance()
}

// Fold folds the identified player.
func (h *Hand) Fold(playerID string) error {
	seat, err := h.seatOf(playerID)
	if err != nil {
		return err
	}
	if h.Round == RoundComplete {
		return ErrGameInactive
	}
	if seat != h.Current.ToActIdx {
		return ErrNotYourTurn
	}
	h.fold(seat)
	return h.advance()
}

// Forfeit folds a player out of turn. Disconnects use it: the seat leaves
// the hand immediately, the turn moves on if it was theirs, and the hand
// advances as after a normal fold. Forfeiting a seat that already left the
// hand is a no-op.
func (h *Hand) Forfeit(playerID string) error {
	seat, err := h.seatOf(playerID)
	if err != nil {
		return err
	}
	if h.Round == RoundComplete || !h.Active.Has(seat) {
		return nil
	}
	h.Active.Disable(seat)
	h.Current.Active.Disable(seat)
	if h.Current.ToActIdx == seat {
		h.advanceToAct()
	}
	return h.advance()
}

// HasPlayer reports whether the player was dealt into this hand.
func (h *Hand) HasPlayer(playerID string) bool {
	_, err := h.seatOf(playerID)
	return err == nil
}

// SetCheckFold arms or clears the check-fold auto-action for a player. It
// takes effect the next time the action reaches them.
func (h *Hand) SetCheckFold(playerID string, value bool) error {
	seat, err := h.seatOf(playerID)
	if err != nil {
		return err
	}
	h.Players[seat].CheckFold = value
	return nil
}

// SetCallAny arms or clears the call-any auto-action for a player.
func (h *Hand) SetCallAny(playerID string, value bool) error {
	seat, err := h.seatOf(playerID)
	if err != nil {
		return err
	}
	h.Players[seat].CallAny = value
	return nil
}

// Complete reports whether the hand has finished.
func (h *Hand) Complete() bool {
	return h.Round == RoundComplete
}

// PlayerInfos returns the seated players in seat order.
func (h *Hand) PlayerInfos() []Player {
	infos := make([]Player, len(h.Players))
	for i, p := range h.Players {
		infos[i] = p.Info
	}
	return infos
}

// CurrentPlayer returns the player whose turn it is, if the hand is open
// and somebody still owes an action this street.
func (h *Hand) CurrentPlayer() (Player, bool) {
	if h.Round == RoundComplete || h.Current.Active.Empty() {
		return Player{}, false
	}
	return h.Players[h.Current.ToActIdx].Info, true
}

func (h *Hand) seatOf(playerID string) (int, error) {
	for i, p := range h.Players {
		if p.Info.ID == playerID {
			return i, nil
		}
	}
	return 0, ErrPlayerNotFound
}

// bet validates and applies a total-commitment bet for seat. It does not
// run auto-actions or round advancement; callers follow up with advance.
func (h *Hand) bet(seat, amount int) error {
	rd := &h.Current
	stake := h.Stacks[seat] + rd.PlayerBet[seat] // the most this seat can commit

	switch {
	case amount < 0:
		return fmt.Errorf("%w: negative amount %d", ErrInvalidBet, amount)
	case amount > stake:
		return fmt.Errorf("%w: %d exceeds stack of %d", ErrInvalidBet, amount, stake)
	case amount < rd.Bet && amount != stake:
		return fmt.Errorf("%w: %d is below the current bet of %d", ErrInvalidBet, amount, rd.Bet)
	case amount > rd.Bet && amount-rd.Bet < rd.MinRaise && amount != stake:
		return fmt.Errorf("%w: raise to %d is below the minimum raise of %d", ErrInvalidBet, amount, rd.Bet+rd.MinRaise)
	}

	diff := amount - rd.PlayerBet[seat]
	h.Stacks[seat] -= diff
	rd.PlayerBet[seat] = amount
	h.TotalPot += diff

	if amount > rd.Bet {
		// A raise re-opens the street for every other seat still in.
		if delta := amount - rd.Bet; delta >= rd.MinRaise {
			rd.MinRaise = delta
		}
		rd.Bet = amount
		rd.Active = h.Active
	}
	rd.Active.Disable(seat)
	if h.Stacks[seat] == 0 {
		h.Active.Disable(seat)
	}
	h.advanceToAct()
	return nil
}

func (h *Hand) fold(seat int) {
	h.Active.Disable(seat)
	h.Current.Active.Disable(seat)
	h.advanceToAct()
}

// advanceToAct moves the turn to the next seat that owes an action.
func (h *Hand) advanceToAct() {
	rd := &h.Current
	if rd.Active.Empty() {
		return
	}
	n := len(h.Players)
	for off := 1; off <= n; off++ {
		idx := (rd.ToActIdx + off) % n
		if rd.Active.Has(idx) {
			rd.ToActIdx = idx
			return
		}
	}
}

// advance drives the hand forward until a real player must act or the hand
// completes: it awards fold-outs and showdowns, closes finished streets,
// and fires the check-fold and call-any auto-actions.
func (h *Hand) advance() error {
	for h.Round != RoundComplete {
		if h.Active.Count() <= 1 || h.Round == RoundShowdown {
			return h.complete()
		}
		if h.Current.Active.Empty() {
			h.advanceRound()
			continue
		}

		seat := h.Current.ToActIdx
		player := h.Players[seat]
		switch {
		case player.CheckFold:
			if h.Current.PlayerBet[seat] == h.Current.Bet {
				if err := h.bet(seat, h.Current.Bet); err != nil {
					return err
				}
			} else {
				h.fold(seat)
			}
		case player.CallAny:
			amount := h.Current.Bet
			if stake := h.Stacks[seat] + h.Current.PlayerBet[seat]; stake < amount {
				amount = stake
			}
			if err := h.bet(seat, amount); err != nil {
				return err
			}
		default:
			return nil
		}
	}
	return nil
}

// advanceRound moves to the next street, dealing board cards and resetting
// the betting state.
func (h *Hand) advanceRound() {
	n := len(h.Players)
	switch h.Round {
	case RoundStarting:
		h.Round = RoundPreflop
		h.resetRound()
		h.postBlind((h.DealerIdx+1)%n, h.SmallBlind)
		h.postBlind((h.DealerIdx+2)%n, h.BigBlind)
		h.Current.Bet = h.BigBlind
		h.Current.MinRaise = h.BigBlind
		h.Current.ToActIdx = (h.DealerIdx + 3) % n
	case RoundPreflop:
		h.Round = RoundFlop
		h.Board = append(h.Board, h.deck.Deal(3)...)
		h.resetRound()
	case RoundFlop:
		h.Round = RoundTurn
		h.Board = append(h.Board, h.deck.DealOne())
		h.resetRound()
	case RoundTurn:
		h.Round = RoundRiver
		h.Board = append(h.Board, h.deck.DealOne())
		h.resetRound()
	case RoundRiver:
		h.Round = RoundShowdown
	}
}

func (h *Hand) resetRound() {
	h.Current = RoundData{
		MinRaise:  h.BigBlind,
		PlayerBet: make([]int, len(h.Players)),
		Active:    h.Active,
		ToActIdx:  h.firstActiveFrom(h.DealerIdx + 1),
	}
}

// postBlind posts a forced bet without marking the seat as having acted.
func (h *Hand) postBlind(seat, amount int) {
	if amount > h.Stacks[seat] {
		amount = h.Stacks[seat]
	}
	h.Stacks[seat] -= amount
	h.Current.PlayerBet[seat] += amount
	h.TotalPot += amount
	if h.Stacks[seat] == 0 {
		h.Active.Disable(seat)
		h.Current.Active.Disable(seat)
	}
}

func (h *Hand) firstActiveFrom(start int) int {
	n := len(h.Players)
	for off := 0; off < n; off++ {
		idx := (start + off) % n
		if h.Active.Has(idx) {
			return idx
		}
	}
	return -1
}

// complete awards the pot and finishes the hand.
func (h *Hand) complete() error {
	switch n := h.Active.Count(); {
	case n == 0:
		return fmt.Errorf("hand %s completed with no active seats", h.ID)
	case n == 1:
		h.award(h.Active.First(), nil)
	default:
		winner, best := -1, HandRank(0)
		for _, seat := range h.Active.Ones() {
			rank := EvaluateHand(h.Hole[seat], h.Board)
			if winner == -1 || rank.Beats(best) {
				winner, best = seat, rank
			}
		}
		h.award(winner, &best)
	}
	h.Round = RoundComplete
	return nil
}

func (h *Hand) award(seat int, rank *HandRank) {
	h.Stacks[seat] += h.TotalPot
	result := &Result{Winner: seat, Pot: h.TotalPot}
	if rank != nil {
		result.Rank = *rank
		result.Contested = true
	}
	h.Result = result
}
