package actor

import (
	"context"
	"errors"
	rand "math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/pokerhall/pokerhall/internal/game"
	"github.com/pokerhall/pokerhall/internal/randutil"
	"github.com/pokerhall/pokerhall/internal/wire"
)

// ErrRoomClosed is returned for operations against a room whose actor has
// stopped.
var ErrRoomClosed = errors.New("room is closed")

// Messenger delivers a private message to one connected player. Rooms use
// it for hole cards; the player registry implements it.
type Messenger interface {
	SendTo(ctx context.Context, playerID string, msg wire.ServerMessage) bool
}

// SeatFlag identifies one of the per-seat toggles a player can set.
type SeatFlag int

const (
	FlagSitOutNextHand SeatFlag = iota
	FlagSitOutNextBigBlind
	FlagWaitForBigBlind
	FlagCheckFold
	FlagCallAny
)

// Room is the single-writer owner of one table. Every operation that
// touches seating, chat, or the hand in progress goes through its mailbox
// and is applied one at a time; state changes fan out through the room's
// broadcaster, and hole cards go to individual players via the Messenger.
type Room struct {
	id        string
	logger    *log.Logger
	clock     quartz.Clock
	timeout   time.Duration
	table     *game.Table
	bcast     *Broadcaster
	messenger Messenger

	mailbox chan roomMsg
	done    chan struct{}

	// Turn timer state, touched only from the actor goroutine. timerGen
	// identifies the arming a fired timer belongs to; folds from stale
	// armings are discarded.
	timer    *quartz.Timer
	timerGen uint64

	// lastBoard tracks how much of the board has been announced, so street
	// advances emit one communityCards broadcast each.
	lastBoard int
}

type roomMsg interface{ roomMsg() }

type getConfigMsg struct{ reply chan game.TableConfig }
type subscribeMsg struct{ reply chan *Subscription }
type chatMsg struct {
	from string
	text string
}
type sitMsg struct {
	player game.Player
	reply  chan error
}
type betMsg struct {
	playerID string
	amount   int
	reply    chan error
}
type foldMsg struct {
	playerID  string
	reply     chan error
	timerGen  uint64
	fromTimer bool
}
type flagMsg struct {
	playerID string
	flag     SeatFlag
	value    bool
	reply    chan error
}
type leaveMsg struct {
	playerID string
	reply    chan error
}

func (getConfigMsg) roomMsg() {}
func (subscribeMsg) roomMsg() {}
func (chatMsg) roomMsg()      {}
func (sitMsg) roomMsg()       {}
func (betMsg) roomMsg()       {}
func (foldMsg) roomMsg()      {}
func (flagMsg) roomMsg()      {}
func (leaveMsg) roomMsg()     {}

// RoomOption configures a room.
type RoomOption func(*roomConfig)

type roomConfig struct {
	logger      *log.Logger
	clock       quartz.Clock
	timeout     time.Duration
	channelSize int
	rng         *rand.Rand
	startChips  int
}

// WithLogger sets the room's logger.
func WithLogger(logger *log.Logger) RoomOption {
	return func(c *roomConfig) { c.logger = logger }
}

// WithClock sets the clock driving the turn timer. Tests pass a mock.
func WithClock(clock quartz.Clock) RoomOption {
	return func(c *roomConfig) { c.clock = clock }
}

// WithTurnTimeout sets how long a player may sit on their turn before the
// room folds them.
func WithTurnTimeout(d time.Duration) RoomOption {
	return func(c *roomConfig) { c.timeout = d }
}

// WithChannelSize sets the mailbox and broadcast buffer capacity.
func WithChannelSize(n int) RoomOption {
	return func(c *roomConfig) { c.channelSize = n }
}

// WithRNG sets the RNG used to shuffle each hand's deck.
func WithRNG(rng *rand.Rand) RoomOption {
	return func(c *roomConfig) { c.rng = rng }
}

// WithStartingChips sets the stack each seat begins a hand with.
func WithStartingChips(chips int) RoomOption {
	return func(c *roomConfig) { c.startChips = chips }
}

// NewRoom starts a room actor for the given table configuration. The actor
// runs until ctx is cancelled.
func NewRoom(ctx context.Context, cfg game.TableConfig, messenger Messenger, opts ...RoomOption) *Room {
	rc := &roomConfig{
		logger:      log.Default(),
		clock:       quartz.NewReal(),
		timeout:     DefaultTurnTimeout,
		channelSize: DefaultChannelSize,
		startChips:  100,
	}
	for _, opt := range opts {
		opt(rc)
	}
	if rc.rng == nil {
		rc.rng = randutil.NewRandom()
	}

	r := &Room{
		id:        cfg.ID,
		logger:    rc.logger.WithPrefix("room").With("table", cfg.ID),
		clock:     rc.clock,
		timeout:   rc.timeout,
		table:     game.NewTable(cfg, rc.rng, rc.startChips),
		bcast:     NewBroadcaster(rc.channelSize),
		messenger: messenger,
		mailbox:   make(chan roomMsg, rc.channelSize),
		done:      make(chan struct{}),
	}
	go r.run(ctx)
	return r
}

// ID returns the room's id, which doubles as the table and game id.
func (r *Room) ID() string {
	return r.id
}

// TableConfig returns the room's table configuration.
func (r *Room) TableConfig(ctx context.Context) (game.TableConfig, error) {
	reply := make(chan game.TableConfig, 1)
	select {
	case r.mailbox <- getConfigMsg{reply: reply}:
	case <-r.done:
		return game.TableConfig{}, ErrRoomClosed
	case <-ctx.Done():
		return game.TableConfig{}, ctx.Err()
	}
	select {
	case cfg := <-reply:
		return cfg, nil
	case <-r.done:
		return game.TableConfig{}, ErrRoomClosed
	case <-ctx.Done():
		return game.TableConfig{}, ctx.Err()
	}
}

// Subscribe registers a new subscriber on the room's broadcast stream,
// starting at the next published event.
func (r *Room) Subscribe(ctx context.Context) (*Subscription, error) {
	reply := make(chan *Subscription, 1)
	select {
	case r.mailbox <- subscribeMsg{reply: reply}:
	case <-r.done:
		return nil, ErrRoomClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case sub := <-reply:
		return sub, nil
	case <-r.done:
		return nil, ErrRoomClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Chat broadcasts a chat line. Best effort: if the room's mailbox is full
// the line is dropped.
func (r *Room) Chat(from, text string) {
	select {
	case r.mailbox <- chatMsg{from: from, text: text}:
	case <-r.done:
	default:
	}
}

// Sit seats a player at the table, broadcasting the seating and starting a
// hand when the table becomes ready.
func (r *Room) Sit(ctx context.Context, player game.Player) error {
	reply := make(chan error, 1)
	return r.request(ctx, sitMsg{player: player, reply: reply}, reply)
}

// Bet applies a bet or check/call by the player.
func (r *Room) Bet(ctx context.Context, playerID string, amount int) error {
	reply := make(chan error, 1)
	return r.request(ctx, betMsg{playerID: playerID, amount: amount, reply: reply}, reply)
}

// Fold folds the player.
func (r *Room) Fold(ctx context.Context, playerID string) error {
	reply := make(chan error, 1)
	return r.request(ctx, foldMsg{playerID: playerID, reply: reply}, reply)
}

// SetFlag sets one of the player's per-seat toggles.
func (r *Room) SetFlag(ctx context.Context, playerID string, flag SeatFlag, value bool) error {
	reply := make(chan error, 1)
	return r.request(ctx, flagMsg{playerID: playerID, flag: flag, value: value, reply: reply}, reply)
}

// Leave stands the player up. Mid-hand the seat is folded and removed when
// the hand completes; otherwise it is removed immediately.
func (r *Room) Leave(ctx context.Context, playerID string) error {
	reply := make(chan error, 1)
	return r.request(ctx, leaveMsg{playerID: playerID, reply: reply}, reply)
}

func (r *Room) request(ctx context.Context, msg roomMsg, reply chan error) error {
	select {
	case r.mailbox <- msg:
	case <-r.done:
		return ErrRoomClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-r.done:
		return ErrRoomClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Room) run(ctx context.Context) {
	defer close(r.done)
	defer r.bcast.CloseAll()
	defer r.stopTimer()

	r.logger.Info("room open")
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("room closing")
			return
		case msg := <-r.mailbox:
			r.handle(ctx, msg)
		}
	}
}

func (r *Room) handle(ctx context.Context, msg roomMsg) {
	switch m := msg.(type) {
	case getConfigMsg:
		m.reply <- r.table.Config
	case subscribeMsg:
		m.reply <- r.bcast.Subscribe()
	case chatMsg:
		r.bcast.Publish(wire.Chat(r.id, m.from, m.text))
	case sitMsg:
		r.handleSit(ctx, m)
	case betMsg:
		r.handleBet(ctx, m)
	case foldMsg:
		r.handleFold(ctx, m)
	case flagMsg:
		r.handleFlag(m)
	case leaveMsg:
		r.handleLeave(ctx, m)
	}
}

func (r *Room) handleSit(ctx context.Context, m sitMsg) {
	idx, err := r.table.SitTable(m.player)
	if err != nil {
		r.logger.Debug("sit rejected", "player", m.player.Username, "err", err)
		reply(m.reply, err)
		return
	}
	r.logger.Info("player sat", "player", m.player.Username, "seat", idx)
	r.bcast.Publish(wire.SitTableEvent(r.id, m.player, idx))
	r.tryStartGame(ctx)
	reply(m.reply, nil)
}

func (r *Room) handleBet(ctx context.Context, m betMsg) {
	err := r.table.Bet(m.playerID, m.amount)
	switch {
	case err == nil:
		r.afterAction(ctx)
		reply(m.reply, nil)
	case game.IsClientError(err):
		reply(m.reply, err)
	default:
		r.abortHand(ctx, err)
		reply(m.reply, nil)
	}
}

func (r *Room) handleFold(ctx context.Context, m foldMsg) {
	if m.fromTimer {
		if m.timerGen != r.timerGen {
			return
		}
		r.logger.Info("turn timer expired, folding", "player", m.playerID)
	}
	err := r.table.Fold(m.playerID)
	switch {
	case err == nil:
		r.afterAction(ctx)
		reply(m.reply, nil)
	case game.IsClientError(err):
		reply(m.reply, err)
	default:
		r.abortHand(ctx, err)
		reply(m.reply, nil)
	}
}

func (r *Room) handleFlag(m flagMsg) {
	var err error
	switch m.flag {
	case FlagSitOutNextHand:
		err = r.table.SetSitOutNextHand(m.playerID, m.value)
	case FlagSitOutNextBigBlind:
		err = r.table.SetSitOutNextBigBlind(m.playerID, m.value)
	case FlagWaitForBigBlind:
		err = r.table.SetWaitForBigBlind(m.playerID, m.value)
	case FlagCheckFold:
		err = r.table.SetCheckFold(m.playerID, m.value)
	case FlagCallAny:
		err = r.table.SetCallAny(m.playerID, m.value)
	}
	reply(m.reply, err)
}

func (r *Room) handleLeave(ctx context.Context, m leaveMsg) {
	h := r.table.Game
	if h != nil && h.HasPlayer(m.playerID) {
		// Seat indices must stay stable while a hand runs: fold the player
		// now, drop the seat when the hand completes.
		if err := r.table.MarkForRemoval(m.playerID); err != nil {
			reply(m.reply, err)
			return
		}
		r.logger.Info("player leaving mid-hand", "player", m.playerID)
		if err := h.Forfeit(m.playerID); err != nil && !game.IsClientError(err) {
			r.abortHand(ctx, err)
			reply(m.reply, nil)
			return
		}
		r.afterAction(ctx)
		reply(m.reply, nil)
		return
	}

	player, idx, err := r.table.Remove(m.playerID)
	if err != nil {
		reply(m.reply, err)
		return
	}
	r.logger.Info("player left", "player", player.Username, "seat", idx)
	r.bcast.Publish(wire.LeaveTable(r.id, player, idx))
	reply(m.reply, nil)
}

// tryStartGame deals the next hand if the table is ready. Not being ready
// (hand in progress, not enough players) leaves the room idle and is not an
// error for whoever triggered the attempt.
func (r *Room) tryStartGame(ctx context.Context) {
	if err := r.table.StartNewGame(); err != nil {
		r.logger.Debug("no new hand", "reason", err)
		return
	}

	h := r.table.Game
	r.lastBoard = 0
	r.logger.Info("new hand", "dealer", h.DealerIdx, "players", len(h.Players))
	r.bcast.Publish(wire.NewGame(r.id, wire.NewPublicGameState(h)))

	for seat, p := range h.Players {
		if !r.messenger.SendTo(ctx, p.Info.ID, wire.DealHand(r.id, h.Hole[seat])) {
			r.logger.Warn("hole cards undeliverable", "player", p.Info.ID)
		}
	}

	if h.Complete() {
		r.finishHand(ctx)
		return
	}
	r.armTimer()
}

// afterAction runs once a bet or fold has been applied: announce the new
// state, then either settle the hand or hand the turn (and its timer) to
// the next player.
func (r *Room) afterAction(ctx context.Context) {
	h := r.table.Game
	if h == nil {
		return
	}
	r.stopTimer()

	if len(h.Board) > r.lastBoard {
		r.bcast.Publish(wire.CommunityCards(r.id, h.Board))
		r.lastBoard = len(h.Board)
	}
	r.bcast.Publish(wire.GameUpdate(r.id, wire.NewPublicGameState(h)))

	if h.Complete() {
		r.finishHand(ctx)
		return
	}
	r.armTimer()
}

func (r *Room) finishHand(ctx context.Context) {
	r.stopTimer()
	h := r.table.Game
	if res := h.Result; res != nil {
		winner := h.Players[res.Winner].Info
		r.logger.Info("hand complete",
			"winner", winner.Username, "pot", res.Pot, "hand", res.Describe())
		r.bcast.Publish(wire.DeclareWinner(r.id, winner, res.Describe()))
	}
	r.table.ClearGame()
	r.removePending()
	r.tryStartGame(ctx)
}

// abortHand recovers from an engine invariant failure. The hand is
// discarded rather than crashing the room; seating and chat keep working
// and the next hand starts if the table allows it.
func (r *Room) abortHand(ctx context.Context, err error) {
	r.logger.Error("hand aborted", "err", err)
	r.stopTimer()
	r.table.ClearGame()
	r.removePending()
	r.tryStartGame(ctx)
}

func (r *Room) removePending() {
	for _, rm := range r.table.RemovePending() {
		r.logger.Info("seat removed", "player", rm.Player.Username, "seat", rm.Index)
		r.bcast.Publish(wire.LeaveTable(r.id, rm.Player, rm.Index))
	}
}

// armTimer starts the turn timer for whoever is to act. The timer fires a
// fold into the room's own mailbox, tagged with the arming generation so a
// fire that races with a real action is discarded.
func (r *Room) armTimer() {
	r.stopTimer()
	h := r.table.Game
	if h == nil {
		return
	}
	p, ok := h.CurrentPlayer()
	if !ok {
		return
	}

	r.timerGen++
	gen := r.timerGen
	id := p.ID
	r.timer = r.clock.AfterFunc(r.timeout, func() {
		select {
		case r.mailbox <- foldMsg{playerID: id, timerGen: gen, fromTimer: true}:
		default:
		}
	})
}

func (r *Room) stopTimer() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.timerGen++
}

// reply answers a request if one is waiting. Timer-driven folds carry no
// reply channel.
func reply(ch chan error, err error) {
	if ch != nil {
		ch <- err
	}
}
