package actor

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pokerhall/pokerhall/internal/bank"
	"github.com/pokerhall/pokerhall/internal/game"
	"github.com/pokerhall/pokerhall/internal/wire"
)

// ErrPlayerClosed is returned when a command is handed to a player actor
// that has already stopped.
var ErrPlayerClosed = errors.New("player is closed")

const (
	// outboundBuffer is the depth of the per-player outbound queue. The
	// websocket write pump drains it; if it backs up, messages are dropped
	// rather than stalling room broadcasts.
	outboundBuffer = 256

	teardownTimeout = 5 * time.Second
)

// Player is the actor behind one client connection. It serialises the
// client's commands, routes them to rooms, relays room broadcasts onto the
// connection's outbound queue, and tears everything down when the
// connection goes away.
type Player struct {
	info    game.Player
	rooms   *Registry[string, *Room]
	players *Registry[string, *Player]
	chips   bank.ChipSource
	logger  *log.Logger

	mailbox chan playerMsg
	out     chan wire.ServerMessage
	done    chan struct{}

	stop     chan struct{}
	stopOnce sync.Once

	// Owned by the actor goroutine.
	subs   map[string]*Subscription
	seated map[string]bool
}

type playerMsg interface{ playerMsg() }

type inboundMsg struct{ msg wire.ClientMessage }
type privateMsg struct{ msg wire.ServerMessage }

func (inboundMsg) playerMsg() {}
func (privateMsg) playerMsg() {}

// NewPlayer starts a player actor and registers it. The actor runs until
// ctx is cancelled or Stop is called; either way it deregisters itself,
// leaves any tables it sat at, and closes Done.
func NewPlayer(ctx context.Context, info game.Player, rooms *Registry[string, *Room],
	players *Registry[string, *Player], chips bank.ChipSource, logger *log.Logger) *Player {

	p := &Player{
		info:    info,
		rooms:   rooms,
		players: players,
		chips:   chips,
		logger:  logger.WithPrefix("player").With("player", info.Username),
		mailbox: make(chan playerMsg, DefaultChannelSize),
		out:     make(chan wire.ServerMessage, outboundBuffer),
		done:    make(chan struct{}),
		stop:    make(chan struct{}),
		subs:    make(map[string]*Subscription),
		seated:  make(map[string]bool),
	}
	players.Set(ctx, info.ID, p)
	go p.run(ctx)
	return p
}

// Info returns the player's identity.
func (p *Player) Info() game.Player {
	return p.info
}

// Out is the queue of messages bound for the client. It is never closed;
// consumers select against Done.
func (p *Player) Out() <-chan wire.ServerMessage {
	return p.out
}

// Done is closed once the actor has fully torn down.
func (p *Player) Done() <-chan struct{} {
	return p.done
}

// Stop asks the actor to tear down. Safe to call more than once.
func (p *Player) Stop() {
	p.stopOnce.Do(func() { close(p.stop) })
}

// Handle queues one client command for processing.
func (p *Player) Handle(ctx context.Context, msg wire.ClientMessage) error {
	select {
	case p.mailbox <- inboundMsg{msg: msg}:
		return nil
	case <-p.done:
		return ErrPlayerClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Deliver queues a server-originated message for the client, bypassing room
// broadcast. Best effort: a full mailbox or dead actor drops the message
// and reports false.
func (p *Player) Deliver(msg wire.ServerMessage) bool {
	select {
	case p.mailbox <- privateMsg{msg: msg}:
		return true
	case <-p.done:
		return false
	default:
		return false
	}
}

func (p *Player) run(ctx context.Context) {
	defer p.teardown()
	p.logger.Debug("player actor started")
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stop:
			return
		case m := <-p.mailbox:
			switch m := m.(type) {
			case inboundMsg:
				p.handleClient(ctx, m.msg)
			case privateMsg:
				p.send(m.msg)
			}
		}
	}
}

// teardown deregisters the actor before closing the outbound side, so no
// new room can be told to deliver to a dead handle.
func (p *Player) teardown() {
	ctx, cancel := context.WithTimeout(context.Background(), teardownTimeout)
	defer cancel()

	p.players.CompareAndDelete(ctx, p.info.ID, p)
	for roomID := range p.seated {
		room, ok := p.rooms.Get(ctx, roomID)
		if !ok {
			continue
		}
		if err := room.Leave(ctx, p.info.ID); err != nil {
			p.logger.Debug("leave on teardown", "table", roomID, "err", err)
		}
	}
	for _, sub := range p.subs {
		sub.Close()
	}
	close(p.done)
	p.logger.Debug("player actor stopped")
}

func (p *Player) handleClient(ctx context.Context, msg wire.ClientMessage) {
	if msg.Type == wire.ClientGetTables {
		p.handleGetTables(ctx)
		return
	}

	room, ok := p.rooms.Get(ctx, msg.RoomID)
	if !ok {
		p.send(wire.RoomError(msg.RoomID, "Not a valid room id"))
		return
	}

	switch msg.Type {
	case wire.ClientSubscribe:
		p.handleSubscribe(ctx, room)
	case wire.ClientChat:
		text, err := msg.ChatText()
		if err != nil {
			p.send(wire.RoomError(room.ID(), err.Error()))
			return
		}
		room.Chat(p.info.ID, text)
	case wire.ClientSitTable:
		p.handleSitTable(ctx, room, msg)
	case wire.ClientBet:
		amount, err := msg.BetAmount()
		if err != nil {
			p.send(wire.RoomError(room.ID(), err.Error()))
			return
		}
		if err := room.Bet(ctx, p.info.ID, amount); err != nil {
			p.send(wire.RoomError(room.ID(), err.Error()))
		}
	case wire.ClientFold:
		if err := room.Fold(ctx, p.info.ID); err != nil {
			p.send(wire.RoomError(room.ID(), err.Error()))
		}
	case wire.ClientSitOutNextHand, wire.ClientSitOutNextBigBlind,
		wire.ClientWaitForBigBlind, wire.ClientCheckFold, wire.ClientCallAny:
		p.handleFlag(ctx, room, msg)
	case wire.ClientLeaveTable:
		if err := room.Leave(ctx, p.info.ID); err != nil {
			p.send(wire.RoomError(room.ID(), err.Error()))
			return
		}
		delete(p.seated, room.ID())
	}
}

func (p *Player) handleGetTables(ctx context.Context) {
	rooms := p.rooms.GetAll(ctx)
	tables := make([]game.TableConfig, 0, len(rooms))
	for _, room := range rooms {
		cfg, err := room.TableConfig(ctx)
		if err != nil {
			continue
		}
		tables = append(tables, cfg)
	}
	sort.Slice(tables, func(i, j int) bool { return tables[i].ID < tables[j].ID })
	p.send(wire.TableList(tables))
}

func (p *Player) handleSubscribe(ctx context.Context, room *Room) {
	sub, err := room.Subscribe(ctx)
	if err != nil {
		p.send(wire.RoomError(room.ID(), err.Error()))
		return
	}
	if old, ok := p.subs[room.ID()]; ok {
		old.Close()
	}
	p.subs[room.ID()] = sub
	go p.relay(sub)
	p.logger.Debug("subscribed", "table", room.ID())
}

func (p *Player) handleSitTable(ctx context.Context, room *Room, msg wire.ClientMessage) {
	chips, err := msg.SitChips()
	if err != nil {
		p.send(wire.RoomError(room.ID(), err.Error()))
		return
	}

	balance, err := p.chips.Balance(ctx, p.info.ID)
	switch {
	case errors.Is(err, bank.ErrUnknownPlayer):
		balance = 0
	case err != nil:
		p.logger.Error("chip source failed", "err", err)
		p.send(wire.RoomError(room.ID(), "Chip source unavailable"))
		return
	}
	if chips <= 0 || chips > balance {
		p.send(wire.RoomError(room.ID(), "Insufficient Chips"))
		return
	}

	if err := room.Sit(ctx, p.info); err != nil {
		p.send(wire.RoomError(room.ID(), err.Error()))
		return
	}
	p.seated[room.ID()] = true
}

func (p *Player) handleFlag(ctx context.Context, room *Room, msg wire.ClientMessage) {
	value, err := msg.FlagValue()
	if err != nil {
		p.send(wire.RoomError(room.ID(), err.Error()))
		return
	}
	var flag SeatFlag
	switch msg.Type {
	case wire.ClientSitOutNextHand:
		flag = FlagSitOutNextHand
	case wire.ClientSitOutNextBigBlind:
		flag = FlagSitOutNextBigBlind
	case wire.ClientWaitForBigBlind:
		flag = FlagWaitForBigBlind
	case wire.ClientCheckFold:
		flag = FlagCheckFold
	case wire.ClientCallAny:
		flag = FlagCallAny
	}
	if err := room.SetFlag(ctx, p.info.ID, flag, value); err != nil {
		p.send(wire.RoomError(room.ID(), err.Error()))
	}
}

// relay copies one subscription's broadcasts onto the outbound queue until
// the subscription closes or the actor tears down.
func (p *Player) relay(sub *Subscription) {
	for msg := range sub.Recv() {
		if !p.send(msg) {
			sub.Close()
			return
		}
	}
}

// send queues an outbound message. A full queue drops the message (the
// write pump is too far behind to care); a closed actor reports false.
func (p *Player) send(msg wire.ServerMessage) bool {
	select {
	case p.out <- msg:
		return true
	case <-p.done:
		return false
	default:
		p.logger.Warn("outbound queue full, dropping", "messageType", msg.MessageType)
		return true
	}
}

// Directory adapts the player registry to the Messenger interface rooms use
// for private delivery.
type Directory struct {
	players *Registry[string, *Player]
}

// NewDirectory wraps a player registry.
func NewDirectory(players *Registry[string, *Player]) *Directory {
	return &Directory{players: players}
}

// SendTo implements Messenger.
func (d *Directory) SendTo(ctx context.Context, playerID string, msg wire.ServerMessage) bool {
	p, ok := d.players.Get(ctx, playerID)
	if !ok {
		return false
	}
	return p.Deliver(msg)
}
