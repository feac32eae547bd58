// Package tui is the interactive terminal client: a websocket client
// paired with a Bubble Tea program that renders the table and turns typed
// commands into wire messages.
package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/pokerhall/pokerhall/internal/game"
	"github.com/pokerhall/pokerhall/internal/wire"
)

// Model is the Bubble Tea model for the poker client.
type Model struct {
	client   *Client
	logger   *log.Logger
	username string

	logViewport viewport.Model
	input       textinput.Model

	gameLog []string
	roomID  string
	state   *wire.PublicGameState
	hole    []game.Card

	width       int
	height      int
	initialized bool
	quitting    bool
}

type serverFrameMsg struct{ frame wire.ServerFrame }
type connClosedMsg struct{}

// NewModel creates the client model. The client must already be connected.
func NewModel(client *Client, username string, logger *log.Logger) *Model {
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "chat, or /tables /sit <table> <chips> /bet <n> /check /fold ..."
	ti.Focus()
	ti.CharLimit = 200
	ti.Prompt = "> "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)

	return &Model{
		client:      client,
		logger:      logger.WithPrefix("tui"),
		username:    username,
		logViewport: vp,
		input:       ti,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.listen())
}

// listen waits for the next server frame.
func (m *Model) listen() tea.Cmd {
	return func() tea.Msg {
		frame, ok := <-m.client.Events()
		if !ok {
			return connClosedMsg{}
		}
		return serverFrameMsg{frame: frame}
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			m.client.Close()
			return m, tea.Sequence(tea.ClearScreen, tea.Quit)
		case "enter":
			line := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			if line != "" {
				m.handleInput(line)
			}
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.logViewport, cmd = m.logViewport.Update(msg)
			cmds = append(cmds, cmd)
		}

	case serverFrameMsg:
		m.applyFrame(msg.frame)
		cmds = append(cmds, m.listen())

	case connClosedMsg:
		m.addLog(ErrorStyle.Render("connection closed"))
		m.quitting = true
		return m, tea.Sequence(tea.ClearScreen, tea.Quit)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *Model) resize() {
	tableLines := strings.Count(m.renderTable(), "\n") + 1
	h := m.height - tableLines - 3
	if h < 3 {
		h = 3
	}
	m.logViewport.Width = m.width
	m.logViewport.Height = h
	m.input.Width = m.width - 4
	m.initialized = true
	m.refreshLog()
}

// handleInput turns one typed line into a wire command. Lines without a
// leading slash are chat.
func (m *Model) handleInput(line string) {
	if !strings.HasPrefix(line, "/") {
		if m.roomID == "" {
			m.addLog(ErrorStyle.Render("join a table before chatting (/tables, /sit)"))
			return
		}
		m.sendCommand(m.roomID, wire.ClientChat, line)
		return
	}

	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]
	switch cmd {
	case "/quit":
		m.quitting = true
		m.client.Close()

	case "/tables":
		m.sendCommand("", wire.ClientGetTables, nil)

	case "/watch":
		if len(args) != 1 {
			m.addLog(ErrorStyle.Render("usage: /watch <table>"))
			return
		}
		m.roomID = args[0]
		m.sendCommand(m.roomID, wire.ClientSubscribe, nil)

	case "/sit":
		if len(args) != 2 {
			m.addLog(ErrorStyle.Render("usage: /sit <table> <chips>"))
			return
		}
		chips, err := strconv.Atoi(args[1])
		if err != nil {
			m.addLog(ErrorStyle.Render("chips must be a number"))
			return
		}
		m.roomID = args[0]
		m.sendCommand(m.roomID, wire.ClientSubscribe, nil)
		m.sendCommand(m.roomID, wire.ClientSitTable, wire.SitPayload{Chips: chips})

	case "/bet", "/raise":
		if len(args) != 1 {
			m.addLog(ErrorStyle.Render("usage: " + cmd + " <amount>"))
			return
		}
		amount, err := strconv.Atoi(args[0])
		if err != nil {
			m.addLog(ErrorStyle.Render("amount must be a number"))
			return
		}
		m.sendCommand(m.roomID, wire.ClientBet, amount)

	case "/check", "/call":
		if m.state == nil {
			m.addLog(ErrorStyle.Render("no hand in progress"))
			return
		}
		m.sendCommand(m.roomID, wire.ClientBet, m.state.ToCall)

	case "/fold":
		m.sendCommand(m.roomID, wire.ClientFold, nil)

	case "/leave":
		m.sendCommand(m.roomID, wire.ClientLeaveTable, nil)

	case "/checkfold":
		m.sendCommand(m.roomID, wire.ClientCheckFold, flagValue(args))
	case "/callany":
		m.sendCommand(m.roomID, wire.ClientCallAny, flagValue(args))
	case "/sitout":
		m.sendCommand(m.roomID, wire.ClientSitOutNextHand, flagValue(args))
	case "/sitoutbb":
		m.sendCommand(m.roomID, wire.ClientSitOutNextBigBlind, flagValue(args))
	case "/waitbb":
		m.sendCommand(m.roomID, wire.ClientWaitForBigBlind, flagValue(args))

	default:
		m.addLog(ErrorStyle.Render("unknown command " + cmd))
	}
}

func flagValue(args []string) bool {
	return len(args) == 0 || args[0] != "off"
}

func (m *Model) sendCommand(roomID string, t wire.ClientType, payload any) {
	if t.RoomScoped() && roomID == "" {
		m.addLog(ErrorStyle.Render("no table selected (/watch or /sit first)"))
		return
	}
	msg, err := wire.NewClientMessage(roomID, t, payload)
	if err != nil {
		m.addLog(ErrorStyle.Render(err.Error()))
		return
	}
	if err := m.client.Send(msg); err != nil {
		m.addLog(ErrorStyle.Render(err.Error()))
	}
}

// applyFrame folds one server frame into the display state.
func (m *Model) applyFrame(frame wire.ServerFrame) {
	switch frame.MessageType {
	case wire.ServerTableList:
		tables, err := frame.Tables()
		if err != nil {
			m.logger.Warn("bad tableList", "err", err)
			return
		}
		m.addLog(EventStyle.Render(fmt.Sprintf("%d table(s):", len(tables))))
		for _, t := range tables {
			m.addLog(fmt.Sprintf("  %s  %q  blinds %d/%d  seats %d-%d",
				t.ID, t.Name, t.SmallBlind, t.BigBlind, t.MinPlayers, t.MaxPlayers))
		}

	case wire.ServerChat:
		p, err := frame.ChatLine()
		if err != nil {
			return
		}
		m.addLog(ChatStyle.Render(p.From + ": " + p.Message))

	case wire.ServerSitTable:
		p, err := frame.Seating()
		if err != nil {
			return
		}
		m.addLog(EventStyle.Render(fmt.Sprintf("%s sat at seat %d", p.Player.Username, p.Index)))

	case wire.ServerLeaveTable:
		p, err := frame.Seating()
		if err != nil {
			return
		}
		m.addLog(EventStyle.Render(fmt.Sprintf("%s left seat %d", p.Player.Username, p.Index)))

	case wire.ServerNewGame:
		state, err := frame.GameState()
		if err != nil {
			return
		}
		m.state = &state
		m.hole = nil
		m.addLog(StatusStyle.Render(fmt.Sprintf("new hand, dealer seat %d", state.DealerIdx)))

	case wire.ServerGameUpdate:
		state, err := frame.GameState()
		if err != nil {
			return
		}
		m.state = &state

	case wire.ServerDealHand:
		cards, err := frame.HoleCards()
		if err != nil {
			return
		}
		m.hole = cards
		m.addLog("your cards: " + formatCards(cards))

	case wire.ServerCommunityCards:
		p, err := frame.Board()
		if err != nil {
			return
		}
		switch {
		case p.River != nil:
			m.addLog("river: " + formatCards([]game.Card{*p.River}))
		case p.Turn != nil:
			m.addLog("turn: " + formatCards([]game.Card{*p.Turn}))
		default:
			m.addLog("flop: " + formatCards(p.Flop))
		}

	case wire.ServerDeclareWinner:
		p, err := frame.Winner()
		if err != nil {
			return
		}
		m.addLog(WinnerStyle.Render(fmt.Sprintf("%s wins (%s)", p.Winner.Username, p.Hand)))

	case wire.ServerRoomError, wire.ServerLobbyError:
		reason, err := frame.Reason()
		if err != nil {
			return
		}
		m.addLog(ErrorStyle.Render("error: " + reason))
	}
}

func (m *Model) addLog(entry string) {
	m.gameLog = append(m.gameLog, entry)
	m.refreshLog()
}

func (m *Model) refreshLog() {
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 {
		m.logViewport.GotoBottom()
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	header := HeaderStyle.Render(fmt.Sprintf("pokerhall - %s", m.username))
	if m.roomID != "" {
		header += EventStyle.Render("  table " + m.roomID)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.logViewport.View(),
		m.renderTable(),
		m.input.View(),
	)
}

// renderTable draws the seats, board, and pot of the hand in progress.
func (m *Model) renderTable() string {
	if m.state == nil {
		return EventStyle.Render("(no hand in progress)")
	}
	st := m.state

	inHand := make(map[int]bool, len(st.GameActivePlayers))
	for _, idx := range st.GameActivePlayers {
		inHand[idx] = true
	}
	canAct := make(map[int]bool, len(st.RoundActivePlayers))
	for _, idx := range st.RoundActivePlayers {
		canAct[idx] = true
	}

	var b strings.Builder
	for i, p := range st.Players {
		marker := "  "
		if i == st.DealerIdx {
			marker = "D "
		}
		line := fmt.Sprintf("%s#%d %-12s stack %-4d bet %-4d", marker, i, p.Username, st.Stacks[i], st.Bets[i])
		switch {
		case i == st.CurrentPlayerIdx && canAct[i]:
			line = TurnStyle.Render(line + "  <- to act")
		case !inHand[i]:
			line = EventStyle.Render(line + "  (out)")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("board %s  pot %s  to call %d",
		formatCards(st.CommunityCards), StatusStyle.Render(strconv.Itoa(st.Pot)), st.ToCall))
	if len(m.hole) > 0 {
		b.WriteString("  you " + formatCards(m.hole))
	}
	return b.String()
}

// formatCards renders cards with suit colours.
func formatCards(cards []game.Card) string {
	if len(cards) == 0 {
		return "[]"
	}
	formatted := make([]string, 0, len(cards))
	for _, card := range cards {
		if card.Suit == game.Hearts || card.Suit == game.Diamonds {
			formatted = append(formatted, RedCardStyle.Render(card.String()))
		} else {
			formatted = append(formatted, BlackCardStyle.Render(card.String()))
		}
	}
	return "[" + strings.Join(formatted, " ") + "]"
}
