package wire

import (
	"github.com/pokerhall/pokerhall/internal/game"
)

// ServerType tags a server-originated message.
type ServerType string

const (
	ServerTableList      ServerType = "tableList"
	ServerLobbyError     ServerType = "lobbyError"
	ServerChat           ServerType = "chat"
	ServerSitTable       ServerType = "sitTable"
	ServerRoomError      ServerType = "roomError"
	ServerNewGame        ServerType = "newGame"
	ServerGameUpdate     ServerType = "gameUpdate"
	ServerDealHand       ServerType = "dealHand"
	ServerCommunityCards ServerType = "communityCards"
	ServerDeclareWinner  ServerType = "declareWinner"
	ServerLeaveTable     ServerType = "leaveTable"
)

// ServerMessage is one outbound event. RoomID is empty for lobby-scoped
// messages.
type ServerMessage struct {
	RoomID      string     `json:"roomId,omitempty"`
	MessageType ServerType `json:"messageType"`
	Payload     any        `json:"payload,omitempty"`
}

// ChatPayload carries one chat line.
type ChatPayload struct {
	From    string `json:"from"`
	Message string `json:"message"`
}

// SitTablePayload announces a newly seated player.
type SitTablePayload struct {
	Player game.Player `json:"player"`
	Index  int         `json:"index"`
}

// CommunityCardsPayload carries the board as it is revealed.
type CommunityCardsPayload struct {
	Flop  []game.Card `json:"flop,omitempty"`
	Turn  *game.Card  `json:"turn,omitempty"`
	River *game.Card  `json:"river,omitempty"`
}

// DeclareWinnerPayload announces the hand's winner and what they won with.
type DeclareWinnerPayload struct {
	Winner game.Player `json:"winner"`
	Hand   string      `json:"hand"`
}

// TableList builds the lobby reply listing every table.
func TableList(tables []game.TableConfig) ServerMessage {
	return ServerMessage{MessageType: ServerTableList, Payload: tables}
}

// LobbyError builds a lobby-scoped error.
func LobbyError(reason string) ServerMessage {
	return ServerMessage{MessageType: ServerLobbyError, Payload: reason}
}

// Chat builds a chat broadcast.
func Chat(roomID, from, message string) ServerMessage {
	return ServerMessage{
		RoomID:      roomID,
		MessageType: ServerChat,
		Payload:     ChatPayload{From: from, Message: message},
	}
}

// SitTableEvent builds a seating broadcast.
func SitTableEvent(roomID string, player game.Player, index int) ServerMessage {
	return ServerMessage{
		RoomID:      roomID,
		MessageType: ServerSitTable,
		Payload:     SitTablePayload{Player: player, Index: index},
	}
}

// RoomError builds a room-scoped error.
func RoomError(roomID, reason string) ServerMessage {
	return ServerMessage{RoomID: roomID, MessageType: ServerRoomError, Payload: reason}
}

// NewGame builds the hand-start broadcast.
func NewGame(roomID string, state PublicGameState) ServerMessage {
	return ServerMessage{RoomID: roomID, MessageType: ServerNewGame, Payload: state}
}

// GameUpdate builds the after-action broadcast.
func GameUpdate(roomID string, state PublicGameState) ServerMessage {
	return ServerMessage{RoomID: roomID, MessageType: ServerGameUpdate, Payload: state}
}

// DealHand builds the private hole-card message for one player.
func DealHand(roomID string, cards []game.Card) ServerMessage {
	return ServerMessage{RoomID: roomID, MessageType: ServerDealHand, Payload: cards}
}

// CommunityCards builds the board-reveal broadcast.
func CommunityCards(roomID string, board []game.Card) ServerMessage {
	payload := CommunityCardsPayload{}
	if len(board) >= 3 {
		payload.Flop = board[:3]
	}
	if len(board) >= 4 {
		payload.Turn = &board[3]
	}
	if len(board) >= 5 {
		payload.River = &board[4]
	}
	return ServerMessage{RoomID: roomID, MessageType: ServerCommunityCards, Payload: payload}
}

// DeclareWinner builds the hand-result broadcast.
func DeclareWinner(roomID string, winner game.Player, hand string) ServerMessage {
	return ServerMessage{
		RoomID:      roomID,
		MessageType: ServerDeclareWinner,
		Payload:     DeclareWinnerPayload{Winner: winner, Hand: hand},
	}
}

// LeaveTable builds the stand-up broadcast.
func LeaveTable(roomID string, player game.Player, index int) ServerMessage {
	return ServerMessage{
		RoomID:      roomID,
		MessageType: ServerLeaveTable,
		Payload:     SitTablePayload{Player: player, Index: index},
	}
}
