// Package wire defines the JSON messages exchanged with clients: the
// client-originated commands and the server-originated events, each a flat
// envelope with a type tag, an optional payload, and a roomId for
// room-scoped messages.
package wire

import (
	"encoding/json"
	"fmt"
)

// ClientType tags a client-originated message.
type ClientType string

const (
	ClientGetTables          ClientType = "GetTables"
	ClientSubscribe          ClientType = "Subscribe"
	ClientChat               ClientType = "Chat"
	ClientSitTable           ClientType = "SitTable"
	ClientBet                ClientType = "Bet"
	ClientFold               ClientType = "Fold"
	ClientSitOutNextHand     ClientType = "SitOutNextHand"
	ClientSitOutNextBigBlind ClientType = "SitOutNextBigBlind"
	ClientWaitForBigBlind    ClientType = "WaitForBigBlind"
	ClientCheckFold          ClientType = "CheckFold"
	ClientCallAny            ClientType = "CallAny"
	ClientLeaveTable         ClientType = "LeaveTable"
)

// RoomScoped reports whether the message type addresses a room and
// therefore requires a roomId.
func (t ClientType) RoomScoped() bool {
	switch t {
	case ClientGetTables:
		return false
	case ClientSubscribe, ClientChat, ClientSitTable, ClientBet, ClientFold,
		ClientSitOutNextHand, ClientSitOutNextBigBlind, ClientWaitForBigBlind,
		ClientCheckFold, ClientCallAny, ClientLeaveTable:
		return true
	}
	return false
}

func (t ClientType) known() bool {
	return t == ClientGetTables || t.RoomScoped()
}

// ClientMessage is one inbound command. Payload stays raw until the handler
// for the type decodes it.
type ClientMessage struct {
	RoomID  string          `json:"roomId,omitempty"`
	Type    ClientType      `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// SitPayload is the SitTable request body: the buy-in the player wants to
// bring to the table.
type SitPayload struct {
	Chips int `json:"chips"`
}

// NewClientMessage builds a command with its payload marshalled. A nil
// payload is omitted.
func NewClientMessage(roomID string, t ClientType, payload any) (ClientMessage, error) {
	msg := ClientMessage{RoomID: roomID, Type: t}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return ClientMessage{}, fmt.Errorf("encode %s payload: %w", t, err)
		}
		msg.Payload = raw
	}
	return msg, nil
}

// ParseClient decodes and validates an inbound frame.
func ParseClient(data []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ClientMessage{}, fmt.Errorf("malformed message: %w", err)
	}
	if !msg.Type.known() {
		return ClientMessage{}, fmt.Errorf("unknown message type %q", msg.Type)
	}
	if msg.Type.RoomScoped() && msg.RoomID == "" {
		return ClientMessage{}, fmt.Errorf("%s requires a roomId", msg.Type)
	}
	return msg, nil
}

// ChatText decodes a Chat payload.
func (m ClientMessage) ChatText() (string, error) {
	var text string
	if err := json.Unmarshal(m.Payload, &text); err != nil {
		return "", fmt.Errorf("chat payload: %w", err)
	}
	return text, nil
}

// SitChips decodes a SitTable payload.
func (m ClientMessage) SitChips() (int, error) {
	var payload SitPayload
	if err := json.Unmarshal(m.Payload, &payload); err != nil {
		return 0, fmt.Errorf("sitTable payload: %w", err)
	}
	return payload.Chips, nil
}

// BetAmount decodes a Bet payload.
func (m ClientMessage) BetAmount() (int, error) {
	var amount int
	if err := json.Unmarshal(m.Payload, &amount); err != nil {
		return 0, fmt.Errorf("bet payload: %w", err)
	}
	return amount, nil
}

// FlagValue decodes the boolean payload shared by the per-seat flag
// messages.
func (m ClientMessage) FlagValue() (bool, error) {
	var value bool
	if err := json.Unmarshal(m.Payload, &value); err != nil {
		return false, fmt.Errorf("%s payload: %w", m.Type, err)
	}
	return value, nil
}
