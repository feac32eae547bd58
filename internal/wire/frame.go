package wire

import (
	"encoding/json"
	"fmt"

	"github.com/pokerhall/pokerhall/internal/game"
)

// ServerFrame is a received server message with its payload still raw, the
// receiving mirror of ServerMessage. Clients decode the payload once they
// have switched on the type.
type ServerFrame struct {
	RoomID      string          `json:"roomId,omitempty"`
	MessageType ServerType      `json:"messageType"`
	Payload     json.RawMessage `json:"payload,omitempty"`
}

// ParseServer decodes an inbound server frame.
func ParseServer(data []byte) (ServerFrame, error) {
	var frame ServerFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return ServerFrame{}, fmt.Errorf("malformed server message: %w", err)
	}
	if frame.MessageType == "" {
		return ServerFrame{}, fmt.Errorf("server message missing type")
	}
	return frame, nil
}

// Tables decodes a tableList payload.
func (f ServerFrame) Tables() ([]game.TableConfig, error) {
	var tables []game.TableConfig
	if err := json.Unmarshal(f.Payload, &tables); err != nil {
		return nil, fmt.Errorf("tableList payload: %w", err)
	}
	return tables, nil
}

// ChatLine decodes a chat payload.
func (f ServerFrame) ChatLine() (ChatPayload, error) {
	var p ChatPayload
	if err := json.Unmarshal(f.Payload, &p); err != nil {
		return ChatPayload{}, fmt.Errorf("chat payload: %w", err)
	}
	return p, nil
}

// Seating decodes a sitTable or leaveTable payload.
func (f ServerFrame) Seating() (SitTablePayload, error) {
	var p SitTablePayload
	if err := json.Unmarshal(f.Payload, &p); err != nil {
		return SitTablePayload{}, fmt.Errorf("%s payload: %w", f.MessageType, err)
	}
	return p, nil
}

// GameState decodes a newGame or gameUpdate payload.
func (f ServerFrame) GameState() (PublicGameState, error) {
	var state PublicGameState
	if err := json.Unmarshal(f.Payload, &state); err != nil {
		return PublicGameState{}, fmt.Errorf("%s payload: %w", f.MessageType, err)
	}
	return state, nil
}

// HoleCards decodes a dealHand payload.
func (f ServerFrame) HoleCards() ([]game.Card, error) {
	var cards []game.Card
	if err := json.Unmarshal(f.Payload, &cards); err != nil {
		return nil, fmt.Errorf("dealHand payload: %w", err)
	}
	return cards, nil
}

// Board decodes a communityCards payload.
func (f ServerFrame) Board() (CommunityCardsPayload, error) {
	var p CommunityCardsPayload
	if err := json.Unmarshal(f.Payload, &p); err != nil {
		return CommunityCardsPayload{}, fmt.Errorf("communityCards payload: %w", err)
	}
	return p, nil
}

// Winner decodes a declareWinner payload.
func (f ServerFrame) Winner() (DeclareWinnerPayload, error) {
	var p DeclareWinnerPayload
	if err := json.Unmarshal(f.Payload, &p); err != nil {
		return DeclareWinnerPayload{}, fmt.Errorf("declareWinner payload: %w", err)
	}
	return p, nil
}

// Reason decodes a lobbyError or roomError payload.
func (f ServerFrame) Reason() (string, error) {
	var reason string
	if err := json.Unmarshal(f.Payload, &reason); err != nil {
		return "", fmt.Errorf("%s payload: %w", f.MessageType, err)
	}
	return reason, nil
}
