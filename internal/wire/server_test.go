package wire

import (
	"encoding/json"
	"testing"

	"github.com/pokerhall/pokerhall/internal/game"
)

func mustCards(t *testing.T, strs ...string) []game.Card {
	t.Helper()
	cards := make([]game.Card, len(strs))
	for i, s := range strs {
		c, err := game.ParseCard(s)
		if err != nil {
			t.Fatalf("Failed to parse card %s: %v", s, err)
		}
		cards[i] = c
	}
	return cards
}

func TestCommunityCardsGrowth(t *testing.T) {
	flop := mustCards(t, "As", "Kd", "7c")
	msg := CommunityCards("7", flop)
	payload := msg.Payload.(CommunityCardsPayload)
	if len(payload.Flop) != 3 {
		t.Errorf("Flop length mismatch: got %d, want 3", len(payload.Flop))
	}
	if payload.Turn != nil || payload.River != nil {
		t.Error("Turn and river should be unset on the flop")
	}

	payload = CommunityCards("7", mustCards(t, "As", "Kd", "7c", "2s")).Payload.(CommunityCardsPayload)
	if payload.Turn == nil || payload.Turn.String() != "2s" {
		t.Errorf("Turn mismatch: got %v, want 2s", payload.Turn)
	}
	if payload.River != nil {
		t.Error("River should be unset on the turn")
	}

	payload = CommunityCards("7", mustCards(t, "As", "Kd", "7c", "2s", "9h")).Payload.(CommunityCardsPayload)
	if payload.River == nil || payload.River.String() != "9h" {
		t.Errorf("River mismatch: got %v, want 9h", payload.River)
	}
}

// TestGameStateWireFormat pins the JSON field names clients depend on.
func TestGameStateWireFormat(t *testing.T) {
	state := PublicGameState{
		ID:                 "7",
		Players:            []game.Player{{ID: "p1", Username: "Alice"}},
		DealerIdx:          0,
		GameActivePlayers:  []int{0},
		RoundActivePlayers: []int{0},
		CurrentPlayerIdx:   0,
		Stacks:             []int{98},
		Bets:               []int{2},
		MinRaise:           2,
		ToCall:             2,
		Pot:                3,
	}

	data, err := json.Marshal(GameUpdate("7", state))
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if decoded["messageType"] != "gameUpdate" {
		t.Errorf("messageType mismatch: got %v", decoded["messageType"])
	}
	if decoded["roomId"] != "7" {
		t.Errorf("roomId mismatch: got %v", decoded["roomId"])
	}

	payload, ok := decoded["payload"].(map[string]any)
	if !ok {
		t.Fatalf("Payload is %T, want object", decoded["payload"])
	}
	for _, key := range []string{
		"id", "players", "dealerIdx", "gameActivePlayers", "roundActivePlayers",
		"currentPlayerIdx", "stacks", "bets", "minRaise", "toCall", "pot",
	} {
		if _, ok := payload[key]; !ok {
			t.Errorf("Missing payload key %q", key)
		}
	}
	if payload["toCall"] != float64(2) {
		t.Errorf("toCall mismatch: got %v, want 2", payload["toCall"])
	}
}

// TestServerFrameRoundTrip runs constructed messages through the path a
// client takes: marshal, parse the frame, decode the payload by type.
func TestServerFrameRoundTrip(t *testing.T) {
	winner := game.Player{ID: "p2", Username: "Bob"}
	data, err := json.Marshal(DeclareWinner("7", winner, "Pair"))
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}
	frame, err := ParseServer(data)
	if err != nil {
		t.Fatalf("Failed to parse frame: %v", err)
	}
	if frame.MessageType != ServerDeclareWinner {
		t.Errorf("Type mismatch: got %s, want %s", frame.MessageType, ServerDeclareWinner)
	}
	result, err := frame.Winner()
	if err != nil {
		t.Fatalf("Failed to decode winner: %v", err)
	}
	if result.Winner != winner {
		t.Errorf("Winner mismatch: got %+v, want %+v", result.Winner, winner)
	}
	if result.Hand != "Pair" {
		t.Errorf("Hand mismatch: got %s, want Pair", result.Hand)
	}

	data, err = json.Marshal(DealHand("7", mustCards(t, "As", "Kh")))
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}
	frame, err = ParseServer(data)
	if err != nil {
		t.Fatalf("Failed to parse frame: %v", err)
	}
	cards, err := frame.HoleCards()
	if err != nil {
		t.Fatalf("Failed to decode hole cards: %v", err)
	}
	if len(cards) != 2 || cards[0].String() != "As" || cards[1].String() != "Kh" {
		t.Errorf("Hole cards mismatch: got %v", cards)
	}

	data, err = json.Marshal(RoomError("7", "Not your turn"))
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}
	frame, err = ParseServer(data)
	if err != nil {
		t.Fatalf("Failed to parse frame: %v", err)
	}
	reason, err := frame.Reason()
	if err != nil {
		t.Fatalf("Failed to decode reason: %v", err)
	}
	if reason != "Not your turn" {
		t.Errorf("Reason mismatch: got %s", reason)
	}
}

func TestParseServerRejects(t *testing.T) {
	if _, err := ParseServer([]byte(`{nope`)); err == nil {
		t.Error("Expected error for malformed frame")
	}
	if _, err := ParseServer([]byte(`{"payload":1}`)); err == nil {
		t.Error("Expected error for frame without a type")
	}
}
