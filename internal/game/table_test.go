package game

import (
	"errors"
	"testing"

	"github.com/pokerhall/pokerhall/internal/randutil"
)

func testTable(maxPlayers int) *Table {
	return NewTable(TableConfig{
		ID:         "t1",
		Name:       "Test Table",
		MinPlayers: 2,
		MaxPlayers: maxPlayers,
		SmallBlind: 5,
		BigBlind:   10,
	}, randutil.New(42), 1000)
}

func seat(t *testing.T, table *Table, names ...string) {
	t.Helper()
	for _, name := range names {
		if _, err := table.SitTable(Player{ID: name, Username: name}); err != nil {
			t.Fatalf("Error seating %s: %v", name, err)
		}
	}
}

func rosterIDs(table *Table) []string {
	ids := make([]string, len(table.Players))
	for i, p := range table.Players {
		ids[i] = p.Info.ID
	}
	return ids
}

func handIDs(table *Table) []string {
	ids := make([]string, len(table.Game.Players))
	for i, p := range table.Game.Players {
		ids[i] = p.Info.ID
	}
	return ids
}

func TestSitTable(t *testing.T) {
	t.Parallel()
	table := testTable(2)

	idx, err := table.SitTable(Player{ID: "Alice"})
	if err != nil || idx != 0 {
		t.Errorf("First player should take seat 0, got %d, %v", idx, err)
	}
	idx, err = table.SitTable(Player{ID: "Bob"})
	if err != nil || idx != 1 {
		t.Errorf("Second player should take seat 1, got %d, %v", idx, err)
	}

	if _, err := table.SitTable(Player{ID: "Alice"}); !errors.Is(err, ErrAlreadySeated) {
		t.Errorf("Duplicate seat should be rejected, got %v", err)
	}
	if _, err := table.SitTable(Player{ID: "Charlie"}); !errors.Is(err, ErrTableFull) {
		t.Errorf("Full table should be rejected, got %v", err)
	}
}

func TestRemove(t *testing.T) {
	t.Parallel()
	table := testTable(9)
	seat(t, table, "Alice", "Bob", "Charlie")

	info, idx, err := table.Remove("Bob")
	if err != nil {
		t.Fatalf("Error removing player: %v", err)
	}
	if info.ID != "Bob" || idx != 1 {
		t.Errorf("Expected Bob at seat 1, got %s at %d", info.ID, idx)
	}
	if got := rosterIDs(table); len(got) != 2 || got[0] != "Alice" || got[1] != "Charlie" {
		t.Errorf("Roster after removal wrong: %v", got)
	}

	if _, _, err := table.Remove("Bob"); !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("Removing an absent player should fail, got %v", err)
	}
}

func TestMarkForRemovalAndRemovePending(t *testing.T) {
	t.Parallel()
	table := testTable(9)
	seat(t, table, "Alice", "Bob", "Charlie")

	if err := table.MarkForRemoval("Alice"); err != nil {
		t.Fatalf("Error marking Alice: %v", err)
	}
	if err := table.MarkForRemoval("Charlie"); err != nil {
		t.Fatalf("Error marking Charlie: %v", err)
	}

	removed := table.RemovePending()
	if len(removed) != 2 {
		t.Fatalf("Expected 2 removals, got %d", len(removed))
	}
	// Indices reflect the roster at the moment of each removal.
	if removed[0].Player.ID != "Alice" || removed[0].Index != 0 {
		t.Errorf("First removal wrong: %s at %d", removed[0].Player.ID, removed[0].Index)
	}
	if removed[1].Player.ID != "Charlie" || removed[1].Index != 1 {
		t.Errorf("Second removal wrong: %s at %d", removed[1].Player.ID, removed[1].Index)
	}
	if got := rosterIDs(table); len(got) != 1 || got[0] != "Bob" {
		t.Errorf("Only Bob should remain, got %v", got)
	}

	if again := table.RemovePending(); len(again) != 0 {
		t.Errorf("Nothing left to remove, got %v", again)
	}
}

func TestStartNewGameRequiresPlayers(t *testing.T) {
	t.Parallel()
	table := testTable(9)
	seat(t, table, "Alice")

	if err := table.StartNewGame(); !errors.Is(err, ErrNotEnoughPlayers) {
		t.Errorf("One player should not start a hand, got %v", err)
	}

	seat(t, table, "Bob")
	if err := table.SetSitOutNextHand("Bob", true); err != nil {
		t.Fatalf("Error setting flag: %v", err)
	}
	if err := table.StartNewGame(); !errors.Is(err, ErrNotEnoughPlayers) {
		t.Errorf("Sitting-out seats should not count, got %v", err)
	}

	if err := table.SetSitOutNextHand("Bob", false); err != nil {
		t.Fatalf("Error clearing flag: %v", err)
	}
	if err := table.StartNewGame(); err != nil {
		t.Errorf("Hand should start with two willing players, got %v", err)
	}
}

func TestStartNewGameWhileInProgress(t *testing.T) {
	t.Parallel()
	table := testTable(9)
	seat(t, table, "Alice", "Bob")

	if err := table.StartNewGame(); err != nil {
		t.Fatalf("Error starting hand: %v", err)
	}
	if err := table.StartNewGame(); !errors.Is(err, ErrGameInProgress) {
		t.Errorf("Open hand should block a new one, got %v", err)
	}

	table.ClearGame()
	if err := table.StartNewGame(); err != nil {
		t.Errorf("Cleared table should start a new hand, got %v", err)
	}
}

func TestDealerRotation(t *testing.T) {
	t.Parallel()
	table := testTable(9)
	seat(t, table, "Alice", "Bob", "Charlie")

	want := []int{0, 1, 2, 0}
	for i, dealer := range want {
		if err := table.StartNewGame(); err != nil {
			t.Fatalf("Error starting hand %d: %v", i, err)
		}
		if table.Game.DealerIdx != dealer {
			t.Errorf("Hand %d dealer should be %d, got %d", i, dealer, table.Game.DealerIdx)
		}
		table.ClearGame()
	}
}

func TestSurvivorsBeforeJoiners(t *testing.T) {
	t.Parallel()
	table := testTable(9)
	seat(t, table, "Alice", "Bob")

	if err := table.StartNewGame(); err != nil {
		t.Fatalf("Error starting hand: %v", err)
	}
	table.ClearGame()

	// Charlie joins between hands and is dealt in after the survivors.
	seat(t, table, "Charlie")
	if err := table.StartNewGame(); err != nil {
		t.Fatalf("Error starting hand: %v", err)
	}
	got := handIDs(table)
	if len(got) != 3 || got[0] != "Alice" || got[1] != "Bob" || got[2] != "Charlie" {
		t.Errorf("Expected survivors then joiners, got %v", got)
	}
	if table.Game.DealerIdx != 1 {
		t.Errorf("Dealer should rotate to seat 1, got %d", table.Game.DealerIdx)
	}
}

func TestSitOutNextHandSkipsSeat(t *testing.T) {
	t.Parallel()
	table := testTable(9)
	seat(t, table, "Alice", "Bob", "Charlie")

	if err := table.SetSitOutNextHand("Bob", true); err != nil {
		t.Fatalf("Error setting flag: %v", err)
	}
	if err := table.StartNewGame(); err != nil {
		t.Fatalf("Error starting hand: %v", err)
	}
	got := handIDs(table)
	if len(got) != 2 || got[0] != "Alice" || got[1] != "Charlie" {
		t.Errorf("Bob should be skipped, got %v", got)
	}
	if !table.IsSeated("Bob") {
		t.Error("Sitting out should not cost the seat")
	}
}

func TestWaitForBigBlindFirstHandDealsEveryone(t *testing.T) {
	t.Parallel()
	table := testTable(9)
	seat(t, table, "Alice", "Bob", "Charlie")

	if err := table.SetWaitForBigBlind("Charlie", true); err != nil {
		t.Fatalf("Error setting flag: %v", err)
	}
	if err := table.StartNewGame(); err != nil {
		t.Fatalf("Error starting hand: %v", err)
	}
	// Nobody holds a blind obligation before the first hand, so the flag
	// does not keep anyone out of it.
	if got := handIDs(table); len(got) != 3 {
		t.Errorf("First hand should deal everyone, got %v", got)
	}
}

func TestWaitForBigBlindJoinerWaits(t *testing.T) {
	t.Parallel()
	table := testTable(9)
	seat(t, table, "Alice", "Bob", "Charlie", "Dave", "Eve")

	if err := table.StartNewGame(); err != nil {
		t.Fatalf("Error starting hand: %v", err)
	}
	table.ClearGame()

	seat(t, table, "Frank")
	if err := table.SetWaitForBigBlind("Frank", true); err != nil {
		t.Fatalf("Error setting flag: %v", err)
	}

	// Dealer walks 1, 2; the big blind reaches Frank's seat two hands later.
	for hand := 2; hand <= 3; hand++ {
		if err := table.StartNewGame(); err != nil {
			t.Fatalf("Error starting hand %d: %v", hand, err)
		}
		if got := len(table.Game.Players); got != 5 {
			t.Errorf("Hand %d should deal 5 players, got %d", hand, got)
		}
		table.ClearGame()
	}

	if err := table.StartNewGame(); err != nil {
		t.Fatalf("Error starting hand: %v", err)
	}
	got := handIDs(table)
	if len(got) != 6 || got[5] != "Frank" {
		t.Errorf("Frank should be dealt in, got %v", got)
	}
	// He comes in exactly as the big blind.
	if bb := (table.Game.DealerIdx + 2) % len(got); bb != 5 {
		t.Errorf("Frank should be the big blind, blind seat is %d", bb)
	}
}

func TestWaitForBigBlindAfterRosterShrinks(t *testing.T) {
	t.Parallel()
	table := testTable(9)
	seat(t, table, "Alice", "Bob", "Charlie", "Dave", "Eve")

	// Four hands walk the dealer button out to seat 3.
	for hand := 1; hand <= 4; hand++ {
		if err := table.StartNewGame(); err != nil {
			t.Fatalf("Error starting hand %d: %v", hand, err)
		}
		table.ClearGame()
	}

	// Dave and Eve bust out, then Frank and Grace join asking to wait.
	// The old dealer position now exceeds the survivor count; that must
	// not count as the blind having reached the joiners' seats.
	for _, name := range []string{"Dave", "Eve"} {
		if _, _, err := table.Remove(name); err != nil {
			t.Fatalf("Error removing %s: %v", name, err)
		}
	}
	seat(t, table, "Frank", "Grace")
	for _, name := range []string{"Frank", "Grace"} {
		if err := table.SetWaitForBigBlind(name, true); err != nil {
			t.Fatalf("Error setting flag: %v", err)
		}
	}

	// The button wraps to the survivors; the big blind takes three more
	// hands to walk around to where the joiners would sit.
	for hand := 5; hand <= 7; hand++ {
		if err := table.StartNewGame(); err != nil {
			t.Fatalf("Error starting hand %d: %v", hand, err)
		}
		if got := len(table.Game.Players); got != 3 {
			t.Errorf("Hand %d should deal only survivors, got %d", hand, got)
		}
		table.ClearGame()
	}

	// Hand eight seats Frank in the big blind. Grace is still one seat
	// past it, so she keeps waiting.
	if err := table.StartNewGame(); err != nil {
		t.Fatalf("Error starting hand: %v", err)
	}
	got := handIDs(table)
	if len(got) != 4 || got[3] != "Frank" {
		t.Errorf("Frank should be dealt in, got %v", got)
	}
	if bb := (table.Game.DealerIdx + 2) % len(got); bb != 3 {
		t.Errorf("Frank should be the big blind, blind seat is %d", bb)
	}
	table.ClearGame()

	// The blind reaches Grace's seat one hand later.
	if err := table.StartNewGame(); err != nil {
		t.Fatalf("Error starting hand: %v", err)
	}
	got = handIDs(table)
	if len(got) != 5 || got[4] != "Grace" {
		t.Errorf("Grace should be dealt in, got %v", got)
	}
	if bb := (table.Game.DealerIdx + 2) % len(got); bb != 4 {
		t.Errorf("Grace should be the big blind, blind seat is %d", bb)
	}
}

func TestWaitForBigBlindSatisfiedOnce(t *testing.T) {
	t.Parallel()
	table := testTable(9)
	seat(t, table, "Alice", "Bob", "Charlie", "Dave", "Eve")

	// Hand one: dealer 0, so Charlie posts the big blind.
	if err := table.StartNewGame(); err != nil {
		t.Fatalf("Error starting hand: %v", err)
	}
	table.ClearGame()

	// Charlie sits out until the dealer button wraps back to seat 0.
	if err := table.SetWaitForBigBlind("Charlie", true); err != nil {
		t.Fatalf("Error setting flag: %v", err)
	}
	if err := table.SetSitOutNextHand("Charlie", true); err != nil {
		t.Fatalf("Error setting flag: %v", err)
	}
	for hand := 2; hand <= 5; hand++ {
		if err := table.StartNewGame(); err != nil {
			t.Fatalf("Error starting hand %d: %v", hand, err)
		}
		if got := len(table.Game.Players); got != 4 {
			t.Fatalf("Hand %d should deal 4 players, got %d", hand, got)
		}
		table.ClearGame()
	}

	// Rejoining from the worst position: the wait filter would hold a new
	// player out here, but Charlie already met his big-blind obligation.
	if err := table.SetSitOutNextHand("Charlie", false); err != nil {
		t.Fatalf("Error clearing flag: %v", err)
	}
	if err := table.StartNewGame(); err != nil {
		t.Fatalf("Error starting hand: %v", err)
	}
	got := handIDs(table)
	if len(got) != 5 || got[4] != "Charlie" {
		t.Errorf("Charlie should be dealt straight back in, got %v", got)
	}
}

func TestStartNewGamePostsTableBlinds(t *testing.T) {
	t.Parallel()
	table := NewTable(TableConfig{
		ID: "t1", MinPlayers: 2, MaxPlayers: 9, SmallBlind: 1, BigBlind: 2,
	}, randutil.New(42), 100)
	seat(t, table, "Alice", "Bob", "Charlie")

	if err := table.StartNewGame(); err != nil {
		t.Fatalf("Error starting hand: %v", err)
	}
	h := table.Game
	if h.Stacks[0] != 100 || h.Stacks[1] != 99 || h.Stacks[2] != 98 {
		t.Errorf("Stacks after blinds wrong: %v", h.Stacks)
	}
	if h.TotalPot != 3 {
		t.Errorf("Pot should be 3, got %d", h.TotalPot)
	}
}

func TestActionsWithoutGame(t *testing.T) {
	t.Parallel()
	table := testTable(9)
	seat(t, table, "Alice", "Bob")

	if err := table.Bet("Alice", 10); !errors.Is(err, ErrGameInactive) {
		t.Errorf("Bet without a hand should fail, got %v", err)
	}
	if err := table.Fold("Alice"); !errors.Is(err, ErrGameInactive) {
		t.Errorf("Fold without a hand should fail, got %v", err)
	}
	if err := table.SetCheckFold("Alice", true); !errors.Is(err, ErrGameInactive) {
		t.Errorf("Check-fold without a hand should fail, got %v", err)
	}
	if err := table.SetCallAny("Alice", true); !errors.Is(err, ErrGameInactive) {
		t.Errorf("Call-any without a hand should fail, got %v", err)
	}
	if err := table.SetSitOutNextBigBlind("Mallory", true); !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("Flags require a seat, got %v", err)
	}
}
