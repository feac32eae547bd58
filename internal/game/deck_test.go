package game

import (
	"testing"

	"github.com/pokerhall/pokerhall/internal/randutil"
)

func TestNewDeckHasAllCards(t *testing.T) {
	t.Parallel()
	d := NewDeck(randutil.New(42))

	if d.Remaining() != 52 {
		t.Fatalf("Fresh deck should hold 52 cards, got %d", d.Remaining())
	}
	seen := make(map[Card]bool, 52)
	for d.Remaining() > 0 {
		c := d.DealOne()
		if seen[c] {
			t.Errorf("Card %v dealt twice", c)
		}
		seen[c] = true
	}
	if len(seen) != 52 {
		t.Errorf("Expected 52 distinct cards, got %d", len(seen))
	}
}

func TestNewDeckDeterministic(t *testing.T) {
	t.Parallel()
	d1 := NewDeck(randutil.New(7))
	d2 := NewDeck(randutil.New(7))
	d3 := NewDeck(randutil.New(8))

	same, diff := true, true
	for i := 0; i < 52; i++ {
		a, b, c := d1.DealOne(), d2.DealOne(), d3.DealOne()
		if a != b {
			same = false
		}
		if a != c {
			diff = false
		}
	}
	if !same {
		t.Error("Same seed should produce the same shuffle")
	}
	if diff {
		t.Error("Different seeds should produce different shuffles")
	}
}

func TestStackedDeck(t *testing.T) {
	t.Parallel()
	top := cards("As", "Kd", "7h")
	d := NewStackedDeck(top...)

	for i, want := range top {
		if got := d.DealOne(); got != want {
			t.Errorf("Card %d should be %v, got %v", i, want, got)
		}
	}

	// The rest of the deck is still a full pack.
	seen := map[Card]bool{top[0]: true, top[1]: true, top[2]: true}
	for d.Remaining() > 0 {
		c := d.DealOne()
		if seen[c] {
			t.Errorf("Card %v dealt twice", c)
		}
		seen[c] = true
	}
	if len(seen) != 52 {
		t.Errorf("Expected 52 distinct cards, got %d", len(seen))
	}
}

func TestDealPastEnd(t *testing.T) {
	t.Parallel()
	d := NewDeck(randutil.New(42))

	if got := d.Deal(50); len(got) != 50 {
		t.Fatalf("Expected 50 cards, got %d", len(got))
	}
	if got := d.Deal(3); got != nil {
		t.Errorf("Overdrawing should return nil, got %v", got)
	}
	if d.Remaining() != 2 {
		t.Errorf("Failed deal should not consume cards, %d remain", d.Remaining())
	}
	if got := d.Deal(2); len(got) != 2 {
		t.Errorf("Exact remainder should deal, got %v", got)
	}
}
