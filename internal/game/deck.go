package game

import (
	rand "math/rand/v2"
)

// Deck is a standard 52-card deck with a draw cursor.
type Deck struct {
	cards [52]Card
	next  int
}

// NewDeck creates a new deck shuffled with the provided RNG. The RNG is
// required so that callers decide where randomness comes from and tests
// stay deterministic.
func NewDeck(rng *rand.Rand) *Deck {
	d := &Deck{}

	i := 0
	for suit := Clubs; suit <= Spades; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			d.cards[i] = NewCard(rank, suit)
			i++
		}
	}

	rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
	return d
}

// NewStackedDeck creates a deck that deals the given cards first, followed
// by the rest of the 52 in canonical order. Tests stack the cards they care
// about and pass the result to WithDeck.
func NewStackedDeck(top ...Card) *Deck {
	d := &Deck{}
	seen := make(map[Card]bool, len(top))
	i := 0
	for _, c := range top {
		if seen[c] {
			continue
		}
		seen[c] = true
		d.cards[i] = c
		i++
	}
	for suit := Clubs; suit <= Spades; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			c := NewCard(rank, suit)
			if seen[c] {
				continue
			}
			d.cards[i] = c
			i++
		}
	}
	return d
}

// Deal deals n cards from the top of the deck. Returns nil if the deck is
// exhausted, which cannot happen for a legal hand (at most 23 cards leave
// the deck with nine seats).
func (d *Deck) Deal(n int) []Card {
	if d.next+n > len(d.cards) {
		return nil
	}
	cards := d.cards[d.next : d.next+n]
	d.next += n
	return cards
}

// DealOne deals a single card.
func (d *Deck) DealOne() Card {
	cards := d.Deal(1)
	if cards == nil {
		return Card{}
	}
	return cards[0]
}

// Remaining returns the number of undealt cards.
func (d *Deck) Remaining() int {
	return len(d.cards) - d.next
}
