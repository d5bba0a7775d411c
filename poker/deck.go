package poker

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
)

// ErrInsufficientCards is returned when a deal asks for more cards than remain.
var ErrInsufficientCards = errors.New("insufficient cards in deck")

// Deck represents a standard 52-card deck
type Deck struct {
	cards [52]Card
	next  int
	rng   *rand.Rand // Random source for deterministic shuffling
}

// NewDeck creates a new shuffled deck with explicit RNG
func NewDeck(rng *rand.Rand) *Deck {
	d := &Deck{
		next: 0,
		rng:  rng,
	}

	// Create all 52 cards
	i := 0
	for suit := range uint8(4) {
		for rank := range uint8(13) {
			d.cards[i] = NewCard(rank, suit)
			i++
		}
	}

	// Shuffle
	d.Shuffle()
	return d
}

// NewStackedDeck creates an unshuffled deck that deals the given cards
// first, then the rest of the 52 in canonical order. For deterministic
// tests; Shuffle discards the stacking.
func NewStackedDeck(cards ...Card) *Deck {
	d := &Deck{}

	seen := make(map[Card]bool, len(cards))
	i := 0
	for _, c := range cards {
		d.cards[i] = c
		seen[c] = true
		i++
	}
	for suit := range uint8(4) {
		for rank := range uint8(13) {
			c := NewCard(rank, suit)
			if !seen[c] {
				d.cards[i] = c
				i++
			}
		}
	}
	return d
}

// Shuffle shuffles the deck using Fisher-Yates
func (d *Deck) Shuffle() {
	d.next = 0
	for i := len(d.cards) - 1; i > 0; i-- {
		var j int
		if d.rng != nil {
			j = d.rng.IntN(i + 1)
		} else {
			j = rand.IntN(i + 1)
		}
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Deal deals n cards from the deck. It returns ErrInsufficientCards when
// fewer than n cards remain; it never returns a short slice.
func (d *Deck) Deal(n int) ([]Card, error) {
	if n < 0 {
		return nil, fmt.Errorf("cannot deal %d cards", n)
	}
	if d.next+n > len(d.cards) {
		return nil, fmt.Errorf("deal %d with %d remaining: %w", n, d.CardsRemaining(), ErrInsufficientCards)
	}
	cards := d.cards[d.next : d.next+n]
	d.next += n
	return cards, nil
}

// DealOne deals a single card from the deck
func (d *Deck) DealOne() (Card, error) {
	if d.next >= len(d.cards) {
		return 0, ErrInsufficientCards
	}
	card := d.cards[d.next]
	d.next++
	return card, nil
}

// Reset resets and reshuffles the deck
func (d *Deck) Reset() {
	d.Shuffle()
}

// CardsRemaining returns the number of cards left in the deck
func (d *Deck) CardsRemaining() int {
	return len(d.cards) - d.next
}
