package poker

import (
	"reflect"
	"testing"
)

func TestCardStringRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []string{"2c", "9d", "Th", "Js", "Qc", "Kd", "Ah"}

	for _, s := range tests {
		t.Run(s, func(t *testing.T) {
			card, err := ParseCard(s)
			if err != nil {
				t.Fatalf("ParseCard(%q) failed: %v", s, err)
			}
			if card.String() != s {
				t.Errorf("Expected %q, got %q", s, card.String())
			}
		})
	}
}

func TestParseCardInvalid(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"", "A", "1c", "Ax", "10c"} {
		if _, err := ParseCard(s); err == nil {
			t.Errorf("ParseCard(%q) should fail", s)
		}
	}
}

func TestCardRankSuit(t *testing.T) {
	t.Parallel()

	card := NewCard(Ace, Spades)
	if card.Rank() != Ace {
		t.Errorf("Expected rank %d, got %d", Ace, card.Rank())
	}
	if card.Suit() != Spades {
		t.Errorf("Expected suit %d, got %d", Spades, card.Suit())
	}
}

func TestHandOperations(t *testing.T) {
	t.Parallel()

	ac := NewCard(Ace, Clubs)
	kh := NewCard(King, Hearts)
	h := NewHand(ac, kh)

	if h.CountCards() != 2 {
		t.Fatalf("Expected 2 cards, got %d", h.CountCards())
	}
	if !h.HasCard(ac) || !h.HasCard(kh) {
		t.Error("Hand should contain both cards")
	}
	if h.HasCard(NewCard(Two, Clubs)) {
		t.Error("Hand should not contain 2c")
	}

	h.AddCard(NewCard(Two, Clubs))
	if h.CountCards() != 3 {
		t.Errorf("Expected 3 cards after add, got %d", h.CountCards())
	}

	// Adding a duplicate is a no-op
	h.AddCard(ac)
	if h.CountCards() != 3 {
		t.Errorf("Duplicate add should not grow hand, got %d", h.CountCards())
	}
}

func TestHandCards(t *testing.T) {
	t.Parallel()

	h, err := ParseHand("As Kh 2c")
	if err != nil {
		t.Fatalf("ParseHand failed: %v", err)
	}

	// Cards come back lowest bit first: clubs before hearts before spades
	got := h.Strings()
	expected := []string{"2c", "Kh", "As"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}
