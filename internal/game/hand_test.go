package game

import (
	rand "math/rand/v2"
	"testing"

	"github.com/lox/dealerd/poker"
)

func testRNG() *rand.Rand {
	return rand.New(rand.NewPCG(1, 1))
}

// stubEvaluator returns a fixed ranking so tests control showdown order
type stubEvaluator struct {
	groups [][]int
}

func (s stubEvaluator) Rank(board poker.Hand, holes map[int]poker.Hand) ([][]int, error) {
	return s.groups, nil
}

func newTestHand(t *testing.T, names []string, button int, opts ...HandOption) *HandState {
	t.Helper()
	h, err := NewHand(testRNG(), names, button, 5, 10, opts...)
	if err != nil {
		t.Fatalf("NewHand failed: %v", err)
	}
	return h
}

func TestNewHandPostsBlinds(t *testing.T) {
	t.Parallel()

	h := newTestHand(t, []string{"a", "b", "c"}, 0, WithUniformChips(1000))

	sb, bb := h.Players[1], h.Players[2]
	if sb.Bet != 5 || sb.Chips != 995 {
		t.Errorf("Small blind: bet=%d chips=%d", sb.Bet, sb.Chips)
	}
	if bb.Bet != 10 || bb.Chips != 990 {
		t.Errorf("Big blind: bet=%d chips=%d", bb.Bet, bb.Chips)
	}
	if h.Betting.CurrentBet != 10 {
		t.Errorf("Round should open at the big blind, got %d", h.Betting.CurrentBet)
	}
	if h.ActivePlayer != 0 {
		t.Errorf("UTG (seat 0) should act first, got %d", h.ActivePlayer)
	}
	for _, p := range h.Players {
		if p.HoleCards.CountCards() != 2 {
			t.Errorf("Seat %d should hold 2 cards, got %d", p.Seat, p.HoleCards.CountCards())
		}
	}
}

func TestNewHandHeadsUpButtonPostsSmallBlind(t *testing.T) {
	t.Parallel()

	h := newTestHand(t, []string{"a", "b"}, 0, WithUniformChips(1000))

	if h.Players[0].Bet != 5 {
		t.Errorf("Button should post the small blind, bet=%d", h.Players[0].Bet)
	}
	if h.Players[1].Bet != 10 {
		t.Errorf("Other seat should post the big blind, bet=%d", h.Players[1].Bet)
	}
	if h.ActivePlayer != 0 {
		t.Errorf("Button acts first heads-up preflop, got %d", h.ActivePlayer)
	}
}

func TestShortBlindPostsAllIn(t *testing.T) {
	t.Parallel()

	h := newTestHand(t, []string{"a", "b", "c"}, 0, WithChips([]int{1000, 1000, 7}))

	bb := h.Players[2]
	if bb.Bet != 7 || !bb.AllInFlag {
		t.Errorf("Short big blind should be all-in for 7, bet=%d allin=%v", bb.Bet, bb.AllInFlag)
	}
	if h.Betting.CurrentBet != 10 {
		t.Errorf("Round still opens at the full big blind, got %d", h.Betting.CurrentBet)
	}
}

func TestCheckIllegalFacingBet(t *testing.T) {
	t.Parallel()

	h := newTestHand(t, []string{"a", "b", "c"}, 0, WithUniformChips(1000))

	// UTG faces the big blind
	if err := h.ProcessAction(Check, 0); err == nil {
		t.Error("Check should be rejected facing a bet")
	}
}

func TestCallCappedToAllIn(t *testing.T) {
	t.Parallel()

	h := newTestHand(t, []string{"a", "b", "c"}, 0, WithChips([]int{1000, 1000, 1000}))

	// UTG raises beyond what the small blind can cover
	if err := h.ProcessAction(Raise, 600); err != nil {
		t.Fatalf("Raise failed: %v", err)
	}

	sb := h.Players[1]
	sb.Chips = 100 // shrink the stack mid-hand to force the cap
	if err := h.ProcessAction(Call, 0); err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if !sb.AllInFlag || sb.Chips != 0 {
		t.Errorf("Capped call should leave the caller all-in, chips=%d", sb.Chips)
	}
	if sb.Bet != 105 {
		t.Errorf("Caller puts in their whole stack, bet=%d", sb.Bet)
	}
}

func TestRaiseCappedToAllIn(t *testing.T) {
	t.Parallel()

	h := newTestHand(t, []string{"a", "b", "c"}, 0, WithChips([]int{300, 1000, 1000}))

	// UTG announces more than their stack; the wager caps at all-in
	if err := h.ProcessAction(Raise, 5000); err != nil {
		t.Fatalf("Raise failed: %v", err)
	}

	utg := h.Players[0]
	if utg.Bet != 300 || !utg.AllInFlag {
		t.Errorf("Raise should cap at the stack, bet=%d allin=%v", utg.Bet, utg.AllInFlag)
	}
	if h.Betting.CurrentBet != 300 {
		t.Errorf("Current bet should be 300, got %d", h.Betting.CurrentBet)
	}
}

func TestRaiseBelowMinimumRejected(t *testing.T) {
	t.Parallel()

	h := newTestHand(t, []string{"a", "b", "c"}, 0, WithUniformChips(1000))

	// Min raise preflop is another big blind: to 20
	if err := h.ProcessAction(Raise, 15); err == nil {
		t.Error("Raise below minimum should be rejected when not all-in")
	}
}

func TestFoldWinEndsHandImmediately(t *testing.T) {
	t.Parallel()

	var events []GameEvent
	h := newTestHand(t, []string{"a", "b", "c"}, 0,
		WithUniformChips(1000),
		WithEventSink(func(e GameEvent) { events = append(events, e) }))

	if err := h.ProcessAction(Fold, 0); err != nil {
		t.Fatalf("UTG fold failed: %v", err)
	}
	if err := h.ProcessAction(Fold, 0); err != nil {
		t.Fatalf("SB fold failed: %v", err)
	}

	if !h.IsComplete() {
		t.Fatal("Hand should end when one player remains")
	}
	if h.Street != Preflop {
		t.Errorf("No further streets should be dealt, got %s", h.Street)
	}

	results, payouts, err := h.Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	// The big blind wins the small blind; their own 10 came back (5 of it
	// as an uncalled refund)
	if payouts[2] != 10 {
		t.Errorf("Expected BB payout of 10, got %v", payouts)
	}
	if h.Players[2].Chips != 1005 {
		t.Errorf("BB should net +5, chips=%d", h.Players[2].Chips)
	}
	if h.Players[1].Chips != 995 {
		t.Errorf("SB should net -5, chips=%d", h.Players[1].Chips)
	}
	if len(results) != 1 {
		t.Errorf("Expected a single pot, got %d", len(results))
	}

	// Cards stay hidden on a fold win
	for _, e := range events {
		if e.EventType() == EventTypeShowdown {
			t.Error("Fold win should not reveal hole cards")
		}
	}
	if events[0].EventType() != EventTypeHandStart {
		t.Errorf("First event should be hand_start, got %s", events[0].EventType())
	}
	if events[len(events)-1].EventType() != EventTypeHandEnd {
		t.Errorf("Last event should be hand_end, got %s", events[len(events)-1].EventType())
	}
}

func TestShortAllInDoesNotReopenAction(t *testing.T) {
	t.Parallel()

	h := newTestHand(t, []string{"a", "b", "c"}, 0, WithChips([]int{1000, 1000, 120}))

	// UTG raises to 100
	if err := h.ProcessAction(Raise, 100); err != nil {
		t.Fatalf("Raise failed: %v", err)
	}
	// SB folds
	if err := h.ProcessAction(Fold, 0); err != nil {
		t.Fatalf("Fold failed: %v", err)
	}
	// BB shoves for 120 total, 20 more but short of a full raise
	if err := h.ProcessAction(AllIn, 0); err != nil {
		t.Fatalf("All-in failed: %v", err)
	}

	if h.ActivePlayer != 0 {
		t.Fatalf("Action should return to UTG, got %d", h.ActivePlayer)
	}

	// The short all-in did not reopen the betting for UTG
	if err := h.ProcessAction(Raise, 400); err == nil {
		t.Error("Raise should be rejected after a short all-in")
	}
	if err := h.ProcessAction(Call, 0); err != nil {
		t.Fatalf("Call failed: %v", err)
	}

	if h.Street != Flop {
		t.Errorf("Preflop should complete after the call, street=%s", h.Street)
	}
}

func TestFullRaiseReopensAction(t *testing.T) {
	t.Parallel()

	h := newTestHand(t, []string{"a", "b", "c"}, 0, WithUniformChips(1000))

	// UTG raises to 100, SB re-raises to 300: UTG may raise again
	if err := h.ProcessAction(Raise, 100); err != nil {
		t.Fatalf("Raise failed: %v", err)
	}
	if err := h.ProcessAction(Raise, 300); err != nil {
		t.Fatalf("Re-raise failed: %v", err)
	}
	if err := h.ProcessAction(Fold, 0); err != nil { // BB out
		t.Fatalf("Fold failed: %v", err)
	}

	if h.ActivePlayer != 0 {
		t.Fatalf("Action should return to UTG, got %d", h.ActivePlayer)
	}
	if err := h.ProcessAction(Raise, 600); err != nil {
		t.Errorf("Full raise should reopen UTG's action: %v", err)
	}
}

func TestAllInFastForwardToShowdown(t *testing.T) {
	t.Parallel()

	h := newTestHand(t, []string{"a", "b"}, 0,
		WithUniformChips(100),
		WithEvaluator(stubEvaluator{groups: [][]int{{0, 1}}}))

	if err := h.ProcessAction(AllIn, 0); err != nil {
		t.Fatalf("All-in failed: %v", err)
	}
	if err := h.ProcessAction(AllIn, 0); err != nil {
		t.Fatalf("Call all-in failed: %v", err)
	}

	if h.Street != Showdown {
		t.Fatalf("Board should run out to showdown, street=%s", h.Street)
	}
	if h.Board.CountCards() != 5 {
		t.Errorf("Expected 5 board cards, got %d", h.Board.CountCards())
	}

	_, payouts, err := h.Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if payouts[0] != 100 || payouts[1] != 100 {
		t.Errorf("Tied all-ins should split evenly, got %v", payouts)
	}
	if h.Players[0].Chips != 100 || h.Players[1].Chips != 100 {
		t.Errorf("Stacks should be restored on a chop: %d, %d", h.Players[0].Chips, h.Players[1].Chips)
	}
}

func TestSidePotAwards(t *testing.T) {
	t.Parallel()

	// Seat 0 is all-in for 50; seats 1 and 2 play a 100 side pot.
	// Seat 0 holds the best hand but can only win the main pot.
	h := newTestHand(t, []string{"a", "b", "c"}, 0,
		WithChips([]int{50, 100, 100}),
		WithEvaluator(stubEvaluator{groups: [][]int{{0}, {2}, {1}}}))

	if err := h.ProcessAction(AllIn, 0); err != nil { // UTG for 50
		t.Fatalf("All-in failed: %v", err)
	}
	if err := h.ProcessAction(AllIn, 0); err != nil { // SB for 100
		t.Fatalf("All-in failed: %v", err)
	}
	if err := h.ProcessAction(AllIn, 0); err != nil { // BB calls all-in
		t.Fatalf("All-in failed: %v", err)
	}

	if h.Street != Showdown {
		t.Fatalf("Expected showdown, street=%s", h.Street)
	}

	results, payouts, err := h.Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("Expected main and side pot, got %d", len(results))
	}
	if results[0].Amount != 150 || results[1].Amount != 100 {
		t.Errorf("Pot amounts: %d, %d", results[0].Amount, results[1].Amount)
	}
	if payouts[0] != 150 {
		t.Errorf("Best hand takes the main pot, got %v", payouts)
	}
	if payouts[2] != 100 {
		t.Errorf("Side pot goes to the best eligible hand, got %v", payouts)
	}
	if payouts[1] != 0 {
		t.Errorf("Seat 1 should win nothing, got %v", payouts)
	}
}

func TestValidateChipConservationMidHand(t *testing.T) {
	t.Parallel()

	h := newTestHand(t, []string{"a", "b", "c"}, 0, WithUniformChips(1000))

	if err := h.ValidateChipConservation(); err != nil {
		t.Errorf("Conservation should hold after blinds: %v", err)
	}

	if err := h.ProcessAction(Raise, 250); err != nil {
		t.Fatalf("Raise failed: %v", err)
	}
	if err := h.ValidateChipConservation(); err != nil {
		t.Errorf("Conservation should hold after a raise: %v", err)
	}

	// Tamper with a stack and the check must fail
	h.Players[0].Chips += 7
	if err := h.ValidateChipConservation(); err == nil {
		t.Error("Conservation check should catch a tampered stack")
	}
}

func TestForceFoldAdvancesAction(t *testing.T) {
	t.Parallel()

	h := newTestHand(t, []string{"a", "b", "c", "d"}, 0, WithUniformChips(1000))

	// Seat 3 (UTG) is due to act; a disconnect folds them out of turn
	if h.ActivePlayer != 3 {
		t.Fatalf("Expected seat 3 to act first, got %d", h.ActivePlayer)
	}
	if err := h.ForceFold(3); err != nil {
		t.Fatalf("ForceFold failed: %v", err)
	}
	if !h.Players[3].Folded {
		t.Error("Seat 3 should be folded")
	}
	if h.ActivePlayer != 0 {
		t.Errorf("Action should move to seat 0, got %d", h.ActivePlayer)
	}

	// Folding a seat that is not due keeps the action where it is
	if err := h.ForceFold(2); err != nil {
		t.Fatalf("ForceFold failed: %v", err)
	}
	if h.ActivePlayer != 0 {
		t.Errorf("Action should stay on seat 0, got %d", h.ActivePlayer)
	}
}

func TestNextButton(t *testing.T) {
	t.Parallel()

	players := []*Player{
		{Seat: 0, Chips: 100},
		{Seat: 1, Chips: 0}, // busted
		{Seat: 2, Chips: 100},
	}

	if got := NextButton(players, 0); got != 2 {
		t.Errorf("Button should skip busted seats, got %d", got)
	}
	if got := NextButton(players, 2); got != 0 {
		t.Errorf("Button should wrap to seat 0, got %d", got)
	}
}

func TestNewHandValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewHand(testRNG(), []string{"solo"}, 0, 5, 10); err == nil {
		t.Error("One player should be rejected")
	}
	if _, err := NewHand(testRNG(), []string{"a", "b"}, 5, 5, 10); err == nil {
		t.Error("Out of range button should be rejected")
	}
	if _, err := NewHand(testRNG(), []string{"a", "b"}, 0, 5, 10, WithChips([]int{100})); err == nil {
		t.Error("Mismatched chip counts should be rejected")
	}
}

func TestStackedDeckDealsKnownBoard(t *testing.T) {
	t.Parallel()

	ac, _ := poker.ParseCard("Ac")
	ad, _ := poker.ParseCard("Ad")
	kc, _ := poker.ParseCard("Kc")
	kd, _ := poker.ParseCard("Kd")
	deck := poker.NewStackedDeck(ac, ad, kc, kd)

	h := newTestHand(t, []string{"a", "b"}, 0, WithUniformChips(100), WithDeck(deck))

	if !h.Players[0].HoleCards.HasCard(ac) || !h.Players[0].HoleCards.HasCard(ad) {
		t.Errorf("Seat 0 should hold AcAd, got %s", h.Players[0].HoleCards)
	}
	if !h.Players[1].HoleCards.HasCard(kc) || !h.Players[1].HoleCards.HasCard(kd) {
		t.Errorf("Seat 1 should hold KcKd, got %s", h.Players[1].HoleCards)
	}
}
