package game

import (
	"testing"
)

func TestParseAction(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"fold", "check", "call", "bet", "raise", "allin"} {
		action, err := ParseAction(s)
		if err != nil {
			t.Fatalf("ParseAction(%q) failed: %v", s, err)
		}
		if action.String() != s {
			t.Errorf("Round trip failed: %q -> %q", s, action.String())
		}
	}

	if _, err := ParseAction("limp"); err == nil {
		t.Error("ParseAction should reject unknown actions")
	}
}

func hasAction(actions []ValidAction, a Action) bool {
	for _, va := range actions {
		if va.Action == a {
			return true
		}
	}
	return false
}

func TestValidActionsNoBet(t *testing.T) {
	t.Parallel()

	br := NewBettingRound(3, 10)
	p := &Player{Seat: 0, Chips: 100}

	actions := br.ValidActions(p)
	if !hasAction(actions, Fold) || !hasAction(actions, Check) || !hasAction(actions, Bet) {
		t.Errorf("Expected fold/check/bet, got %v", actions)
	}
	if hasAction(actions, Call) {
		t.Error("Nothing to call with no bet outstanding")
	}

	for _, va := range actions {
		if va.Action == Bet {
			if va.Min != 10 || va.Max != 100 {
				t.Errorf("Bet bounds should be [10,100], got [%d,%d]", va.Min, va.Max)
			}
		}
	}
}

func TestValidActionsFacingBet(t *testing.T) {
	t.Parallel()

	br := NewBettingRound(3, 10)
	br.CurrentBet = 50
	br.MinRaise = 40
	p := &Player{Seat: 1, Chips: 200}

	actions := br.ValidActions(p)
	if !hasAction(actions, Call) || !hasAction(actions, Raise) {
		t.Errorf("Expected call and raise, got %v", actions)
	}
	if hasAction(actions, Check) {
		t.Error("Cannot check facing a bet")
	}

	for _, va := range actions {
		switch va.Action {
		case Call:
			if va.Min != 50 {
				t.Errorf("Call should be to 50, got %d", va.Min)
			}
		case Raise:
			if va.Min != 90 || va.Max != 200 {
				t.Errorf("Raise bounds should be [90,200], got [%d,%d]", va.Min, va.Max)
			}
		}
	}
}

func TestValidActionsShortStackOnlyAllIn(t *testing.T) {
	t.Parallel()

	br := NewBettingRound(2, 10)
	br.CurrentBet = 50
	br.MinRaise = 40
	p := &Player{Seat: 0, Chips: 60}

	// Enough to call and push on, but not enough for a full raise
	actions := br.ValidActions(p)
	if !hasAction(actions, Call) || !hasAction(actions, AllIn) {
		t.Errorf("Expected call and short all-in, got %v", actions)
	}
	if hasAction(actions, Raise) {
		t.Error("Full raise should not be offered below the minimum")
	}
}

func TestValidActionsNoRaiseAfterActing(t *testing.T) {
	t.Parallel()

	br := NewBettingRound(3, 10)
	br.CurrentBet = 80
	br.MinRaise = 40
	br.MarkActed(1)

	// Seat 1 already acted this round; a short all-in bumped the bet but
	// did not reopen, so only fold and call remain.
	p := &Player{Seat: 1, Chips: 500, Bet: 50}
	actions := br.ValidActions(p)
	if hasAction(actions, Raise) || hasAction(actions, Bet) || hasAction(actions, AllIn) {
		t.Errorf("Raising should not be reopened, got %v", actions)
	}
	if !hasAction(actions, Call) {
		t.Errorf("Call should still be available, got %v", actions)
	}
}

func TestReopenClearsActedFlags(t *testing.T) {
	t.Parallel()

	br := NewBettingRound(3, 10)
	br.MarkActed(0)
	br.MarkActed(1)

	br.reopen(2)

	if br.Acted[0] || br.Acted[1] {
		t.Error("Full raise should clear other players' acted flags")
	}
	if !br.Acted[2] {
		t.Error("The raiser has acted")
	}
	if br.LastAggressor != 2 {
		t.Errorf("LastAggressor should be 2, got %d", br.LastAggressor)
	}
}

func TestIsCompleteAllMatchedAndActed(t *testing.T) {
	t.Parallel()

	players := []*Player{
		{Seat: 0, Chips: 50, Bet: 50},
		{Seat: 1, Chips: 50, Bet: 50},
		{Seat: 2, Chips: 50, Bet: 50},
	}

	br := NewBettingRound(3, 10)
	br.CurrentBet = 50

	// Not everyone has acted yet
	br.MarkActed(0)
	br.MarkActed(1)
	if br.IsComplete(players, Flop, 0) {
		t.Error("Round incomplete while seat 2 has not acted")
	}

	br.MarkActed(2)
	if !br.IsComplete(players, Flop, 0) {
		t.Error("Round complete once all matched and acted")
	}
}

func TestIsCompleteUnmatchedBet(t *testing.T) {
	t.Parallel()

	players := []*Player{
		{Seat: 0, Chips: 50, Bet: 80},
		{Seat: 1, Chips: 50, Bet: 50},
	}

	br := NewBettingRound(2, 10)
	br.CurrentBet = 80
	br.MarkActed(0)
	br.MarkActed(1)

	// Seat 1 acted earlier but now faces a bigger bet
	if br.IsComplete(players, Turn, 0) {
		t.Error("Round incomplete while a live player has not matched")
	}
}

func TestIsCompleteIgnoresFoldedAndAllIn(t *testing.T) {
	t.Parallel()

	players := []*Player{
		{Seat: 0, Bet: 20, Folded: true},
		{Seat: 1, Bet: 35, AllInFlag: true},
		{Seat: 2, Chips: 100, Bet: 50},
	}

	br := NewBettingRound(3, 10)
	br.CurrentBet = 50
	br.MarkActed(2)

	if !br.IsComplete(players, Flop, 0) {
		t.Error("Folded and all-in players should not hold up the round")
	}
}

func TestIsCompleteBigBlindOption(t *testing.T) {
	t.Parallel()

	// Three players, button 0: seat 1 SB, seat 2 BB
	players := []*Player{
		{Seat: 0, Chips: 90, Bet: 10},
		{Seat: 1, Chips: 90, Bet: 10},
		{Seat: 2, Chips: 90, Bet: 10},
	}

	br := NewBettingRound(3, 10)
	br.CurrentBet = 10
	br.MarkActed(0)
	br.MarkActed(1)
	br.MarkActed(2)

	// Everyone limped; the big blind still gets the option
	if br.IsComplete(players, Preflop, 0) {
		t.Error("BB option should keep the preflop round open")
	}

	br.BBActed = true
	if !br.IsComplete(players, Preflop, 0) {
		t.Error("Round complete once the BB has taken the option")
	}
}

func TestBigBlindSeat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		numPlayers int
		button     int
		expected   int
	}{
		{2, 0, 1},  // heads-up: non-button is BB
		{2, 1, 0},
		{3, 0, 2},
		{6, 4, 0}, // wraps around
	}

	for _, tc := range tests {
		if got := bigBlindSeat(tc.numPlayers, tc.button); got != tc.expected {
			t.Errorf("bigBlindSeat(%d, %d) = %d, want %d", tc.numPlayers, tc.button, got, tc.expected)
		}
	}
}
