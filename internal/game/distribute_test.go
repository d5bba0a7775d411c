package game

import (
	"reflect"
	"testing"
)

func TestSplitPot(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		amount   int
		winners  []int
		expected map[int]int
	}{
		{
			name:     "even split",
			amount:   100,
			winners:  []int{0, 1},
			expected: map[int]int{0: 50, 1: 50},
		},
		{
			name:     "100 across three seats",
			amount:   100,
			winners:  []int{0, 1, 2},
			expected: map[int]int{0: 34, 1: 33, 2: 33},
		},
		{
			name:     "103 across three seats",
			amount:   103,
			winners:  []int{0, 1, 2},
			expected: map[int]int{0: 35, 1: 34, 2: 34},
		},
		{
			name:     "remainder walks ascending seats regardless of input order",
			amount:   103,
			winners:  []int{7, 2, 5},
			expected: map[int]int{2: 35, 5: 34, 7: 34},
		},
		{
			name:     "single winner",
			amount:   99,
			winners:  []int{4},
			expected: map[int]int{4: 99},
		},
		{
			name:     "two odd chips",
			amount:   11,
			winners:  []int{1, 3, 8},
			expected: map[int]int{1: 4, 3: 4, 8: 3},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := SplitPot(tc.amount, tc.winners)
			if !reflect.DeepEqual(got, tc.expected) {
				t.Errorf("Expected %v, got %v", tc.expected, got)
			}

			total := 0
			for _, v := range got {
				total += v
			}
			if total != tc.amount {
				t.Errorf("Shares sum to %d, want %d", total, tc.amount)
			}
		})
	}
}

func TestReturnUncalledBet(t *testing.T) {
	t.Parallel()

	players := []*Player{
		{Seat: 0, Chips: 0, TotalBet: 200},
		{Seat: 1, Chips: 50, TotalBet: 120, Folded: true},
		{Seat: 2, Chips: 100, TotalBet: 80, Folded: true},
	}

	seat, amount := ReturnUncalledBet(players)
	if seat != 0 || amount != 80 {
		t.Fatalf("Expected refund of 80 to seat 0, got %d to seat %d", amount, seat)
	}
	if players[0].Chips != 80 || players[0].TotalBet != 120 {
		t.Errorf("Refund not applied: chips=%d totalBet=%d", players[0].Chips, players[0].TotalBet)
	}
}

func TestReturnUncalledBetMatched(t *testing.T) {
	t.Parallel()

	players := []*Player{
		{Seat: 0, TotalBet: 100},
		{Seat: 1, TotalBet: 100},
	}

	seat, amount := ReturnUncalledBet(players)
	if seat != -1 || amount != 0 {
		t.Errorf("Matched bets should refund nothing, got %d to seat %d", amount, seat)
	}
}

func TestDistributePotsExcludesIneligibleWinner(t *testing.T) {
	t.Parallel()

	players := []*Player{
		{Seat: 0, Chips: 0},
		{Seat: 1, Chips: 0},
		{Seat: 2, Chips: 0},
	}

	// Seat 0 has the best hand but is only eligible for the main pot
	pots := []Pot{
		{Amount: 150, Eligible: []int{0, 1, 2}},
		{Amount: 100, Eligible: []int{1, 2}},
	}
	rankings := [][]int{{0}, {2}, {1}}

	results, payouts := DistributePots(pots, rankings, players)

	if len(results) != 2 {
		t.Fatalf("Expected 2 pot results, got %d", len(results))
	}
	if !reflect.DeepEqual(results[0].Winners, []int{0}) {
		t.Errorf("Main pot winners: expected [0], got %v", results[0].Winners)
	}
	if !reflect.DeepEqual(results[1].Winners, []int{2}) {
		t.Errorf("Side pot should skip the ineligible best hand, got %v", results[1].Winners)
	}
	if payouts[0] != 150 || payouts[2] != 100 {
		t.Errorf("Unexpected payouts: %v", payouts)
	}
	if players[0].Chips != 150 || players[2].Chips != 100 || players[1].Chips != 0 {
		t.Errorf("Chips not applied: %d %d %d", players[0].Chips, players[1].Chips, players[2].Chips)
	}
}

func TestDistributePotsSplitWithTie(t *testing.T) {
	t.Parallel()

	players := []*Player{
		{Seat: 0}, {Seat: 1}, {Seat: 2},
	}

	pots := []Pot{{Amount: 103, Eligible: []int{0, 1, 2}}}
	rankings := [][]int{{0, 1, 2}}

	results, payouts := DistributePots(pots, rankings, players)
	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}

	expected := Payouts{0: 35, 1: 34, 2: 34}
	if !reflect.DeepEqual(payouts, expected) {
		t.Errorf("Expected %v, got %v", expected, payouts)
	}
}
