package game

import (
	"reflect"
	"testing"
)

func TestPotManagerBasics(t *testing.T) {
	t.Parallel()

	players := []*Player{
		{Seat: 0, Chips: 100},
		{Seat: 1, Chips: 100},
		{Seat: 2, Chips: 100},
	}

	pm := NewPotManager(players)

	pots := pm.GetPots()
	if len(pots) != 1 {
		t.Fatalf("Expected 1 pot, got %d", len(pots))
	}
	if pots[0].Amount != 0 {
		t.Errorf("Initial pot should be 0, got %d", pots[0].Amount)
	}
	if len(pots[0].Eligible) != 3 {
		t.Errorf("All 3 players should be eligible, got %d", len(pots[0].Eligible))
	}
}

func TestBuildPots(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		players      []*Player
		expectedPots []Pot
	}{
		{
			name: "no all-ins, single pot",
			players: []*Player{
				{Seat: 0, TotalBet: 100},
				{Seat: 1, TotalBet: 100},
				{Seat: 2, TotalBet: 100},
			},
			expectedPots: []Pot{
				{Amount: 300, Eligible: []int{0, 1, 2}},
			},
		},
		{
			name: "single all-in creates side pot",
			players: []*Player{
				{Seat: 0, TotalBet: 50, AllInFlag: true},
				{Seat: 1, TotalBet: 100},
				{Seat: 2, TotalBet: 100},
			},
			expectedPots: []Pot{
				{Amount: 150, Eligible: []int{0, 1, 2}, MaxPerPlayer: 50},
				{Amount: 100, Eligible: []int{1, 2}},
			},
		},
		{
			name: "three contribution tiers",
			players: []*Player{
				{Seat: 0, TotalBet: 30, AllInFlag: true},
				{Seat: 1, TotalBet: 60, AllInFlag: true},
				{Seat: 2, TotalBet: 100},
				{Seat: 3, TotalBet: 100},
			},
			expectedPots: []Pot{
				{Amount: 120, Eligible: []int{0, 1, 2, 3}, MaxPerPlayer: 30},
				{Amount: 90, Eligible: []int{1, 2, 3}, MaxPerPlayer: 60},
				{Amount: 80, Eligible: []int{2, 3}},
			},
		},
		{
			name: "folded chips stay in pot but folder is not eligible",
			players: []*Player{
				{Seat: 0, TotalBet: 50, Folded: true},
				{Seat: 1, TotalBet: 100, AllInFlag: true},
				{Seat: 2, TotalBet: 100},
			},
			expectedPots: []Pot{
				{Amount: 250, Eligible: []int{1, 2}, MaxPerPlayer: 100},
			},
		},
		{
			name: "all players all-in at same amount",
			players: []*Player{
				{Seat: 0, TotalBet: 100, AllInFlag: true},
				{Seat: 1, TotalBet: 100, AllInFlag: true},
				{Seat: 2, TotalBet: 100, AllInFlag: true},
			},
			expectedPots: []Pot{
				{Amount: 300, Eligible: []int{0, 1, 2}, MaxPerPlayer: 100},
			},
		},
		{
			name: "no contributions",
			players: []*Player{
				{Seat: 0},
				{Seat: 1},
			},
			expectedPots: []Pot{
				{Amount: 0, Eligible: []int{0, 1}},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pots := BuildPots(tc.players)

			if len(pots) != len(tc.expectedPots) {
				t.Fatalf("Expected %d pots, got %d: %+v", len(tc.expectedPots), len(pots), pots)
			}
			for i, expected := range tc.expectedPots {
				if pots[i].Amount != expected.Amount {
					t.Errorf("Pot %d: expected amount %d, got %d", i, expected.Amount, pots[i].Amount)
				}
				if !reflect.DeepEqual(pots[i].Eligible, expected.Eligible) {
					t.Errorf("Pot %d: expected eligible %v, got %v", i, expected.Eligible, pots[i].Eligible)
				}
				if pots[i].MaxPerPlayer != expected.MaxPerPlayer {
					t.Errorf("Pot %d: expected cap %d, got %d", i, expected.MaxPerPlayer, pots[i].MaxPerPlayer)
				}
			}

			if err := ValidatePotTotals(pots, tc.players); err != nil {
				t.Errorf("Conservation violated: %v", err)
			}
		})
	}
}

// Each later pot's eligible set must be a subset of the one before it
func TestBuildPotsEligibilityMonotonic(t *testing.T) {
	t.Parallel()

	players := []*Player{
		{Seat: 0, TotalBet: 10, AllInFlag: true},
		{Seat: 1, TotalBet: 25, AllInFlag: true},
		{Seat: 2, TotalBet: 70, AllInFlag: true},
		{Seat: 3, TotalBet: 70},
		{Seat: 4, TotalBet: 40, Folded: true},
	}

	pots := BuildPots(players)
	for i := 1; i < len(pots); i++ {
		prev := make(map[int]bool)
		for _, seat := range pots[i-1].Eligible {
			prev[seat] = true
		}
		for _, seat := range pots[i].Eligible {
			if !prev[seat] {
				t.Errorf("Pot %d eligible seat %d missing from pot %d", i, seat, i-1)
			}
		}
		if len(pots[i].Eligible) > len(pots[i-1].Eligible) {
			t.Errorf("Pot %d eligibility grew: %v after %v", i, pots[i].Eligible, pots[i-1].Eligible)
		}
	}
}

func TestGetPotsWithUncollected(t *testing.T) {
	t.Parallel()

	players := []*Player{
		{Seat: 0, TotalBet: 50, Bet: 0, AllInFlag: true},
		{Seat: 1, TotalBet: 70, Bet: 20},
		{Seat: 2, TotalBet: 70, Bet: 20},
	}

	pm := &PotManager{pots: []Pot{
		{Amount: 150, Eligible: []int{0, 1, 2}, MaxPerPlayer: 50},
		{Amount: 0, Eligible: []int{1, 2}},
	}}

	pots := pm.GetPotsWithUncollected(players)
	if pots[0].Amount != 150 {
		t.Errorf("Main pot should stay 150, got %d", pots[0].Amount)
	}
	if pots[1].Amount != 40 {
		t.Errorf("Live bets should land in the last pot, got %d", pots[1].Amount)
	}
}
