package game

import (
	"fmt"
	"sort"
)

// Pot represents a pot (main or side)
type Pot struct {
	Amount       int
	Eligible     []int // Seat numbers eligible to win this pot
	MaxPerPlayer int   // Contribution cap for this pot, 0 when uncapped
}

// PotManager manages main and side pots
type PotManager struct {
	pots []Pot
}

// NewPotManager creates a new pot manager
func NewPotManager(players []*Player) *PotManager {
	return &PotManager{
		pots: []Pot{{
			Amount:   0,
			Eligible: makeEligible(players),
		}},
	}
}

// makeEligible creates a list of eligible seats
func makeEligible(players []*Player) []int {
	eligible := make([]int, 0, len(players))
	for _, p := range players {
		if !p.Folded {
			eligible = append(eligible, p.Seat)
		}
	}
	return eligible
}

// Total returns the total amount in all pots
func (pm *PotManager) Total() int {
	total := 0
	for _, pot := range pm.pots {
		total += pot.Amount
	}
	return total
}

// CollectBets sweeps this round's bets into the hand totals. Pot amounts
// are derived from TotalBet, so the per-round bet is simply cleared.
func (pm *PotManager) CollectBets(players []*Player) {
	for _, p := range players {
		p.Bet = 0
	}
}

// CalculateSidePots rebuilds the pots from whole-hand contributions
func (pm *PotManager) CalculateSidePots(players []*Player) {
	pm.pots = BuildPots(players)
}

// BuildPots builds main and side pots from each player's whole-hand
// contribution. Pots are created at every distinct contribution level in
// ascending order: the pot at level L collects min(contribution, L) minus
// the previous level from every contributor, and only non-folded players
// who reached L are eligible. Folded players' chips stay in the pot
// amounts but folded players are never eligible. Adjacent pots with the
// same eligible set are merged.
func BuildPots(players []*Player) []Pot {
	levelSet := make(map[int]bool)
	for _, p := range players {
		if p.TotalBet > 0 {
			levelSet[p.TotalBet] = true
		}
	}
	if len(levelSet) == 0 {
		return []Pot{{Eligible: makeEligible(players)}}
	}

	levels := make([]int, 0, len(levelSet))
	for lvl := range levelSet {
		levels = append(levels, lvl)
	}
	sort.Ints(levels)

	var pots []Pot
	prev := 0
	for _, lvl := range levels {
		pot := Pot{MaxPerPlayer: lvl}

		for _, p := range players {
			contrib := min(p.TotalBet, lvl) - prev
			if contrib > 0 {
				pot.Amount += contrib
			}
		}
		for _, p := range players {
			if !p.Folded && p.TotalBet >= lvl {
				pot.Eligible = append(pot.Eligible, p.Seat)
			}
		}
		prev = lvl

		if pot.Amount == 0 {
			continue
		}
		if len(pot.Eligible) == 0 {
			// Every contributor at this level folded; the chips stay in
			// the previous pot rather than going unawarded.
			if n := len(pots); n > 0 {
				pots[n-1].Amount += pot.Amount
				pots[n-1].MaxPerPlayer = 0
			}
			continue
		}
		if n := len(pots); n > 0 && equalSeats(pots[n-1].Eligible, pot.Eligible) {
			pots[n-1].Amount += pot.Amount
			pots[n-1].MaxPerPlayer = pot.MaxPerPlayer
			continue
		}
		pots = append(pots, pot)
	}

	// The top pot is only capped when an all-in player set its level
	if n := len(pots); n > 0 {
		top := &pots[n-1]
		capped := false
		for _, p := range players {
			if p.AllInFlag && p.TotalBet == top.MaxPerPlayer {
				capped = true
				break
			}
		}
		if !capped {
			top.MaxPerPlayer = 0
		}
	}

	return pots
}

func equalSeats(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// GetPots returns the current pots
func (pm *PotManager) GetPots() []Pot {
	return pm.pots
}

// GetPotsWithUncollected returns pots with this round's live bets added
// to the last pot, where the current betting goes
func (pm *PotManager) GetPotsWithUncollected(players []*Player) []Pot {
	uncollected := 0
	for _, p := range players {
		uncollected += p.Bet
	}

	if uncollected == 0 {
		return pm.pots
	}

	result := make([]Pot, len(pm.pots))
	copy(result, pm.pots)
	if len(result) > 0 {
		result[len(result)-1].Amount += uncollected
	}
	return result
}

// ValidatePotTotals confirms pot amounts equal the players' contributions
func ValidatePotTotals(pots []Pot, players []*Player) error {
	contributed := 0
	for _, p := range players {
		contributed += p.TotalBet
	}
	total := 0
	for _, pot := range pots {
		total += pot.Amount
	}
	if total != contributed {
		return fmt.Errorf("pots hold %d but players contributed %d", total, contributed)
	}
	return nil
}
