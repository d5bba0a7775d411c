package game

import "sort"

// Payouts maps seat number to chips won
type Payouts map[int]int

// PotResult records how a single pot was awarded
type PotResult struct {
	Amount   int
	Eligible []int
	Winners  []int
	Shares   map[int]int
}

// SplitPot divides a pot among winners. Each winner gets amount/n and the
// remainder is handed out one chip at a time in ascending seat order, so
// 103 chips across seats {2,5,7} pay {35,34,34}.
func SplitPot(amount int, winners []int) map[int]int {
	shares := make(map[int]int, len(winners))
	if len(winners) == 0 || amount <= 0 {
		return shares
	}

	seats := make([]int, len(winners))
	copy(seats, winners)
	sort.Ints(seats)

	share := amount / len(seats)
	remainder := amount % len(seats)

	for i, seat := range seats {
		shares[seat] = share
		if i < remainder {
			shares[seat]++
		}
	}
	return shares
}

// ReturnUncalledBet refunds the portion of the highest contribution that
// nobody matched. Returns the refunded seat and amount, or (-1, 0) when
// every chip is matched.
func ReturnUncalledBet(players []*Player) (int, int) {
	hiSeat, hi, second := -1, 0, 0
	for _, p := range players {
		if p.TotalBet > hi {
			second = hi
			hi = p.TotalBet
			hiSeat = p.Seat
		} else if p.TotalBet > second {
			second = p.TotalBet
		}
	}

	if hiSeat == -1 || hi == second {
		return -1, 0
	}

	refund := hi - second
	for _, p := range players {
		if p.Seat == hiSeat {
			p.Chips += refund
			p.TotalBet -= refund
			break
		}
	}
	return hiSeat, refund
}

// DistributePots awards each pot to the best eligible hands. rankings is
// the evaluator's ordering of showdown seats, strongest group first; a
// pot goes to the first group that intersects its eligible set. Winners
// not eligible for a pot receive nothing from it.
func DistributePots(pots []Pot, rankings [][]int, players []*Player) ([]PotResult, Payouts) {
	results := make([]PotResult, 0, len(pots))
	payouts := make(Payouts)

	for _, pot := range pots {
		if pot.Amount == 0 || len(pot.Eligible) == 0 {
			continue
		}

		winners := firstIntersection(rankings, pot.Eligible)
		if len(winners) == 0 {
			// No ranked contender is eligible; everyone eligible split
			winners = pot.Eligible
		}

		shares := SplitPot(pot.Amount, winners)
		for seat, amount := range shares {
			payouts[seat] += amount
			for _, p := range players {
				if p.Seat == seat {
					p.Chips += amount
					break
				}
			}
		}

		results = append(results, PotResult{
			Amount:   pot.Amount,
			Eligible: pot.Eligible,
			Winners:  winners,
			Shares:   shares,
		})
	}

	return results, payouts
}

func firstIntersection(groups [][]int, eligible []int) []int {
	elig := make(map[int]bool, len(eligible))
	for _, seat := range eligible {
		elig[seat] = true
	}
	for _, group := range groups {
		var winners []int
		for _, seat := range group {
			if elig[seat] {
				winners = append(winners, seat)
			}
		}
		if len(winners) > 0 {
			return winners
		}
	}
	return nil
}
