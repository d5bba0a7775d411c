package game

import "fmt"

// Street represents the betting round
type Street int

const (
	Preflop Street = iota
	Flop
	Turn
	River
	Showdown
)

func (s Street) String() string {
	return [...]string{"preflop", "flop", "turn", "river", "showdown"}[s]
}

// Action represents a player action
type Action int

const (
	Fold Action = iota
	Check
	Call
	Bet
	Raise
	AllIn
)

func (a Action) String() string {
	return [...]string{"fold", "check", "call", "bet", "raise", "allin"}[a]
}

// ParseAction parses the wire form of an action
func ParseAction(s string) (Action, error) {
	switch s {
	case "fold":
		return Fold, nil
	case "check":
		return Check, nil
	case "call":
		return Call, nil
	case "bet":
		return Bet, nil
	case "raise":
		return Raise, nil
	case "allin":
		return AllIn, nil
	}
	return 0, fmt.Errorf("invalid action: %s", s)
}

// ValidAction describes a legal action with its amount bounds.
// Amounts are the player's total bet for the round after the action.
type ValidAction struct {
	Action Action
	Min    int
	Max    int
}

// BettingRound encapsulates the state for a betting round
type BettingRound struct {
	CurrentBet    int
	MinRaise      int
	LastAggressor int
	BBActed       bool
	Acted         []bool
	BigBlind      int // Store for resetting min raise on new streets
}

// NewBettingRound creates a new betting round
func NewBettingRound(numPlayers int, bigBlind int) *BettingRound {
	return &BettingRound{
		CurrentBet:    0,
		MinRaise:      bigBlind,
		LastAggressor: -1,
		Acted:         make([]bool, numPlayers),
		BigBlind:      bigBlind,
	}
}

// ResetForNewRound resets the betting round for a new street
func (br *BettingRound) ResetForNewRound(numPlayers int) {
	br.CurrentBet = 0
	br.MinRaise = br.BigBlind
	br.LastAggressor = -1
	br.Acted = make([]bool, numPlayers)
	// BBActed is not reset as it only matters preflop
}

// MarkActed marks a player as having acted
func (br *BettingRound) MarkActed(seat int) {
	if seat >= 0 && seat < len(br.Acted) {
		br.Acted[seat] = true
	}
}

// reopen resets acted flags after a full raise so everyone acts again
func (br *BettingRound) reopen(raiser int) {
	for i := range br.Acted {
		br.Acted[i] = false
	}
	br.MarkActed(raiser)
	br.LastAggressor = raiser
}

// ValidActions returns the legal actions for a player with amount bounds.
// A player who already acted and faces only a short all-in may not raise
// again; the action was never reopened for them.
func (br *BettingRound) ValidActions(p *Player) []ValidAction {
	actions := []ValidAction{{Action: Fold}}
	toCall := br.CurrentBet - p.Bet
	maxTotal := p.Chips + p.Bet
	canRaise := p.Seat >= len(br.Acted) || !br.Acted[p.Seat]

	if toCall <= 0 {
		actions = append(actions, ValidAction{Action: Check})
	} else {
		callTo := min(br.CurrentBet, maxTotal)
		actions = append(actions, ValidAction{Action: Call, Min: callTo, Max: callTo})
	}

	if canRaise && maxTotal > br.CurrentBet {
		raiseTo := br.CurrentBet + br.MinRaise
		act := Raise
		if br.CurrentBet == 0 {
			act = Bet
			raiseTo = br.MinRaise
		}
		if maxTotal >= raiseTo {
			actions = append(actions, ValidAction{Action: act, Min: raiseTo, Max: maxTotal})
		} else {
			// Only a short all-in is possible
			actions = append(actions, ValidAction{Action: AllIn, Min: maxTotal, Max: maxTotal})
		}
	}

	return actions
}

// IsComplete checks if betting is complete for this round
func (br *BettingRound) IsComplete(players []*Player, street Street, button int) bool {
	// Count active players (not folded, not all-in)
	activePlayers := 0
	for _, p := range players {
		if !p.Folded && !p.AllInFlag {
			activePlayers++
		}
	}

	if activePlayers == 0 {
		return true // Everyone is folded or all-in
	}

	// All active players must have matched the current bet
	for _, p := range players {
		if !p.Folded && !p.AllInFlag && p.Bet != br.CurrentBet {
			return false
		}
	}

	// All active players must have acted in this round
	for i, p := range players {
		if !p.Folded && !p.AllInFlag && !br.Acted[i] {
			return false
		}
	}

	// Preflop the big blind gets the option even when all bets match
	if street == Preflop {
		bb := players[bigBlindSeat(len(players), button)]
		if br.LastAggressor == -1 && !bb.Folded && !bb.AllInFlag && !br.BBActed {
			return false
		}
	}

	return true
}

// bigBlindSeat returns the big blind position for a hand.
// Heads-up the button posts the small blind, so the other seat is the BB.
func bigBlindSeat(numPlayers, button int) int {
	if numPlayers == 2 {
		return (button + 1) % numPlayers
	}
	return (button + 2) % numPlayers
}
