// Package evaluator ranks showdown hands with the chehsunliu/poker
// seven-card evaluator. The game engine only sees the resulting order.
package evaluator

import (
	"fmt"
	"sort"

	chp "github.com/chehsunliu/poker"

	"github.com/lox/dealerd/internal/game"
	"github.com/lox/dealerd/poker"
)

// SevenCard implements game.Evaluator over a five-card board and
// two-card holes
type SevenCard struct{}

// New creates a seven-card evaluator
func New() *SevenCard {
	return &SevenCard{}
}

// Rank groups the contending seats from strongest to weakest hand.
// chehsunliu ranks are ascending: a lower score is a stronger hand.
func (e *SevenCard) Rank(board poker.Hand, holes map[int]poker.Hand) ([][]int, error) {
	boardCards, err := convertCards(board)
	if err != nil {
		return nil, err
	}
	if len(boardCards) != 5 {
		return nil, fmt.Errorf("board has %d cards, want 5", len(boardCards))
	}

	type scored struct {
		seat  int
		score int32
	}
	ranked := make([]scored, 0, len(holes))

	for seat, hole := range holes {
		holeCards, err := convertCards(hole)
		if err != nil {
			return nil, err
		}
		if len(holeCards) != 2 {
			return nil, fmt.Errorf("seat %d has %d hole cards, want 2", seat, len(holeCards))
		}
		cards := append(append([]chp.Card{}, boardCards...), holeCards...)
		ranked = append(ranked, scored{seat: seat, score: chp.Evaluate(cards)})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score < ranked[j].score
		}
		return ranked[i].seat < ranked[j].seat
	})

	var groups [][]int
	for i, r := range ranked {
		if i > 0 && r.score == ranked[i-1].score {
			groups[len(groups)-1] = append(groups[len(groups)-1], r.seat)
			continue
		}
		groups = append(groups, []int{r.seat})
	}
	return groups, nil
}

func convertCards(h poker.Hand) ([]chp.Card, error) {
	cards := h.Cards()
	out := make([]chp.Card, 0, len(cards))
	for _, c := range cards {
		s := c.String()
		if s == "??" {
			return nil, fmt.Errorf("invalid card in hand %d", uint64(h))
		}
		out = append(out, chp.NewCard(s))
	}
	return out, nil
}

var _ game.Evaluator = (*SevenCard)(nil)
