package game

import (
	"github.com/lox/dealerd/poker"
)

// Evaluator ranks showdown hands. Hand strength is external to the
// engine: implementations order the contenders and the engine only
// consumes the result.
type Evaluator interface {
	// Rank returns the contending seats grouped from strongest to
	// weakest. Seats within a group tie. Every seat in holes must
	// appear in exactly one group.
	Rank(board poker.Hand, holes map[int]poker.Hand) ([][]int, error)
}
