package engine

import (
	"errors"

	"arena/internal/board"
	"arena/internal/personality"
)

var errMalformedBoard = errors.New("malformed board")

// minimaxSearcher runs iterative-deepening alpha-beta over the caller's moves
type minimaxSearcher struct {
	depth   int
	profile personality.Profile
}

func (s *minimaxSearcher) search(in searchInput) (SearchResult, error) {
	if in.pos == nil {
		return SearchResult{}, errMalformedBoard
	}
	root := in.pos.ToMove()
	ab := &alphaBeta{
		pos:         in.pos,
		root:        root,
		clock:       newClock(in.deadline),
		captureBias: s.profile.CaptureBonus,
		leaf: func(pos *board.Position) float64 {
			return pos.Evaluate(root)
		},
	}
	return ab.iterate(in.legal, orderIndices(in.legal), s.depth), nil
}
