package engine

import (
	"cmp"
	"fmt"
	"slices"

	"arena/internal/board"
)

// hybridSearcher restricts alpha-beta to the network's top-K moves and blends
// the network value with the evaluator at the leaves. Any network failure,
// in the policy or the value head, degrades to plain minimax over every
// legal move.
type hybridSearcher struct {
	net      Network
	settings HybridSettings
	minimax  minimaxSearcher
}

func (s *hybridSearcher) search(in searchInput) (SearchResult, error) {
	if in.pos == nil {
		return SearchResult{}, errMalformedBoard
	}
	top, err := s.candidates(in)
	if err != nil {
		res, mmErr := s.minimax.search(in)
		res.Fallback = true
		return res, mmErr
	}

	root := in.pos.ToMove()
	w := s.settings.NeuralWeight
	scale := s.settings.ValueScale
	netFailed := false
	ab := &alphaBeta{
		pos:         in.pos,
		root:        root,
		clock:       newClock(in.deadline),
		captureBias: s.minimax.profile.CaptureBonus,
	}
	ab.leaf = func(pos *board.Position) float64 {
		f := pos.Features(root)
		if netFailed {
			return f.Total()
		}
		v, err := s.value(f)
		if err != nil {
			// blended scores must not mix with evaluator-only ones
			netFailed = true
			ab.clock.expired = true
			return f.Total()
		}
		return w*v*scale + (1-w)*f.Total()
	}
	res := ab.iterate(in.legal, top, s.minimax.depth)
	if netFailed {
		nodes := res.Nodes
		res, err = s.minimax.search(in)
		res.Nodes += nodes
		res.Fallback = true
		return res, err
	}
	return res, nil
}

// value queries the network's value head, converting panics and out-of-range
// results into errors.
func (s *hybridSearcher) value(f board.Features) (v float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = 0, fmt.Errorf("network panic: %v", r)
		}
	}()
	v, err = s.net.Value(f)
	if err != nil {
		return 0, err
	}
	return v, checkValue(v)
}

// candidates returns the indices of the top-K moves by policy probability,
// highest first.
func (s *hybridSearcher) candidates(in searchInput) (idx []int, err error) {
	defer func() {
		if r := recover(); r != nil {
			idx, err = nil, fmt.Errorf("network panic: %v", r)
		}
	}()
	policy, err := s.net.Policy(in.state, in.legal)
	if err != nil {
		return nil, err
	}
	if err := validatePolicy(policy, len(in.legal)); err != nil {
		return nil, err
	}
	idx = orderIndices(in.legal)
	slices.SortStableFunc(idx, func(a, b int) int {
		return cmp.Compare(policy[b], policy[a])
	})
	if len(idx) > s.settings.TopK {
		idx = idx[:s.settings.TopK]
	}
	return idx, nil
}
