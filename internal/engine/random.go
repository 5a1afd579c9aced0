package engine

import (
	"math/rand/v2"

	"arena/internal/core"
	"arena/internal/personality"
)

// randomSearcher prefers captures with the personality's capture preference
// and otherwise picks uniformly.
type randomSearcher struct {
	rng     *rand.Rand
	profile personality.Profile
}

func (s *randomSearcher) search(in searchInput) (SearchResult, error) {
	return SearchResult{Index: pickBiased(s.rng, in.legal, s.profile.CapturePreference), Completed: true}, nil
}

// pickBiased returns an index into moves. With probability preference it
// samples among captures when there are any; otherwise among all moves.
func pickBiased(rng *rand.Rand, moves []core.Move, preference float64) int {
	if rng.Float64() < preference {
		n := 0
		for _, m := range moves {
			if m.IsCapture {
				n++
			}
		}
		if n > 0 {
			k := rng.IntN(n)
			for i, m := range moves {
				if !m.IsCapture {
					continue
				}
				if k == 0 {
					return i
				}
				k--
			}
		}
	}
	return rng.IntN(len(moves))
}
