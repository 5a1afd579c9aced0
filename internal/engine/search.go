package engine

import (
	"cmp"
	"math"
	"slices"
	"time"

	"arena/internal/board"
	"arena/internal/core"
)

// clockCheckInterval is how many node expansions pass between clock reads
const clockCheckInterval = 32

// SearchResult describes the outcome of one decision
type SearchResult struct {
	Index     int     // position of the chosen move in the caller's legal set
	Score     float64 // root-perspective score, 0 when not searched
	Depth     int     // deepest completed iteration
	Nodes     int64
	Completed bool // the configured depth or simulation budget was exhausted
	Fallback  bool // a simpler strategy produced the move
}

// clock bounds a search. Every search loop calls tick once per node
// expansion; the wall clock is read every clockCheckInterval ticks.
type clock struct {
	deadline time.Time
	nodes    int64
	expired  bool
}

func newClock(deadline time.Time) *clock {
	return &clock{deadline: deadline}
}

// tick counts one expansion and reports whether the deadline has passed
func (c *clock) tick() bool {
	c.nodes++
	if c.expired {
		return true
	}
	if c.nodes%clockCheckInterval == 0 && !time.Now().Before(c.deadline) {
		c.expired = true
	}
	return c.expired
}

// done reads the wall clock immediately
func (c *clock) done() bool {
	if !c.expired && !time.Now().Before(c.deadline) {
		c.expired = true
	}
	return c.expired
}

// compareMoves orders captures ahead of quiet moves and richer captures first
func compareMoves(a, b core.Move) int {
	if a.IsCapture != b.IsCapture {
		if a.IsCapture {
			return -1
		}
		return 1
	}
	if a.IsCapture {
		return cmp.Compare(board.Value(b.CapturedPiece), board.Value(a.CapturedPiece))
	}
	return 0
}

// OrderMoves returns a copy of moves with captures first, sorted by captured
// value descending, followed by the remaining moves in their supplied order.
func OrderMoves(moves []core.Move) []core.Move {
	out := slices.Clone(moves)
	slices.SortStableFunc(out, compareMoves)
	return out
}

// orderIndices is OrderMoves expressed as positions into moves
func orderIndices(moves []core.Move) []int {
	idx := make([]int, len(moves))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		return compareMoves(moves[a], moves[b])
	})
	return idx
}

// alphaBeta is a negamax search with alpha-beta pruning over a Position.
// leaf scores a position from the root player's perspective.
type alphaBeta struct {
	pos         *board.Position
	root        core.Player
	clock       *clock
	captureBias func(capturedValue float64) float64
	leaf        func(pos *board.Position) float64
	buffers     [][]core.Move
}

func (ab *alphaBeta) buffer(ply int) []core.Move {
	for len(ab.buffers) <= ply {
		ab.buffers = append(ab.buffers, make([]core.Move, 0, 48))
	}
	return ab.buffers[ply][:0]
}

// leafValue converts a root-perspective score to the side to move
func (ab *alphaBeta) leafValue(bias float64) float64 {
	v := ab.leaf(ab.pos) + bias
	if ab.pos.ToMove() != ab.root {
		return -v
	}
	return v
}

// negamax returns the value for the side to move, or aborted when the clock
// expired somewhere below.
func (ab *alphaBeta) negamax(ply, depth int, alpha, beta, bias float64) (value float64, aborted bool) {
	if ab.clock.tick() {
		return 0, true
	}
	if depth <= 0 {
		return ab.leafValue(bias), false
	}

	moves := ab.pos.AppendMoves(ab.buffer(ply))
	ab.buffers[ply] = moves
	if len(moves) == 0 {
		return ab.leafValue(bias), false
	}
	slices.SortStableFunc(moves, compareMoves)

	best := math.Inf(-1)
	mover := ab.pos.ToMove()
	for _, m := range moves {
		childBias := bias
		if m.IsCapture && mover == ab.root {
			childBias += ab.captureBias(board.Value(m.CapturedPiece))
		}
		u := ab.pos.Make(m)
		v, aborted := ab.negamax(ply+1, depth-1, -beta, -alpha, childBias)
		ab.pos.Unmake(m, u)
		if aborted {
			return 0, true
		}
		v = -v
		if v > best {
			best = v
		}
		if v > alpha {
			alpha = v
		}
		if alpha >= beta {
			break
		}
	}
	return best, false
}

// searchRoot runs one fixed-depth iteration over the caller's moves in the
// given order.
func (ab *alphaBeta) searchRoot(legal []core.Move, order []int, depth int) (bestIdx int, bestScore float64, completed bool) {
	bestIdx, bestScore = -1, math.Inf(-1)
	alpha := math.Inf(-1)
	for _, i := range order {
		m := legal[i]
		bias := 0.0
		if m.IsCapture {
			bias = ab.captureBias(board.Value(m.CapturedPiece))
		}
		u := ab.pos.Make(m)
		v, aborted := ab.negamax(1, depth-1, math.Inf(-1), -alpha, bias)
		ab.pos.Unmake(m, u)
		if aborted {
			return bestIdx, bestScore, false
		}
		v = -v
		if v > bestScore {
			bestIdx, bestScore = i, v
		}
		if v > alpha {
			alpha = v
		}
	}
	return bestIdx, bestScore, true
}

// iterate deepens from 1 to maxDepth and keeps the result of the deepest
// completed iteration. With no completed iteration the first ordered move
// is returned.
func (ab *alphaBeta) iterate(legal []core.Move, order []int, maxDepth int) SearchResult {
	if maxDepth < 1 {
		maxDepth = 1
	}
	res := SearchResult{Index: order[0]}
	order = slices.Clone(order)
	for d := 1; d <= maxDepth; d++ {
		idx, score, completed := ab.searchRoot(legal, order, d)
		if !completed || idx < 0 {
			break
		}
		res.Index, res.Score, res.Depth = idx, score, d
		res.Completed = d == maxDepth
		promote(order, idx)
		if ab.clock.done() {
			break
		}
	}
	res.Nodes = ab.clock.nodes
	return res
}

// promote moves value to the front of order, keeping the rest stable
func promote(order []int, value int) {
	pos := slices.Index(order, value)
	if pos <= 0 {
		return
	}
	copy(order[1:pos+1], order[:pos])
	order[0] = value
}
