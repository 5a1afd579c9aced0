// FILE: internal/engine/mcts.go
package engine

import (
	"math"
	"math/rand/v2"

	"arena/internal/board"
	"arena/internal/core"
	"arena/internal/personality"
)

// rewardScale maps evaluator scores onto (0,1) through a logistic curve
const rewardScale = 400.0

// mctsNode is one tree node. value accumulates rewards from the perspective
// of mover, the player who made the move leading to this node.
type mctsNode struct {
	index    int // position in the parent's move list
	move     core.Move
	mover    core.Player
	parent   *mctsNode
	children []*mctsNode
	untried  []core.Move
	order    []int // expansion order into untried, consumed from the front
	expanded bool
	visits   int
	value    float64
}

func (n *mctsNode) average() float64 {
	if n.visits == 0 {
		return 0
	}
	return n.value / float64(n.visits)
}

// ucb1 scores a child for selection from its parent
func (n *mctsNode) ucb1(parentVisits int, c float64) float64 {
	if n.visits == 0 {
		return math.Inf(1)
	}
	return n.average() + c*math.Sqrt(math.Log(float64(parentVisits))/float64(n.visits))
}

// mctsSearcher runs a simulation-bounded, deadline-bounded UCB1 tree search
type mctsSearcher struct {
	rng      *rand.Rand
	profile  personality.Profile
	settings MCTSSettings
}

type pathStep struct {
	move core.Move
	undo board.Undo
}

func (s *mctsSearcher) search(in searchInput) (SearchResult, error) {
	if in.pos == nil {
		return SearchResult{}, errMalformedBoard
	}
	pos := in.pos
	root := &mctsNode{
		untried:  in.legal,
		order:    orderIndices(in.legal),
		expanded: true,
		mover:    pos.ToMove().Opponent(),
	}
	rootPlayer := pos.ToMove()
	clk := newClock(in.deadline)
	path := make([]pathStep, 0, 32)
	rollout := make([]core.Move, 0, 64)
	bias := 0.0
	play := func(m core.Move) {
		if m.IsCapture && pos.ToMove() == rootPlayer {
			bias += s.profile.CaptureBonus(board.Value(m.CapturedPiece))
		}
		path = append(path, pathStep{move: m, undo: pos.Make(m)})
	}

	sims := 0
	for sims < s.settings.Simulations && !clk.done() {
		node := root
		bias = 0
		path = path[:0]

		// selection
		for len(node.order) == 0 && len(node.children) > 0 {
			node = s.selectChild(node)
			play(node.move)
			clk.tick()
		}

		// expansion
		if !node.expanded {
			node.untried = pos.GenerateMoves()
			node.order = orderIndices(node.untried)
			node.expanded = true
		}
		if len(node.order) > 0 {
			i := node.order[0]
			node.order = node.order[1:]
			child := &mctsNode{index: i, move: node.untried[i], mover: pos.ToMove(), parent: node}
			node.children = append(node.children, child)
			node = child
			play(node.move)
			clk.tick()
		}

		// rollout
		for d := 0; d < s.settings.RolloutDepth && !clk.tick(); d++ {
			rollout = pos.AppendMoves(rollout[:0])
			if len(rollout) == 0 {
				break
			}
			play(rollout[pickBiased(s.rng, rollout, s.profile.CapturePreference)])
		}

		reward := 1 / (1 + math.Exp(-(pos.Evaluate(rootPlayer)+bias)/rewardScale))

		for i := len(path) - 1; i >= 0; i-- {
			pos.Unmake(path[i].move, path[i].undo)
		}

		// backpropagation
		for n := node; n != nil; n = n.parent {
			n.visits++
			if n.mover == rootPlayer {
				n.value += reward
			} else {
				n.value += 1 - reward
			}
		}
		sims++
	}

	res := SearchResult{Index: -1, Nodes: clk.nodes, Completed: sims >= s.settings.Simulations}
	var best *mctsNode
	for _, c := range root.children {
		if best == nil || c.visits > best.visits ||
			(c.visits == best.visits && c.average() > best.average()) {
			best = c
		}
	}
	if best == nil {
		res.Index = orderIndices(in.legal)[0]
		return res, nil
	}
	res.Index = best.index
	res.Score = best.average()
	res.Depth = 1
	return res, nil
}

func (s *mctsSearcher) selectChild(n *mctsNode) *mctsNode {
	var best *mctsNode
	bestScore := math.Inf(-1)
	for _, c := range n.children {
		if v := c.ucb1(n.visits, s.settings.Exploration); v > bestScore {
			best, bestScore = c, v
		}
	}
	return best
}
