package board

import (
	"math"
	"sync"

	"arena/internal/core"
)

var pieceValues = map[core.PieceKind]float64{
	core.PieceMarshal:    1000,
	core.PieceGeneral:    500,
	core.PieceCaptain:    300,
	core.PieceLieutenant: 300,
	core.PieceMajor:      200,
	core.PieceScout:      150,
	core.PiecePawn:       100,
	core.PieceSpy:        50,
	core.PieceFortress:   400,
}

const (
	centerWeight        = 6.0
	marshalGuardBonus   = 8.0
	marshalThreatMalus  = 30.0
	maxCentralityTables = 16
)

// Value returns the material value of a piece kind, 0 for unknown kinds
func Value(kind core.PieceKind) float64 {
	return pieceValues[kind]
}

// Evaluate scores b from the perspective of the side to move. Malformed or
// empty input scores 0.
func Evaluate(b *core.BoardState) float64 {
	if b == nil {
		return 0
	}
	return EvaluateFor(b, b.CurrentPlayer)
}

// EvaluateFor scores b from the perspective of player
func EvaluateFor(b *core.BoardState, player core.Player) float64 {
	if !player.Valid() {
		return 0
	}
	pos, ok := NewPosition(b)
	if !ok {
		return 0
	}
	return pos.Evaluate(player)
}

// Features is the decomposed evaluation of a position from one side
type Features struct {
	Material    float64
	Positional  float64
	OwnPieces   int
	EnemyPieces int
}

// Total is the evaluator score the features add up to
func (f Features) Total() float64 {
	return f.Material + f.Positional
}

// Evaluate is material plus centre control and marshal safety, positive when
// perspective is ahead.
func (p *Position) Evaluate(perspective core.Player) float64 {
	return p.Features(perspective).Total()
}

// Features decomposes the evaluation of the position for perspective
func (p *Position) Features(perspective core.Player) Features {
	var f Features
	for idx, c := range p.cells {
		if c.empty() {
			continue
		}
		positional := 0.0
		if c.kind != core.PieceFortress {
			positional += p.center[idx]
		}
		if c.kind == core.PieceMarshal {
			positional += p.marshalSafety(idx, c.owner)
		}
		if c.owner == perspective {
			f.Material += c.value
			f.Positional += positional
			f.OwnPieces++
		} else {
			f.Material -= c.value
			f.Positional -= positional
			f.EnemyPieces++
		}
	}
	return f
}

// Centrality returns the centre-control bonus of a square, 0 off the board
func (p *Position) Centrality(s core.Square) float64 {
	if !p.inBounds(s.Row, s.Col) {
		return 0
	}
	return p.center[p.index(s.Row, s.Col)]
}

// Height returns the number of rows
func (p *Position) Height() int {
	return p.height
}

func (p *Position) marshalSafety(idx int, owner core.Player) float64 {
	row, col := idx/p.width, idx%p.width
	safety := 0.0
	for _, d := range directions {
		r, k := row+d[0], col+d[1]
		if !p.inBounds(r, k) {
			continue
		}
		n := p.cells[p.index(r, k)]
		switch {
		case n.empty():
		case n.owner == owner:
			safety += marshalGuardBonus
		default:
			safety -= marshalThreatMalus
		}
	}
	return safety
}

var (
	centralityMu    sync.RWMutex
	centralityCache = make(map[[2]int][]float64)
)

// centralityTable returns a read-only bonus table for a board size
func centralityTable(w, h int) []float64 {
	key := [2]int{w, h}
	centralityMu.RLock()
	t, ok := centralityCache[key]
	centralityMu.RUnlock()
	if ok {
		return t
	}

	t = make([]float64, w*h)
	cr, cc := float64(h-1)/2, float64(w-1)/2
	maxDist := cr + cc
	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			dist := math.Abs(float64(r)-cr) + math.Abs(float64(c)-cc)
			if maxDist > 0 {
				t[r*w+c] = centerWeight * (1 - dist/maxDist)
			}
		}
	}

	centralityMu.Lock()
	if len(centralityCache) < maxCentralityTables {
		centralityCache[key] = t
	}
	centralityMu.Unlock()
	return t
}
