package board

import (
	"arena/internal/core"
)

type cell struct {
	kind  core.PieceKind
	owner core.Player
	value float64
}

func (c cell) empty() bool {
	return c.owner == core.PlayerNone
}

// Position is a mutable search-side copy of a BoardState. It is owned by a
// single search and must not be shared between goroutines.
type Position struct {
	width  int
	height int
	cells  []cell
	center []float64 // per-index centrality bonus, shared between clones
	toMove core.Player
}

// Undo restores the cells touched by Make
type Undo struct {
	from   cell
	to     cell
	moved  bool
	toMove core.Player
}

var directions = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// NewPosition builds a search position. It reports false for malformed
// boards: dimensions above core.MaxBoardSize, unknown piece kinds, invalid
// owners, squares off the board or two pieces on one square.
func NewPosition(b *core.BoardState) (*Position, bool) {
	if b == nil || !b.CurrentPlayer.Valid() || !b.SizeValid() {
		return nil, false
	}
	w, h := b.Dimensions()
	p := &Position{
		width:  w,
		height: h,
		cells:  make([]cell, w*h),
		center: centralityTable(w, h),
		toMove: b.CurrentPlayer,
	}
	for _, pc := range b.Pieces {
		v, ok := pieceValues[pc.Kind]
		if !ok || !pc.Owner.Valid() || !p.inBounds(pc.Square.Row, pc.Square.Col) {
			return nil, false
		}
		idx := p.index(pc.Square.Row, pc.Square.Col)
		if !p.cells[idx].empty() {
			return nil, false
		}
		p.cells[idx] = cell{kind: pc.Kind, owner: pc.Owner, value: v}
	}
	return p, true
}

// Clone copies the cell grid; the centrality table is shared
func (p *Position) Clone() *Position {
	c := *p
	c.cells = make([]cell, len(p.cells))
	copy(c.cells, p.cells)
	return &c
}

func (p *Position) ToMove() core.Player {
	return p.toMove
}

func (p *Position) inBounds(row, col int) bool {
	return row >= 0 && row < p.height && col >= 0 && col < p.width
}

func (p *Position) index(row, col int) int {
	return row*p.width + col
}

// PieceCount returns the number of occupied squares
func (p *Position) PieceCount() int {
	n := 0
	for _, c := range p.cells {
		if !c.empty() {
			n++
		}
	}
	return n
}

// Make applies m and flips the side to move. Moves that do not fit the grid
// only flip the side, so a stale caller-supplied move can never corrupt the
// position.
func (p *Position) Make(m core.Move) Undo {
	u := Undo{toMove: p.toMove}
	p.toMove = p.toMove.Opponent()

	if !p.inBounds(m.From.Row, m.From.Col) || !p.inBounds(m.To.Row, m.To.Col) || m.From == m.To {
		return u
	}
	fi := p.index(m.From.Row, m.From.Col)
	ti := p.index(m.To.Row, m.To.Col)
	if p.cells[fi].empty() {
		return u
	}

	u.from = p.cells[fi]
	u.to = p.cells[ti]
	u.moved = true
	p.cells[ti] = p.cells[fi]
	p.cells[fi] = cell{}
	return u
}

// Unmake reverts a Make with the same move
func (p *Position) Unmake(m core.Move, u Undo) {
	p.toMove = u.toMove
	if !u.moved {
		return
	}
	p.cells[p.index(m.From.Row, m.From.Col)] = u.from
	p.cells[p.index(m.To.Row, m.To.Col)] = u.to
}

// GenerateMoves returns lookahead moves for the side to move: a single
// orthogonal step onto an empty or enemy square, scouts sliding any distance.
// Fortresses never move. This is not a rules engine; the root of every search
// uses the caller's legal moves instead.
func (p *Position) GenerateMoves() []core.Move {
	return p.AppendMoves(make([]core.Move, 0, 32))
}

// AppendMoves appends lookahead moves to dst
func (p *Position) AppendMoves(dst []core.Move) []core.Move {
	for idx, c := range p.cells {
		if c.owner != p.toMove || c.kind == core.PieceFortress {
			continue
		}
		row, col := idx/p.width, idx%p.width
		for _, d := range directions {
			r, k := row+d[0], col+d[1]
			for p.inBounds(r, k) {
				target := p.cells[p.index(r, k)]
				if target.owner == c.owner {
					break
				}
				m := core.Move{
					From:   core.Square{Row: row, Col: col},
					To:     core.Square{Row: r, Col: k},
					Piece:  c.kind,
					Player: c.owner,
				}
				if !target.empty() {
					m.IsCapture = true
					m.CapturedPiece = target.kind
					dst = append(dst, m)
					break
				}
				dst = append(dst, m)
				if c.kind != core.PieceScout {
					break
				}
				r, k = r+d[0], k+d[1]
			}
		}
	}
	return dst
}

// State converts the position back into a caller-facing snapshot
func (p *Position) State(moveNumber int) *core.BoardState {
	b := &core.BoardState{
		Width:         p.width,
		Height:        p.height,
		CurrentPlayer: p.toMove,
		MoveNumber:    moveNumber,
	}
	for idx, c := range p.cells {
		if c.empty() {
			continue
		}
		b.Pieces = append(b.Pieces, core.Piece{
			Kind:   c.kind,
			Owner:  c.owner,
			Square: core.Square{Row: idx / p.width, Col: idx % p.width},
		})
	}
	b.Phase = phaseFor(moveNumber, len(b.Pieces))
	return b
}

func phaseFor(moveNumber, pieces int) core.Phase {
	switch {
	case pieces <= 16:
		return core.PhaseEndgame
	case moveNumber < 20:
		return core.PhaseOpening
	default:
		return core.PhaseMidgame
	}
}
