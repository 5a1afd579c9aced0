package board

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"arena/internal/core"
)

var pieceSymbols = map[core.PieceKind]byte{
	core.PieceMarshal:    'M',
	core.PieceGeneral:    'G',
	core.PieceCaptain:    'C',
	core.PieceLieutenant: 'L',
	core.PieceMajor:      'J',
	core.PieceScout:      'S',
	core.PiecePawn:       'P',
	core.PieceSpy:        'Y',
	core.PieceFortress:   'F',
}

// standardArmy is the 40-piece deployment each side starts with
var standardArmy = []struct {
	kind  core.PieceKind
	count int
}{
	{core.PieceMarshal, 1},
	{core.PieceGeneral, 1},
	{core.PieceMajor, 3},
	{core.PieceCaptain, 4},
	{core.PieceLieutenant, 4},
	{core.PieceScout, 8},
	{core.PiecePawn, 12},
	{core.PieceSpy, 1},
	{core.PieceFortress, 6},
}

const deploymentRows = 4

// Apply returns the board after m without touching b. A malformed board is
// returned as an unchanged copy.
func Apply(b *core.BoardState, m core.Move) *core.BoardState {
	pos, ok := NewPosition(b)
	if !ok {
		if b == nil {
			return nil
		}
		return b.Clone()
	}
	pos.Make(m)
	return pos.State(b.MoveNumber + 1)
}

// LegalMoves returns the lookahead moves for the side to move in b
func LegalMoves(b *core.BoardState) []core.Move {
	pos, ok := NewPosition(b)
	if !ok {
		return nil
	}
	return pos.GenerateMoves()
}

// NewStandard builds a 10x10 opening position. Player one deploys on the
// first four rows in a random order; player two mirrors that deployment.
func NewStandard(rng *rand.Rand) *core.BoardState {
	size := core.DefaultBoardSize
	army := make([]core.PieceKind, 0, deploymentRows*size)
	for _, group := range standardArmy {
		for i := 0; i < group.count; i++ {
			army = append(army, group.kind)
		}
	}
	rng.Shuffle(len(army), func(i, j int) { army[i], army[j] = army[j], army[i] })

	b := &core.BoardState{
		Width:         size,
		Height:        size,
		CurrentPlayer: core.PlayerOne,
		Phase:         core.PhaseOpening,
		Pieces:        make([]core.Piece, 0, 2*len(army)),
	}
	for i, kind := range army {
		row, col := i/size, i%size
		b.Pieces = append(b.Pieces,
			core.Piece{Kind: kind, Owner: core.PlayerOne, Square: core.Square{Row: row, Col: col}},
			core.Piece{Kind: kind, Owner: core.PlayerTwo, Square: core.Square{Row: size - 1 - row, Col: size - 1 - col}},
		)
	}
	return b
}

// ToASCII renders the board with player one in upper case. Boards larger
// than core.MaxBoardSize render as the empty string.
func ToASCII(b *core.BoardState) string {
	if b == nil || !b.SizeValid() {
		return ""
	}
	w, h := b.Dimensions()
	grid := make([][]byte, h)
	for r := range grid {
		grid[r] = []byte(strings.Repeat(".", w))
	}
	for _, pc := range b.Pieces {
		sym, ok := pieceSymbols[pc.Kind]
		if !ok || pc.Square.Row < 0 || pc.Square.Row >= h || pc.Square.Col < 0 || pc.Square.Col >= w {
			continue
		}
		if pc.Owner == core.PlayerTwo {
			sym += 'a' - 'A'
		}
		grid[pc.Square.Row][pc.Square.Col] = sym
	}

	var sb strings.Builder
	files := make([]string, w)
	for c := 0; c < w; c++ {
		files[c] = string(rune('a' + c))
	}
	header := "   " + strings.Join(files, " ")
	sb.WriteString(header + "\n")
	for r := h - 1; r >= 0; r-- {
		sb.WriteString(fmt.Sprintf("%2d ", r+1))
		for c := 0; c < w; c++ {
			sb.WriteByte(grid[r][c])
			sb.WriteByte(' ')
		}
		sb.WriteString(fmt.Sprintf("%d\n", r+1))
	}
	sb.WriteString(header)
	return sb.String()
}
