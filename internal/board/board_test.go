package board

import (
	"math/rand/v2"
	"sync"
	"testing"

	"arena/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sq(row, col int) core.Square {
	return core.Square{Row: row, Col: col}
}

func TestEvaluate_MaterialBalance(t *testing.T) {
	b := &core.BoardState{
		Width: 5, Height: 5,
		CurrentPlayer: core.PlayerOne,
		Pieces: []core.Piece{
			{Kind: core.PieceGeneral, Owner: core.PlayerOne, Square: sq(0, 0)},
			{Kind: core.PiecePawn, Owner: core.PlayerTwo, Square: sq(4, 4)},
		},
	}

	got := Evaluate(b)
	// corners have zero centrality, so the score is pure material
	assert.InDelta(t, 400.0, got, 1e-9)

	b.CurrentPlayer = core.PlayerTwo
	assert.InDelta(t, -400.0, Evaluate(b), 1e-9)
}

func TestEvaluate_MalformedReturnsZero(t *testing.T) {
	tests := []struct {
		name  string
		board *core.BoardState
	}{
		{"nil", nil},
		{"empty", &core.BoardState{CurrentPlayer: core.PlayerOne}},
		{"bad player", &core.BoardState{CurrentPlayer: 7, Pieces: []core.Piece{{Kind: core.PiecePawn, Owner: core.PlayerOne}}}},
		{"unknown kind", &core.BoardState{CurrentPlayer: core.PlayerOne, Pieces: []core.Piece{{Kind: "dragon", Owner: core.PlayerOne}}}},
		{"off board", &core.BoardState{CurrentPlayer: core.PlayerOne, Pieces: []core.Piece{{Kind: core.PiecePawn, Owner: core.PlayerOne, Square: sq(40, 2)}}}},
		{"bad owner", &core.BoardState{CurrentPlayer: core.PlayerOne, Pieces: []core.Piece{{Kind: core.PiecePawn, Owner: 3}}}},
		{"huge dimensions", &core.BoardState{Width: 1 << 40, Height: 2, CurrentPlayer: core.PlayerOne, Pieces: []core.Piece{
			{Kind: core.PiecePawn, Owner: core.PlayerOne, Square: sq(0, 0)},
		}}},
		{"one past max", &core.BoardState{Width: core.MaxBoardSize + 1, CurrentPlayer: core.PlayerOne, Pieces: []core.Piece{
			{Kind: core.PiecePawn, Owner: core.PlayerOne, Square: sq(0, 0)},
		}}},
		{"stacked", &core.BoardState{CurrentPlayer: core.PlayerOne, Pieces: []core.Piece{
			{Kind: core.PiecePawn, Owner: core.PlayerOne, Square: sq(1, 1)},
			{Kind: core.PieceSpy, Owner: core.PlayerTwo, Square: sq(1, 1)},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.Equal(t, 0.0, Evaluate(tt.board))
			})
		})
	}
}

func TestEvaluate_CenterAndMarshalSafety(t *testing.T) {
	edge := &core.BoardState{Width: 5, Height: 5, CurrentPlayer: core.PlayerOne, Pieces: []core.Piece{
		{Kind: core.PiecePawn, Owner: core.PlayerOne, Square: sq(0, 0)},
	}}
	center := &core.BoardState{Width: 5, Height: 5, CurrentPlayer: core.PlayerOne, Pieces: []core.Piece{
		{Kind: core.PiecePawn, Owner: core.PlayerOne, Square: sq(2, 2)},
	}}
	assert.Greater(t, Evaluate(center), Evaluate(edge))

	guarded := &core.BoardState{Width: 5, Height: 5, CurrentPlayer: core.PlayerOne, Pieces: []core.Piece{
		{Kind: core.PieceMarshal, Owner: core.PlayerOne, Square: sq(0, 0)},
		{Kind: core.PiecePawn, Owner: core.PlayerOne, Square: sq(0, 1)},
	}}
	threatened := &core.BoardState{Width: 5, Height: 5, CurrentPlayer: core.PlayerOne, Pieces: []core.Piece{
		{Kind: core.PieceMarshal, Owner: core.PlayerOne, Square: sq(0, 0)},
		{Kind: core.PiecePawn, Owner: core.PlayerOne, Square: sq(4, 4)},
		{Kind: core.PiecePawn, Owner: core.PlayerTwo, Square: sq(0, 1)},
	}}
	// threatened has the same net material minus a pawn, plus the threat malus
	assert.Greater(t, Evaluate(guarded), Evaluate(threatened))
}

func TestEvaluate_ConcurrentSafe(t *testing.T) {
	b := NewStandard(rand.New(rand.NewPCG(1, 2)))
	want := Evaluate(b)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				assert.Equal(t, want, Evaluate(b))
			}
		}()
	}
	wg.Wait()
}

func TestNewStandard_Symmetric(t *testing.T) {
	b := NewStandard(rand.New(rand.NewPCG(7, 7)))
	require.Len(t, b.Pieces, 80)
	assert.Equal(t, core.PlayerOne, b.CurrentPlayer)
	// mirrored deployment evaluates as level
	assert.InDelta(t, 0.0, Evaluate(b), 1e-9)
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	b := &core.BoardState{Width: 4, Height: 4, CurrentPlayer: core.PlayerOne, MoveNumber: 3, Pieces: []core.Piece{
		{Kind: core.PieceCaptain, Owner: core.PlayerOne, Square: sq(0, 0)},
		{Kind: core.PiecePawn, Owner: core.PlayerTwo, Square: sq(1, 0)},
	}}
	before := b.Clone()

	next := Apply(b, core.Move{From: sq(0, 0), To: sq(1, 0), Piece: core.PieceCaptain, IsCapture: true, CapturedPiece: core.PiecePawn})

	assert.Equal(t, before, b)
	require.Len(t, next.Pieces, 1)
	assert.Equal(t, sq(1, 0), next.Pieces[0].Square)
	assert.Equal(t, core.PlayerTwo, next.CurrentPlayer)
	assert.Equal(t, 4, next.MoveNumber)
}

func TestPosition_MakeUnmakeRoundTrip(t *testing.T) {
	b := NewStandard(rand.New(rand.NewPCG(3, 4)))
	pos, ok := NewPosition(b)
	require.True(t, ok)
	snapshot := pos.Clone()

	for _, m := range pos.GenerateMoves() {
		u := pos.Make(m)
		pos.Unmake(m, u)
	}
	assert.Equal(t, snapshot.cells, pos.cells)
	assert.Equal(t, snapshot.toMove, pos.toMove)
}

func TestPosition_StaleMoveOnlyFlipsSide(t *testing.T) {
	b := &core.BoardState{Width: 3, Height: 3, CurrentPlayer: core.PlayerOne, Pieces: []core.Piece{
		{Kind: core.PiecePawn, Owner: core.PlayerOne, Square: sq(0, 0)},
	}}
	pos, ok := NewPosition(b)
	require.True(t, ok)

	m := core.Move{From: sq(2, 2), To: sq(9, 9)}
	u := pos.Make(m)
	assert.Equal(t, core.PlayerTwo, pos.ToMove())
	pos.Unmake(m, u)
	assert.Equal(t, core.PlayerOne, pos.ToMove())
	assert.Equal(t, 1, pos.PieceCount())
}

func TestGenerateMoves(t *testing.T) {
	b := &core.BoardState{Width: 5, Height: 5, CurrentPlayer: core.PlayerOne, Pieces: []core.Piece{
		{Kind: core.PieceScout, Owner: core.PlayerOne, Square: sq(0, 0)},
		{Kind: core.PieceFortress, Owner: core.PlayerOne, Square: sq(4, 4)},
		{Kind: core.PiecePawn, Owner: core.PlayerTwo, Square: sq(0, 3)},
	}}

	moves := LegalMoves(b)
	// scout: up the file 4 squares, along the rank 2 squares then capture
	assert.Len(t, moves, 7)

	captures := 0
	for _, m := range moves {
		assert.Equal(t, core.PieceScout, m.Piece)
		if m.IsCapture {
			captures++
			assert.Equal(t, core.PiecePawn, m.CapturedPiece)
			assert.Equal(t, sq(0, 3), m.To)
		}
	}
	assert.Equal(t, 1, captures)
}

func TestToASCII(t *testing.T) {
	b := &core.BoardState{Width: 3, Height: 3, CurrentPlayer: core.PlayerOne, Pieces: []core.Piece{
		{Kind: core.PieceMarshal, Owner: core.PlayerOne, Square: sq(0, 0)},
		{Kind: core.PieceSpy, Owner: core.PlayerTwo, Square: sq(2, 2)},
	}}
	want := "   a b c\n" +
		" 3 . . y 3\n" +
		" 2 . . . 2\n" +
		" 1 M . . 1\n" +
		"   a b c"
	assert.Equal(t, want, ToASCII(b))
}

func TestToASCIIOversizedBoard(t *testing.T) {
	assert.Empty(t, ToASCII(&core.BoardState{Width: 1 << 40, Height: 2, CurrentPlayer: core.PlayerOne}))
	assert.Empty(t, ToASCII(&core.BoardState{Width: 3, Height: core.MaxBoardSize + 1, CurrentPlayer: core.PlayerOne}))
	assert.NotEmpty(t, ToASCII(&core.BoardState{Width: core.MaxBoardSize, Height: core.MaxBoardSize, CurrentPlayer: core.PlayerOne}))
}
