package core

import "fmt"

// Player is the side to move, 1 or 2
type Player int

const (
	PlayerNone Player = 0
	PlayerOne  Player = 1
	PlayerTwo  Player = 2
)

func (p Player) Valid() bool {
	return p == PlayerOne || p == PlayerTwo
}

// Opponent returns the other side
func (p Player) Opponent() Player {
	if p == PlayerOne {
		return PlayerTwo
	}
	return PlayerOne
}

// Phase is the coarse stage of the game
type Phase string

const (
	PhaseOpening Phase = "opening"
	PhaseMidgame Phase = "midgame"
	PhaseEndgame Phase = "endgame"
)

// PieceKind names a piece type
type PieceKind string

const (
	PieceMarshal    PieceKind = "marshal"
	PieceGeneral    PieceKind = "general"
	PieceCaptain    PieceKind = "captain"
	PieceLieutenant PieceKind = "lieutenant"
	PieceMajor      PieceKind = "major"
	PieceScout      PieceKind = "scout"
	PiecePawn       PieceKind = "pawn"
	PieceSpy        PieceKind = "spy"
	PieceFortress   PieceKind = "fortress"
)

// Square addresses a board cell, zero-based
type Square struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (s Square) String() string {
	return fmt.Sprintf("%c%d", 'a'+rune(s.Col), s.Row+1)
}

// Piece is one occupant of the board
type Piece struct {
	Kind   PieceKind `json:"kind" validate:"required"`
	Owner  Player    `json:"owner" validate:"required,oneof=1 2"`
	Square Square    `json:"square"`
}

// BoardState is an immutable snapshot supplied per request
type BoardState struct {
	Width         int     `json:"width,omitempty" validate:"omitempty,min=3,max=32"`
	Height        int     `json:"height,omitempty" validate:"omitempty,min=3,max=32"`
	Pieces        []Piece `json:"pieces" validate:"dive"`
	CurrentPlayer Player  `json:"currentPlayer" validate:"required,oneof=1 2"`
	MoveNumber    int     `json:"moveNumber" validate:"min=0"`
	Phase         Phase   `json:"phase,omitempty" validate:"omitempty,oneof=opening midgame endgame"`
}

// DefaultBoardSize applies when width or height is zero
const DefaultBoardSize = 10

// MaxBoardSize bounds both dimensions; larger boards are malformed
const MaxBoardSize = 32

// Dimensions returns width and height with defaults applied
func (b *BoardState) Dimensions() (int, int) {
	w, h := b.Width, b.Height
	if w <= 0 {
		w = DefaultBoardSize
	}
	if h <= 0 {
		h = DefaultBoardSize
	}
	return w, h
}

// SizeValid reports whether both dimensions, after defaults, fit MaxBoardSize
func (b *BoardState) SizeValid() bool {
	w, h := b.Dimensions()
	return w <= MaxBoardSize && h <= MaxBoardSize
}

// Clone returns a deep copy
func (b *BoardState) Clone() *BoardState {
	c := *b
	c.Pieces = make([]Piece, len(b.Pieces))
	copy(c.Pieces, b.Pieces)
	return &c
}

// Move is a single piece relocation, optionally capturing
type Move struct {
	From          Square    `json:"from"`
	To            Square    `json:"to"`
	Piece         PieceKind `json:"piece"`
	Player        Player    `json:"player,omitempty"`
	IsCapture     bool      `json:"isCapture"`
	CapturedPiece PieceKind `json:"capturedPiece,omitempty"`
}

// Equal compares structurally on from, to and player
func (m Move) Equal(o Move) bool {
	return m.From == o.From && m.To == o.To && m.Player == o.Player
}

func (m Move) String() string {
	sep := "-"
	if m.IsCapture {
		sep = "x"
	}
	return m.From.String() + sep + m.To.String()
}

// ContainsMove reports whether m is a member of moves
func ContainsMove(moves []Move, m Move) bool {
	for _, candidate := range moves {
		if candidate.Equal(m) {
			return true
		}
	}
	return false
}
