// FILE: internal/client/session/session.go
package session

import (
	"arena/internal/client/api"
	"arena/internal/core"
)

// Session is the client-side state of the REPL
type Session struct {
	APIBaseURL   string
	Client       *api.Client
	Verbose      bool
	CurrentMatch string
	Match        *core.MatchResponse
	Board        *core.BoardState
	Seed         uint64
}

func (s *Session) GetAPIBaseURL() string { return s.APIBaseURL }
func (s *Session) SetAPIBaseURL(url string) { s.APIBaseURL = url }
func (s *Session) GetCurrentMatch() string { return s.CurrentMatch }
func (s *Session) SetCurrentMatch(id string) { s.CurrentMatch = id }
func (s *Session) GetClient() *api.Client { return s.Client }
func (s *Session) IsVerbose() bool { return s.Verbose }
func (s *Session) GetMatchState() *core.MatchResponse { return s.Match }
func (s *Session) SetMatchState(m *core.MatchResponse) { s.Match = m }
func (s *Session) GetBoard() *core.BoardState { return s.Board }
func (s *Session) SetBoard(b *core.BoardState) { s.Board = b }

// NextSeed returns a fresh deployment seed for a new board
func (s *Session) NextSeed() uint64 {
	s.Seed++
	return s.Seed
}
