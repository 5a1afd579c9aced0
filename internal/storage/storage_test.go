package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T, path string) *Store {
	t.Helper()
	s, err := NewStore(path, true, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, s.InitDB())
	return s
}

func TestArchiveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arena.db")
	s := openStore(t, path)

	created := time.Now().UTC().Truncate(time.Second)
	s.RecordMatch(MatchRecord{
		MatchID:  "m-1",
		AgentAID: "a", AgentAKey: "easy/aggressive", AgentAKind: "random",
		AgentBID: "b", AgentBKey: "hard/tactical", AgentBKind: "hybrid",
		Status:       "pending",
		CreatedAtUTC: created,
	})
	s.RecordMove(MoveRecord{MatchID: "m-1", MoveNumber: 1, Player: 1, FromSquare: "a1", ToSquare: "a2", Piece: "pawn", LatencyMs: 2.5, MoveTimeUTC: created})
	s.RecordMove(MoveRecord{MatchID: "m-1", MoveNumber: 2, Player: 2, FromSquare: "j10", ToSquare: "j9", Piece: "scout", LatencyMs: 61, MoveTimeUTC: created})
	s.RecordMatchEnd("m-1", "completed", 2, "resigned", 2, created.Add(time.Minute))
	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "close is idempotent")
	assert.True(t, s.IsHealthy())

	s = openStore(t, path)
	defer s.Close()

	matches, err := s.QueryMatches("*", "hard/tactical")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	m := matches[0]
	assert.Equal(t, "completed", m.Status)
	assert.Equal(t, 2, m.Winner)
	assert.Equal(t, "resigned", m.Reason)
	assert.Equal(t, 2, m.MoveCount)
	require.NotNil(t, m.EndedAtUTC)

	none, err := s.QueryMatches("m-2", "")
	require.NoError(t, err)
	assert.Empty(t, none)

	moves, err := s.QueryMoves("m-1")
	require.NoError(t, err)
	require.Len(t, moves, 2)
	assert.Equal(t, "a2", moves[0].ToSquare)
	assert.Equal(t, 2, moves[1].Player)
	assert.InDelta(t, 61.0, moves[1].LatencyMs, 1e-9)
}

func TestFailedWriteDegradesStore(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "arena.db"))
	defer s.Close()

	// violates the foreign key on matches
	s.RecordMove(MoveRecord{MatchID: "ghost", MoveNumber: 1, Player: 1, FromSquare: "a1", ToSquare: "a2"})
	require.Eventually(t, func() bool { return !s.IsHealthy() }, 2*time.Second, 5*time.Millisecond)

	s.RecordMatch(MatchRecord{MatchID: "later"})
	assert.GreaterOrEqual(t, s.Dropped(), int64(1))
}

func TestDeleteDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arena.db")
	s := openStore(t, path)
	require.NoError(t, s.DeleteDB())
	assert.NoFileExists(t, path)
}
