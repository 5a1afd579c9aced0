package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arena/internal/core"
	"arena/internal/engine"
	"arena/internal/fraud"
)

func newMatch(t *testing.T) *Match {
	t.Helper()
	a, err := engine.New(core.DefaultAgentConfig(core.DifficultyEasy, core.PersonalityAggressive))
	require.NoError(t, err)
	b, err := engine.New(core.DefaultAgentConfig(core.DifficultyMedium, core.PersonalityDefensive))
	require.NoError(t, err)
	return New("m1", a, b, fraud.DefaultParams())
}

func TestLifecycle(t *testing.T) {
	m := newMatch(t)
	assert.Equal(t, core.StatusPending, m.Snapshot().Status)

	m.Lock()
	m.Activate()
	m.AppendMove(core.Move{To: core.Square{Row: 1}}, core.PlayerOne, 3.5)
	m.AppendMove(core.Move{To: core.Square{Row: 8}}, core.PlayerTwo, 12)
	m.Unlock()

	s := m.Snapshot()
	assert.Equal(t, core.StatusActive, s.Status)
	assert.Equal(t, core.PlayerOne, s.CurrentPlayer)
	require.Len(t, s.Moves, 2)
	assert.Equal(t, core.PlayerOne, s.Moves[0].Player)
	assert.Equal(t, core.PlayerTwo, s.Moves[1].Player)
	assert.False(t, s.StartedAt.IsZero())

	m.Lock()
	assert.True(t, m.End(core.Result{Status: core.StatusCompleted, Winner: core.PlayerTwo}))
	assert.False(t, m.End(core.Result{Status: core.StatusFailed}), "terminal status is final")
	m.Unlock()

	s = m.Snapshot()
	assert.Equal(t, core.StatusCompleted, s.Status)
	require.NotNil(t, s.Result)
	assert.Equal(t, core.PlayerTwo, s.Result.Winner)

	resp := s.Response()
	assert.Equal(t, "completed", resp.Status)
	require.NotNil(t, resp.EndedAt)
	assert.Equal(t, core.DifficultyEasy, resp.AgentA.Config.Difficulty)
}

func TestEndRejectsNonTerminalStatus(t *testing.T) {
	m := newMatch(t)
	m.Lock()
	defer m.Unlock()
	assert.False(t, m.End(core.Result{Status: core.StatusActive}))
	assert.Equal(t, core.StatusPending, m.Status())
}

func TestSnapshotIsACopy(t *testing.T) {
	m := newMatch(t)
	m.Lock()
	m.AppendMove(core.Move{}, core.PlayerOne, 1)
	m.Unlock()

	s := m.Snapshot()
	s.Moves[0].LatencyMs = 99

	assert.Equal(t, 1.0, m.Snapshot().Moves[0].LatencyMs)
	assert.Empty(t, newMatch(t).Snapshot().Response().Moves)
}

func TestHumanDecisionsPerPlayer(t *testing.T) {
	m := newMatch(t)
	m.Lock()
	defer m.Unlock()

	var crossings int
	for i := 0; i < 3; i++ {
		_, crossed := m.RecordHumanDecision(core.PlayerOne, 1)
		if crossed {
			crossings++
		}
	}
	score, _ := m.RecordHumanDecision(core.PlayerTwo, 250)
	assert.Equal(t, 1, crossings)
	assert.Zero(t, score)
}
