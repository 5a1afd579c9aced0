// FILE: internal/game/game.go
package game

import (
	"slices"
	"sync"
	"time"

	"arena/internal/core"
	"arena/internal/engine"
	"arena/internal/fraud"
)

// Snapshot is a read-only copy of a match for reporting and the API
type Snapshot struct {
	ID            string
	Status        core.MatchStatus
	CurrentPlayer core.Player
	AgentA        core.AgentInfo
	AgentB        core.AgentInfo
	Moves         []core.MoveLogEntry
	CreatedAt     time.Time
	StartedAt     time.Time
	EndedAt       time.Time
	Result        *core.Result
}

// Response converts the snapshot to its API form
func (s Snapshot) Response() core.MatchResponse {
	resp := core.MatchResponse{
		MatchID:       s.ID,
		Status:        s.Status.String(),
		CurrentPlayer: s.CurrentPlayer,
		AgentA:        s.AgentA,
		AgentB:        s.AgentB,
		Moves:         s.Moves,
		CreatedAt:     s.CreatedAt,
		Result:        s.Result,
	}
	if resp.Moves == nil {
		resp.Moves = []core.MoveLogEntry{}
	}
	if !s.EndedAt.IsZero() {
		ended := s.EndedAt
		resp.EndedAt = &ended
	}
	return resp
}

// Match is one session between two borrowed agents. Callers hold Lock for
// the whole of a move request so the log stays in submission order.
// Snapshot locks internally and must not be called while locked.
type Match struct {
	mu sync.Mutex

	id            string
	agents        map[core.Player]*engine.Agent
	status        core.MatchStatus
	currentPlayer core.Player
	moves         []core.MoveLogEntry
	createdAt     time.Time
	startedAt     time.Time
	endedAt       time.Time
	result        *core.Result
	human         map[core.Player]*fraud.Monitor
	fraudParams   fraud.Params
}

func New(id string, agentA, agentB *engine.Agent, fraudParams fraud.Params) *Match {
	return &Match{
		id: id,
		agents: map[core.Player]*engine.Agent{
			core.PlayerOne: agentA,
			core.PlayerTwo: agentB,
		},
		status:        core.StatusPending,
		currentPlayer: core.PlayerOne,
		createdAt:     time.Now(),
		human:         make(map[core.Player]*fraud.Monitor),
		fraudParams:   fraudParams,
	}
}

func (m *Match) ID() string {
	return m.id
}

func (m *Match) Lock() {
	m.mu.Lock()
}

func (m *Match) Unlock() {
	m.mu.Unlock()
}

// The methods below up to Snapshot require the caller to hold the lock.

// Status returns the current status
func (m *Match) Status() core.MatchStatus {
	return m.status
}

// CurrentPlayer returns the side whose turn the log says it is
func (m *Match) CurrentPlayer() core.Player {
	return m.currentPlayer
}

// Agent returns the agent playing for p
func (m *Match) Agent(p core.Player) *engine.Agent {
	return m.agents[p]
}

// Agents returns both agents in player order
func (m *Match) Agents() (a, b *engine.Agent) {
	return m.agents[core.PlayerOne], m.agents[core.PlayerTwo]
}

// Activate moves a pending match to active on its first move request
func (m *Match) Activate() {
	if m.status == core.StatusPending {
		m.status = core.StatusActive
		m.startedAt = time.Now()
	}
}

// AppendMove logs a decision and passes the turn to the opponent
func (m *Match) AppendMove(mv core.Move, player core.Player, latencyMs float64) {
	m.moves = append(m.moves, core.MoveLogEntry{
		Move:      mv,
		LatencyMs: latencyMs,
		Player:    player,
		At:        time.Now(),
	})
	m.currentPlayer = player.Opponent()
}

// MoveCount returns the number of logged moves
func (m *Match) MoveCount() int {
	return len(m.moves)
}

// End moves the match to a terminal status. It reports false when the match
// had already ended or the status is not terminal.
func (m *Match) End(res core.Result) bool {
	if m.status.IsTerminal() || !res.Status.IsTerminal() {
		return false
	}
	m.status = res.Status
	m.endedAt = time.Now()
	r := res
	m.result = &r
	return true
}

// RecordHumanDecision folds a human-submitted latency into the player's
// monitor, creating it on first use.
func (m *Match) RecordHumanDecision(p core.Player, latencyMs float64) (score float64, crossed bool) {
	mon, ok := m.human[p]
	if !ok {
		mon = fraud.NewMonitor(m.fraudParams)
		m.human[p] = mon
	}
	return mon.RecordDecision(latencyMs)
}

// EndedAt returns when the match ended, zero while running
func (m *Match) EndedAt() time.Time {
	return m.endedAt
}

// Snapshot copies the match state; it takes the lock itself
func (m *Match) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := Snapshot{
		ID:            m.id,
		Status:        m.status,
		CurrentPlayer: m.currentPlayer,
		Moves:         slices.Clone(m.moves),
		CreatedAt:     m.createdAt,
		StartedAt:     m.startedAt,
		EndedAt:       m.endedAt,
	}
	if a := m.agents[core.PlayerOne]; a != nil {
		s.AgentA = a.Info()
	}
	if b := m.agents[core.PlayerTwo]; b != nil {
		s.AgentB = b.Info()
	}
	if m.result != nil {
		r := *m.result
		s.Result = &r
	}
	return s
}
