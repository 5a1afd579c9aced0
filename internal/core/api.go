// FILE: internal/core/api.go
package core

import "time"

// Request types

type AgentSpec struct {
	Difficulty  string `json:"difficulty" validate:"required,oneof=easy medium hard"`
	Personality string `json:"personality" validate:"required,oneof=aggressive defensive balanced tactical"`
	Algorithm   string `json:"algorithm,omitempty" validate:"omitempty,oneof=random minimax mcts hybrid"`
	SearchDepth int    `json:"searchDepth,omitempty" validate:"omitempty,min=1,max=8"`
}

type CreateMatchRequest struct {
	AgentA AgentSpec `json:"agentA" validate:"required"`
	AgentB AgentSpec `json:"agentB" validate:"required"`
}

type MoveRequest struct {
	BoardState  BoardState `json:"boardState" validate:"required"`
	ValidMoves  []Move     `json:"validMoves" validate:"required"`
	Difficulty  string     `json:"difficulty" validate:"required,oneof=easy medium hard"`
	Personality string     `json:"personality" validate:"required,oneof=aggressive defensive balanced tactical"`
}

// MatchMoveRequest asks the side to move in a match for a decision
type MatchMoveRequest struct {
	BoardState BoardState `json:"boardState" validate:"required"`
	ValidMoves []Move     `json:"validMoves" validate:"required,dive"`
}

type RenderBoardRequest struct {
	BoardState BoardState `json:"boardState" validate:"required"`
}

type EndMatchRequest struct {
	Result string `json:"result" validate:"required,oneof=completed failed timed_out"`
	Winner int    `json:"winner,omitempty" validate:"omitempty,oneof=1 2"`
	Reason string `json:"reason,omitempty" validate:"omitempty,max=200"`
}

type HumanDecisionRequest struct {
	Player    int     `json:"player" validate:"required,oneof=1 2"`
	LatencyMs float64 `json:"latencyMs" validate:"min=0,max=3600000"`
}

type StressTestRequest struct {
	ConcurrentGames int `json:"concurrentGames" validate:"required,min=1,max=1000"`
	MovesPerGame    int `json:"movesPerGame" validate:"required,min=1,max=200"`
}

// Response types

type MoveLogEntry struct {
	Move      Move      `json:"move"`
	LatencyMs float64   `json:"latencyMs"`
	Player    Player    `json:"player"`
	At        time.Time `json:"at"`
}

type AgentInfo struct {
	ID     string      `json:"id"`
	Kind   Algorithm   `json:"kind"`
	Config AgentConfig `json:"config"`
}

type MatchResponse struct {
	MatchID       string         `json:"matchId"`
	Status        string         `json:"status"`
	CurrentPlayer Player         `json:"currentPlayer"`
	AgentA        AgentInfo      `json:"agentA"`
	AgentB        AgentInfo      `json:"agentB"`
	Moves         []MoveLogEntry `json:"moves"`
	CreatedAt     time.Time      `json:"createdAt"`
	EndedAt       *time.Time     `json:"endedAt,omitempty"`
	Result        *Result        `json:"result,omitempty"`
}

type MoveResponse struct {
	MatchID   string  `json:"matchId,omitempty"`
	Move      *Move   `json:"move"`
	LatencyMs float64 `json:"latencyMs"`
}

type FraudResponse struct {
	MatchID    string  `json:"matchId"`
	Player     Player  `json:"player"`
	FraudScore float64 `json:"fraudScore"`
	Alert      bool    `json:"alert"`
}

type AgentTypeInfo struct {
	Difficulty   Difficulty `json:"difficulty"`
	Algorithm    Algorithm  `json:"algorithm"`
	SearchDepth  int        `json:"searchDepth"`
	TargetTimeMs float64    `json:"targetTimeMs"`
	MaxTimeMs    float64    `json:"maxTimeMs"`
}

type PersonalityInfo struct {
	Name              Personality `json:"name"`
	Aggression        float64     `json:"aggression"`
	RiskTolerance     float64     `json:"riskTolerance"`
	Patience          float64     `json:"patience"`
	CaptureBias       float64     `json:"captureBias"`
	CapturePreference float64     `json:"capturePreference"`
}

type BoardResponse struct {
	Board string `json:"board"` // ASCII representation
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}
