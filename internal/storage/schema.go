package storage

import "time"

// MatchRecord represents a row in the matches table
type MatchRecord struct {
	MatchID      string     `db:"match_id"`
	AgentAID     string     `db:"agent_a_id"`
	AgentAKey    string     `db:"agent_a_key"`
	AgentAKind   string     `db:"agent_a_kind"`
	AgentBID     string     `db:"agent_b_id"`
	AgentBKey    string     `db:"agent_b_key"`
	AgentBKind   string     `db:"agent_b_kind"`
	Status       string     `db:"status"`
	Winner       int        `db:"winner"`
	Reason       string     `db:"reason"`
	MoveCount    int        `db:"move_count"`
	CreatedAtUTC time.Time  `db:"created_at_utc"`
	EndedAtUTC   *time.Time `db:"ended_at_utc"`
}

// MoveRecord represents a row in the moves table
type MoveRecord struct {
	MoveID      int64     `db:"move_id"`
	MatchID     string    `db:"match_id"`
	MoveNumber  int       `db:"move_number"`
	Player      int       `db:"player"`
	FromSquare  string    `db:"from_square"`
	ToSquare    string    `db:"to_square"`
	Piece       string    `db:"piece"`
	Captured    string    `db:"captured"`
	LatencyMs   float64   `db:"latency_ms"`
	MoveTimeUTC time.Time `db:"move_time_utc"`
}

// Schema defines the SQLite database structure
const Schema = `
CREATE TABLE IF NOT EXISTS matches (
	match_id TEXT PRIMARY KEY,
	agent_a_id TEXT NOT NULL,
	agent_a_key TEXT NOT NULL,
	agent_a_kind TEXT NOT NULL,
	agent_b_id TEXT NOT NULL,
	agent_b_key TEXT NOT NULL,
	agent_b_kind TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	winner INTEGER NOT NULL DEFAULT 0,
	reason TEXT NOT NULL DEFAULT '',
	move_count INTEGER NOT NULL DEFAULT 0,
	created_at_utc DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	ended_at_utc DATETIME
);

CREATE TABLE IF NOT EXISTS moves (
	move_id INTEGER PRIMARY KEY AUTOINCREMENT,
	match_id TEXT NOT NULL,
	move_number INTEGER NOT NULL,
	player INTEGER NOT NULL CHECK(player IN (1, 2)),
	from_square TEXT NOT NULL,
	to_square TEXT NOT NULL,
	piece TEXT NOT NULL DEFAULT '',
	captured TEXT NOT NULL DEFAULT '',
	latency_ms REAL NOT NULL,
	move_time_utc DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (match_id) REFERENCES matches(match_id) ON DELETE CASCADE,
	UNIQUE(match_id, move_number)
);

CREATE INDEX IF NOT EXISTS idx_moves_match_id ON moves(match_id);
CREATE INDEX IF NOT EXISTS idx_matches_status ON matches(status);
CREATE INDEX IF NOT EXISTS idx_matches_agent_a_key ON matches(agent_a_key);
CREATE INDEX IF NOT EXISTS idx_matches_agent_b_key ON matches(agent_b_key);
`
