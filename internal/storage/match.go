// FILE: internal/storage/match.go
package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// RecordMatch asynchronously records a newly created match
func (s *Store) RecordMatch(record MatchRecord) {
	s.enqueue("match", func(tx *sql.Tx) error {
		query := `INSERT INTO matches (
			match_id,
			agent_a_id, agent_a_key, agent_a_kind,
			agent_b_id, agent_b_key, agent_b_kind,
			status, created_at_utc
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

		_, err := tx.Exec(query,
			record.MatchID,
			record.AgentAID, record.AgentAKey, record.AgentAKind,
			record.AgentBID, record.AgentBKey, record.AgentBKind,
			record.Status, record.CreatedAtUTC,
		)
		return err
	})
}

// RecordMove asynchronously records one decision
func (s *Store) RecordMove(record MoveRecord) {
	s.enqueue("move", func(tx *sql.Tx) error {
		query := `INSERT INTO moves (
			match_id, move_number, player, from_square, to_square, piece, captured, latency_ms, move_time_utc
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

		_, err := tx.Exec(query,
			record.MatchID, record.MoveNumber, record.Player,
			record.FromSquare, record.ToSquare, record.Piece, record.Captured,
			record.LatencyMs, record.MoveTimeUTC,
		)
		return err
	})
}

// RecordMatchEnd asynchronously stores the terminal status of a match
func (s *Store) RecordMatchEnd(matchID, status string, winner int, reason string, moveCount int, endedAt time.Time) {
	s.enqueue("match end", func(tx *sql.Tx) error {
		query := `UPDATE matches SET status = ?, winner = ?, reason = ?, move_count = ?, ended_at_utc = ?
			WHERE match_id = ?`
		_, err := tx.Exec(query, status, winner, reason, moveCount, endedAt, matchID)
		return err
	})
}

// QueryMatches retrieves archived matches. Empty or "*" filters match all;
// agentKey matches either side.
func (s *Store) QueryMatches(matchID, agentKey string) ([]MatchRecord, error) {
	query := `SELECT
		match_id,
		agent_a_id, agent_a_key, agent_a_kind,
		agent_b_id, agent_b_key, agent_b_kind,
		status, winner, reason, move_count, created_at_utc, ended_at_utc
	FROM matches WHERE 1=1`

	var args []any

	if matchID != "" && matchID != "*" {
		query += " AND match_id = ?"
		args = append(args, matchID)
	}

	if agentKey != "" && agentKey != "*" {
		query += " AND (agent_a_key = ? OR agent_b_key = ?)"
		args = append(args, agentKey, agentKey)
	}

	query += " ORDER BY created_at_utc DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var matches []MatchRecord
	for rows.Next() {
		var m MatchRecord
		var ended sql.NullTime
		err := rows.Scan(
			&m.MatchID,
			&m.AgentAID, &m.AgentAKey, &m.AgentAKind,
			&m.AgentBID, &m.AgentBKey, &m.AgentBKind,
			&m.Status, &m.Winner, &m.Reason, &m.MoveCount, &m.CreatedAtUTC, &ended,
		)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		if ended.Valid {
			t := ended.Time
			m.EndedAtUTC = &t
		}
		matches = append(matches, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return matches, nil
}

// QueryMoves returns the archived moves of one match in order
func (s *Store) QueryMoves(matchID string) ([]MoveRecord, error) {
	rows, err := s.db.Query(`SELECT
		move_id, match_id, move_number, player, from_square, to_square, piece, captured, latency_ms, move_time_utc
	FROM moves WHERE match_id = ? ORDER BY move_number`, matchID)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var moves []MoveRecord
	for rows.Next() {
		var m MoveRecord
		if err := rows.Scan(
			&m.MoveID, &m.MatchID, &m.MoveNumber, &m.Player, &m.FromSquare, &m.ToSquare,
			&m.Piece, &m.Captured, &m.LatencyMs, &m.MoveTimeUTC,
		); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		moves = append(moves, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return moves, nil
}
