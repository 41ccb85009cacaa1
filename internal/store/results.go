package store

import (
	"context"
	"time"

	"uno-server/internal/session"
)

const (
	DefaultResultsLimit = 20
	MaxResultsLimit     = 200
)

type GameResult struct {
	ID         string    `json:"id"`
	RoomID     string    `json:"room_id"`
	WinnerID   string    `json:"winner_id"`
	Message    string    `json:"message"`
	Players    int       `json:"players"`
	FinishedAt time.Time `json:"finished_at"`
}

// RecordResult implements session.ResultRecorder.
func (s *Store) RecordResult(ctx context.Context, res session.Result) error {
	finished := res.FinishedAt
	if finished.IsZero() {
		finished = time.Now().UTC()
	}
	_, err := s.Pool.Exec(ctx,
		`INSERT INTO game_results (id, room_id, winner_id, message, players, finished_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		NewID(), res.RoomID, res.WinnerID, res.Message, res.Players, finished,
	)
	return err
}

// ListResults returns the most recent results first.
func (s *Store) ListResults(ctx context.Context, limit int) ([]GameResult, error) {
	if limit < 1 {
		limit = DefaultResultsLimit
	}
	if limit > MaxResultsLimit {
		limit = MaxResultsLimit
	}
	rows, err := s.Pool.Query(ctx,
		`SELECT id, room_id, winner_id, message, players, finished_at FROM game_results ORDER BY finished_at DESC, id DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []GameResult{}
	for rows.Next() {
		var r GameResult
		if err := rows.Scan(&r.ID, &r.RoomID, &r.WinnerID, &r.Message, &r.Players, &r.FinishedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
