package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Result is one finished game.
type Result struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"sessionId"`
	Solution  string    `json:"solution"`
	Guesses   int       `json:"guesses"`
	Strategy  string    `json:"strategy"`
	Depth     int       `json:"depth"`
	Won       bool      `json:"won"`
	ElapsedMs int64     `json:"elapsedMs"`
	Sequence  []string  `json:"sequence"` // guesses in order
	Source    string    `json:"source"`   // "interactive", "selfplay" or "api"
	CreatedAt time.Time `json:"createdAt"`
}

// Summary aggregates results.
type Summary struct {
	Games      int     `json:"games"`
	Wins       int     `json:"wins"`
	AvgGuesses float64 `json:"avgGuesses"` // over wins
	Worst      int     `json:"worst"`      // most guesses in a win
}

// StrategySummary is a Summary for one strategy and depth.
type StrategySummary struct {
	Strategy string `json:"strategy"`
	Depth    int    `json:"depth"`
	Summary
}

// Store reads and writes solve results.
type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Insert records r and returns its row ID.
func (s *Store) Insert(ctx context.Context, r Result) (int64, error) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	if r.Source == "" {
		r.Source = "interactive"
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO solves(session_id, solution, guesses, strategy, depth, won, elapsed_ms, sequence, source, created_at)
		 VALUES(?,?,?,?,?,?,?,?,?,?)`,
		r.SessionID, r.Solution, r.Guesses, r.Strategy, r.Depth, boolInt(r.Won), r.ElapsedMs,
		strings.Join(r.Sequence, ","), r.Source, r.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("insert solve: %w", err)
	}
	return res.LastInsertId()
}

// Summary aggregates every stored result.
func (s *Store) Summary(ctx context.Context) (Summary, error) {
	var sum Summary
	var avg sql.NullFloat64
	var worst sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1),
		        COALESCE(SUM(won), 0),
		        AVG(CASE WHEN won=1 THEN guesses END),
		        MAX(CASE WHEN won=1 THEN guesses END)
		 FROM solves`,
	).Scan(&sum.Games, &sum.Wins, &avg, &worst)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize solves: %w", err)
	}
	sum.AvgGuesses = avg.Float64
	sum.Worst = int(worst.Int64)
	return sum, nil
}

// ByStrategy aggregates results per strategy and depth.
func (s *Store) ByStrategy(ctx context.Context) ([]StrategySummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT strategy, depth, COUNT(1), COALESCE(SUM(won), 0),
		        AVG(CASE WHEN won=1 THEN guesses END),
		        MAX(CASE WHEN won=1 THEN guesses END)
		 FROM solves
		 GROUP BY strategy, depth
		 ORDER BY strategy, depth`,
	)
	if err != nil {
		return nil, fmt.Errorf("summarize by strategy: %w", err)
	}
	defer rows.Close()

	var out []StrategySummary
	for rows.Next() {
		var r StrategySummary
		var avg sql.NullFloat64
		var worst sql.NullInt64
		if err := rows.Scan(&r.Strategy, &r.Depth, &r.Games, &r.Wins, &avg, &worst); err != nil {
			return nil, err
		}
		r.AvgGuesses = avg.Float64
		r.Worst = int(worst.Int64)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Recent returns the latest results, newest first. limit <= 0 means 20.
func (s *Store) Recent(ctx context.Context, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, solution, guesses, strategy, depth, won, elapsed_ms, sequence, source, created_at
		 FROM solves
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent solves: %w", err)
	}
	defer rows.Close()

	out := make([]Result, 0, limit)
	for rows.Next() {
		var r Result
		var won int
		var seq, created string
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Solution, &r.Guesses, &r.Strategy, &r.Depth,
			&won, &r.ElapsedMs, &seq, &r.Source, &created); err != nil {
			return nil, err
		}
		r.Won = won == 1
		if seq != "" {
			r.Sequence = strings.Split(seq, ",")
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, r)
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
