// internal/scores/store.go
//
// Durable run history, user stats and the all-time leaderboard.
// Responsibilities:
//   - One games row per run (game ID + run number), owned by a user or an
//     anonymous cookie ID.
//   - Finishing a run records status, the level it ended on, and the
//     victory time.
//   - User counters (games played, wins, streak) bumped inside a transaction.
//   - Claiming anonymous history after signup/login.

package scores

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Mode distinguishes free play from the daily challenge.
type Mode string

const (
	ModeClassic Mode = "classic"
	ModeDaily   Mode = "daily"
)

// Status values stored for a run.
const (
	StatusPlaying = "playing"
	StatusVictory = "victory"
	StatusDefeat  = "defeat"
)

// Owner identifies who a run belongs to. Exactly one field is set.
type Owner struct {
	UserID string
	AnonID string
}

// clause returns the WHERE fragment and argument matching the owner.
func (o Owner) clause() (string, any) {
	if o.UserID != "" {
		return "user_id=?", o.UserID
	}
	return "anonymous_id=?", o.AnonID
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Run is a single row of history.
type Run struct {
	GameID     string `json:"gameId"`
	Run        int    `json:"run"`
	Mode       Mode   `json:"mode"`
	Status     string `json:"status"`
	Level      int    `json:"level"`
	ElapsedMs  int64  `json:"elapsedMs,omitempty"`
	StartedAt  string `json:"startedAt"`
	FinishedAt string `json:"finishedAt,omitempty"`
}

// LBRow is one leaderboard entry.
type LBRow struct {
	Username  string `json:"username"`
	ElapsedMs int64  `json:"elapsedMs"`
	At        string `json:"at"`
}

// Stats are a user's counters.
type Stats struct {
	GamesPlayed int `json:"gamesPlayed"`
	Wins        int `json:"wins"`
	Streak      int `json:"streak"`
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Start inserts the row for a new run.
func (s *Store) Start(ctx context.Context, gameID string, run int, owner Owner, mode Mode, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO games (game_id, run, user_id, anonymous_id, mode, status, level, started_at)
		 VALUES (?,?,?,?,?,?,1,?)`,
		gameID, run, nullable(owner.UserID), nullable(owner.AnonID), string(mode), StatusPlaying,
		at.UTC().Format(time.RFC3339))
	return err
}

// Finish closes a run. level is the level the run ended on (8 for a victory).
// If the owner is a user, their stats are bumped in the same transaction.
func (s *Store) Finish(ctx context.Context, gameID string, run int, owner Owner, status string, level int, elapsedMs int64, at time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	clause, arg := owner.clause()
	var elapsed any
	if status == StatusVictory {
		elapsed = elapsedMs
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE games SET status=?, level=?, elapsed_ms=?, finished_at=?
		 WHERE game_id=? AND run=? AND status='playing' AND `+clause,
		status, level, elapsed, at.UTC().Format(time.RFC3339), gameID, run, arg)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return tx.Commit()
	}
	if owner.UserID != "" {
		if err := bumpStats(ctx, tx, owner.UserID, status == StatusVictory); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// bumpStats increments games played; updates wins and streak based on result.
func bumpStats(ctx context.Context, tx *sql.Tx, userID string, won bool) error {
	var st Stats
	row := tx.QueryRowContext(ctx, `SELECT games_played, wins, streak FROM users WHERE id=?`, userID)
	if err := row.Scan(&st.GamesPlayed, &st.Wins, &st.Streak); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	}
	st.GamesPlayed++
	if won {
		st.Wins++
		st.Streak++
	} else {
		st.Streak = 0
	}
	_, err := tx.ExecContext(ctx, `UPDATE users SET games_played=?, wins=?, streak=? WHERE id=?`,
		st.GamesPlayed, st.Wins, st.Streak, userID)
	return err
}

// UserStats loads a user's counters.
func (s *Store) UserStats(ctx context.Context, userID string) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx, `SELECT games_played, wins, streak FROM users WHERE id=?`, userID).
		Scan(&st.GamesPlayed, &st.Wins, &st.Streak)
	return st, err
}

// Mine returns the owner's most recent runs.
func (s *Store) Mine(ctx context.Context, owner Owner, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	clause, arg := owner.clause()
	rows, err := s.db.QueryContext(ctx,
		`SELECT game_id, run, mode, status, level, COALESCE(elapsed_ms, 0), started_at, COALESCE(finished_at, '')
		 FROM games WHERE `+clause+` ORDER BY started_at DESC, run DESC LIMIT ?`, arg, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Run{}
	for rows.Next() {
		var r Run
		var mode string
		if err := rows.Scan(&r.GameID, &r.Run, &mode, &r.Status, &r.Level, &r.ElapsedMs, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, err
		}
		r.Mode = Mode(mode)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Leaderboard returns the fastest classic victories by registered users.
func (s *Store) Leaderboard(ctx context.Context, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT u.username, g.elapsed_ms, g.finished_at
		 FROM games g JOIN users u ON u.id = g.user_id
		 WHERE g.status=? AND g.mode=?
		 ORDER BY g.elapsed_ms ASC, g.finished_at ASC
		 LIMIT ?`, StatusVictory, string(ModeClassic), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []LBRow{}
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.Username, &r.ElapsedMs, &r.At); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ClaimAnon transfers anonymous history to a user account.
func (s *Store) ClaimAnon(ctx context.Context, anonID, userID string) error {
	if anonID == "" || userID == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE games SET user_id=?, anonymous_id=NULL WHERE anonymous_id=?`, userID, anonID)
	return err
}
