// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/pidigits/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for memorization history and settings.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS memorization_sessions (
			id TEXT PRIMARY KEY,
			mode TEXT NOT NULL,
			start_digit INTEGER NOT NULL,
			end_digit INTEGER NOT NULL,
			correct INTEGER NOT NULL,
			total INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			ended_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS achievements (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			threshold INTEGER NOT NULL,
			unlocked_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_memorization_sessions_ended_at ON memorization_sessions(ended_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertSession stores a finished session and the achievements it unlocked.
// Achievements already on record are left untouched.
func (s *Store) InsertSession(ctx context.Context, summary model.SessionSummary, unlocked []model.Achievement) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO memorization_sessions (id, mode, start_digit, end_digit, correct, total, duration_ms, ended_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		summary.ID,
		string(summary.Mode),
		summary.StartDigit,
		summary.EndDigit,
		summary.Correct,
		summary.Total,
		summary.Duration.Milliseconds(),
		summary.EndedAt.UTC().Format(timeLayout),
	); err != nil {
		return err
	}
	if err = insertAchievements(ctx, tx, unlocked); err != nil {
		return err
	}
	return tx.Commit()
}

func insertAchievements(ctx context.Context, tx *sql.Tx, achievements []model.Achievement) error {
	if len(achievements) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO achievements (id, title, description, threshold, unlocked_at)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for _, a := range achievements {
		if _, err := stmt.ExecContext(ctx, a.ID, a.Title, a.Description, a.Threshold, a.UnlockedAt.UTC().Format(timeLayout)); err != nil {
			return err
		}
	}
	return nil
}

// SessionFilter narrows ListSessions. Zero values match everything.
type SessionFilter struct {
	Mode  model.Mode
	Since *time.Time
	Limit int
}

// ListSessions returns sessions in the order they ended. With a limit, the
// most recent sessions are kept.
func (s *Store) ListSessions(ctx context.Context, filter SessionFilter) ([]model.SessionSummary, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.Mode != "" {
		clauses = append(clauses, "mode = ?")
		args = append(args, string(filter.Mode))
	}
	if filter.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, filter.Since.UTC().Format(timeLayout))
	}
	query := fmt.Sprintf(`SELECT id, mode, start_digit, end_digit, correct, total, duration_ms, ended_at
		FROM memorization_sessions
		WHERE %s
		ORDER BY ended_at DESC, id DESC`, strings.Join(clauses, " AND "))
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sessions []model.SessionSummary
	for rows.Next() {
		var summary model.SessionSummary
		var mode, endedAt string
		var durationMs int64
		if err := rows.Scan(&summary.ID, &mode, &summary.StartDigit, &summary.EndDigit, &summary.Correct, &summary.Total, &durationMs, &endedAt); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(timeLayout, endedAt)
		if err != nil {
			return nil, err
		}
		summary.Mode = model.Mode(mode)
		summary.Duration = time.Duration(durationMs) * time.Millisecond
		summary.EndedAt = parsed
		sessions = append(sessions, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(sessions)-1; i < j; i, j = i+1, j-1 {
		sessions[i], sessions[j] = sessions[j], sessions[i]
	}
	return sessions, nil
}

// ListAchievements returns unlocked achievements by ascending threshold.
func (s *Store) ListAchievements(ctx context.Context) ([]model.Achievement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, description, threshold, unlocked_at FROM achievements ORDER BY threshold ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.Achievement
	for rows.Next() {
		var a model.Achievement
		var unlockedAt string
		if err := rows.Scan(&a.ID, &a.Title, &a.Description, &a.Threshold, &unlockedAt); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(timeLayout, unlockedAt)
		if err != nil {
			return nil, err
		}
		a.UnlockedAt = parsed
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
