// Package history journals recorded outcomes to SQLite. The journal is an
// append-only record for reporting; streak state lives in the JSON file and
// is never derived from here.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Outcome is one recorded win or loss with the streak values it produced.
type Outcome struct {
	ID         int64
	RecordedAt time.Time
	SessionID  string
	Character  string
	Category   string
	Win        bool
	Current    int
	Best       int
}

// Filter narrows journal queries. Zero values mean no constraint; Last
// keeps only the most recent N outcomes after the other filters.
type Filter struct {
	Character string
	Category  string
	Since     *time.Time
	Last      int
}

// Totals summarize the filtered journal.
type Totals struct {
	Outcomes int
	Wins     int
	Losses   int
	Sessions int
}

// Journal wraps SQLite access for outcome history.
type Journal struct {
	db *sql.DB
}

// Open opens or creates the journal database and applies migrations.
func Open(path string) (*Journal, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	journal := &Journal{db: db}
	if err := journal.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return journal, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS outcomes (
			id INTEGER PRIMARY KEY,
			recorded_at TEXT NOT NULL,
			session_id TEXT NOT NULL,
			character TEXT NOT NULL,
			category TEXT NOT NULL,
			win INTEGER NOT NULL,
			current INTEGER NOT NULL,
			best INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_recorded_at ON outcomes(recorded_at);`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_character ON outcomes(character, category);`,
	}
	for _, stmt := range stmts {
		if _, err := j.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Append stores one outcome.
func (j *Journal) Append(ctx context.Context, o Outcome) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO outcomes (recorded_at, session_id, character, category, win, current, best)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		o.RecordedAt.Format(time.RFC3339Nano),
		o.SessionID,
		o.Character,
		o.Category,
		boolToInt(o.Win),
		o.Current,
		o.Best,
	)
	return err
}

// List returns filtered outcomes in recording order, oldest first.
func (j *Journal) List(ctx context.Context, f Filter) ([]Outcome, error) {
	clauses, args := filterClauses(f)
	limit := f.Last
	if limit <= 0 {
		limit = -1
	}
	query := fmt.Sprintf(`WITH recent AS (
		SELECT id, recorded_at, session_id, character, category, win, current, best
		FROM outcomes
		WHERE %s
		ORDER BY recorded_at DESC, id DESC
		LIMIT ?
	)
	SELECT id, recorded_at, session_id, character, category, win, current, best
	FROM recent
	ORDER BY recorded_at ASC, id ASC`, strings.Join(clauses, " AND "))
	args = append(args, limit)

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var outcomes []Outcome
	for rows.Next() {
		var o Outcome
		var recordedAt string
		var win int
		if err := rows.Scan(&o.ID, &recordedAt, &o.SessionID, &o.Character, &o.Category, &win, &o.Current, &o.Best); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, recordedAt)
		if err != nil {
			return nil, err
		}
		o.RecordedAt = parsed
		o.Win = win != 0
		outcomes = append(outcomes, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// TotalsFor summarizes the filtered journal.
func (j *Journal) TotalsFor(ctx context.Context, f Filter) (Totals, error) {
	clauses, args := filterClauses(f)
	limit := f.Last
	if limit <= 0 {
		limit = -1
	}
	query := fmt.Sprintf(`WITH recent AS (
		SELECT session_id, win
		FROM outcomes
		WHERE %s
		ORDER BY recorded_at DESC, id DESC
		LIMIT ?
	)
	SELECT COUNT(*), COALESCE(SUM(win), 0), COUNT(DISTINCT session_id)
	FROM recent`, strings.Join(clauses, " AND "))
	args = append(args, limit)

	var t Totals
	row := j.db.QueryRowContext(ctx, query, args...)
	if err := row.Scan(&t.Outcomes, &t.Wins, &t.Sessions); err != nil {
		return Totals{}, err
	}
	t.Losses = t.Outcomes - t.Wins
	return t, nil
}

func filterClauses(f Filter) ([]string, []any) {
	clauses := []string{"1=1"}
	args := []any{}
	if f.Character != "" {
		clauses = append(clauses, "character = ?")
		args = append(args, f.Character)
	}
	if f.Category != "" {
		clauses = append(clauses, "category = ?")
		args = append(args, f.Category)
	}
	if f.Since != nil {
		clauses = append(clauses, "recorded_at >= ?")
		args = append(args, f.Since.Format(time.RFC3339Nano))
	}
	return clauses, args
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
