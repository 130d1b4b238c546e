// Package history records ask-assistant interactions and report runs in a
// local SQLite file. Recent successful asks feed back into the translator
// prompt as few-shot examples.
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS ask_history (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	asked_at      DATETIME NOT NULL,
	question      TEXT NOT NULL,
	spec_json     TEXT NOT NULL DEFAULT '',
	confidence    REAL NOT NULL DEFAULT 0,
	duration_ms   INTEGER NOT NULL DEFAULT 0,
	input_tokens  INTEGER NOT NULL DEFAULT 0,
	output_tokens INTEGER NOT NULL DEFAULT 0,
	ok            INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_ask_history_asked_at ON ask_history(asked_at);

CREATE TABLE IF NOT EXISTS report_runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	ran_at      DATETIME NOT NULL,
	kind        TEXT NOT NULL,
	destination TEXT NOT NULL DEFAULT '',
	ok          INTEGER NOT NULL DEFAULT 0,
	detail      TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_report_runs_ran_at ON report_runs(ran_at);
`

type Ask struct {
	ID           int64
	AskedAt      time.Time
	Question     string
	SpecJSON     string
	Confidence   float64
	Duration     time.Duration
	InputTokens  int64
	OutputTokens int64
	OK           bool
}

type ReportRun struct {
	ID          int64
	RanAt       time.Time
	Kind        string
	Destination string
	OK          bool
	Detail      string
}

type Store struct {
	db *sql.DB
}

// Open creates or opens the history file and ensures the schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}
	migrate(db)
	return &Store{db: db}, nil
}

// migrate applies additive column migrations. Missing columns are added;
// nothing is ever dropped.
func migrate(db *sql.DB) {
	var colCount int
	_ = db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info('ask_history') WHERE name = 'model'`).Scan(&colCount)
	if colCount == 0 {
		_, _ = db.Exec(`ALTER TABLE ask_history ADD COLUMN model TEXT NOT NULL DEFAULT ''`)
	}
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) RecordAsk(ask Ask) error {
	if ask.AskedAt.IsZero() {
		ask.AskedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO ask_history (asked_at, question, spec_json, confidence, duration_ms, input_tokens, output_tokens, ok)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ask.AskedAt, ask.Question, ask.SpecJSON, ask.Confidence,
		ask.Duration.Milliseconds(), ask.InputTokens, ask.OutputTokens, boolToInt(ask.OK),
	)
	if err != nil {
		return fmt.Errorf("record ask: %w", err)
	}
	return nil
}

// RecentGood returns the latest successful asks, newest first. These seed
// the translator's few-shot examples.
func (s *Store) RecentGood(n int) ([]Ask, error) {
	rows, err := s.db.Query(
		`SELECT id, asked_at, question, spec_json, confidence, duration_ms, input_tokens, output_tokens, ok
		 FROM ask_history
		 WHERE ok = 1 AND spec_json != ''
		 ORDER BY asked_at DESC
		 LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query recent asks: %w", err)
	}
	defer rows.Close()

	var asks []Ask
	for rows.Next() {
		var a Ask
		var durationMs, ok int64
		if err := rows.Scan(&a.ID, &a.AskedAt, &a.Question, &a.SpecJSON,
			&a.Confidence, &durationMs, &a.InputTokens, &a.OutputTokens, &ok); err != nil {
			return nil, fmt.Errorf("scan ask: %w", err)
		}
		a.Duration = time.Duration(durationMs) * time.Millisecond
		a.OK = ok == 1
		asks = append(asks, a)
	}
	return asks, rows.Err()
}

func (s *Store) RecordReportRun(run ReportRun) error {
	if run.RanAt.IsZero() {
		run.RanAt = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO report_runs (ran_at, kind, destination, ok, detail)
		 VALUES (?, ?, ?, ?, ?)`,
		run.RanAt, run.Kind, run.Destination, boolToInt(run.OK), run.Detail,
	)
	if err != nil {
		return fmt.Errorf("record report run: %w", err)
	}
	return nil
}

func (s *Store) RecentReportRuns(n int) ([]ReportRun, error) {
	rows, err := s.db.Query(
		`SELECT id, ran_at, kind, destination, ok, detail
		 FROM report_runs
		 ORDER BY ran_at DESC
		 LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query report runs: %w", err)
	}
	defer rows.Close()

	var runs []ReportRun
	for rows.Next() {
		var r ReportRun
		var ok int64
		if err := rows.Scan(&r.ID, &r.RanAt, &r.Kind, &r.Destination, &ok, &r.Detail); err != nil {
			return nil, fmt.Errorf("scan report run: %w", err)
		}
		r.OK = ok == 1
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
