// Package persistence provides SQLite-based storage for the settlement
// audit trail. Every settled action (including downgraded ones) lands
// here exactly once, keyed by run, epoch and round.
package persistence

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite connection for the audit store.
type DB struct {
	conn *sqlx.DB
}

// AuditEntry is one settled action as actually applied.
// Amount/Action 記錄的是成交結果，不是 agent 原本要求的動作
type AuditEntry struct {
	ID        int64     `db:"id"`
	RunID     string    `db:"run_id"`
	Epoch     int       `db:"epoch"`
	Round     int       `db:"round"`
	Agent     string    `db:"agent"`
	Action    string    `db:"action"`
	Amount    float64   `db:"amount"`
	Price     float64   `db:"price"`
	Result    string    `db:"result"`
	CreatedAt time.Time `db:"created_at"`
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS settlements (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		epoch INTEGER NOT NULL,
		round INTEGER NOT NULL,
		agent TEXT NOT NULL,
		action TEXT NOT NULL,
		amount REAL NOT NULL,
		price REAL NOT NULL,
		result TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_settlements_run
		ON settlements (run_id, epoch, round);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// RecordSettlement appends one settled action to the audit trail.
func (db *DB) RecordSettlement(e AuditEntry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, err := db.conn.NamedExec(`
		INSERT INTO settlements (run_id, epoch, round, agent, action, amount, price, result, created_at)
		VALUES (:run_id, :epoch, :round, :agent, :action, :amount, :price, :result, :created_at)`, e)
	if err != nil {
		return fmt.Errorf("record settlement: %w", err)
	}
	return nil
}

// EpochEntries returns all settled actions for one epoch of a run,
// ordered by round then insertion.
func (db *DB) EpochEntries(runID string, epoch int) ([]AuditEntry, error) {
	var entries []AuditEntry
	err := db.conn.Select(&entries, `
		SELECT * FROM settlements
		WHERE run_id = ? AND epoch = ?
		ORDER BY round, id`, runID, epoch)
	if err != nil {
		return nil, fmt.Errorf("epoch entries: %w", err)
	}
	return entries, nil
}

// SettlementCount returns how many settlements have been recorded for a run.
func (db *DB) SettlementCount(runID string) (int, error) {
	var n int
	err := db.conn.Get(&n, `SELECT COUNT(*) FROM settlements WHERE run_id = ?`, runID)
	if err != nil {
		return 0, fmt.Errorf("settlement count: %w", err)
	}
	return n, nil
}
