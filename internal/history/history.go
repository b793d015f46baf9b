// Package history is a bounded sqlite-backed diagnostics ring of
// condition firings and their task-sequence outcomes (Part D of the
// expanded specification). It exists purely for operator diagnosis —
// "why did/didn't condition X fire, and what happened to its tasks" —
// and is explicitly never read back to restore scheduler state across
// a restart; every condition and event starts fresh at process start
// regardless of what this package has recorded.
//
// Uses the classic database/sql + mattn/go-sqlite3
// create-table-if-not-exists/insert/list/delete shape, applied to a
// condition-fire record carrying the outcome of every task in its
// sequence rather than a single task/executor-ID record.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/whenever-go/whenever/internal/executor"
	"github.com/whenever-go/whenever/internal/model"
)

// TaskRecord is one task's recorded outcome within a fired sequence.
type TaskRecord struct {
	Task    string       `json:"task"`
	Outcome model.Outcome `json:"outcome"`
	Detail  string       `json:"detail,omitempty"`
}

// FireRecord is one condition firing and the outcome of its task
// sequence, as recorded in the ring.
type FireRecord struct {
	ID        int64        `json:"id"`
	RunID     string       `json:"run_id"`
	Condition string       `json:"condition"`
	FiredAt   time.Time    `json:"fired_at"`
	Outcome   model.Outcome `json:"outcome"`
	Tasks     []TaskRecord `json:"tasks"`
}

// Ring is a bounded, FIFO-trimmed store of FireRecords.
type Ring struct {
	db       *sql.DB
	capacity int
}

// Open opens (creating if necessary) a sqlite database at path, bounded
// to at most capacity records; older records are trimmed after each
// insert once the bound is exceeded. capacity <= 0 means unbounded.
func Open(path string, capacity int) (*Ring, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	r := &Ring{db: db, capacity: capacity}
	if err := r.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Ring) initialize() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS fire_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			condition_name TEXT NOT NULL,
			fired_at DATETIME NOT NULL,
			outcome TEXT NOT NULL,
			tasks TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_fire_history_condition ON fire_history(condition_name);
		CREATE INDEX IF NOT EXISTS idx_fire_history_fired_at ON fire_history(fired_at);
	`)
	if err != nil {
		return fmt.Errorf("failed to initialize history database: %w", err)
	}
	return nil
}

// RecordFire converts an executor.Result into task records and stores
// the firing. Implements condition.Recorder.
func (r *Ring) RecordFire(ctx context.Context, conditionName string, firedAt time.Time, outcome model.Outcome, result executor.Result) error {
	tasks := make([]TaskRecord, 0, len(result.Outcomes))
	for _, to := range result.Outcomes {
		tasks = append(tasks, TaskRecord{Task: to.Name, Outcome: to.Outcome, Detail: to.Detail})
	}
	return r.Store(ctx, FireRecord{RunID: result.RunID, Condition: conditionName, FiredAt: firedAt, Outcome: outcome, Tasks: tasks})
}

// Store inserts a new fire record and trims the ring to capacity.
func (r *Ring) Store(ctx context.Context, rec FireRecord) error {
	tasksJSON, err := json.Marshal(rec.Tasks)
	if err != nil {
		return fmt.Errorf("failed to marshal task records: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO fire_history (run_id, condition_name, fired_at, outcome, tasks)
		VALUES (?, ?, ?, ?, ?)`,
		rec.RunID, rec.Condition, rec.FiredAt, rec.Outcome.String(), string(tasksJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to store fire record: %w", err)
	}
	if r.capacity > 0 {
		if _, err := r.db.ExecContext(ctx, `
			DELETE FROM fire_history WHERE id NOT IN (
				SELECT id FROM fire_history ORDER BY id DESC LIMIT ?
			)`, r.capacity); err != nil {
			return fmt.Errorf("failed to trim fire history: %w", err)
		}
	}
	return nil
}

// Recent returns the most recent records, newest first, optionally
// filtered to a single condition name (empty = all).
func (r *Ring) Recent(ctx context.Context, conditionName string, limit int) ([]FireRecord, error) {
	query := "SELECT id, run_id, condition_name, fired_at, outcome, tasks FROM fire_history"
	args := []any{}
	if conditionName != "" {
		query += " WHERE condition_name = ?"
		args = append(args, conditionName)
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list fire history: %w", err)
	}
	defer rows.Close()

	var out []FireRecord
	for rows.Next() {
		var rec FireRecord
		var outcome, tasksJSON string
		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.Condition, &rec.FiredAt, &outcome, &tasksJSON); err != nil {
			return nil, fmt.Errorf("failed to scan fire record: %w", err)
		}
		rec.Outcome = model.ParseOutcome(outcome)
		if err := json.Unmarshal([]byte(tasksJSON), &rec.Tasks); err != nil {
			return nil, fmt.Errorf("failed to unmarshal task records: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return out, nil
}

func (r *Ring) Close() error {
	return r.db.Close()
}
