// Package journal persists per-operation compression metrics in SQLite.
// Only derived numbers are stored (sizes, ratios, modes) — never message
// content, so conversation history stays with the caller.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration
)

// defaultBusyTimeout is the SQLite busy handler timeout in milliseconds.
const defaultBusyTimeout = 5000

// Operation kinds recorded in the journal.
const (
	KindCompressText         = "compress_text"
	KindCompressConversation = "compress_conversation"
	KindSuggest              = "suggest"
)

// Entry is one recorded operation.
type Entry struct {
	Kind             string
	Mode             string // "live" or "fallback"
	OriginalTokens   int
	CompressedTokens int
	Ratio            float64
	CreatedAt        time.Time
}

// Totals aggregates the journal for stats reporting.
type Totals struct {
	Operations int64            `json:"operations"`
	ByKind     map[string]int64 `json:"by_kind,omitempty"`
	AvgRatio   float64          `json:"avg_ratio,omitempty"`
}

// Journal is a SQLite-backed operation log.
type Journal struct {
	db *sql.DB
}

// Open opens (or creates) the journal database at the given path.
//
// The database uses WAL mode, a 5 s busy timeout, and a single connection
// (SQLite serialises writes). The schema is migrated automatically.
func Open(path string) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("journal: create directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", path, err)
	}

	db.SetMaxOpenConns(1)

	ctx := context.TODO()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("journal: enable WAL: %w", err)
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout=%d", defaultBusyTimeout)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("journal: set busy_timeout: %w", err)
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Journal{db: db}, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record appends one operation entry. A zero CreatedAt is filled with the
// current time.
func (j *Journal) Record(ctx context.Context, e Entry) error {
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO operations (kind, mode, original_tokens, compressed_tokens, ratio, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.Kind, e.Mode, e.OriginalTokens, e.CompressedTokens, e.Ratio,
		createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("journal: record %s: %w", e.Kind, err)
	}
	return nil
}

// TotalsFor aggregates all recorded operations.
func (j *Journal) TotalsFor(ctx context.Context) (Totals, error) {
	totals := Totals{ByKind: make(map[string]int64)}

	rows, err := j.db.QueryContext(ctx, `
		SELECT kind, COUNT(*), AVG(ratio)
		FROM operations
		GROUP BY kind`)
	if err != nil {
		return Totals{}, fmt.Errorf("journal: totals: %w", err)
	}
	defer rows.Close()

	var ratioSum float64
	var ratioGroups int64
	for rows.Next() {
		var kind string
		var count int64
		var avg sql.NullFloat64
		if err := rows.Scan(&kind, &count, &avg); err != nil {
			return Totals{}, fmt.Errorf("journal: scan totals: %w", err)
		}
		totals.ByKind[kind] = count
		totals.Operations += count
		if avg.Valid {
			ratioSum += avg.Float64 * float64(count)
			ratioGroups += count
		}
	}
	if err := rows.Err(); err != nil {
		return Totals{}, fmt.Errorf("journal: totals rows: %w", err)
	}

	if ratioGroups > 0 {
		totals.AvgRatio = ratioSum / float64(ratioGroups)
	}
	return totals, nil
}

// Recent returns up to limit most-recent entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT kind, mode, original_tokens, compressed_tokens, ratio, created_at
		FROM operations
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("journal: recent: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var createdAt string
		if err := rows.Scan(&e.Kind, &e.Mode, &e.OriginalTokens, &e.CompressedTokens, &e.Ratio, &createdAt); err != nil {
			return nil, fmt.Errorf("journal: scan entry: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			e.CreatedAt = t
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("journal: recent rows: %w", err)
	}
	return entries, nil
}

// Prune deletes entries older than the retention period and returns the
// number of rows removed.
func (j *Journal) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention).Format(time.RFC3339Nano)

	res, err := j.db.ExecContext(ctx, `DELETE FROM operations WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("journal: prune: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("journal: prune rows affected: %w", err)
	}
	return n, nil
}
