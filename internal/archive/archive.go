// Package archive exports trigger history snapshots to SQLite for post-hoc
// audit.
//
// The session's in-memory ledger is never persisted by the core; an archive
// is written only when the caller explicitly asks for one (for example,
// `triggerline run --archive out.db`). The resulting file is a standalone
// audit record that outlives the process.
package archive

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/neurokit/triggerline/internal/session"
)

//go:embed schema.sql
var schemaSQL string

// Archive is a SQLite-backed audit store for history snapshots.
type Archive struct {
	db *sql.DB
}

// Open creates or opens an archive database at the given path.
//
// The database is configured with WAL mode, a 5-second busy timeout and
// foreign key enforcement, and is limited to a single connection since
// SQLite supports one writer at a time. Idempotent.
func Open(path string) (*Archive, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect archive: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply archive schema: %w", err)
	}
	return &Archive{db: db}, nil
}

// Close closes the database connection.
func (a *Archive) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// WriteSnapshot appends a ledger snapshot under the given session name.
//
// The whole snapshot is written in one transaction so a partially archived
// session never exists on disk. Tokens are unique across the archive;
// writing the same snapshot twice fails rather than duplicating rows.
func (a *Archive) WriteSnapshot(ctx context.Context, sessionName string, entries []session.Entry) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin archive write: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO dispatch_history (session, token, value, label, timestamp)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare archive insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx,
			sessionName, e.Token, e.Value, e.Label,
			e.Timestamp.UTC().Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("archive entry %s: %w", e.Token, err)
		}
	}
	return tx.Commit()
}

// Entries reads back all archived attempts for a session, in the order they
// were recorded.
func (a *Archive) Entries(ctx context.Context, sessionName string) ([]session.Entry, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT token, value, label, timestamp
		 FROM dispatch_history
		 WHERE session = ?
		 ORDER BY id ASC`, sessionName)
	if err != nil {
		return nil, fmt.Errorf("query archive: %w", err)
	}
	defer rows.Close()

	var entries []session.Entry
	for rows.Next() {
		var (
			e     session.Entry
			stamp string
		)
		if err := rows.Scan(&e.Token, &e.Value, &e.Label, &stamp); err != nil {
			return nil, fmt.Errorf("scan archive row: %w", err)
		}
		ts, err := time.Parse(time.RFC3339Nano, stamp)
		if err != nil {
			return nil, fmt.Errorf("parse archive timestamp %q: %w", stamp, err)
		}
		e.Timestamp = ts
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Sessions lists the distinct session names in the archive, sorted.
func (a *Archive) Sessions(ctx context.Context) ([]string, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT DISTINCT session FROM dispatch_history ORDER BY session ASC`)
	if err != nil {
		return nil, fmt.Errorf("query archive sessions: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan session name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
