// Package storage owns the embedded sqlite database colocated with the
// scanned media: schema, connection lifecycle and the CRUD surface the rest
// of the application is built on.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"
)

const (
	dbFileName   = "coursewatcher.db"
	lockFileName = "coursewatcher.lock"
)

// InitError reports a failed database setup: unwritable data directory,
// rejected schema, or a second process holding the writer lock. It is fatal
// to startup.
type InitError struct {
	Op  string
	Err error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("storage init: %s: %v", e.Op, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

// Store wraps the sqlite connection shared by every component for the
// process lifetime.
type Store struct {
	db   *sql.DB
	lock *flock.Flock
}

// Options tunes the sqlite connection.
type Options struct {
	BusyTimeout time.Duration
}

// Open creates the data directory if needed, takes an exclusive file lock
// (sqlite does not support concurrent writer processes), opens the database
// and brings the schema up to date. Safe to run on every startup.
func Open(dataDir string, options Options) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, &InitError{Op: "create data directory", Err: err}
	}

	lock := flock.New(filepath.Join(dataDir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, &InitError{Op: "acquire lock", Err: err}
	}
	if !locked {
		return nil, &InitError{Op: "acquire lock", Err: fmt.Errorf("database in %s is locked by another process", dataDir)}
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, dbFileName))
	if err != nil {
		_ = lock.Unlock()
		return nil, &InitError{Op: "open database", Err: err}
	}

	if options.BusyTimeout <= 0 {
		options.BusyTimeout = 5 * time.Second
	}
	pragmas := []string{
		"PRAGMA foreign_keys=ON",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		fmt.Sprintf("PRAGMA busy_timeout=%d", int(options.BusyTimeout/time.Millisecond)),
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, &InitError{Op: "apply pragmas", Err: err}
		}
	}

	store := &Store{db: db, lock: lock}
	if err := store.MigrateSchema(); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, &InitError{Op: "migrate schema", Err: err}
	}

	return store, nil
}

// Close releases the connection and the writer lock. Idempotent.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	if s.lock != nil {
		_ = s.lock.Unlock()
		s.lock = nil
	}
	return err
}

// WithTx runs body inside a transaction: commit on nil, rollback and
// re-raise on error.
func (s *Store) WithTx(ctx context.Context, body func(tx *sql.Tx) error) (err error) {
	if s == nil || s.db == nil {
		return fmt.Errorf("storage: missing database connection")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = body(tx); err != nil {
		return err
	}
	return tx.Commit()
}
