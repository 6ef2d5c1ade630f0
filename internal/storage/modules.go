package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/serhiishtokal/CourseWatcher/internal/media"
)

// EnsureModule resolves a module by its canonical path, creating it on first
// sight. Runs inside the caller's reconciliation transaction.
func EnsureModule(ctx context.Context, tx *sql.Tx, name, path string, sortOrder int) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM modules WHERE path = ?`, path).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("storage: lookup module %q: %w", path, err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO modules (name, path, sort_order)
		VALUES (?, ?, ?)
	`, name, path, sortOrder)
	if err != nil {
		return 0, fmt.Errorf("storage: insert module %q: %w", path, err)
	}
	return res.LastInsertId()
}

// Modules returns every module ordered by sort key then name.
func (s *Store) Modules(ctx context.Context) ([]media.Module, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("storage: missing database connection")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, path, sort_order
		FROM modules
		ORDER BY sort_order, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var modules []media.Module
	for rows.Next() {
		var m media.Module
		if err := rows.Scan(&m.ID, &m.Name, &m.Path, &m.SortOrder); err != nil {
			return nil, err
		}
		modules = append(modules, m)
	}
	return modules, rows.Err()
}
