package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/serhiishtokal/CourseWatcher/internal/media"
)

// VideoOrder selects the per-module video ordering for list queries.
type VideoOrder int

const (
	// OrderSortKey is the default course ordering: sort key then filename.
	OrderSortKey VideoOrder = iota
	OrderSortKeyDesc
	OrderCreated
	OrderCreatedDesc
)

func (o VideoOrder) clause() string {
	switch o {
	case OrderSortKeyDesc:
		return "sort_order DESC, filename DESC"
	case OrderCreated:
		return "created_at, id"
	case OrderCreatedDesc:
		return "created_at DESC, id DESC"
	default:
		return "sort_order, filename"
	}
}

const videoColumns = `id, path, filename, title, duration, position, status, module_id, sort_order, created_at, updated_at`

func scanVideo(row interface{ Scan(...any) error }) (media.Video, error) {
	var (
		v         media.Video
		status    string
		moduleID  sql.NullInt64
		createdAt int64
		updatedAt int64
	)
	err := row.Scan(
		&v.ID,
		&v.Path,
		&v.Filename,
		&v.Title,
		&v.Duration,
		&v.Position,
		&status,
		&moduleID,
		&v.SortOrder,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return media.Video{}, err
	}
	v.Status = media.Status(status)
	if moduleID.Valid {
		v.ModuleID = &moduleID.Int64
	}
	v.CreatedAt = time.Unix(createdAt, 0).UTC()
	v.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return v, nil
}

// NewVideo carries the fields Discovery supplies for a first-sighted file.
type NewVideo struct {
	Path      string
	Filename  string
	Title     string
	ModuleID  *int64
	SortOrder int
}

// VideoIDByPath looks up a video by its canonical path inside a
// reconciliation transaction.
func VideoIDByPath(ctx context.Context, tx *sql.Tx, path string) (int64, bool, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM videos WHERE path = ?`, path).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// UpdateVideoTitle rewrites the derived title of an existing video. Rescans
// touch nothing else: position, status and duration belong to the progress
// side.
func UpdateVideoTitle(ctx context.Context, tx *sql.Tx, id int64, title string, now time.Time) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE videos SET title = ?, updated_at = ? WHERE id = ?
	`, title, now.Unix(), id)
	return err
}

// InsertVideo creates a freshly discovered video: unwatched, position zero.
func InsertVideo(ctx context.Context, tx *sql.Tx, nv NewVideo, now time.Time) (int64, error) {
	var moduleID sql.NullInt64
	if nv.ModuleID != nil {
		moduleID = sql.NullInt64{Int64: *nv.ModuleID, Valid: true}
	}
	res, err := tx.ExecContext(ctx, `
		INSERT INTO videos (path, filename, title, status, module_id, sort_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, nv.Path, nv.Filename, nv.Title, string(media.StatusUnwatched), moduleID, nv.SortOrder, now.Unix(), now.Unix())
	if err != nil {
		return 0, fmt.Errorf("storage: insert video %q: %w", nv.Path, err)
	}
	return res.LastInsertId()
}

// VideoByID fetches one video; the second return reports existence.
func (s *Store) VideoByID(ctx context.Context, id int64) (media.Video, bool, error) {
	if s == nil || s.db == nil {
		return media.Video{}, false, fmt.Errorf("storage: missing database connection")
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+videoColumns+` FROM videos WHERE id = ?`, id)
	v, err := scanVideo(row)
	if err == sql.ErrNoRows {
		return media.Video{}, false, nil
	}
	if err != nil {
		return media.Video{}, false, err
	}
	return v, true, nil
}

// VideosByModule returns the videos of one module (nil for root-level
// videos) in the requested order.
func (s *Store) VideosByModule(ctx context.Context, moduleID *int64, order VideoOrder) ([]media.Video, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("storage: missing database connection")
	}

	query := `SELECT ` + videoColumns + ` FROM videos WHERE module_id IS NULL ORDER BY ` + order.clause()
	args := []any{}
	if moduleID != nil {
		query = `SELECT ` + videoColumns + ` FROM videos WHERE module_id = ? ORDER BY ` + order.clause()
		args = append(args, *moduleID)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var videos []media.Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

// UpdateVideoProgress persists a reported position, the derived status and,
// when supplied, a fresh duration. A known duration is never reset by
// omission.
func (s *Store) UpdateVideoProgress(ctx context.Context, id int64, position float64, duration *float64, status media.Status, now time.Time) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("storage: missing database connection")
	}

	if duration != nil {
		_, err := s.db.ExecContext(ctx, `
			UPDATE videos SET position = ?, duration = ?, status = ?, updated_at = ? WHERE id = ?
		`, position, *duration, string(status), now.Unix(), id)
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE videos SET position = ?, status = ?, updated_at = ? WHERE id = ?
	`, position, string(status), now.Unix(), id)
	return err
}

// UpdateVideoStatus sets an explicit status; resetPosition additionally
// zeroes the position (unwatched implies no progress).
func (s *Store) UpdateVideoStatus(ctx context.Context, id int64, status media.Status, resetPosition bool, now time.Time) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("storage: missing database connection")
	}

	if resetPosition {
		_, err := s.db.ExecContext(ctx, `
			UPDATE videos SET status = ?, position = 0, updated_at = ? WHERE id = ?
		`, string(status), now.Unix(), id)
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE videos SET status = ?, updated_at = ? WHERE id = ?
	`, string(status), now.Unix(), id)
	return err
}

// SearchResult is a search match joined with its module name for display.
type SearchResult struct {
	media.Video
	ModuleName string `json:"moduleName"`
}

// SearchVideos performs a case-insensitive substring match over title and
// filename. LIKE wildcards in the query are escaped so they match literally.
func (s *Store) SearchVideos(ctx context.Context, query string) ([]SearchResult, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("storage: missing database connection")
	}

	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(query)
	pattern := "%" + escaped + "%"

	rows, err := s.db.QueryContext(ctx, `
		SELECT v.id, v.path, v.filename, v.title, v.duration, v.position, v.status,
			v.module_id, v.sort_order, v.created_at, v.updated_at,
			COALESCE(m.name, '')
		FROM videos v
		LEFT JOIN modules m ON m.id = v.module_id
		WHERE v.title LIKE ? ESCAPE '\' COLLATE NOCASE
			OR v.filename LIKE ? ESCAPE '\' COLLATE NOCASE
		ORDER BY COALESCE(m.sort_order, -1), COALESCE(m.name, ''), v.sort_order, v.filename
	`, pattern, pattern)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var (
			r         SearchResult
			status    string
			moduleID  sql.NullInt64
			createdAt int64
			updatedAt int64
		)
		err := rows.Scan(
			&r.ID, &r.Path, &r.Filename, &r.Title, &r.Duration, &r.Position,
			&status, &moduleID, &r.SortOrder, &createdAt, &updatedAt,
			&r.ModuleName,
		)
		if err != nil {
			return nil, err
		}
		r.Status = media.Status(status)
		if moduleID.Valid {
			r.ModuleID = &moduleID.Int64
		}
		r.CreatedAt = time.Unix(createdAt, 0).UTC()
		r.UpdatedAt = time.Unix(updatedAt, 0).UTC()
		results = append(results, r)
	}
	return results, rows.Err()
}

// StatusCounts returns the total row count and the per-status breakdown.
func (s *Store) StatusCounts(ctx context.Context) (total int, byStatus map[media.Status]int, err error) {
	if s == nil || s.db == nil {
		return 0, nil, fmt.Errorf("storage: missing database connection")
	}

	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM videos GROUP BY status`)
	if err != nil {
		return 0, nil, err
	}
	defer rows.Close()

	byStatus = map[media.Status]int{}
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return 0, nil, err
		}
		byStatus[media.Status(status)] = count
		total += count
	}
	return total, byStatus, rows.Err()
}
