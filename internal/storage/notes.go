package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/serhiishtokal/CourseWatcher/internal/media"
)

// NoteByVideoID fetches the note attached to a video; the second return
// reports whether a row exists.
func (s *Store) NoteByVideoID(ctx context.Context, videoID int64) (media.Note, bool, error) {
	if s == nil || s.db == nil {
		return media.Note{}, false, fmt.Errorf("storage: missing database connection")
	}

	var (
		n         media.Note
		createdAt int64
		updatedAt int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, video_id, content, created_at, updated_at
		FROM notes
		WHERE video_id = ?
	`, videoID).Scan(&n.ID, &n.VideoID, &n.Content, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return media.Note{}, false, nil
	}
	if err != nil {
		return media.Note{}, false, err
	}
	n.CreatedAt = time.Unix(createdAt, 0).UTC()
	n.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return n, true, nil
}

// UpsertNote writes the single note of a video: insert on first save,
// content overwrite afterwards. The video_id UNIQUE constraint keeps the
// relationship one-to-one.
func (s *Store) UpsertNote(ctx context.Context, videoID int64, content string, now time.Time) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("storage: missing database connection")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notes (video_id, content, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(video_id) DO UPDATE SET
			content=excluded.content,
			updated_at=excluded.updated_at
	`, videoID, content, now.Unix(), now.Unix())
	return err
}

// DeleteNote removes a video's note if present and reports whether a row
// was actually deleted.
func (s *Store) DeleteNote(ctx context.Context, videoID int64) (bool, error) {
	if s == nil || s.db == nil {
		return false, fmt.Errorf("storage: missing database connection")
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM notes WHERE video_id = ?`, videoID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
