package library

import (
	"context"
	"time"

	"github.com/serhiishtokal/CourseWatcher/internal/media"
)

// Note returns the note attached to a video. Videos that have never been
// annotated get a synthesized empty note rather than an error; callers can
// rely on always receiving a record.
func (s *Service) Note(ctx context.Context, videoID int64) (media.Note, error) {
	if _, err := s.requireVideo(ctx, videoID); err != nil {
		return media.Note{}, err
	}

	note, ok, err := s.store.NoteByVideoID(ctx, videoID)
	if err != nil {
		return media.Note{}, err
	}
	if !ok {
		return media.Note{VideoID: videoID, Content: ""}, nil
	}
	return note, nil
}

// SaveNote upserts the note of a video and returns the stored record.
func (s *Service) SaveNote(ctx context.Context, videoID int64, content string) (media.Note, error) {
	if _, err := s.requireVideo(ctx, videoID); err != nil {
		return media.Note{}, err
	}

	if err := s.store.UpsertNote(ctx, videoID, content, time.Now()); err != nil {
		return media.Note{}, err
	}
	return s.Note(ctx, videoID)
}

// DeleteNote removes a video's note and reports whether one existed.
func (s *Service) DeleteNote(ctx context.Context, videoID int64) (bool, error) {
	return s.store.DeleteNote(ctx, videoID)
}
