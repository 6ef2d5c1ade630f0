package library

import (
	"context"
	"math"
	"time"

	"github.com/serhiishtokal/CourseWatcher/internal/media"
)

// RecordPosition persists a reported playback position and derives the
// watch status from it. The classifier only ever upgrades: a completed
// video stays completed no matter what position the player reports;
// SetStatus is the only way to regress.
func (s *Service) RecordPosition(ctx context.Context, id int64, position float64, duration *float64) (media.Video, error) {
	if math.IsNaN(position) || math.IsInf(position, 0) {
		return media.Video{}, media.Validationf("position must be a number")
	}
	if position < 0 {
		return media.Video{}, media.Validationf("position must not be negative")
	}

	v, err := s.requireVideo(ctx, id)
	if err != nil {
		return media.Video{}, err
	}

	// a supplied non-positive duration is ignored, never stored: a known
	// duration must not be silently reset
	var storeDuration *float64
	effective := v.Duration
	if duration != nil && *duration > 0 && !math.IsInf(*duration, 0) {
		effective = *duration
		storeDuration = duration
	}

	status := v.Status
	switch {
	case effective > 0 && position/effective >= s.threshold:
		status = media.StatusCompleted
	case position > 0 && v.Status != media.StatusCompleted:
		status = media.StatusInProgress
	}

	if err := s.store.UpdateVideoProgress(ctx, id, position, storeDuration, status, time.Now()); err != nil {
		return media.Video{}, err
	}

	if status == media.StatusCompleted && v.Status != media.StatusCompleted {
		s.logger.Info().Int64("video_id", id).Msg("video completed")
	}
	return s.requireVideo(ctx, id)
}

// SetStatus applies an explicit status override. Setting unwatched resets
// the position to zero so status and progress stay consistent.
func (s *Service) SetStatus(ctx context.Context, id int64, status media.Status) (media.Video, error) {
	if !status.Valid() {
		return media.Video{}, media.Validationf("unknown status %q", status)
	}

	if _, err := s.requireVideo(ctx, id); err != nil {
		return media.Video{}, err
	}

	reset := status == media.StatusUnwatched
	if err := s.store.UpdateVideoStatus(ctx, id, status, reset, time.Now()); err != nil {
		return media.Video{}, err
	}
	return s.requireVideo(ctx, id)
}

// ProgressSummary is the derived playback view of one video. Percent is
// computed on read and never stored.
type ProgressSummary struct {
	VideoID  int64        `json:"videoId"`
	Position float64      `json:"position"`
	Duration float64      `json:"duration"`
	Status   media.Status `json:"status"`
	Percent  float64      `json:"percent"`
}

// Progress returns the playback summary of a video. Percent is zero while
// the duration is unknown.
func (s *Service) Progress(ctx context.Context, id int64) (ProgressSummary, error) {
	v, err := s.requireVideo(ctx, id)
	if err != nil {
		return ProgressSummary{}, err
	}

	var percent float64
	if v.Duration > 0 {
		percent = v.Position / v.Duration * 100
	}
	return ProgressSummary{
		VideoID:  v.ID,
		Position: v.Position,
		Duration: v.Duration,
		Status:   v.Status,
		Percent:  percent,
	}, nil
}
