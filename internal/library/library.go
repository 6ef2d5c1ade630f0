// Package library implements the application core over the storage layer:
// the watch-status state machine, per-video notes and the read-side queries
// the HTTP API exposes.
package library

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/serhiishtokal/CourseWatcher/internal/log"
	"github.com/serhiishtokal/CourseWatcher/internal/media"
	"github.com/serhiishtokal/CourseWatcher/internal/storage"
)

// DefaultCompletionThreshold is the watched fraction at which a video
// auto-transitions to completed.
const DefaultCompletionThreshold = 0.9

// Service bundles the store with the completion threshold. One instance is
// constructed at startup and shared; there is no ambient global state.
type Service struct {
	store     *storage.Store
	threshold float64
	logger    zerolog.Logger
}

// New creates a Service. A threshold outside (0, 1] falls back to the
// default.
func New(store *storage.Store, completionThreshold float64) *Service {
	if completionThreshold <= 0 || completionThreshold > 1 {
		completionThreshold = DefaultCompletionThreshold
	}
	return &Service{
		store:     store,
		threshold: completionThreshold,
		logger:    log.WithComponent("library"),
	}
}

func (s *Service) requireVideo(ctx context.Context, id int64) (media.Video, error) {
	v, ok, err := s.store.VideoByID(ctx, id)
	if err != nil {
		return media.Video{}, err
	}
	if !ok {
		return media.Video{}, media.NotFound("video", id)
	}
	return v, nil
}
