package library

import (
	"context"
	"math"
	"strings"

	"github.com/serhiishtokal/CourseWatcher/internal/media"
	"github.com/serhiishtokal/CourseWatcher/internal/storage"
)

// RootModuleName labels the synthetic group holding videos that sit
// directly under the scan root.
const RootModuleName = "Videos"

// ParseSortMode maps a request string onto a video ordering. Anything
// unrecognised falls back to the default course ordering.
func ParseSortMode(mode string) storage.VideoOrder {
	switch mode {
	case "order_desc":
		return storage.OrderSortKeyDesc
	case "created":
		return storage.OrderCreated
	case "created_desc":
		return storage.OrderCreatedDesc
	default:
		return storage.OrderSortKey
	}
}

// ModuleGroup is one module with its ordered videos. A nil ID marks the
// synthetic root group.
type ModuleGroup struct {
	ID     *int64        `json:"id"`
	Name   string        `json:"name"`
	Path   string        `json:"path,omitempty"`
	Videos []media.Video `json:"videos"`
}

// ModulesWithVideos assembles the course overview: the root group first
// when it has videos, then the real modules by sort key and name.
func (s *Service) ModulesWithVideos(ctx context.Context, sortMode string) ([]ModuleGroup, error) {
	order := ParseSortMode(sortMode)

	groups := []ModuleGroup{}

	rootVideos, err := s.store.VideosByModule(ctx, nil, order)
	if err != nil {
		return nil, err
	}
	if len(rootVideos) > 0 {
		groups = append(groups, ModuleGroup{Name: RootModuleName, Videos: rootVideos})
	}

	modules, err := s.store.Modules(ctx)
	if err != nil {
		return nil, err
	}
	for _, m := range modules {
		id := m.ID
		videos, err := s.store.VideosByModule(ctx, &id, order)
		if err != nil {
			return nil, err
		}
		if videos == nil {
			videos = []media.Video{}
		}
		groups = append(groups, ModuleGroup{
			ID:     &id,
			Name:   m.Name,
			Path:   m.Path,
			Videos: videos,
		})
	}
	return groups, nil
}

// VideoByID fetches one video or a NotFoundError.
func (s *Service) VideoByID(ctx context.Context, id int64) (media.Video, error) {
	return s.requireVideo(ctx, id)
}

// Adjacent holds the neighbours of a video within its module under the
// default ordering. Nil marks either end.
type Adjacent struct {
	Prev *int64 `json:"prev"`
	Next *int64 `json:"next"`
}

// AdjacentVideos finds the previous and next video in the same module,
// where "same module" includes the root case of both being module-less.
func (s *Service) AdjacentVideos(ctx context.Context, id int64) (Adjacent, error) {
	v, err := s.requireVideo(ctx, id)
	if err != nil {
		return Adjacent{}, err
	}

	siblings, err := s.store.VideosByModule(ctx, v.ModuleID, storage.OrderSortKey)
	if err != nil {
		return Adjacent{}, err
	}

	var adj Adjacent
	for i := range siblings {
		if siblings[i].ID != v.ID {
			continue
		}
		if i > 0 {
			adj.Prev = &siblings[i-1].ID
		}
		if i < len(siblings)-1 {
			adj.Next = &siblings[i+1].ID
		}
		break
	}
	return adj, nil
}

// Search matches the query case-insensitively against titles and
// filenames. An empty query yields an empty result set, not the whole
// library.
func (s *Service) Search(ctx context.Context, query string) ([]storage.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []storage.SearchResult{}, nil
	}
	results, err := s.store.SearchVideos(ctx, query)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []storage.SearchResult{}
	}
	return results, nil
}

// Stats is the aggregate watch-state view of the library.
type Stats struct {
	Total           int `json:"total"`
	Completed       int `json:"completed"`
	InProgress      int `json:"inProgress"`
	Unwatched       int `json:"unwatched"`
	PercentComplete int `json:"percentComplete"`
}

// LibraryStats computes the aggregate counts. Unwatched is derived by
// subtraction so the three buckets always sum to the total.
func (s *Service) LibraryStats(ctx context.Context) (Stats, error) {
	total, byStatus, err := s.store.StatusCounts(ctx)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{
		Total:      total,
		Completed:  byStatus[media.StatusCompleted],
		InProgress: byStatus[media.StatusInProgress],
	}
	stats.Unwatched = stats.Total - stats.Completed - stats.InProgress
	if stats.Total > 0 {
		stats.PercentComplete = int(math.Round(float64(stats.Completed) / float64(stats.Total) * 100))
	}
	return stats, nil
}
