// Package media holds the domain types shared by the scanner, the library
// service and the HTTP layer: modules, videos, notes and the watch status
// lifecycle.
package media

import "time"

// Status is the watch lifecycle of a video.
type Status string

const (
	StatusUnwatched  Status = "unwatched"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusUnwatched, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Module is a folder-derived grouping of videos. Videos directly under the
// scan root carry no module reference and are presented under the synthetic
// root group instead.
type Module struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Path      string `json:"path"`
	SortOrder int    `json:"sortOrder"`
}

// Video is one discovered media file. Path is the natural key: rescans
// reconcile against it and never produce a second row for the same file.
type Video struct {
	ID        int64     `json:"id"`
	Path      string    `json:"path"`
	Filename  string    `json:"filename"`
	Title     string    `json:"title"`
	Duration  float64   `json:"duration"`
	Position  float64   `json:"position"`
	Status    Status    `json:"status"`
	ModuleID  *int64    `json:"moduleId"`
	SortOrder int       `json:"sortOrder"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Note is the free-text annotation attached to a video, at most one per
// video. Content is Markdown as far as the UI is concerned; the core treats
// it as opaque text.
type Note struct {
	ID        int64     `json:"id,omitempty"`
	VideoID   int64     `json:"videoId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}
