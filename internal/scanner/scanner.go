// Package scanner discovers media files under the course root and
// reconciles them into the store without touching existing progress data.
package scanner

import (
	"context"
	"database/sql"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/serhiishtokal/CourseWatcher/internal/log"
	"github.com/serhiishtokal/CourseWatcher/internal/media"
	"github.com/serhiishtokal/CourseWatcher/internal/storage"
)

var videoExtensions = map[string]bool{
	".avi":  true,
	".m4v":  true,
	".mkv":  true,
	".mov":  true,
	".mp4":  true,
	".ogg":  true,
	".ogv":  true,
	".webm": true,
}

// SkippedPath records a subtree the scan could not read. The scan keeps
// going; the caller decides whether to care.
type SkippedPath struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Result summarises one reconciliation pass.
type Result struct {
	RunID          string        `json:"runId"`
	Total          int           `json:"total"`
	Added          int           `json:"added"`
	AlreadyPresent int           `json:"alreadyPresent"`
	Skipped        []SkippedPath `json:"skipped,omitempty"`
	Started        time.Time     `json:"started"`
	Finished       time.Time     `json:"finished"`
}

// Scanner walks the course root and merges what it finds into the store.
type Scanner struct {
	store       *storage.Store
	dataDirName string
	logger      zerolog.Logger
}

// New creates a scanner. dataDirName is the reserved subfolder holding the
// database; it is never descended into.
func New(store *storage.Store, dataDirName string) *Scanner {
	return &Scanner{
		store:       store,
		dataDirName: dataDirName,
		logger:      log.WithComponent("scanner"),
	}
}

type discovered struct {
	path       string
	filename   string
	title      string
	modulePath string
	moduleName string
	sortKey    int
}

// Scan enumerates root, derives titles, sort keys and module membership
// from file names, and reconciles everything into the store inside a single
// transaction. Existing videos only get their title refreshed; new files
// are inserted unwatched. Nothing is ever deleted.
func (sc *Scanner) Scan(ctx context.Context, root string) (Result, error) {
	result := Result{
		RunID:   uuid.NewString(),
		Started: time.Now(),
	}

	files, skipped := sc.discover(root)
	result.Skipped = skipped
	result.Total = len(files)

	// stable: ties keep discovery order
	sort.SliceStable(files, func(i, j int) bool { return files[i].sortKey < files[j].sortKey })

	err := sc.store.WithTx(ctx, func(tx *sql.Tx) error {
		now := time.Now()
		for _, f := range files {
			id, exists, err := storage.VideoIDByPath(ctx, tx, f.path)
			if err != nil {
				return err
			}
			if exists {
				if err := storage.UpdateVideoTitle(ctx, tx, id, f.title, now); err != nil {
					return err
				}
				result.AlreadyPresent++
				continue
			}

			var moduleID *int64
			if f.modulePath != "" {
				mid, err := storage.EnsureModule(ctx, tx, f.moduleName, f.modulePath, media.SortKeyFromName(f.moduleName))
				if err != nil {
					return err
				}
				moduleID = &mid
			}

			if _, err := storage.InsertVideo(ctx, tx, storage.NewVideo{
				Path:      f.path,
				Filename:  f.filename,
				Title:     f.title,
				ModuleID:  moduleID,
				SortOrder: f.sortKey,
			}, now); err != nil {
				return err
			}
			result.Added++
		}
		return nil
	})
	if err != nil {
		result.Added = 0
		result.AlreadyPresent = 0
		return result, err
	}

	result.Finished = time.Now()
	sc.logger.Info().
		Str("run_id", result.RunID).
		Int("total", result.Total).
		Int("added", result.Added).
		Int("already_present", result.AlreadyPresent).
		Int("skipped", len(result.Skipped)).
		Dur("elapsed", result.Finished.Sub(result.Started)).
		Msg("scan finished")
	return result, nil
}

func (sc *Scanner) discover(root string) ([]discovered, []SkippedPath) {
	var (
		files   []discovered
		skipped []SkippedPath
	)

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			skipped = append(skipped, SkippedPath{Path: path, Reason: walkErr.Error()})
			sc.logger.Warn().Str("path", path).Err(walkErr).Msg("skipping unreadable entry")
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if d.Name() == sc.dataDirName {
				return fs.SkipDir
			}
			return nil
		}
		if !videoExtensions[strings.ToLower(filepath.Ext(d.Name()))] {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			skipped = append(skipped, SkippedPath{Path: path, Reason: err.Error()})
			return nil
		}

		entry := discovered{
			path:     path,
			filename: d.Name(),
			title:    media.TitleFromFilename(d.Name()),
			sortKey:  media.SortKeyFromName(d.Name()),
		}
		if dir := filepath.Dir(rel); dir != "." {
			entry.modulePath = dir
			entry.moduleName = filepath.Base(dir)
		}
		files = append(files, entry)
		return nil
	})

	return files, skipped
}
