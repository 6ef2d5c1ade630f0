package storage

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/serhiishtokal/CourseWatcher/internal/media"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}

	store := &Store{db: db}
	if err := store.MigrateSchema(); err != nil {
		t.Fatalf("migrate schema: %v", err)
	}
	return store
}

func insertTestVideo(t *testing.T, store *Store, nv NewVideo) int64 {
	t.Helper()

	var id int64
	err := store.WithTx(context.Background(), func(tx *sql.Tx) error {
		var err error
		id, err = InsertVideo(context.Background(), tx, nv, time.Unix(1700000000, 0))
		return err
	})
	if err != nil {
		t.Fatalf("insert video %q: %v", nv.Path, err)
	}
	return id
}

func TestMigrateSchema(t *testing.T) {
	store := newTestStore(t)

	rows, err := store.db.Query(`SELECT name FROM sqlite_master WHERE type = 'table'`)
	if err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("scan sqlite_master: %v", err)
		}
		found[name] = true
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("sqlite_master rows: %v", err)
	}

	for _, table := range []string{"schema_migrations", "modules", "videos", "notes"} {
		if !found[table] {
			t.Fatalf("expected table %q to exist", table)
		}
	}

	// running again must be a no-op
	if err := store.MigrateSchema(); err != nil {
		t.Fatalf("second MigrateSchema() error = %v", err)
	}
}

func TestEnsureModuleIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var first, second int64
	err := store.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		first, err = EnsureModule(ctx, tx, "Module 1", "Module 1", 1)
		if err != nil {
			return err
		}
		second, err = EnsureModule(ctx, tx, "Module 1", "Module 1", 1)
		return err
	})
	if err != nil {
		t.Fatalf("EnsureModule: %v", err)
	}
	if first != second {
		t.Fatalf("EnsureModule created a second row: %d vs %d", first, second)
	}

	modules, err := store.Modules(ctx)
	if err != nil {
		t.Fatalf("Modules: %v", err)
	}
	if len(modules) != 1 {
		t.Fatalf("expected 1 module, got %d", len(modules))
	}
}

func TestInsertVideoDefaults(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id := insertTestVideo(t, store, NewVideo{
		Path:      "/media/01. Intro.mp4",
		Filename:  "01. Intro.mp4",
		Title:     "01. Intro",
		SortOrder: 1,
	})

	v, ok, err := store.VideoByID(ctx, id)
	if err != nil {
		t.Fatalf("VideoByID: %v", err)
	}
	if !ok {
		t.Fatalf("video %d not found after insert", id)
	}
	if v.Status != media.StatusUnwatched {
		t.Fatalf("new video status = %q, want %q", v.Status, media.StatusUnwatched)
	}
	if v.Position != 0 || v.Duration != 0 {
		t.Fatalf("new video progress = (%v, %v), want zeros", v.Position, v.Duration)
	}
	if v.ModuleID != nil {
		t.Fatalf("root-level video has module id %d", *v.ModuleID)
	}
}

func TestInsertVideoPathUnique(t *testing.T) {
	store := newTestStore(t)

	nv := NewVideo{Path: "/media/a.mp4", Filename: "a.mp4", Title: "a"}
	insertTestVideo(t, store, nv)

	err := store.WithTx(context.Background(), func(tx *sql.Tx) error {
		_, err := InsertVideo(context.Background(), tx, nv, time.Now())
		return err
	})
	if err == nil {
		t.Fatal("expected unique constraint violation for duplicate path")
	}
}

func TestVideosByModuleOrdering(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	insertTestVideo(t, store, NewVideo{Path: "/m/02_b.mp4", Filename: "02_b.mp4", Title: "b", SortOrder: 2})
	insertTestVideo(t, store, NewVideo{Path: "/m/01_a.mp4", Filename: "01_a.mp4", Title: "a", SortOrder: 1})
	insertTestVideo(t, store, NewVideo{Path: "/m/zz.mp4", Filename: "zz.mp4", Title: "zz", SortOrder: media.UnorderedSortKey})

	videos, err := store.VideosByModule(ctx, nil, OrderSortKey)
	if err != nil {
		t.Fatalf("VideosByModule: %v", err)
	}
	if len(videos) != 3 {
		t.Fatalf("expected 3 videos, got %d", len(videos))
	}
	if videos[0].Filename != "01_a.mp4" || videos[1].Filename != "02_b.mp4" || videos[2].Filename != "zz.mp4" {
		t.Fatalf("unexpected default ordering: %s, %s, %s", videos[0].Filename, videos[1].Filename, videos[2].Filename)
	}

	videos, err = store.VideosByModule(ctx, nil, OrderSortKeyDesc)
	if err != nil {
		t.Fatalf("VideosByModule desc: %v", err)
	}
	if videos[0].Filename != "zz.mp4" {
		t.Fatalf("descending order should put unnumbered file first, got %s", videos[0].Filename)
	}
}

func TestUpdateVideoProgressKeepsDuration(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id := insertTestVideo(t, store, NewVideo{Path: "/m/a.mp4", Filename: "a.mp4", Title: "a"})

	duration := 600.0
	if err := store.UpdateVideoProgress(ctx, id, 60, &duration, media.StatusInProgress, time.Now()); err != nil {
		t.Fatalf("UpdateVideoProgress: %v", err)
	}
	// omitting duration must not reset the stored value
	if err := store.UpdateVideoProgress(ctx, id, 120, nil, media.StatusInProgress, time.Now()); err != nil {
		t.Fatalf("UpdateVideoProgress: %v", err)
	}

	v, _, err := store.VideoByID(ctx, id)
	if err != nil {
		t.Fatalf("VideoByID: %v", err)
	}
	if v.Duration != 600 {
		t.Fatalf("duration = %v, want 600", v.Duration)
	}
	if v.Position != 120 {
		t.Fatalf("position = %v, want 120", v.Position)
	}
}

func TestSearchVideos(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var moduleID int64
	err := store.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		moduleID, err = EnsureModule(ctx, tx, "Module 1", "Module 1", 1)
		if err != nil {
			return err
		}
		_, err = InsertVideo(ctx, tx, NewVideo{
			Path: "/m/Module 1/01_Intro_To_Go.mp4", Filename: "01_Intro_To_Go.mp4",
			Title: "01 Intro To Go", ModuleID: &moduleID, SortOrder: 1,
		}, time.Now())
		return err
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	insertTestVideo(t, store, NewVideo{Path: "/m/misc.mp4", Filename: "misc.mp4", Title: "misc"})

	results, err := store.SearchVideos(ctx, "intro to")
	if err != nil {
		t.Fatalf("SearchVideos: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 match, got %d", len(results))
	}
	if results[0].ModuleName != "Module 1" {
		t.Fatalf("module name = %q, want %q", results[0].ModuleName, "Module 1")
	}

	// wildcard characters match literally
	results, err = store.SearchVideos(ctx, "%")
	if err != nil {
		t.Fatalf("SearchVideos: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected literal %% to match nothing, got %d results", len(results))
	}
}

func TestUpsertNoteIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id := insertTestVideo(t, store, NewVideo{Path: "/m/a.mp4", Filename: "a.mp4", Title: "a"})

	if err := store.UpsertNote(ctx, id, "first", time.Unix(1700000000, 0)); err != nil {
		t.Fatalf("UpsertNote: %v", err)
	}
	if err := store.UpsertNote(ctx, id, "second", time.Unix(1700000100, 0)); err != nil {
		t.Fatalf("UpsertNote: %v", err)
	}

	var count int
	if err := store.db.QueryRow(`SELECT COUNT(*) FROM notes WHERE video_id = ?`, id).Scan(&count); err != nil {
		t.Fatalf("count notes: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single note row, got %d", count)
	}

	note, ok, err := store.NoteByVideoID(ctx, id)
	if err != nil {
		t.Fatalf("NoteByVideoID: %v", err)
	}
	if !ok || note.Content != "second" {
		t.Fatalf("note = %+v ok=%v, want content %q", note, ok, "second")
	}
}

func TestDeleteNote(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id := insertTestVideo(t, store, NewVideo{Path: "/m/a.mp4", Filename: "a.mp4", Title: "a"})

	deleted, err := store.DeleteNote(ctx, id)
	if err != nil {
		t.Fatalf("DeleteNote: %v", err)
	}
	if deleted {
		t.Fatal("DeleteNote reported a deletion with no note present")
	}

	if err := store.UpsertNote(ctx, id, "text", time.Now()); err != nil {
		t.Fatalf("UpsertNote: %v", err)
	}
	deleted, err = store.DeleteNote(ctx, id)
	if err != nil {
		t.Fatalf("DeleteNote: %v", err)
	}
	if !deleted {
		t.Fatal("DeleteNote did not report the deletion")
	}
}

func TestNotesCascadeWithVideo(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id := insertTestVideo(t, store, NewVideo{Path: "/m/a.mp4", Filename: "a.mp4", Title: "a"})
	if err := store.UpsertNote(ctx, id, "text", time.Now()); err != nil {
		t.Fatalf("UpsertNote: %v", err)
	}

	if _, err := store.db.Exec(`DELETE FROM videos WHERE id = ?`, id); err != nil {
		t.Fatalf("delete video: %v", err)
	}

	_, ok, err := store.NoteByVideoID(ctx, id)
	if err != nil {
		t.Fatalf("NoteByVideoID: %v", err)
	}
	if ok {
		t.Fatal("note survived deletion of its video")
	}
}

func TestStatusCounts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := insertTestVideo(t, store, NewVideo{Path: "/m/a.mp4", Filename: "a.mp4", Title: "a"})
	insertTestVideo(t, store, NewVideo{Path: "/m/b.mp4", Filename: "b.mp4", Title: "b"})
	if err := store.UpdateVideoStatus(ctx, a, media.StatusCompleted, false, time.Now()); err != nil {
		t.Fatalf("UpdateVideoStatus: %v", err)
	}

	total, byStatus, err := store.StatusCounts(ctx)
	if err != nil {
		t.Fatalf("StatusCounts: %v", err)
	}
	if total != 2 {
		t.Fatalf("total = %d, want 2", total)
	}
	if byStatus[media.StatusCompleted] != 1 || byStatus[media.StatusUnwatched] != 1 {
		t.Fatalf("unexpected breakdown: %v", byStatus)
	}
}
