package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"abb/internal/config"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenPath(filepath.Join(t.TempDir(), "state", "history.db"))
	if err != nil {
		t.Fatalf("OpenPath returned error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	builds := []Build{
		{ID: "b1", Mode: "directory", Source: "/books/one", Manifest: "/books/one/list.txt", Output: "/out/one.m4b", Chapters: 12, Duration: 90 * time.Minute, Status: "ok", StartedAt: base, FinishedAt: base.Add(time.Minute)},
		{ID: "b2", Mode: "file", Source: "/books/two.mp3", Output: "/out/two.m4b", Status: "external_tool", Error: "ffmpeg exited with code 1", StartedAt: base.Add(time.Hour), FinishedAt: base.Add(time.Hour + 500*time.Millisecond)},
		{ID: "b3", Mode: "directory", Source: "/books/three", Output: "/out/three.m4b", Status: "ok", StartedAt: base.Add(30 * time.Minute), FinishedAt: base.Add(31 * time.Minute)},
	}
	for _, b := range builds {
		if err := store.Record(ctx, b); err != nil {
			t.Fatalf("Record(%s) returned error: %v", b.ID, err)
		}
	}

	recent, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if len(recent) != 2 || recent[0].ID != "b2" || recent[1].ID != "b3" {
		t.Fatalf("unexpected order %+v", recent)
	}
	if recent[0].Error != "ffmpeg exited with code 1" || recent[0].Manifest != "" {
		t.Fatalf("unexpected nullable fields %+v", recent[0])
	}
	if recent[0].Elapsed() != 500*time.Millisecond {
		t.Fatalf("unexpected elapsed %v", recent[0].Elapsed())
	}

	all, err := store.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 builds, got %d", len(all))
	}
	first := all[2]
	if first.Chapters != 12 || first.Duration != 90*time.Minute || !first.StartedAt.Equal(base) || first.Manifest != "/books/one/list.txt" {
		t.Fatalf("unexpected round trip %+v", first)
	}
}

func TestRecordReplacesByID(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Now()
	if err := store.Record(ctx, Build{ID: "x", Mode: "file", Source: "a", Output: "b", Status: "failed", StartedAt: now, FinishedAt: now}); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	if err := store.Record(ctx, Build{ID: "x", Mode: "file", Source: "a", Output: "b", Status: "ok", StartedAt: now, FinishedAt: now}); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	all, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if len(all) != 1 || all[0].Status != "ok" {
		t.Fatalf("expected single replaced row, got %+v", all)
	}
	if err := store.Record(ctx, Build{}); err == nil {
		t.Fatal("expected error for empty id")
	}
}

func TestReopenKeepsRowsAndMigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath returned error: %v", err)
	}
	now := time.Now()
	if err := store.Record(context.Background(), Build{ID: "keep", Mode: "file", Source: "a", Output: "b", Status: "ok", StartedAt: now, FinishedAt: now}); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	_ = store.Close()

	reopened, err := OpenPath(path)
	if err != nil {
		t.Fatalf("reopen returned error: %v", err)
	}
	defer reopened.Close()
	all, err := reopened.Recent(context.Background(), 0)
	if err != nil || len(all) != 1 {
		t.Fatalf("expected persisted row, got %v (%v)", all, err)
	}
	if reopened.Path() != path {
		t.Fatalf("unexpected path %q", reopened.Path())
	}
}

func TestOpenRespectsConfig(t *testing.T) {
	cfg := config.Default()
	cfg.History.Enabled = false
	if _, err := Open(&cfg); !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}

	cfg.History.Enabled = true
	cfg.History.Path = filepath.Join(t.TempDir(), "nested", "history.db")
	store, err := Open(&cfg)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer store.Close()
}
