//go:build sqlite

package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "rtsim.db")

	store := NewSQLiteStore(dbPath)
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	run := sampleRun("run-1", "2026-01-02T00:00:00Z")
	if err := store.SaveRun(ctx, run); err != nil {
		t.Fatalf("save run: %v", err)
	}
	loadedRun, ok, err := store.GetRun(ctx, run.ID)
	if err != nil || !ok {
		t.Fatalf("get run: ok=%t err=%v", ok, err)
	}
	if diff := cmp.Diff(run, loadedRun); diff != "" {
		t.Fatalf("run mismatch (-want +got):\n%s", diff)
	}

	series := sampleSeries()
	if err := store.SaveSeries(ctx, run.ID, series); err != nil {
		t.Fatalf("save series: %v", err)
	}
	loadedSeries, ok, err := store.GetSeries(ctx, run.ID)
	if err != nil || !ok {
		t.Fatalf("get series: ok=%t err=%v", ok, err)
	}
	if diff := cmp.Diff(series, loadedSeries); diff != "" {
		t.Fatalf("series mismatch (-want +got):\n%s", diff)
	}

	records := sampleTransmissions()
	if err := store.SaveTransmissions(ctx, run.ID, records); err != nil {
		t.Fatalf("save transmissions: %v", err)
	}
	loadedRecords, ok, err := store.GetTransmissions(ctx, run.ID)
	if err != nil || !ok {
		t.Fatalf("get transmissions: ok=%t err=%v", ok, err)
	}
	if diff := cmp.Diff(records, loadedRecords); diff != "" {
		t.Fatalf("transmissions mismatch (-want +got):\n%s", diff)
	}

	if _, ok, err := store.GetSeries(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected missing series, ok=%t err=%v", ok, err)
	}
}

func TestSQLiteStoreListRunsOrdered(t *testing.T) {
	ctx := context.Background()
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "rtsim.db"))
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	for _, run := range []struct{ id, at string }{
		{"c", "2026-01-03T00:00:00Z"},
		{"a", "2026-01-01T00:00:00Z"},
		{"b", "2026-01-01T00:00:00Z"},
	} {
		if err := store.SaveRun(ctx, sampleRun(run.id, run.at)); err != nil {
			t.Fatalf("save run %s: %v", run.id, err)
		}
	}
	runs, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	var ids []string
	for _, run := range runs {
		ids = append(ids, run.ID)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, ids); diff != "" {
		t.Fatalf("run order mismatch (-want +got):\n%s", diff)
	}
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "rtsim.db")

	first := NewSQLiteStore(dbPath)
	if err := first.Init(ctx); err != nil {
		t.Fatalf("first init: %v", err)
	}
	run := sampleRun("persisted-run", "2026-01-02T00:00:00Z")
	if err := first.SaveRun(ctx, run); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}

	second := NewSQLiteStore(dbPath)
	if err := second.Init(ctx); err != nil {
		t.Fatalf("second init: %v", err)
	}
	t.Cleanup(func() {
		_ = second.Close()
	})

	loaded, ok, err := second.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if !ok || loaded.ID != run.ID {
		t.Fatalf("expected persisted run, got ok=%t value=%+v", ok, loaded)
	}
}

func TestNewStoreSQLite(t *testing.T) {
	store, err := NewStore("sqlite", filepath.Join(t.TempDir(), "rtsim.db"))
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := CloseIfSupported(store); err != nil {
		t.Fatalf("close: %v", err)
	}
}
