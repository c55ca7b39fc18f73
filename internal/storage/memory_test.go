package storage

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMemoryStoreRunRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := sampleRun("run-1", "2026-01-02T00:00:00Z")
	if err := store.SaveRun(ctx, input); err != nil {
		t.Fatalf("save run: %v", err)
	}
	output, ok, err := store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted run")
	}
	if diff := cmp.Diff(input, output); diff != "" {
		t.Fatalf("run mismatch (-want +got):\n%s", diff)
	}

	output.Variants[0] = "mutated"
	again, _, _ := store.GetRun(ctx, "run-1")
	if again.Variants[0] != "delta" {
		t.Fatalf("expected stored run to be isolated from callers, got %+v", again.Variants)
	}

	if _, ok, err := store.GetRun(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected missing run, ok=%t err=%v", ok, err)
	}
}

func TestMemoryStoreListRunsOrdered(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

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

func TestMemoryStoreSeriesAndTransmissionsRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	series := sampleSeries()
	if err := store.SaveSeries(ctx, "run-1", series); err != nil {
		t.Fatalf("save series: %v", err)
	}
	gotSeries, ok, err := store.GetSeries(ctx, "run-1")
	if err != nil || !ok {
		t.Fatalf("get series: ok=%t err=%v", ok, err)
	}
	if diff := cmp.Diff(series, gotSeries); diff != "" {
		t.Fatalf("series mismatch (-want +got):\n%s", diff)
	}

	records := sampleTransmissions()
	if err := store.SaveTransmissions(ctx, "run-1", records); err != nil {
		t.Fatalf("save transmissions: %v", err)
	}
	gotRecords, ok, err := store.GetTransmissions(ctx, "run-1")
	if err != nil || !ok {
		t.Fatalf("get transmissions: ok=%t err=%v", ok, err)
	}
	if diff := cmp.Diff(records, gotRecords); diff != "" {
		t.Fatalf("transmissions mismatch (-want +got):\n%s", diff)
	}
}

func TestMemoryStoreRequiresInit(t *testing.T) {
	store := NewMemoryStore()
	if err := store.SaveRun(context.Background(), sampleRun("run-1", "")); err == nil {
		t.Fatal("expected save before init to fail")
	}
}
