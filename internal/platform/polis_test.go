package platform

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/daveselinger/covid-rapid-test-simulation2/internal/model"
	"github.com/daveselinger/covid-rapid-test-simulation2/internal/params"
	"github.com/daveselinger/covid-rapid-test-simulation2/internal/storage"
)

func smallParameters(seed int64) params.SimulationParameters {
	p := params.Default()
	p.Seed = seed
	p.PopulationSize = 400
	p.StartingInfectionRate = 0.05
	return p
}

func newTestPolis(t *testing.T) (*Polis, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	p := NewPolis(Config{Store: store})
	if err := p.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(p.Stop)
	return p, store
}

func TestInitRequiresStore(t *testing.T) {
	p := NewPolis(Config{})
	if err := p.Init(context.Background()); err == nil {
		t.Fatal("expected error without store")
	}
	if p.Started() {
		t.Fatal("polis should not be started")
	}
}

func TestRunSimulationRequiresInit(t *testing.T) {
	p := NewPolis(Config{Store: storage.NewMemoryStore()})
	_, err := p.RunSimulation(context.Background(), RunConfig{Parameters: smallParameters(1), Ticks: 1})
	if !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}

func TestRunSimulationPersistsRun(t *testing.T) {
	p, store := newTestPolis(t)
	ctx := context.Background()

	result, err := p.RunSimulation(ctx, RunConfig{Parameters: smallParameters(7), Ticks: 10})
	if err != nil {
		t.Fatalf("run simulation: %v", err)
	}
	if _, err := uuid.Parse(result.Run.ID); err != nil {
		t.Fatalf("expected generated uuid run id, got %q: %v", result.Run.ID, err)
	}
	if len(result.Series) != 10 {
		t.Fatalf("expected 10 series points, got %d", len(result.Series))
	}
	if result.Run.SchemaVersion != storage.CurrentSchemaVersion || result.Run.CodecVersion != storage.CurrentCodecVersion {
		t.Fatalf("run not stamped: %+v", result.Run.VersionedRecord)
	}
	if got := result.Series[len(result.Series)-1].Total(); got != 400 {
		t.Fatalf("expected final buckets to cover 400 actors, got %d", got)
	}
	if result.Run.FinalStats != result.Series[len(result.Series)-1] {
		t.Fatalf("final stats mismatch: %+v", result.Run.FinalStats)
	}

	run, ok, err := store.GetRun(ctx, result.Run.ID)
	if err != nil || !ok {
		t.Fatalf("get run: ok=%t err=%v", ok, err)
	}
	if diff := cmp.Diff(result.Run, run); diff != "" {
		t.Fatalf("stored run mismatch (-want +got):\n%s", diff)
	}
	series, ok, err := store.GetSeries(ctx, result.Run.ID)
	if err != nil || !ok {
		t.Fatalf("get series: ok=%t err=%v", ok, err)
	}
	if diff := cmp.Diff(result.Series, series); diff != "" {
		t.Fatalf("stored series mismatch (-want +got):\n%s", diff)
	}
	records, ok, err := store.GetTransmissions(ctx, result.Run.ID)
	if err != nil || !ok {
		t.Fatalf("get transmissions: ok=%t err=%v", ok, err)
	}
	if len(records) != len(result.Transmissions) || len(records) < 20 {
		t.Fatalf("expected at least the 20 seeded infections, got %d stored and %d returned", len(records), len(result.Transmissions))
	}
	if result.Summary.RunID != result.Run.ID || result.Summary.PopulationSize != 400 {
		t.Fatalf("unexpected summary: %+v", result.Summary)
	}
}

func TestRunSimulationIsReproducible(t *testing.T) {
	p, _ := newTestPolis(t)
	ctx := context.Background()

	first, err := p.RunSimulation(ctx, RunConfig{RunID: "a", Parameters: smallParameters(11), Ticks: 15})
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := p.RunSimulation(ctx, RunConfig{RunID: "b", Parameters: smallParameters(11), Ticks: 15, Workers: 4})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if diff := cmp.Diff(first.Series, second.Series); diff != "" {
		t.Fatalf("series differ for same seed (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(first.Transmissions, second.Transmissions); diff != "" {
		t.Fatalf("transmissions differ for same seed (-want +got):\n%s", diff)
	}
}

func TestRunSimulationRejectsBadConfig(t *testing.T) {
	p, _ := newTestPolis(t)
	ctx := context.Background()

	invalid := smallParameters(1)
	invalid.PopulationSize = 0
	if _, err := p.RunSimulation(ctx, RunConfig{Parameters: invalid, Ticks: 1}); !errors.Is(err, params.ErrInvalidParameters) {
		t.Fatalf("expected ErrInvalidParameters, got %v", err)
	}
	if _, err := p.RunSimulation(ctx, RunConfig{Parameters: smallParameters(1), Ticks: 0}); err == nil {
		t.Fatal("expected error for zero ticks")
	}
	if _, err := p.RunSimulation(ctx, RunConfig{Parameters: smallParameters(1), Ticks: 1, TickDays: -1}); err == nil {
		t.Fatal("expected error for negative tick length")
	}
}

func TestRunSimulationHonoursCancelledContext(t *testing.T) {
	p, store := newTestPolis(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.RunSimulation(ctx, RunConfig{RunID: "cancelled", Parameters: smallParameters(1), Ticks: 5})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, ok, _ := store.GetRun(context.Background(), "cancelled"); ok {
		t.Fatal("cancelled run should not be persisted")
	}
}

func TestStopRunCancelsActiveRun(t *testing.T) {
	p, _ := newTestPolis(t)
	ticks := 0
	var active []string
	_, err := p.RunSimulation(context.Background(), RunConfig{
		RunID:      "stoppable",
		Parameters: smallParameters(3),
		Ticks:      20,
		OnTick: func(runID string, _ model.RunStatistics) {
			ticks++
			if ticks == 2 {
				active = p.ActiveRuns()
				if err := p.StopRun(runID); err != nil {
					t.Errorf("stop run: %v", err)
				}
			}
		},
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if ticks != 2 {
		t.Fatalf("expected run to stop after 2 ticks, got %d", ticks)
	}
	if diff := cmp.Diff([]string{"stoppable"}, active); diff != "" {
		t.Fatalf("unexpected active runs (-want +got):\n%s", diff)
	}
	if got := p.ActiveRuns(); len(got) != 0 {
		t.Fatalf("expected no active runs after stop, got %v", got)
	}
	if err := p.StopRun("stoppable"); !errors.Is(err, ErrRunNotActive) {
		t.Fatalf("expected ErrRunNotActive, got %v", err)
	}
}

func TestRunReplicates(t *testing.T) {
	p, store := newTestPolis(t)
	ctx := context.Background()

	result, err := p.RunReplicates(ctx, ReplicateConfig{
		RunConfig:  RunConfig{RunID: "exp", Parameters: smallParameters(20), Ticks: 8},
		Replicates: 3,
		Parallel:   2,
	})
	if err != nil {
		t.Fatalf("run replicates: %v", err)
	}
	if result.ExperimentID != "exp" || result.Aggregate.Runs != 3 {
		t.Fatalf("unexpected result: id=%s runs=%d", result.ExperimentID, result.Aggregate.Runs)
	}
	wantIDs := []string{"exp-r00", "exp-r01", "exp-r02"}
	for i, run := range result.Runs {
		if run.Run.ID != wantIDs[i] || run.Run.Seed != int64(20+i) {
			t.Fatalf("replicate %d: id=%s seed=%d", i, run.Run.ID, run.Run.Seed)
		}
	}
	runs, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 stored runs, got %d", len(runs))
	}

	single, err := p.RunSimulation(ctx, RunConfig{RunID: "single", Parameters: smallParameters(21), Ticks: 8})
	if err != nil {
		t.Fatalf("single run: %v", err)
	}
	if diff := cmp.Diff(single.Series, result.Runs[1].Series); diff != "" {
		t.Fatalf("replicate differs from standalone run with the same seed (-want +got):\n%s", diff)
	}
}

func TestRunReplicatesRejectsZero(t *testing.T) {
	p, _ := newTestPolis(t)
	if _, err := p.RunReplicates(context.Background(), ReplicateConfig{Replicates: 0}); err == nil {
		t.Fatal("expected error for zero replicates")
	}
}
