// Package platform hosts simulation runs: it resolves parameters, drives a
// Simulation tick by tick, persists the results into a Store and keeps track
// of runs in flight so they can be stopped.
package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/daveselinger/covid-rapid-test-simulation2/internal/logging"
	"github.com/daveselinger/covid-rapid-test-simulation2/internal/model"
	"github.com/daveselinger/covid-rapid-test-simulation2/internal/params"
	"github.com/daveselinger/covid-rapid-test-simulation2/internal/sim"
	"github.com/daveselinger/covid-rapid-test-simulation2/internal/stats"
	"github.com/daveselinger/covid-rapid-test-simulation2/internal/storage"
)

// timestampLayout is fixed width so that timestamps sort lexically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

var (
	ErrNotInitialized = errors.New("polis is not initialized")
	ErrRunNotActive   = errors.New("run is not active")
)

type Config struct {
	Store  storage.Store
	Logger *slog.Logger
}

// RunConfig describes one run. RunID is generated when empty, TickDays
// defaults to one day and OnTick, when set, is called after every tick with
// the new totals.
type RunConfig struct {
	RunID      string
	Parameters params.SimulationParameters
	Ticks      int
	TickDays   float64
	Workers    int
	OnTick     func(runID string, totals model.RunStatistics)
}

type RunResult struct {
	Run           model.RunRecord
	Series        []model.RunStatistics
	Transmissions []model.InfectionRecord
	Summary       stats.Summary
}

// ReplicateConfig runs Replicates copies of RunConfig with seeds
// Parameters.Seed, Parameters.Seed+1, ... RunConfig.RunID is used as the
// run id prefix.
type ReplicateConfig struct {
	RunConfig
	Replicates int
	Parallel   int
}

type ReplicateResult struct {
	ExperimentID string
	Runs         []RunResult
	Aggregate    stats.Aggregate
}

// Polis owns the store and the set of active runs.
type Polis struct {
	store  storage.Store
	logger *slog.Logger
	now    func() time.Time

	mu      sync.RWMutex
	started bool
	runs    map[string]context.CancelFunc
}

func NewPolis(cfg Config) *Polis {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.New("platform")
	}
	return &Polis{
		store:  cfg.Store,
		logger: logger,
		now:    time.Now,
		runs:   make(map[string]context.CancelFunc),
	}
}

func (p *Polis) Init(ctx context.Context) error {
	if p.store == nil {
		return fmt.Errorf("store is required")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return nil
	}
	if err := p.store.Init(ctx); err != nil {
		return err
	}
	p.started = true
	return nil
}

func (p *Polis) Started() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.started
}

func (p *Polis) Store() storage.Store { return p.store }

// Stop cancels every active run.
func (p *Polis) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, cancel := range p.runs {
		cancel()
	}
	p.runs = make(map[string]context.CancelFunc)
	p.started = false
}

// RunSimulation runs one simulation to completion and persists it. The
// context is checked between ticks.
func (p *Polis) RunSimulation(ctx context.Context, cfg RunConfig) (RunResult, error) {
	if !p.Started() {
		return RunResult{}, ErrNotInitialized
	}
	if cfg.Ticks <= 0 {
		return RunResult{}, fmt.Errorf("ticks must be > 0, got %d", cfg.Ticks)
	}
	if cfg.TickDays == 0 {
		cfg.TickDays = 1
	}
	if cfg.TickDays < 0 {
		return RunResult{}, fmt.Errorf("tick days must be > 0, got %v", cfg.TickDays)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}

	m, err := params.Resolve(cfg.Parameters)
	if err != nil {
		return RunResult{}, fmt.Errorf("resolve parameters: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := p.registerRun(cfg.RunID, cancel); err != nil {
		return RunResult{}, err
	}
	defer p.unregisterRun(cfg.RunID)

	logger := p.logger.With("run_id", cfg.RunID)
	started := p.now()
	logger.Info("run started",
		"seed", m.Params.Seed,
		"population", m.Params.PopulationSize,
		"ticks", cfg.Ticks,
		"workers", cfg.Workers,
	)

	s, err := sim.New(m, nil, sim.WithWorkers(cfg.Workers))
	if err != nil {
		return RunResult{}, fmt.Errorf("build simulation: %w", err)
	}

	series := make([]model.RunStatistics, 0, cfg.Ticks)
	for tick := 0; tick < cfg.Ticks; tick++ {
		if err := ctx.Err(); err != nil {
			logger.Warn("run stopped", "tick", tick, "err", err)
			return RunResult{}, fmt.Errorf("run %s stopped at tick %d: %w", cfg.RunID, tick, err)
		}
		if err := s.Tick(cfg.TickDays); err != nil {
			return RunResult{}, fmt.Errorf("run %s tick %d: %w", cfg.RunID, tick, err)
		}
		totals := s.Totals()
		series = append(series, totals)
		logger.Debug("tick", "day", totals.Day, "infected", totals.Infected, "isolated", totals.Isolated)
		if cfg.OnTick != nil {
			cfg.OnTick(cfg.RunID, totals)
		}
	}

	records := s.InfectionRecords()
	summary := stats.Summarize(cfg.RunID, m.Params.Seed, m.Params.PopulationSize, series, records)
	run := model.RunRecord{
		ID:             cfg.RunID,
		CreatedAtUTC:   started.UTC().Format(timestampLayout),
		Seed:           m.Params.Seed,
		PopulationSize: m.Params.PopulationSize,
		Ticks:          cfg.Ticks,
		TickDays:       cfg.TickDays,
		Variants:       m.Params.VariantNames(),
		PeakInfected:   summary.PeakInfected,
		PeakDay:        summary.PeakDay,
		FinalStats:     summary.Final,
	}
	storage.Stamp(&run)

	if err := p.persist(ctx, run, series, records); err != nil {
		return RunResult{}, err
	}

	logger.Info("run completed",
		"peak_infected", summary.PeakInfected,
		"peak_day", summary.PeakDay,
		"deceased", summary.Final.Deceased,
		"infections", summary.TotalInfections,
		"elapsed", p.now().Sub(started),
	)
	return RunResult{
		Run:           run,
		Series:        series,
		Transmissions: records,
		Summary:       summary,
	}, nil
}

func (p *Polis) persist(ctx context.Context, run model.RunRecord, series []model.RunStatistics, records []model.InfectionRecord) error {
	if err := p.store.SaveRun(ctx, run); err != nil {
		return fmt.Errorf("save run %s: %w", run.ID, err)
	}
	if err := p.store.SaveSeries(ctx, run.ID, series); err != nil {
		return fmt.Errorf("save series %s: %w", run.ID, err)
	}
	if err := p.store.SaveTransmissions(ctx, run.ID, records); err != nil {
		return fmt.Errorf("save transmissions %s: %w", run.ID, err)
	}
	return nil
}

// RunReplicates runs seed replicates of one configuration, at most Parallel
// at a time. Each replicate owns its random source, so results do not depend
// on scheduling.
func (p *Polis) RunReplicates(ctx context.Context, cfg ReplicateConfig) (ReplicateResult, error) {
	if cfg.Replicates <= 0 {
		return ReplicateResult{}, fmt.Errorf("replicates must be > 0, got %d", cfg.Replicates)
	}
	if cfg.Parallel <= 0 {
		cfg.Parallel = 1
	}
	experimentID := cfg.RunID
	if experimentID == "" {
		experimentID = uuid.NewString()
	}

	results := make([]RunResult, cfg.Replicates)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Parallel)
	for i := 0; i < cfg.Replicates; i++ {
		i := i
		replicate := cfg.RunConfig
		replicate.RunID = fmt.Sprintf("%s-r%02d", experimentID, i)
		replicate.Parameters.Seed = cfg.Parameters.Seed + int64(i)
		g.Go(func() error {
			result, err := p.RunSimulation(gctx, replicate)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ReplicateResult{}, err
	}

	summaries := make([]stats.Summary, len(results))
	for i, result := range results {
		summaries[i] = result.Summary
	}
	return ReplicateResult{
		ExperimentID: experimentID,
		Runs:         results,
		Aggregate:    stats.AggregateSummaries(summaries),
	}, nil
}

// StopRun cancels an active run. The run returns at its next tick boundary.
func (p *Polis) StopRun(runID string) error {
	p.mu.RLock()
	cancel, ok := p.runs[runID]
	p.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrRunNotActive, runID)
	}
	cancel()
	return nil
}

// ActiveRuns lists the ids of runs in flight.
func (p *Polis) ActiveRuns() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ids := make([]string, 0, len(p.runs))
	for id := range p.runs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (p *Polis) registerRun(runID string, cancel context.CancelFunc) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.runs[runID]; exists {
		return fmt.Errorf("run already active: %s", runID)
	}
	p.runs[runID] = cancel
	return nil
}

func (p *Polis) unregisterRun(runID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.runs, runID)
}
