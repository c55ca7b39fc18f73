// Package rtsim is the public entry point for running rapid-testing epidemic
// simulations and reading back their artifacts.
package rtsim

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/daveselinger/covid-rapid-test-simulation2/internal/model"
	"github.com/daveselinger/covid-rapid-test-simulation2/internal/params"
	"github.com/daveselinger/covid-rapid-test-simulation2/internal/platform"
	"github.com/daveselinger/covid-rapid-test-simulation2/internal/stats"
	"github.com/daveselinger/covid-rapid-test-simulation2/internal/storage"
)

const (
	defaultRunsDir    = "runs"
	defaultExportsDir = "exports"
	defaultDBPath     = "rtsim.db"
	defaultTicks      = 100
	defaultRunsLimit  = 20

	timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

type Options struct {
	StoreKind  string
	DBPath     string
	RunsDir    string
	ExportsDir string
}

type Client struct {
	store storage.Store
	polis *platform.Polis

	runsDir    string
	exportsDir string
}

// RunRequest describes one run. Parameters wins over ConfigPath; with
// neither the built-in defaults are used. Seed and Population override the
// resolved parameters when non-zero.
type RunRequest struct {
	RunID      string
	ConfigPath string
	Parameters *params.SimulationParameters
	Seed       int64
	Population int
	Ticks      int
	TickDays   float64
	Workers    int
	OnTick     func(runID string, totals model.RunStatistics)
}

type RunSummary struct {
	RunID        string
	ArtifactsDir string
	Final        model.RunStatistics
	Summary      stats.Summary
}

type ReplicatesRequest struct {
	RunRequest
	Replicates int
	Parallel   int
	Notes      string
}

type ReplicatesSummary struct {
	ExperimentID string
	RunIDs       []string
	Aggregate    stats.Aggregate
}

type RunsRequest struct {
	Limit int
}

type RunItem struct {
	RunID          string
	CreatedAtUTC   string
	Seed           int64
	PopulationSize int
	Ticks          int
	PeakInfected   int
	PeakDay        float64
	FinalDeceased  int
}

// RunRef selects a run by id or the most recent one.
type RunRef struct {
	RunID  string
	Latest bool
}

type ExportRequest struct {
	RunRef
	OutDir string
}

type ExportSummary struct {
	RunID     string
	Directory string
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	runsDir := opts.RunsDir
	if runsDir == "" {
		runsDir = defaultRunsDir
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:      store,
		runsDir:    runsDir,
		exportsDir: exportsDir,
	}, nil
}

func (c *Client) Close() error {
	if c.polis != nil {
		c.polis.Stop()
	}
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	_, err := c.ensurePolis(ctx)
	return err
}

func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	p, err := c.ensurePolis(ctx)
	if err != nil {
		return RunSummary{}, err
	}
	cfg, err := runConfig(req)
	if err != nil {
		return RunSummary{}, err
	}

	result, err := p.RunSimulation(ctx, cfg)
	if err != nil {
		return RunSummary{}, err
	}
	runDir, err := c.writeArtifacts(cfg, "", result)
	if err != nil {
		return RunSummary{}, err
	}
	return RunSummary{
		RunID:        result.Run.ID,
		ArtifactsDir: filepath.Clean(runDir),
		Final:        result.Run.FinalStats,
		Summary:      result.Summary,
	}, nil
}

// Replicates runs req.Replicates seeds of one configuration, starting at the
// resolved seed, and records them as an experiment.
func (c *Client) Replicates(ctx context.Context, req ReplicatesRequest) (ReplicatesSummary, error) {
	p, err := c.ensurePolis(ctx)
	if err != nil {
		return ReplicatesSummary{}, err
	}
	cfg, err := runConfig(req.RunRequest)
	if err != nil {
		return ReplicatesSummary{}, err
	}

	started := time.Now().UTC()
	result, err := p.RunReplicates(ctx, platform.ReplicateConfig{
		RunConfig:  cfg,
		Replicates: req.Replicates,
		Parallel:   req.Parallel,
	})
	if err != nil {
		return ReplicatesSummary{}, err
	}

	exp := stats.Experiment{
		ID:           result.ExperimentID,
		Notes:        req.Notes,
		BaseSeed:     cfg.Parameters.Seed,
		Replicates:   req.Replicates,
		StartedAtUTC: started.Format(timestampLayout),
		Aggregate:    result.Aggregate,
	}
	for _, run := range result.Runs {
		replicate := cfg
		replicate.RunID = run.Run.ID
		replicate.Parameters.Seed = run.Run.Seed
		if _, err := c.writeArtifacts(replicate, exp.ID, run); err != nil {
			return ReplicatesSummary{}, err
		}
		exp.RunIDs = append(exp.RunIDs, run.Run.ID)
		exp.Summaries = append(exp.Summaries, run.Summary)
	}
	exp.CompletedAtUTC = time.Now().UTC().Format(timestampLayout)
	if err := stats.WriteExperiment(c.runsDir, exp); err != nil {
		return ReplicatesSummary{}, err
	}

	return ReplicatesSummary{
		ExperimentID: exp.ID,
		RunIDs:       append([]string(nil), exp.RunIDs...),
		Aggregate:    exp.Aggregate,
	}, nil
}

func (c *Client) writeArtifacts(cfg platform.RunConfig, experimentID string, result platform.RunResult) (string, error) {
	runDir, err := stats.WriteRunArtifacts(c.runsDir, stats.RunArtifacts{
		Config: stats.RunConfig{
			RunID:        result.Run.ID,
			CreatedAtUTC: result.Run.CreatedAtUTC,
			Ticks:        cfg.Ticks,
			TickDays:     result.Run.TickDays,
			Workers:      cfg.Workers,
			ExperimentID: experimentID,
			Parameters:   cfg.Parameters,
		},
		Series:        result.Series,
		Transmissions: result.Transmissions,
		Summary:       result.Summary,
	})
	if err != nil {
		return "", err
	}
	if err := stats.AppendRunIndex(c.runsDir, stats.RunIndexEntry{
		RunID:          result.Run.ID,
		Seed:           result.Run.Seed,
		PopulationSize: result.Run.PopulationSize,
		Ticks:          result.Run.Ticks,
		Workers:        cfg.Workers,
		PeakInfected:   result.Summary.PeakInfected,
		PeakDay:        result.Summary.PeakDay,
		FinalDeceased:  result.Summary.Final.Deceased,
		CreatedAtUTC:   result.Run.CreatedAtUTC,
	}); err != nil {
		return "", err
	}
	return runDir, nil
}

func runConfig(req RunRequest) (platform.RunConfig, error) {
	var p params.SimulationParameters
	switch {
	case req.Parameters != nil:
		p = *req.Parameters
	case req.ConfigPath != "":
		loaded, err := params.Load(req.ConfigPath)
		if err != nil {
			return platform.RunConfig{}, err
		}
		p = loaded
	default:
		p = params.Default()
	}
	if req.Seed != 0 {
		p.Seed = req.Seed
	}
	if req.Population > 0 {
		p.PopulationSize = req.Population
	}
	if req.Ticks <= 0 {
		req.Ticks = defaultTicks
	}
	if req.Workers <= 0 {
		req.Workers = 1
	}
	return platform.RunConfig{
		RunID:      req.RunID,
		Parameters: p,
		Ticks:      req.Ticks,
		TickDays:   req.TickDays,
		Workers:    req.Workers,
		OnTick:     req.OnTick,
	}, nil
}

func (c *Client) Runs(_ context.Context, req RunsRequest) ([]RunItem, error) {
	if req.Limit <= 0 {
		req.Limit = defaultRunsLimit
	}

	entries, err := stats.ListRunIndex(c.runsDir)
	if err != nil {
		return nil, err
	}
	if len(entries) > req.Limit {
		entries = entries[:req.Limit]
	}

	out := make([]RunItem, 0, len(entries))
	for _, e := range entries {
		out = append(out, RunItem{
			RunID:          e.RunID,
			CreatedAtUTC:   e.CreatedAtUTC,
			Seed:           e.Seed,
			PopulationSize: e.PopulationSize,
			Ticks:          e.Ticks,
			PeakInfected:   e.PeakInfected,
			PeakDay:        e.PeakDay,
			FinalDeceased:  e.FinalDeceased,
		})
	}
	return out, nil
}

// Series returns the per-tick statistics of a run, from the store when it
// still holds the run and from the run's artifacts otherwise.
func (c *Client) Series(ctx context.Context, ref RunRef) ([]model.RunStatistics, error) {
	runID, err := c.resolveRunID(ref)
	if err != nil {
		return nil, err
	}
	if _, err := c.ensurePolis(ctx); err != nil {
		return nil, err
	}
	series, ok, err := c.store.GetSeries(ctx, runID)
	if err != nil {
		return nil, err
	}
	if ok {
		return series, nil
	}
	series, ok, err = stats.ReadStatistics(c.runsDir, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("series not found for run %s", runID)
	}
	return series, nil
}

// Transmissions returns the infection records of a run, store first.
func (c *Client) Transmissions(ctx context.Context, ref RunRef) ([]model.InfectionRecord, error) {
	runID, err := c.resolveRunID(ref)
	if err != nil {
		return nil, err
	}
	if _, err := c.ensurePolis(ctx); err != nil {
		return nil, err
	}
	records, ok, err := c.store.GetTransmissions(ctx, runID)
	if err != nil {
		return nil, err
	}
	if ok {
		return records, nil
	}
	records, ok, err = stats.ReadTransmissions(c.runsDir, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("transmissions not found for run %s", runID)
	}
	return records, nil
}

func (c *Client) Summary(_ context.Context, ref RunRef) (stats.Summary, error) {
	runID, err := c.resolveRunID(ref)
	if err != nil {
		return stats.Summary{}, err
	}
	summary, ok, err := stats.ReadSummary(c.runsDir, runID)
	if err != nil {
		return stats.Summary{}, err
	}
	if !ok {
		return stats.Summary{}, fmt.Errorf("summary not found for run %s", runID)
	}
	return summary, nil
}

func (c *Client) Experiments(_ context.Context) ([]stats.Experiment, error) {
	return stats.ListExperiments(c.runsDir)
}

func (c *Client) Export(_ context.Context, req ExportRequest) (ExportSummary, error) {
	if req.OutDir == "" {
		req.OutDir = c.exportsDir
	}
	runID, err := c.resolveRunID(req.RunRef)
	if err != nil {
		return ExportSummary{}, err
	}

	exportedDir, err := stats.ExportRunArtifacts(c.runsDir, runID, req.OutDir)
	if err != nil {
		return ExportSummary{}, err
	}
	return ExportSummary{RunID: runID, Directory: filepath.Clean(exportedDir)}, nil
}

// StopRun cancels a run started by this client that is still ticking.
func (c *Client) StopRun(ctx context.Context, runID string) error {
	p, err := c.ensurePolis(ctx)
	if err != nil {
		return err
	}
	return p.StopRun(runID)
}

func (c *Client) resolveRunID(ref RunRef) (string, error) {
	if ref.RunID != "" && ref.Latest {
		return "", errors.New("use either run id or latest")
	}
	if ref.RunID != "" {
		return ref.RunID, nil
	}
	if !ref.Latest {
		return "", errors.New("run id or latest is required")
	}
	entries, err := stats.ListRunIndex(c.runsDir)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", errors.New("no runs available")
	}
	return entries[0].RunID, nil
}

func (c *Client) ensurePolis(ctx context.Context) (*platform.Polis, error) {
	if c.polis != nil {
		return c.polis, nil
	}
	p := platform.NewPolis(platform.Config{Store: c.store})
	if err := p.Init(ctx); err != nil {
		return nil, err
	}
	c.polis = p
	return c.polis, nil
}
