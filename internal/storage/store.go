package storage

import (
	"context"

	"github.com/daveselinger/covid-rapid-test-simulation2/internal/model"
)

// Store defines transaction-like persistence operations for simulation runs.
// A run is stored as its header record, its per-tick statistics series and
// its infection records.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, id string) (model.RunRecord, bool, error)
	ListRuns(ctx context.Context) ([]model.RunRecord, error)
	SaveSeries(ctx context.Context, runID string, series []model.RunStatistics) error
	GetSeries(ctx context.Context, runID string) ([]model.RunStatistics, bool, error)
	SaveTransmissions(ctx context.Context, runID string, records []model.InfectionRecord) error
	GetTransmissions(ctx context.Context, runID string) ([]model.InfectionRecord, bool, error)
}
