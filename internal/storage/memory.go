package storage

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/daveselinger/covid-rapid-test-simulation2/internal/model"
)

type MemoryStore struct {
	mu            sync.RWMutex
	initialized   bool
	runs          map[string]model.RunRecord
	series        map[string][]model.RunStatistics
	transmissions map[string][]model.InfectionRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.runs = make(map[string]model.RunRecord)
	s.series = make(map[string][]model.RunStatistics)
	s.transmissions = make(map[string][]model.InfectionRecord)
	return nil
}

func (s *MemoryStore) SaveRun(_ context.Context, run model.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errors.New("store is not initialized")
	}
	run.Variants = append([]string(nil), run.Variants...)
	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (model.RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return model.RunRecord{}, false, nil
	}
	run.Variants = append([]string(nil), run.Variants...)
	return run, true, nil
}

func (s *MemoryStore) ListRuns(_ context.Context) ([]model.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]model.RunRecord, 0, len(s.runs))
	for _, run := range s.runs {
		run.Variants = append([]string(nil), run.Variants...)
		runs = append(runs, run)
	}
	sortRuns(runs)
	return runs, nil
}

func (s *MemoryStore) SaveSeries(_ context.Context, runID string, series []model.RunStatistics) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errors.New("store is not initialized")
	}
	s.series[runID] = append([]model.RunStatistics(nil), series...)
	return nil
}

func (s *MemoryStore) GetSeries(_ context.Context, runID string) ([]model.RunStatistics, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	series, ok := s.series[runID]
	if !ok {
		return nil, false, nil
	}
	return append([]model.RunStatistics(nil), series...), true, nil
}

func (s *MemoryStore) SaveTransmissions(_ context.Context, runID string, records []model.InfectionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errors.New("store is not initialized")
	}
	s.transmissions[runID] = append([]model.InfectionRecord(nil), records...)
	return nil
}

func (s *MemoryStore) GetTransmissions(_ context.Context, runID string) ([]model.InfectionRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, ok := s.transmissions[runID]
	if !ok {
		return nil, false, nil
	}
	return append([]model.InfectionRecord(nil), records...), true, nil
}

// sortRuns orders runs oldest first, breaking ties by id.
func sortRuns(runs []model.RunRecord) {
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].CreatedAtUTC != runs[j].CreatedAtUTC {
			return runs[i].CreatedAtUTC < runs[j].CreatedAtUTC
		}
		return runs[i].ID < runs[j].ID
	})
}
