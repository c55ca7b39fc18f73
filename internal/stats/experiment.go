package stats

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

const experimentsDir = "experiments"

// Experiment groups replicate runs of one configuration that differ only in
// seed.
type Experiment struct {
	ID             string    `json:"id"`
	Notes          string    `json:"notes,omitempty"`
	BaseSeed       int64     `json:"base_seed"`
	Replicates     int       `json:"replicates"`
	StartedAtUTC   string    `json:"started_at_utc,omitempty"`
	CompletedAtUTC string    `json:"completed_at_utc,omitempty"`
	RunIDs         []string  `json:"run_ids,omitempty"`
	Summaries      []Summary `json:"summaries,omitempty"`
	Aggregate      Aggregate `json:"aggregate"`
}

func WriteExperiment(baseDir string, exp Experiment) error {
	if exp.ID == "" {
		return fmt.Errorf("experiment id is required")
	}
	path := experimentPath(baseDir, exp.ID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return writeJSON(path, exp)
}

func ReadExperiment(baseDir, id string) (Experiment, bool, error) {
	if id == "" {
		return Experiment{}, false, fmt.Errorf("experiment id is required")
	}
	var exp Experiment
	ok, err := readJSON(experimentPath(baseDir, id), &exp)
	return exp, ok, err
}

// ListExperiments returns experiments newest first; experiments that never
// started sort last.
func ListExperiments(baseDir string) ([]Experiment, error) {
	root := filepath.Join(baseDir, experimentsDir)
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return []Experiment{}, nil
		}
		return nil, err
	}

	exps := make([]Experiment, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		exp, ok, err := ReadExperiment(baseDir, entry.Name())
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		exps = append(exps, exp)
	}
	sort.Slice(exps, func(i, j int) bool {
		switch {
		case exps[i].StartedAtUTC == exps[j].StartedAtUTC:
			return exps[i].ID < exps[j].ID
		case exps[i].StartedAtUTC == "":
			return false
		case exps[j].StartedAtUTC == "":
			return true
		default:
			return exps[i].StartedAtUTC > exps[j].StartedAtUTC
		}
	})
	return exps, nil
}

func experimentPath(baseDir, id string) string {
	return filepath.Join(baseDir, experimentsDir, id, "experiment.json")
}
