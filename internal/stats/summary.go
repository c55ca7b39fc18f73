package stats

import (
	"math"
	"sort"

	"github.com/daveselinger/covid-rapid-test-simulation2/internal/model"
)

// Summary condenses a run's series and infection records.
type Summary struct {
	RunID               string              `json:"run_id"`
	Seed                int64               `json:"seed"`
	PopulationSize      int                 `json:"population_size"`
	Ticks               int                 `json:"ticks"`
	PeakInfected        int                 `json:"peak_infected"`
	PeakDay             float64             `json:"peak_day"`
	Final               model.RunStatistics `json:"final"`
	TotalInfections     int                 `json:"total_infections"`
	ExternalInfections  int                 `json:"external_infections"`
	Reinfections        int                 `json:"reinfections"`
	InfectionsByVariant map[string]int      `json:"infections_by_variant"`
	AttackRate          float64             `json:"attack_rate"`
	CaseFatalityRate    float64             `json:"case_fatality_rate"`
}

// Peak returns the first tick with the highest infected count.
func Peak(series []model.RunStatistics) (infected int, day float64) {
	for i, s := range series {
		if i == 0 || s.Infected > infected {
			infected = s.Infected
			day = s.Day
		}
	}
	return infected, day
}

// Summarize builds a Summary. Records with a negative time are backdated
// starting immunity and are not counted as infections of the run.
func Summarize(runID string, seed int64, populationSize int, series []model.RunStatistics, records []model.InfectionRecord) Summary {
	summary := Summary{
		RunID:               runID,
		Seed:                seed,
		PopulationSize:      populationSize,
		Ticks:               len(series),
		InfectionsByVariant: map[string]int{},
	}
	summary.PeakInfected, summary.PeakDay = Peak(series)
	if len(series) > 0 {
		summary.Final = series[len(series)-1]
	}

	infectedActors := make(map[int]int)
	for _, r := range records {
		if r.Time < 0 {
			continue
		}
		summary.TotalInfections++
		summary.InfectionsByVariant[r.Variant]++
		if r.ExposerID == model.ExternalExposer {
			summary.ExternalInfections++
		}
		infectedActors[r.ExposedID]++
	}
	for _, count := range infectedActors {
		summary.Reinfections += count - 1
	}
	if populationSize > 0 {
		summary.AttackRate = float64(len(infectedActors)) / float64(populationSize)
	}
	if len(infectedActors) > 0 {
		summary.CaseFatalityRate = float64(summary.Final.Deceased) / float64(len(infectedActors))
	}
	return summary
}

// Distribution is the spread of one metric across replicate runs.
type Distribution struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

func Distribute(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(len(sorted))
	var sq float64
	for _, v := range sorted {
		sq += (v - mean) * (v - mean)
	}
	return Distribution{
		Mean: mean,
		Std:  math.Sqrt(sq / float64(len(sorted))),
		Min:  sorted[0],
		Max:  sorted[len(sorted)-1],
	}
}

// Aggregate summarizes replicate runs of one configuration.
type Aggregate struct {
	Runs           int          `json:"runs"`
	PeakInfected   Distribution `json:"peak_infected"`
	PeakDay        Distribution `json:"peak_day"`
	Deceased       Distribution `json:"deceased"`
	AttackRate     Distribution `json:"attack_rate"`
	TestsConducted Distribution `json:"tests_conducted"`
	DaysLost       Distribution `json:"days_lost"`
}

func AggregateSummaries(summaries []Summary) Aggregate {
	n := len(summaries)
	peak := make([]float64, n)
	peakDay := make([]float64, n)
	deceased := make([]float64, n)
	attack := make([]float64, n)
	tests := make([]float64, n)
	lost := make([]float64, n)
	for i, s := range summaries {
		peak[i] = float64(s.PeakInfected)
		peakDay[i] = s.PeakDay
		deceased[i] = float64(s.Final.Deceased)
		attack[i] = s.AttackRate
		tests[i] = float64(s.Final.TestsConducted + s.Final.TestsConductedPcr)
		lost[i] = s.Final.DaysLost
	}
	return Aggregate{
		Runs:           n,
		PeakInfected:   Distribute(peak),
		PeakDay:        Distribute(peakDay),
		Deceased:       Distribute(deceased),
		AttackRate:     Distribute(attack),
		TestsConducted: Distribute(tests),
		DaysLost:       Distribute(lost),
	}
}
