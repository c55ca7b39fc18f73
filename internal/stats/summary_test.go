package stats

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/daveselinger/covid-rapid-test-simulation2/internal/model"
)

func TestPeakPrefersFirstMaximum(t *testing.T) {
	series := []model.RunStatistics{
		{Day: 1, Infected: 3},
		{Day: 2, Infected: 9},
		{Day: 3, Infected: 9},
		{Day: 4, Infected: 2},
	}
	infected, day := Peak(series)
	if infected != 9 || day != 2 {
		t.Fatalf("expected peak 9 on day 2, got %d on day %f", infected, day)
	}
	if infected, day := Peak(nil); infected != 0 || day != 0 {
		t.Fatalf("expected zero peak for empty series, got %d on %f", infected, day)
	}
}

func TestSummarize(t *testing.T) {
	series := []model.RunStatistics{
		{Day: 1, Infected: 2},
		{Day: 2, Infected: 4},
		{Day: 3, Infected: 1, Recovered: 3, Deceased: 1},
	}
	records := []model.InfectionRecord{
		{ExposerID: model.ExternalExposer, ExposedID: 7, Variant: "delta", Time: -40},
		{ExposerID: model.ExternalExposer, ExposedID: 1, Variant: "delta", Time: 0},
		{ExposerID: 1, ExposedID: 2, Variant: "delta", Time: 1},
		{ExposerID: 1, ExposedID: 3, Variant: "omicron", Time: 1.5},
		{ExposerID: 3, ExposedID: 2, Variant: "omicron", Time: 2.5},
	}

	got := Summarize("run-1", 5, 10, series, records)
	want := Summary{
		RunID:               "run-1",
		Seed:                5,
		PopulationSize:      10,
		Ticks:               3,
		PeakInfected:        4,
		PeakDay:             2,
		Final:               series[2],
		TotalInfections:     4,
		ExternalInfections:  1,
		Reinfections:        1,
		InfectionsByVariant: map[string]int{"delta": 2, "omicron": 2},
		AttackRate:          0.3,
		CaseFatalityRate:    1.0 / 3.0,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestDistribute(t *testing.T) {
	got := Distribute([]float64{4, 2, 6})
	if got.Mean != 4 || got.Min != 2 || got.Max != 6 {
		t.Fatalf("unexpected distribution: %+v", got)
	}
	if math.Abs(got.Std-math.Sqrt(8.0/3.0)) > 1e-12 {
		t.Fatalf("unexpected std: %f", got.Std)
	}
	if (Distribute(nil) != Distribution{}) {
		t.Fatal("expected zero distribution for no values")
	}
}

func TestAggregateSummaries(t *testing.T) {
	summaries := []Summary{
		{PeakInfected: 10, PeakDay: 5, AttackRate: 0.2, Final: model.RunStatistics{Deceased: 1, TestsConducted: 10, DaysLost: 3}},
		{PeakInfected: 20, PeakDay: 7, AttackRate: 0.4, Final: model.RunStatistics{Deceased: 3, TestsConductedPcr: 6, DaysLost: 5}},
	}
	got := AggregateSummaries(summaries)
	if got.Runs != 2 || got.PeakInfected.Mean != 15 || got.PeakDay.Max != 7 {
		t.Fatalf("unexpected aggregate: %+v", got)
	}
	if got.Deceased.Mean != 2 || got.TestsConducted.Min != 6 || got.DaysLost.Mean != 4 {
		t.Fatalf("unexpected aggregate: %+v", got)
	}
}
