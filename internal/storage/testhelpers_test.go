package storage

import "github.com/daveselinger/covid-rapid-test-simulation2/internal/model"

func sampleRun(id, createdAt string) model.RunRecord {
	run := model.RunRecord{
		ID:             id,
		CreatedAtUTC:   createdAt,
		Seed:           7,
		PopulationSize: 1000,
		Ticks:          30,
		TickDays:       1,
		Variants:       []string{"delta", "omicron"},
		PeakInfected:   42,
		PeakDay:        12,
		FinalStats: model.RunStatistics{
			Day:         30,
			Susceptible: 900,
			Recovered:   95,
			Deceased:    5,
		},
	}
	Stamp(&run)
	return run
}

func sampleSeries() []model.RunStatistics {
	return []model.RunStatistics{
		{Day: 1, Susceptible: 990, Infected: 10, Exposed: 10},
		{Day: 2, Susceptible: 985, Infected: 15, Exposed: 12, Infectious: 3, TestsConducted: 40},
	}
}

func sampleTransmissions() []model.InfectionRecord {
	return []model.InfectionRecord{
		{ExposerID: model.ExternalExposer, ExposedID: 3, Variant: "delta", Time: 0},
		{ExposerID: 3, ExposedID: 17, Variant: "delta", Time: 4},
	}
}
