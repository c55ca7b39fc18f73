package params

// Default returns a two-variant parameter set calibrated on the reference
// rapid-testing scenario.
func Default() SimulationParameters {
	return SimulationParameters{
		Seed:                       1,
		PopulationSize:             10000,
		StartingInfectionRate:      0.004,
		StartingVaccinationRate:    0,
		StartingVaccinationDaysAgo: Gaussian{Mean: 60, Std: 30},
		StartingVariantMix: map[string]float64{
			"delta":   0.3,
			"omicron": 0.7,
		},
		VaccinationRate:         0.0035,
		VaccinationDelay:        Gaussian{Mean: 28, Std: 3},
		NumInteractions:         Gaussian{Mean: 2.5, Std: 1.0},
		InteractionDuration:     ReferenceInteractionDuration,
		ExternalInteractionRate: 0,
		ExternalBaseInfected:    0,
		MaskingRate:             0,
		AgeBrackets:             []int{17, 44, 64, 79, 120},
		PopulationByAge:         []float64{0.22, 0.36, 0.25, 0.12, 0.05},
		Variants: map[string]VariantParameters{
			"delta":   defaultDelta(),
			"omicron": defaultOmicron(),
		},

		TestingInterval:   3.0,
		TestingRate:       0.6,
		TestingRateRandom: 0,
		FalsePositiveRate: 0.01,
		FalseNegativeRate: 0.02,

		TestingIntervalPcr:   3.0,
		TestingRatePcr:       0,
		TestingRateRandomPcr: 0.003,
		FalsePositiveRatePcr: 0.01,
		FalseNegativeRatePcr: 0.02,
		DaysToPcrResults:     1.5,

		PositiveQuarantineRate:        0.9,
		PositiveTestIsolationInterval: 21,
		NonCompliantRate:              0,
	}
}

func defaultDelta() VariantParameters {
	return VariantParameters{
		Name:                           "delta",
		TransmissionRate:               Gaussian{Mean: 0.05, Std: 0.1},
		AsymptomaticRate:               0.2,
		SelfIsolationRate:              0.5,
		DaysToContagious:               Gaussian{Mean: 2.5, Std: 0.5},
		DaysToRecovery:                 Gaussian{Mean: 10, Std: 4},
		DaysToSymptoms:                 Gaussian{Mean: 5.5, Std: 2},
		DaysToPcrDetectable:            Gaussian{Mean: 2, Std: 0.5},
		DurationDaysOfPcrDetection:     Gaussian{Mean: 24, Std: 7},
		DaysToAntigenDetectable:        Gaussian{Mean: 3, Std: 1},
		DurationDaysOfAntigenDetection: Gaussian{Mean: 10, Std: 3},
		FatalityRateByAge:              []float64{0.0001, 0.001, 0.008, 0.04, 0.1},
		RecoveredResistance: map[string]float64{
			"delta":   0.98,
			"omicron": 0.6,
		},
		VaccinationEfficacy: 0.9,
	}
}

func defaultOmicron() VariantParameters {
	return VariantParameters{
		Name:                           "omicron",
		TransmissionRate:               Gaussian{Mean: 0.12, Std: 0.1},
		AsymptomaticRate:               0.3,
		SelfIsolationRate:              0.5,
		DaysToContagious:               Gaussian{Mean: 2, Std: 0.5},
		DaysToRecovery:                 Gaussian{Mean: 8, Std: 3},
		DaysToSymptoms:                 Gaussian{Mean: 3.5, Std: 1.5},
		DaysToPcrDetectable:            Gaussian{Mean: 1.5, Std: 0.5},
		DurationDaysOfPcrDetection:     Gaussian{Mean: 20, Std: 6},
		DaysToAntigenDetectable:        Gaussian{Mean: 2.5, Std: 1},
		DurationDaysOfAntigenDetection: Gaussian{Mean: 8, Std: 2.5},
		FatalityRateByAge:              []float64{0.00005, 0.0005, 0.003, 0.015, 0.05},
		RecoveredResistance: map[string]float64{
			"delta":   0.8,
			"omicron": 0.95,
		},
		VaccinationEfficacy: 0.7,
	}
}
