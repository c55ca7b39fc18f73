package params

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParameters marks every configuration error reported by Validate.
var ErrInvalidParameters = errors.New("invalid simulation parameters")

const mixTolerance = 1e-6

// Validate checks the whole parameter set and reports every violation it
// finds, joined into one error.
func (p SimulationParameters) Validate() error {
	v := &validator{}

	if p.PopulationSize <= 0 {
		v.addf("population_size must be > 0, got %d", p.PopulationSize)
	}
	v.probability("starting_infection_rate", p.StartingInfectionRate)
	v.probability("starting_vaccination_rate", p.StartingVaccinationRate)
	v.probability("vaccination_rate", p.VaccinationRate)
	v.probability("external_interaction_rate", p.ExternalInteractionRate)
	v.probability("external_base_infected", p.ExternalBaseInfected)
	v.probability("masking_rate", p.MaskingRate)
	v.probability("testing_rate", p.TestingRate)
	v.probability("testing_rate_random", p.TestingRateRandom)
	v.probability("false_positive_rate", p.FalsePositiveRate)
	v.probability("false_negative_rate", p.FalseNegativeRate)
	v.probability("testing_rate_pcr", p.TestingRatePcr)
	v.probability("testing_rate_random_pcr", p.TestingRateRandomPcr)
	v.probability("false_positive_rate_pcr", p.FalsePositiveRatePcr)
	v.probability("false_negative_rate_pcr", p.FalseNegativeRatePcr)
	v.probability("positive_quarantine_rate", p.PositiveQuarantineRate)
	v.probability("non_compliant_rate", p.NonCompliantRate)

	v.nonNegative("interaction_duration", p.InteractionDuration)
	v.nonNegative("testing_interval", p.TestingInterval)
	v.nonNegative("testing_interval_pcr", p.TestingIntervalPcr)
	v.nonNegative("days_to_pcr_results", p.DaysToPcrResults)
	v.nonNegative("positive_test_isolation_interval", p.PositiveTestIsolationInterval)
	v.gaussian("num_interactions", p.NumInteractions)
	v.gaussian("vaccination_delay", p.VaccinationDelay)
	v.gaussian("starting_vaccination_days_ago", p.StartingVaccinationDaysAgo)

	if len(p.AgeBrackets) == 0 {
		v.addf("age_brackets must not be empty")
	}
	for i := 1; i < len(p.AgeBrackets); i++ {
		if p.AgeBrackets[i] <= p.AgeBrackets[i-1] {
			v.addf("age_brackets must be strictly increasing, got %v", p.AgeBrackets)
			break
		}
	}
	if len(p.PopulationByAge) != len(p.AgeBrackets) {
		v.addf("population_by_age has %d entries, want one per age bracket (%d)", len(p.PopulationByAge), len(p.AgeBrackets))
	}
	for i, share := range p.PopulationByAge {
		if share < 0 || math.IsNaN(share) {
			v.addf("population_by_age[%d] must be >= 0, got %v", i, share)
		}
	}

	if len(p.Variants) == 0 {
		v.addf("variant_parameters must define at least one variant")
	}
	names := p.VariantNames()
	for _, name := range names {
		p.validateVariant(v, name, names)
	}

	if len(p.StartingVariantMix) == 0 {
		v.addf("starting_variant_mix must not be empty")
	}
	mixTotal := 0.0
	for _, name := range sortedKeys(p.StartingVariantMix) {
		weight := p.StartingVariantMix[name]
		if _, ok := p.Variants[name]; !ok {
			v.addf("starting_variant_mix references unknown variant %q", name)
		}
		v.probability(fmt.Sprintf("starting_variant_mix[%s]", name), weight)
		mixTotal += weight
	}
	if len(p.StartingVariantMix) > 0 && math.Abs(mixTotal-1) > mixTolerance {
		v.addf("starting_variant_mix weights must sum to 1, got %v", mixTotal)
	}

	recoveredTotal := p.StartingInfectionRate
	for i, entry := range p.StartingRecovered {
		if _, ok := p.Variants[entry.Variant]; !ok {
			v.addf("starting_recovered[%d] references unknown variant %q", i, entry.Variant)
		}
		v.probability(fmt.Sprintf("starting_recovered[%d].rate", i), entry.Rate)
		v.gaussian(fmt.Sprintf("starting_recovered[%d].days_ago", i), entry.DaysAgo)
		recoveredTotal += entry.Rate
	}
	if recoveredTotal > 1+mixTolerance {
		v.addf("starting_infection_rate plus starting_recovered rates must not exceed 1, got %v", recoveredTotal)
	}

	return v.err()
}

func (p SimulationParameters) validateVariant(v *validator, key string, names []string) {
	variant := p.Variants[key]
	prefix := "variant_parameters[" + key + "]"
	if variant.Name != "" && variant.Name != key {
		v.addf("%s.name %q does not match its key", prefix, variant.Name)
	}
	if variant.TransmissionRate.Mean < 0 {
		v.addf("%s.transmission_rate.mean must be >= 0, got %v", prefix, variant.TransmissionRate.Mean)
	}
	v.probability(prefix+".asymptomatic_rate", variant.AsymptomaticRate)
	v.probability(prefix+".self_isolation_rate", variant.SelfIsolationRate)
	v.probability(prefix+".vaccination_efficacy", variant.VaccinationEfficacy)
	v.gaussian(prefix+".days_to_contagious", variant.DaysToContagious)
	v.gaussian(prefix+".days_to_recovery", variant.DaysToRecovery)
	v.gaussian(prefix+".days_to_symptoms", variant.DaysToSymptoms)
	v.gaussian(prefix+".days_to_pcr_detectable", variant.DaysToPcrDetectable)
	v.gaussian(prefix+".duration_days_of_pcr_detection", variant.DurationDaysOfPcrDetection)
	v.gaussian(prefix+".days_to_antigen_detectable", variant.DaysToAntigenDetectable)
	v.gaussian(prefix+".duration_days_of_antigen_detection", variant.DurationDaysOfAntigenDetection)

	if len(variant.FatalityRateByAge) != len(p.AgeBrackets) {
		v.addf("%s.fatality_rate_by_age has %d entries, want one per age bracket (%d)", prefix, len(variant.FatalityRateByAge), len(p.AgeBrackets))
	}
	for i, rate := range variant.FatalityRateByAge {
		v.probability(fmt.Sprintf("%s.fatality_rate_by_age[%d]", prefix, i), rate)
	}

	for _, other := range sortedKeys(variant.RecoveredResistance) {
		if _, ok := p.Variants[other]; !ok {
			v.addf("%s.recovered_resistance references unknown variant %q", prefix, other)
		}
		v.probability(fmt.Sprintf("%s.recovered_resistance[%s]", prefix, other), variant.RecoveredResistance[other])
	}
	for _, other := range names {
		if _, ok := variant.RecoveredResistance[other]; !ok {
			v.addf("%s.recovered_resistance is missing an entry for %q", prefix, other)
		}
	}
}

type validator struct {
	errs []error
}

func (v *validator) addf(format string, args ...any) {
	v.errs = append(v.errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidParameters}, args...)...))
}

func (v *validator) probability(name string, value float64) {
	if math.IsNaN(value) || value < 0 || value > 1 {
		v.addf("%s must be within [0,1], got %v", name, value)
	}
}

func (v *validator) nonNegative(name string, value float64) {
	if math.IsNaN(value) || value < 0 {
		v.addf("%s must be >= 0, got %v", name, value)
	}
}

func (v *validator) gaussian(name string, g Gaussian) {
	if math.IsNaN(g.Mean) || math.IsNaN(g.Std) || g.Std < 0 {
		v.addf("%s must have a finite mean and std >= 0, got mean=%v std=%v", name, g.Mean, g.Std)
	}
}

func (v *validator) err() error {
	return errors.Join(v.errs...)
}
