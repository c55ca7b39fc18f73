// Package params defines the configuration of a simulation run: the global
// SimulationParameters and the per-variant VariantParameters. Parameters are
// loaded from YAML or JSON, validated as a whole and then resolved into a
// Model whose variants are addressed by dense integer ids.
package params

// ReferenceInteractionDuration is the duration, in days, that a variant's
// transmission rate is calibrated against (fifteen minutes).
const ReferenceInteractionDuration = 0.0104

// Gaussian is a mean/standard deviation pair sampled per actor or per
// infection.
type Gaussian struct {
	Mean float64 `yaml:"mean" json:"mean"`
	Std  float64 `yaml:"std" json:"std"`
}

// VariantParameters are the immutable epidemiological constants of a single
// variant.
type VariantParameters struct {
	Name string `yaml:"name,omitempty" json:"name,omitempty"`

	// Only the mean is used when computing exposure probability.
	TransmissionRate  Gaussian `yaml:"transmission_rate" json:"transmission_rate"`
	AsymptomaticRate  float64  `yaml:"asymptomatic_rate" json:"asymptomatic_rate"`
	SelfIsolationRate float64  `yaml:"self_isolation_rate" json:"self_isolation_rate"`

	DaysToContagious               Gaussian `yaml:"days_to_contagious" json:"days_to_contagious"`
	DaysToRecovery                 Gaussian `yaml:"days_to_recovery" json:"days_to_recovery"`
	DaysToSymptoms                 Gaussian `yaml:"days_to_symptoms" json:"days_to_symptoms"`
	DaysToPcrDetectable            Gaussian `yaml:"days_to_pcr_detectable" json:"days_to_pcr_detectable"`
	DurationDaysOfPcrDetection     Gaussian `yaml:"duration_days_of_pcr_detection" json:"duration_days_of_pcr_detection"`
	DaysToAntigenDetectable        Gaussian `yaml:"days_to_antigen_detectable" json:"days_to_antigen_detectable"`
	DurationDaysOfAntigenDetection Gaussian `yaml:"duration_days_of_antigen_detection" json:"duration_days_of_antigen_detection"`

	// FatalityRateByAge holds one rate per age bracket.
	FatalityRateByAge []float64 `yaml:"fatality_rate_by_age" json:"fatality_rate_by_age"`

	// RecoveredResistance maps the name of a later variant to the fraction
	// of risk removed by a past infection with this one. Every variant,
	// including this one, needs an entry.
	RecoveredResistance map[string]float64 `yaml:"recovered_resistance" json:"recovered_resistance"`

	VaccinationEfficacy float64 `yaml:"vaccination_efficacy" json:"vaccination_efficacy"`
}

// StartingRecovered seeds a share of the population as recovered from a
// variant some days before the run starts.
type StartingRecovered struct {
	Variant string   `yaml:"variant" json:"variant"`
	Rate    float64  `yaml:"rate" json:"rate"`
	DaysAgo Gaussian `yaml:"days_ago" json:"days_ago"`
}

// SimulationParameters is the global configuration of a run.
type SimulationParameters struct {
	Seed           int64 `yaml:"seed" json:"seed"`
	PopulationSize int   `yaml:"population_size" json:"population_size"`

	StartingInfectionRate      float64             `yaml:"starting_infection_rate" json:"starting_infection_rate"`
	StartingRecovered          []StartingRecovered `yaml:"starting_recovered,omitempty" json:"starting_recovered,omitempty"`
	StartingVaccinationRate    float64             `yaml:"starting_vaccination_rate" json:"starting_vaccination_rate"`
	StartingVaccinationDaysAgo Gaussian            `yaml:"starting_vaccination_days_ago" json:"starting_vaccination_days_ago"`
	StartingVariantMix         map[string]float64  `yaml:"starting_variant_mix" json:"starting_variant_mix"`

	VaccinationRate  float64  `yaml:"vaccination_rate" json:"vaccination_rate"`
	VaccinationDelay Gaussian `yaml:"vaccination_delay" json:"vaccination_delay"`

	NumInteractions         Gaussian `yaml:"num_interactions" json:"num_interactions"`
	InteractionDuration     float64  `yaml:"interaction_duration" json:"interaction_duration"`
	ExternalInteractionRate float64  `yaml:"external_interaction_rate" json:"external_interaction_rate"`
	ExternalBaseInfected    float64  `yaml:"external_base_infected" json:"external_base_infected"`
	MaskingRate             float64  `yaml:"masking_rate" json:"masking_rate"`

	// AgeBrackets are inclusive upper bounds in years; PopulationByAge holds
	// the population share of each bracket.
	AgeBrackets     []int     `yaml:"age_brackets" json:"age_brackets"`
	PopulationByAge []float64 `yaml:"population_by_age" json:"population_by_age"`

	Variants map[string]VariantParameters `yaml:"variant_parameters" json:"variant_parameters"`

	TestingInterval   float64 `yaml:"testing_interval" json:"testing_interval"`
	TestingRate       float64 `yaml:"testing_rate" json:"testing_rate"`
	TestingRateRandom float64 `yaml:"testing_rate_random" json:"testing_rate_random"`
	FalsePositiveRate float64 `yaml:"false_positive_rate" json:"false_positive_rate"`
	FalseNegativeRate float64 `yaml:"false_negative_rate" json:"false_negative_rate"`

	TestingIntervalPcr   float64 `yaml:"testing_interval_pcr" json:"testing_interval_pcr"`
	TestingRatePcr       float64 `yaml:"testing_rate_pcr" json:"testing_rate_pcr"`
	TestingRateRandomPcr float64 `yaml:"testing_rate_random_pcr" json:"testing_rate_random_pcr"`
	FalsePositiveRatePcr float64 `yaml:"false_positive_rate_pcr" json:"false_positive_rate_pcr"`
	FalseNegativeRatePcr float64 `yaml:"false_negative_rate_pcr" json:"false_negative_rate_pcr"`
	DaysToPcrResults     float64 `yaml:"days_to_pcr_results" json:"days_to_pcr_results"`

	PositiveQuarantineRate        float64 `yaml:"positive_quarantine_rate" json:"positive_quarantine_rate"`
	PositiveTestIsolationInterval float64 `yaml:"positive_test_isolation_interval" json:"positive_test_isolation_interval"`
	NonCompliantRate              float64 `yaml:"non_compliant_rate" json:"non_compliant_rate"`
}

// VariantNames returns the configured variant names in sorted order.
func (p SimulationParameters) VariantNames() []string {
	return sortedKeys(p.Variants)
}
