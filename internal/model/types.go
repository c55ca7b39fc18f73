package model

import (
	"fmt"
	"strings"
)

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// HealthStatus is the disease state of a single actor.
type HealthStatus int

const (
	Susceptible HealthStatus = iota
	Exposed
	Infectious
	Recovered
	Deceased
)

var healthStatusNames = [...]string{
	Susceptible: "susceptible",
	Exposed:     "exposed",
	Infectious:  "infectious",
	Recovered:   "recovered",
	Deceased:    "deceased",
}

func (s HealthStatus) String() string {
	if s < Susceptible || s > Deceased {
		return fmt.Sprintf("health_status(%d)", int(s))
	}
	return healthStatusNames[s]
}

// Valid reports whether s is one of the five defined statuses.
func (s HealthStatus) Valid() bool {
	return s >= Susceptible && s <= Deceased
}

func (s HealthStatus) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid health status: %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *HealthStatus) UnmarshalText(text []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(text)))
	for i, candidate := range healthStatusNames {
		if candidate == name {
			*s = HealthStatus(i)
			return nil
		}
	}
	return fmt.Errorf("unknown health status: %q", string(text))
}

// ExternalExposer is the exposer id recorded for infections that come from
// outside the simulated population.
const ExternalExposer = -1

// InfectionRecord is one infection event. Time is the simulation clock in
// days at the moment of exposure.
type InfectionRecord struct {
	ExposerID int     `json:"exposer_id"`
	ExposedID int     `json:"exposed_id"`
	Variant   string  `json:"variant"`
	Time      float64 `json:"time"`
}

// RunStatistics is a per-tick snapshot recomputed from every actor.
type RunStatistics struct {
	Day               float64 `json:"day"`
	Susceptible       int     `json:"susceptible"`
	Infected          int     `json:"infected"`
	Exposed           int     `json:"exposed"`
	Infectious        int     `json:"infectious"`
	Recovered         int     `json:"recovered"`
	Deceased          int     `json:"deceased"`
	Isolated          int     `json:"isolated"`
	Vaccinated        int     `json:"vaccinated"`
	TestsConducted    int     `json:"tests_conducted"`
	TestsConductedPcr int     `json:"tests_conducted_pcr"`
	DaysLost          float64 `json:"days_lost"`
}

// Total is the number of actors covered by the four health buckets.
func (s RunStatistics) Total() int {
	return s.Susceptible + s.Infected + s.Recovered + s.Deceased
}

// RunRecord is the persisted header of a completed simulation run.
type RunRecord struct {
	VersionedRecord
	ID             string        `json:"id"`
	CreatedAtUTC   string        `json:"created_at_utc"`
	Seed           int64         `json:"seed"`
	PopulationSize int           `json:"population_size"`
	Ticks          int           `json:"ticks"`
	TickDays       float64       `json:"tick_days"`
	Variants       []string      `json:"variants"`
	PeakInfected   int           `json:"peak_infected"`
	PeakDay        float64       `json:"peak_day"`
	FinalStats     RunStatistics `json:"final_stats"`
}
