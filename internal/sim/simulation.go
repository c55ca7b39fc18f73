// Package sim runs the population-level epidemic model: it seeds the
// starting population, resolves exposures between actors, applies testing,
// isolation and vaccination policy, and advances every actor one tick at a
// time.
package sim

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/daveselinger/covid-rapid-test-simulation2/internal/actor"
	"github.com/daveselinger/covid-rapid-test-simulation2/internal/model"
	"github.com/daveselinger/covid-rapid-test-simulation2/internal/params"
	"github.com/daveselinger/covid-rapid-test-simulation2/internal/sampling"
)

// Activity is a risk modifier applied to an exposure. 1.0 is a normal
// activity, lower is safer, above 1.0 is riskier.
type Activity float64

const (
	ActivityNormal Activity = 1.0
	ActivitySafe   Activity = 0.1
)

func (a Activity) Multiplier() float64 { return float64(a) }

type Option func(*Simulation)

// WithWorkers ticks actors on up to n goroutines during disease progression.
func WithWorkers(n int) Option {
	return func(s *Simulation) {
		if n > 0 {
			s.workers = n
		}
	}
}

type Simulation struct {
	model   *params.Model
	rng     *rand.Rand
	env     *actor.Env
	actors  []*actor.Actor
	now     float64
	totals  model.RunStatistics
	workers int
}

// New builds and seeds the population. A nil rng is seeded from the model's
// seed.
func New(m *params.Model, rng *rand.Rand, opts ...Option) (*Simulation, error) {
	if m == nil {
		return nil, errors.New("model is required")
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(m.Params.Seed))
	}
	s := &Simulation{
		model:   m,
		rng:     rng,
		workers: 1,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.env = &actor.Env{Rng: rng, Clock: s, Model: m}

	p := m.Params
	s.actors = make([]*actor.Actor, p.PopulationSize)
	for i := range s.actors {
		traits := actor.Traits{
			AgeBracket:   sampling.WeightedIndex(rng, p.PopulationByAge),
			Testing:      sampling.Bernoulli(rng, p.TestingRate),
			TestingPcr:   sampling.Bernoulli(rng, p.TestingRatePcr),
			NonCompliant: sampling.Bernoulli(rng, p.NonCompliantRate),
			Protection:   actor.ProtectionNone,
		}
		if traits.AgeBracket < 0 {
			traits.AgeBracket = 0
		}
		if sampling.Bernoulli(rng, p.MaskingRate) {
			traits.Protection = actor.ProtectionMask
		}
		s.actors[i] = actor.New(i, s.env, traits)
	}

	if err := s.seed(); err != nil {
		return nil, err
	}
	s.totals = s.collect()
	return s, nil
}

func (s *Simulation) seed() error {
	p := s.model.Params
	n := len(s.actors)

	for _, idx := range sampling.WithoutReplacement(s.rng, n, seedCount(p.StartingInfectionRate, n)) {
		if err := s.actors[idx].Infect(s.randomVariant(), nil); err != nil {
			return fmt.Errorf("seed infection: %w", err)
		}
	}

	for _, entry := range s.model.StartingRecovered {
		candidates := s.filter(func(a *actor.Actor) bool { return a.Status() == model.Susceptible })
		for _, a := range sampling.Pick(s.rng, candidates, seedCount(entry.Rate, n)) {
			daysAgo := sampling.NonNegativeGaussian(s.rng, entry.DaysAgo.Mean, entry.DaysAgo.Std)
			if err := a.SeedRecovered(entry.Variant, daysAgo); err != nil {
				return fmt.Errorf("seed recovered %s: %w", entry.Variant.Name, err)
			}
		}
	}

	vaccinated := seedCount(p.StartingVaccinationRate, n)
	for _, idx := range sampling.WithoutReplacement(s.rng, n, vaccinated) {
		daysAgo := sampling.NonNegativeGaussian(s.rng, p.StartingVaccinationDaysAgo.Mean, p.StartingVaccinationDaysAgo.Std)
		s.actors[idx].Vaccinate(daysAgo)
	}
	return nil
}

func seedCount(rate float64, n int) int {
	count := int(math.Round(rate * float64(n)))
	if count > n {
		return n
	}
	if count < 0 {
		return 0
	}
	return count
}

// randomVariant draws a variant weighted by the starting mix.
func (s *Simulation) randomVariant() *params.Variant {
	idx := sampling.WeightedIndex(s.rng, s.model.Mix)
	if idx < 0 {
		idx = 0
	}
	return s.model.Variants[idx]
}

func (s *Simulation) filter(keep func(*actor.Actor) bool) []*actor.Actor {
	out := make([]*actor.Actor, 0, len(s.actors))
	for _, a := range s.actors {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}

// Now is the simulation clock in days.
func (s *Simulation) Now() float64 { return s.now }

func (s *Simulation) Model() *params.Model { return s.model }

// Totals is the statistics snapshot taken at the end of the last tick.
func (s *Simulation) Totals() model.RunStatistics { return s.totals }

// Actors returns the population in id order.
func (s *Simulation) Actors() []*actor.Actor {
	return append([]*actor.Actor(nil), s.actors...)
}

func (s *Simulation) Actor(id int) (*actor.Actor, bool) {
	if id < 0 || id >= len(s.actors) {
		return nil, false
	}
	return s.actors[id], true
}

// Tick runs one step of the daily schedule. The order is fixed:
// clock, interactions, rapid testing, PCR testing, self-isolation,
// vaccination, disease progression.
func (s *Simulation) Tick(days float64) error {
	if days <= 0 || math.IsNaN(days) || math.IsInf(days, 0) {
		return fmt.Errorf("tick length must be > 0, got %v", days)
	}
	s.now += days
	if err := s.TickInteractions(days); err != nil {
		return err
	}
	s.TickRapidTesting(days)
	s.TickPcrTesting(days)
	s.TickSelfIsolation()
	s.TickVaccination(days)
	return s.TickDisease(days)
}

// InfectionRecords returns every infection event of the run ordered by time,
// then exposer id.
func (s *Simulation) InfectionRecords() []model.InfectionRecord {
	var records []model.InfectionRecord
	for _, a := range s.actors {
		records = append(records, a.Infections()...)
	}
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Time != records[j].Time {
			return records[i].Time < records[j].Time
		}
		if records[i].ExposerID != records[j].ExposerID {
			return records[i].ExposerID < records[j].ExposerID
		}
		return records[i].ExposedID < records[j].ExposedID
	})
	return records
}
