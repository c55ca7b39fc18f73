// Package actor implements the per-individual state machine: health status,
// isolation, testing, vaccination and the append-only infection history.
package actor

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/daveselinger/covid-rapid-test-simulation2/internal/disease"
	"github.com/daveselinger/covid-rapid-test-simulation2/internal/model"
	"github.com/daveselinger/covid-rapid-test-simulation2/internal/params"
	"github.com/daveselinger/covid-rapid-test-simulation2/internal/sampling"
)

// ErrNotInfectable is returned by Infect for actors that are already
// diseased or deceased.
var ErrNotInfectable = errors.New("actor is not infectable")

// Clock reports the simulation time in days.
type Clock interface {
	Now() float64
}

// Protection is the exposure-risk multiplier an infected actor applies to
// the people it meets. 1.0 is no protection.
type Protection float64

const (
	ProtectionNone Protection = 1.0
	ProtectionMask Protection = 0.1
)

func (p Protection) Multiplier() float64 { return float64(p) }

func (p Protection) String() string {
	switch p {
	case ProtectionNone:
		return "none"
	case ProtectionMask:
		return "mask"
	default:
		return fmt.Sprintf("protection(%g)", float64(p))
	}
}

// Env is shared by every actor of a simulation.
type Env struct {
	Rng   *rand.Rand
	Clock Clock
	Model *params.Model
}

// Traits are sampled once at population initialization.
type Traits struct {
	AgeBracket   int
	Testing      bool
	TestingPcr   bool
	NonCompliant bool
	Protection   Protection
}

type Actor struct {
	id         int
	ageBracket int
	env        *Env

	status          model.HealthStatus
	symptomatic     bool
	asymptomatic    bool
	willSelfIsolate bool
	nonCompliant    bool
	protection      Protection
	infection       *disease.Infection
	infectedTime    OptionalDays

	isolated           bool
	isolatedRemain     float64
	isolateAfterRemain float64
	daysIsolated       float64

	testing           bool
	testingPcr        bool
	testTime          OptionalDays
	testTimePcr       OptionalDays
	testsConducted    int
	testsConductedPcr int

	vaccinated       bool
	vaccinationClock float64
	vaccinationDelay float64

	infections    []model.InfectionRecord
	pastVariants  []*params.Variant
	transmissions []model.InfectionRecord
}

func New(id int, env *Env, traits Traits) *Actor {
	protection := traits.Protection
	if protection == 0 {
		protection = ProtectionNone
	}
	return &Actor{
		id:               id,
		ageBracket:       traits.AgeBracket,
		env:              env,
		status:           model.Susceptible,
		willSelfIsolate:  true,
		nonCompliant:     traits.NonCompliant,
		protection:       protection,
		testing:          traits.Testing,
		testingPcr:       traits.TestingPcr,
		vaccinationClock: math.Inf(-1),
	}
}

// Infect starts a new episode of variant. exposer is nil for exposures from
// outside the population. Only susceptible and recovered actors can be
// infected.
func (a *Actor) Infect(variant *params.Variant, exposer *Actor) error {
	if a.status != model.Susceptible && a.status != model.Recovered {
		return fmt.Errorf("%w: actor %d is %s", ErrNotInfectable, a.id, a.status)
	}
	record := a.startInfection(variant, exposer, a.env.Clock.Now())
	a.status = model.Exposed
	if exposer != nil {
		exposer.transmissions = append(exposer.transmissions, record)
	}
	return nil
}

// SeedRecovered backdates a completed episode of variant daysAgo days before
// the current clock. Used when building the starting population.
func (a *Actor) SeedRecovered(variant *params.Variant, daysAgo float64) error {
	if a.status != model.Susceptible {
		return fmt.Errorf("%w: actor %d is %s", ErrNotInfectable, a.id, a.status)
	}
	if daysAgo < 0 {
		daysAgo = 0
	}
	a.startInfection(variant, nil, a.env.Clock.Now()-daysAgo)
	a.infection.Advance(daysAgo)
	a.infectedTime.Add(daysAgo)
	a.symptomatic = a.infection.IsSymptomatic()
	a.status = model.Recovered
	return nil
}

func (a *Actor) startInfection(variant *params.Variant, exposer *Actor, at float64) model.InfectionRecord {
	a.infection = disease.New(a.env.Rng, variant, a.ageBracket)
	a.infectedTime.Set(0)
	a.asymptomatic = a.infection.IsAsymptomatic()
	a.willSelfIsolate = sampling.Bernoulli(a.env.Rng, variant.SelfIsolationRate)

	exposerID := model.ExternalExposer
	if exposer != nil {
		exposerID = exposer.id
	}
	record := model.InfectionRecord{
		ExposerID: exposerID,
		ExposedID: a.id,
		Variant:   variant.Name,
		Time:      at,
	}
	a.infections = append(a.infections, record)
	a.pastVariants = append(a.pastVariants, variant)
	return record
}

// Tick advances the actor by days. It draws no randomness, so actors can be
// ticked concurrently.
func (a *Actor) Tick(days float64) {
	if a.infection != nil {
		switch a.status {
		case model.Exposed:
			if a.infection.IsContagious() {
				a.status = model.Infectious
			} else if a.infection.ContagiousPassed() {
				a.resolve()
			}
		case model.Infectious:
			if !a.infection.IsContagious() {
				a.resolve()
			}
		}
		a.symptomatic = a.status != model.Deceased && a.infection.IsSymptomatic()
	}

	if a.isolateAfterRemain > 0 {
		a.isolateAfterRemain -= days
		if a.isolateAfterRemain <= 0 {
			a.isolateAfterRemain = 0
			a.isolated = true
		}
	}

	a.infectedTime.Add(days)
	if a.infection != nil {
		a.infection.Tick(days)
	}

	if a.isolated {
		a.daysIsolated += days
		a.isolatedRemain -= days
		if a.isolatedRemain <= 0 {
			a.isolatedRemain = 0
			a.isolated = false
		}
	}

	a.testTime.Add(days)
	a.testTimePcr.Add(days)
}

func (a *Actor) resolve() {
	if a.infection.IsFatal() {
		a.status = model.Deceased
		return
	}
	a.status = model.Recovered
}

func (a *Actor) ID() int                       { return a.id }
func (a *Actor) AgeBracket() int               { return a.ageBracket }
func (a *Actor) Status() model.HealthStatus    { return a.status }
func (a *Actor) IsSymptomatic() bool           { return a.symptomatic }
func (a *Actor) IsAsymptomatic() bool          { return a.asymptomatic }
func (a *Actor) WillSelfIsolate() bool         { return a.willSelfIsolate }
func (a *Actor) IsNonCompliant() bool          { return a.nonCompliant }
func (a *Actor) Protection() Protection        { return a.protection }
func (a *Actor) Infection() *disease.Infection { return a.infection }

// InfectedTime is the number of days since the current episode started.
func (a *Actor) InfectedTime() (float64, bool) { return a.infectedTime.Get() }

// IsInfected reports an active episode (exposed or infectious).
func (a *Actor) IsInfected() bool {
	return a.status == model.Exposed || a.status == model.Infectious
}

// CanBeExposed reports whether the actor is a valid exposure target.
func (a *Actor) CanBeExposed() bool {
	return a.status == model.Susceptible || a.status == model.Recovered
}

// Infections returns the actor's infection history, oldest first.
func (a *Actor) Infections() []model.InfectionRecord {
	return append([]model.InfectionRecord(nil), a.infections...)
}

// Transmissions returns the infections this actor caused.
func (a *Actor) Transmissions() []model.InfectionRecord {
	return append([]model.InfectionRecord(nil), a.transmissions...)
}
