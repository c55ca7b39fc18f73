package actor

import (
	"github.com/daveselinger/covid-rapid-test-simulation2/internal/params"
	"github.com/daveselinger/covid-rapid-test-simulation2/internal/sampling"
)

// RapidTest performs an antigen test and returns its result.
func (a *Actor) RapidTest() bool {
	a.testsConducted++
	a.testTime.Set(0)
	p := a.env.Model.Params
	return a.test(a.IsInfected() && a.infection.DetectRapidTest(), p.FalseNegativeRate, p.FalsePositiveRate)
}

// PcrTest performs a PCR test and returns its result.
func (a *Actor) PcrTest() bool {
	a.testsConductedPcr++
	a.testTimePcr.Set(0)
	p := a.env.Model.Params
	return a.test(a.IsInfected() && a.infection.DetectPcrTest(), p.FalseNegativeRatePcr, p.FalsePositiveRatePcr)
}

// test always consumes two draws: false negative, then false positive.
func (a *Actor) test(detectable bool, falseNegative, falsePositive float64) bool {
	truePositive := a.env.Rng.Float64() > falseNegative && detectable
	falsePositiveHit := sampling.Bernoulli(a.env.Rng, falsePositive)
	return truePositive || falsePositiveHit
}

// IsolateFor isolates the actor for days, starting after `after` days. A
// second call overwrites the remaining countdown.
func (a *Actor) IsolateFor(days, after float64) {
	if after <= 0 {
		a.isolated = true
	} else {
		a.isolateAfterRemain = after
	}
	a.isolatedRemain = days
}

func (a *Actor) Isolated() bool              { return a.isolated }
func (a *Actor) IsolatedRemain() float64     { return a.isolatedRemain }
func (a *Actor) IsolateAfterRemain() float64 { return a.isolateAfterRemain }
func (a *Actor) DaysIsolated() float64       { return a.daysIsolated }

// IsolationPending reports a scheduled isolation that has not started yet.
func (a *Actor) IsolationPending() bool { return a.isolateAfterRemain > 0 }

func (a *Actor) IsTesting() bool                    { return a.testing }
func (a *Actor) IsTestingPcr() bool                 { return a.testingPcr }
func (a *Actor) TestTime() (float64, bool)          { return a.testTime.Get() }
func (a *Actor) TestTimePcr() (float64, bool)       { return a.testTimePcr.Get() }
func (a *Actor) TestsConducted() int                { return a.testsConducted }
func (a *Actor) TestsConductedPcr() int             { return a.testsConductedPcr }
func (a *Actor) RapidTestDue(interval float64) bool { return a.testing && a.testTime.UnsetOrAtLeast(interval) }
func (a *Actor) PcrTestDue(interval float64) bool   { return a.testingPcr && a.testTimePcr.UnsetOrAtLeast(interval) }

// Vaccinate vaccinates the actor daysAgo days before the current clock.
func (a *Actor) Vaccinate(daysAgo float64) {
	a.vaccinated = true
	a.vaccinationClock = a.env.Clock.Now() - daysAgo
	delay := a.env.Model.Params.VaccinationDelay
	a.vaccinationDelay = sampling.NonNegativeGaussian(a.env.Rng, delay.Mean, delay.Std)
}

func (a *Actor) IsVaccinated() bool        { return a.vaccinated }
func (a *Actor) VaccinationClock() float64 { return a.vaccinationClock }
func (a *Actor) VaccinationDelay() float64 { return a.vaccinationDelay }

// VaccinationProtection is the risk multiplier from vaccination: 1.0 until
// the post-vaccination delay has elapsed, then 1 - efficacy.
func (a *Actor) VaccinationProtection(variant *params.Variant) float64 {
	if !a.vaccinated {
		return 1.0
	}
	if a.env.Clock.Now() < a.vaccinationClock+a.vaccinationDelay {
		return 1.0
	}
	return 1.0 - variant.VaccinationEfficacy
}

// ReinfectionProtection is the risk multiplier from past infections: one
// minus the strongest cross-immunity any past variant grants against
// variant.
func (a *Actor) ReinfectionProtection(variant *params.Variant) float64 {
	if len(a.pastVariants) == 0 {
		return 1.0
	}
	best := 0.0
	for _, past := range a.pastVariants {
		if r := past.ResistanceAgainst(variant); r > best {
			best = r
		}
	}
	return 1.0 - best
}
