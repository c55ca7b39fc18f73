// Package disease models a single disease episode: the windows, in elapsed
// days since exposure, during which an infected actor is contagious,
// symptomatic and detectable by each test modality.
package disease

import (
	"math/rand"

	"github.com/daveselinger/covid-rapid-test-simulation2/internal/params"
	"github.com/daveselinger/covid-rapid-test-simulation2/internal/sampling"
)

// Window is an open interval of elapsed infection days.
type Window struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Contains reports whether Start < t < End. An inverted window contains
// nothing.
func (w Window) Contains(t float64) bool {
	return t > w.Start && t < w.End
}

// Infection is one disease episode sampled for one actor against one
// variant. It is owned by its actor and replaced on reinfection.
type Infection struct {
	variant      *params.Variant
	infectedTime float64

	contagious Window
	symptoms   Window
	pcr        Window
	antigen    Window

	asymptomatic bool
	fatal        bool
}

// New samples an infection. Draw order is fixed: contagious window,
// symptomatic window, PCR window, antigen window, asymptomatic, fatal.
func New(rng *rand.Rand, variant *params.Variant, ageBracket int) *Infection {
	inf := &Infection{variant: variant}

	inf.contagious.Start = sampling.Gaussian(rng, variant.DaysToContagious.Mean, variant.DaysToContagious.Std)
	inf.contagious.End = inf.contagious.Start + sampling.Gaussian(rng,
		variant.DaysToRecovery.Mean-variant.DaysToContagious.Mean, variant.DaysToRecovery.Std)

	inf.symptoms.Start = sampling.Gaussian(rng, variant.DaysToSymptoms.Mean, variant.DaysToSymptoms.Std)
	inf.symptoms.End = inf.symptoms.Start + sampling.Gaussian(rng, variant.DaysToRecovery.Mean, variant.DaysToRecovery.Std)

	inf.pcr.Start = sampling.Gaussian(rng, variant.DaysToPcrDetectable.Mean, variant.DaysToPcrDetectable.Std)
	inf.pcr.End = inf.pcr.Start + sampling.Gaussian(rng,
		variant.DurationDaysOfPcrDetection.Mean, variant.DurationDaysOfPcrDetection.Std)

	// Antigen detectability is sampled relative to the PCR onset so it
	// follows PCR detectability in distribution.
	inf.antigen.Start = inf.pcr.Start + sampling.Gaussian(rng,
		variant.DaysToAntigenDetectable.Mean-variant.DaysToPcrDetectable.Mean, variant.DaysToAntigenDetectable.Std)
	inf.antigen.End = inf.antigen.Start + sampling.Gaussian(rng,
		variant.DurationDaysOfAntigenDetection.Mean, variant.DurationDaysOfAntigenDetection.Std)

	inf.asymptomatic = sampling.Bernoulli(rng, variant.AsymptomaticRate)
	inf.fatal = sampling.Bernoulli(rng, variant.FatalityRate(ageBracket))
	return inf
}

func (i *Infection) Variant() *params.Variant { return i.variant }

// InfectedTime is the number of days elapsed since exposure.
func (i *Infection) InfectedTime() float64 { return i.infectedTime }

func (i *Infection) Tick(days float64) {
	i.infectedTime += days
}

// Advance moves the clock without a tick; used to backdate seeded episodes.
func (i *Infection) Advance(days float64) {
	if days > 0 {
		i.infectedTime += days
	}
}

func (i *Infection) IsContagious() bool {
	return i.contagious.Contains(i.infectedTime)
}

// ContagiousPassed reports whether the contagious window has closed (or was
// empty to begin with).
func (i *Infection) ContagiousPassed() bool {
	return i.infectedTime >= i.contagious.End
}

func (i *Infection) IsSymptomatic() bool {
	if i.asymptomatic {
		return false
	}
	return i.symptoms.Contains(i.infectedTime)
}

func (i *Infection) DetectPcrTest() bool {
	return i.pcr.Contains(i.infectedTime)
}

func (i *Infection) DetectRapidTest() bool {
	return i.antigen.Contains(i.infectedTime)
}

func (i *Infection) IsAsymptomatic() bool { return i.asymptomatic }

// IsFatal is the outcome fixed at onset.
func (i *Infection) IsFatal() bool { return i.fatal }

// Timeline exposes the sampled windows.
type Timeline struct {
	Contagious Window `json:"contagious"`
	Symptoms   Window `json:"symptoms"`
	Pcr        Window `json:"pcr"`
	Antigen    Window `json:"antigen"`
}

func (i *Infection) Timeline() Timeline {
	return Timeline{Contagious: i.contagious, Symptoms: i.symptoms, Pcr: i.pcr, Antigen: i.antigen}
}
