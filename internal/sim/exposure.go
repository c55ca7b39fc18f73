package sim

import (
	"fmt"

	"github.com/daveselinger/covid-rapid-test-simulation2/internal/actor"
	"github.com/daveselinger/covid-rapid-test-simulation2/internal/model"
	"github.com/daveselinger/covid-rapid-test-simulation2/internal/params"
	"github.com/daveselinger/covid-rapid-test-simulation2/internal/sampling"
)

// ExposureProbability is the transmission probability of one exposure of
// susceptible to infected (nil for an ambient exposure to variant). The
// product is not clamped: values above 1 always transmit. ok is false when
// the pair is not eligible: the infected side must be infectious and not
// isolated, the susceptible side susceptible or recovered and not isolated.
func (s *Simulation) ExposureProbability(susceptible, infected *actor.Actor, variant *params.Variant, duration float64, activity Activity) (probability float64, ok bool) {
	protection := 1.0
	if infected != nil {
		if infected.Status() != model.Infectious || infected.Isolated() {
			return 0, false
		}
		if variant == nil {
			variant = infected.Infection().Variant()
		}
		protection = infected.Protection().Multiplier()
	}
	if variant == nil || !susceptible.CanBeExposed() || susceptible.Isolated() {
		return 0, false
	}

	probability = variant.TransmissionRate.Mean *
		protection *
		susceptible.VaccinationProtection(variant) *
		susceptible.ReinfectionProtection(variant) *
		activity.Multiplier() *
		(duration / params.ReferenceInteractionDuration)
	return probability, true
}

// HasBeenExposed runs one Bernoulli trial for an exposure. Ineligible pairs
// return false without consuming a draw.
func (s *Simulation) HasBeenExposed(susceptible, infected *actor.Actor, variant *params.Variant, duration float64, activity Activity) bool {
	probability, ok := s.ExposureProbability(susceptible, infected, variant, duration, activity)
	if !ok {
		return false
	}
	return s.rng.Float64() < probability
}

// CheckExposure decides exposure in both directions, b by a and then a by
// b, and infects whichever side was exposed. It returns the number of new
// infections.
func (s *Simulation) CheckExposure(a, b *actor.Actor) (int, error) {
	duration := s.model.Params.InteractionDuration
	bExposed := s.HasBeenExposed(b, a, nil, duration, ActivityNormal)
	aExposed := s.HasBeenExposed(a, b, nil, duration, ActivityNormal)

	infected := 0
	if bExposed {
		if err := b.Infect(a.Infection().Variant(), a); err != nil {
			return infected, fmt.Errorf("exposure of %d by %d: %w", b.ID(), a.ID(), err)
		}
		infected++
	}
	if aExposed {
		if err := a.Infect(b.Infection().Variant(), b); err != nil {
			return infected, fmt.Errorf("exposure of %d by %d: %w", a.ID(), b.ID(), err)
		}
		infected++
	}
	return infected, nil
}

// TickInteractions generates the day's contacts. Each infectious,
// non-isolated actor meets, with probability days, a Gaussian number of
// distinct random actors; isolated contacts are met but cannot be exposed.
// Each susceptible or recovered, non-isolated actor may also be exposed to
// the outside world.
func (s *Simulation) TickInteractions(days float64) error {
	p := s.model.Params
	externalRate := p.ExternalInteractionRate * p.ExternalBaseInfected * days

	for _, a := range s.actors {
		if a.Isolated() {
			continue
		}
		switch {
		case a.Status() == model.Infectious:
			if !sampling.Bernoulli(s.rng, days) {
				continue
			}
			count := int(sampling.NonNegativeGaussian(s.rng, p.NumInteractions.Mean, p.NumInteractions.Std))
			for _, idx := range sampling.WithoutReplacement(s.rng, len(s.actors), count) {
				other := s.actors[idx]
				if other == a {
					continue
				}
				if _, err := s.CheckExposure(other, a); err != nil {
					return err
				}
			}
		case a.CanBeExposed():
			if !sampling.Bernoulli(s.rng, externalRate) {
				continue
			}
			variant := s.randomVariant()
			if !s.HasBeenExposed(a, nil, variant, p.InteractionDuration, ActivityNormal) {
				continue
			}
			if err := a.Infect(variant, nil); err != nil {
				return fmt.Errorf("external exposure of %d: %w", a.ID(), err)
			}
		}
	}
	return nil
}
