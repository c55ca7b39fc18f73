package sim

import (
	"golang.org/x/sync/errgroup"

	"github.com/daveselinger/covid-rapid-test-simulation2/internal/actor"
	"github.com/daveselinger/covid-rapid-test-simulation2/internal/model"
	"github.com/daveselinger/covid-rapid-test-simulation2/internal/sampling"
)

// TickRapidTesting tests every actor whose rapid test is due or who is
// picked for random testing, and quarantines positives.
func (s *Simulation) TickRapidTesting(days float64) {
	p := s.model.Params
	for _, a := range s.actors {
		scheduled := a.RapidTestDue(p.TestingInterval)
		random := sampling.Bernoulli(s.rng, p.TestingRateRandom*days)
		if !(scheduled || random) || a.Isolated() || a.Status() == model.Deceased {
			continue
		}
		if a.RapidTest() {
			s.quarantine(a, 0)
		}
	}
}

// TickPcrTesting is TickRapidTesting for PCR; isolation starts once the
// results come back.
func (s *Simulation) TickPcrTesting(days float64) {
	p := s.model.Params
	for _, a := range s.actors {
		scheduled := a.PcrTestDue(p.TestingIntervalPcr)
		random := sampling.Bernoulli(s.rng, p.TestingRateRandomPcr*days)
		if !(scheduled || random) || a.Isolated() || a.Status() == model.Deceased {
			continue
		}
		if a.PcrTest() {
			s.quarantine(a, p.DaysToPcrResults)
		}
	}
}

// quarantine always consumes the compliance draw; non-compliant actors
// ignore the order.
func (s *Simulation) quarantine(a *actor.Actor, after float64) {
	p := s.model.Params
	if sampling.Bernoulli(s.rng, p.PositiveQuarantineRate) && !a.IsNonCompliant() {
		a.IsolateFor(p.PositiveTestIsolationInterval, after)
	}
}

// TickSelfIsolation isolates symptomatic actors who self-isolate. Running it
// twice in one tick changes nothing.
func (s *Simulation) TickSelfIsolation() {
	interval := s.model.Params.PositiveTestIsolationInterval
	for _, a := range s.actors {
		if a.IsSymptomatic() && a.WillSelfIsolate() && !a.Isolated() {
			a.IsolateFor(interval, 0)
		}
	}
}

// TickVaccination vaccinates each unvaccinated actor with probability
// vaccinationRate * days.
func (s *Simulation) TickVaccination(days float64) {
	rate := s.model.Params.VaccinationRate * days
	for _, a := range s.actors {
		if a.IsVaccinated() || a.Status() == model.Deceased {
			continue
		}
		if sampling.Bernoulli(s.rng, rate) {
			a.Vaccinate(0)
		}
	}
}

// TickDisease ticks every actor and rescans the population for statistics.
// Actor ticks draw no randomness, so they are spread over the configured
// workers without affecting reproducibility. It does not move the clock:
// Tick advances it before any policy runs, and the statistics are stamped
// with the current Now.
func (s *Simulation) TickDisease(days float64) error {
	if s.workers <= 1 || len(s.actors) < 2*s.workers {
		for _, a := range s.actors {
			a.Tick(days)
		}
	} else {
		chunk := (len(s.actors) + s.workers - 1) / s.workers
		g := new(errgroup.Group)
		g.SetLimit(s.workers)
		for start := 0; start < len(s.actors); start += chunk {
			part := s.actors[start:min(start+chunk, len(s.actors))]
			g.Go(func() error {
				for _, a := range part {
					a.Tick(days)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}
	s.totals = s.collect()
	return nil
}

func (s *Simulation) collect() model.RunStatistics {
	totals := model.RunStatistics{Day: s.now}
	for _, a := range s.actors {
		switch a.Status() {
		case model.Susceptible:
			totals.Susceptible++
		case model.Exposed:
			totals.Exposed++
			totals.Infected++
		case model.Infectious:
			totals.Infectious++
			totals.Infected++
		case model.Recovered:
			totals.Recovered++
		case model.Deceased:
			totals.Deceased++
		}
		if a.Isolated() {
			totals.Isolated++
		}
		if a.IsVaccinated() {
			totals.Vaccinated++
		}
		totals.TestsConducted += a.TestsConducted()
		totals.TestsConductedPcr += a.TestsConductedPcr()
		totals.DaysLost += a.DaysIsolated()
	}
	return totals
}
