package params

// Variant is a validated variant addressed by its dense id. Ids follow the
// sorted order of variant names so they are stable across runs.
type Variant struct {
	VariantParameters
	ID int

	resistance []float64
}

// ResistanceAgainst is the fraction of risk a past infection with v removes
// against a later exposure to next.
func (v *Variant) ResistanceAgainst(next *Variant) float64 {
	return v.resistance[next.ID]
}

// FatalityRate returns the fatality rate for an age bracket.
func (v *Variant) FatalityRate(ageBracket int) float64 {
	if ageBracket < 0 || ageBracket >= len(v.FatalityRateByAge) {
		return 0
	}
	return v.FatalityRateByAge[ageBracket]
}

// RecoveredSeed is a StartingRecovered entry resolved to its variant.
type RecoveredSeed struct {
	Variant *Variant
	Rate    float64
	DaysAgo Gaussian
}

// Model is a validated SimulationParameters with every variant reference
// resolved.
type Model struct {
	Params            SimulationParameters
	Variants          []*Variant
	Mix               []float64
	StartingRecovered []RecoveredSeed

	byName map[string]*Variant
}

// Resolve validates p and resolves its variant names.
func Resolve(p SimulationParameters) (*Model, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	names := p.VariantNames()
	m := &Model{
		Params:   p,
		Variants: make([]*Variant, len(names)),
		Mix:      make([]float64, len(names)),
		byName:   make(map[string]*Variant, len(names)),
	}
	for id, name := range names {
		vp := p.Variants[name]
		vp.Name = name
		variant := &Variant{VariantParameters: vp, ID: id}
		m.Variants[id] = variant
		m.byName[name] = variant
	}
	for _, variant := range m.Variants {
		variant.resistance = make([]float64, len(names))
		for otherID, other := range names {
			variant.resistance[otherID] = variant.RecoveredResistance[other]
		}
	}
	for name, weight := range p.StartingVariantMix {
		m.Mix[m.byName[name].ID] = weight
	}
	for _, entry := range p.StartingRecovered {
		m.StartingRecovered = append(m.StartingRecovered, RecoveredSeed{
			Variant: m.byName[entry.Variant],
			Rate:    entry.Rate,
			DaysAgo: entry.DaysAgo,
		})
	}
	return m, nil
}

// Variant looks a variant up by name.
func (m *Model) Variant(name string) (*Variant, bool) {
	v, ok := m.byName[name]
	return v, ok
}

// AgeBrackets is the number of demographic brackets.
func (m *Model) AgeBrackets() int {
	return len(m.Params.AgeBrackets)
}
