package actor

// OptionalDays is a day counter that may be unset, e.g. "never tested".
type OptionalDays struct {
	value float64
	set   bool
}

func (o *OptionalDays) Set(v float64) {
	o.value = v
	o.set = true
}

// Add advances a set counter; an unset counter stays unset.
func (o *OptionalDays) Add(days float64) {
	if o.set {
		o.value += days
	}
}

func (o OptionalDays) Get() (float64, bool) {
	return o.value, o.set
}

// UnsetOrAtLeast reports whether the counter is unset or has reached threshold.
func (o OptionalDays) UnsetOrAtLeast(threshold float64) bool {
	return !o.set || o.value >= threshold
}
