// Package stats accumulates per-cycle controller statistics for the
// verbose printer, the same running-sum-then-divide shape the teacher uses
// for its power averages, applied to working-rate/usage-fraction data.
package stats

// Config currently carries no tunables; it mirrors the teacher's
// pointer-or-default Config pattern so a future knob can be added without
// changing New's signature.
type Config struct{}

// Sample is one cycle's worth of controller state.
type Sample struct {
	Cycle       int
	WorkingRate float64
	Usage       float64
	LiveCount   int
	SlotMS      float64
}

// Result is a running average of working rate and usage over every Sample
// applied so far.
type Result struct {
	AvgWorkingRate float64
	AvgUsage       float64
	Cycles         int
}

// Accumulator keeps running sums across cycles.
type Accumulator struct {
	cfg      *Config
	count    int
	sumRate  float64
	sumUsage float64
}

// New creates an accumulator. cfg may be nil.
func New(cfg *Config) *Accumulator {
	if cfg == nil {
		cfg = &Config{}
	}
	return &Accumulator{cfg: cfg}
}

// Apply folds s into the running sums and returns the averages so far.
func (a *Accumulator) Apply(s Sample) Result {
	a.count++
	a.sumRate += s.WorkingRate
	if s.Usage >= 0 {
		a.sumUsage += s.Usage
	}
	return a.Averages()
}

// Averages returns the running averages without applying a new sample.
func (a *Accumulator) Averages() Result {
	if a.count == 0 {
		return Result{}
	}
	n := float64(a.count)
	return Result{
		AvgWorkingRate: a.sumRate / n,
		AvgUsage:       a.sumUsage / n,
		Cycles:         a.count,
	}
}
