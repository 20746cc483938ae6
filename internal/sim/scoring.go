package sim

import "math"

// Scoring weights and tier thresholds.
const (
	weightPlanning   = 0.45
	weightAccuracy   = 0.30
	weightEfficiency = 0.25

	tierThreeScore = 90
	tierTwoScore   = 70
)

// Counters are the player-attributable tallies of a run.
type Counters struct {
	PlayerSwitches int
	HazardSwitches int
	Resets         int
	Mistakes       int
}

// Score is the breakdown and total of a run's rating.
type Score struct {
	Planning   int
	Accuracy   int
	Efficiency int
	Total      int
	Tier       int
}

// CalculateScore rates a run from its counters. Hazard switches do not
// affect the score.
func CalculateScore(c Counters) Score {
	planning := max(0, 100-5*c.PlayerSwitches-20*c.Resets)
	accuracy := max(0, 100-15*c.Mistakes)
	efficiency := 100

	total := int(math.Round(
		weightPlanning*float64(planning) +
			weightAccuracy*float64(accuracy) +
			weightEfficiency*float64(efficiency),
	))

	tier := 1
	switch {
	case total >= tierThreeScore:
		tier = 3
	case total >= tierTwoScore:
		tier = 2
	}

	return Score{
		Planning:   planning,
		Accuracy:   accuracy,
		Efficiency: efficiency,
		Total:      total,
		Tier:       tier,
	}
}

// Scorer accumulates Counters from bus events.
type Scorer struct {
	counters Counters
}

// NewScorer creates a scorer subscribed to bus.
func NewScorer(bus *Bus) *Scorer {
	s := &Scorer{}
	bus.Subscribe(s.handle)
	return s
}

func (s *Scorer) handle(env Envelope) {
	switch ev := env.Event.(type) {
	case RoutingChanged:
		if ev.Cause == CauseHazard {
			s.counters.HazardSwitches++
		} else {
			s.counters.PlayerSwitches++
		}
	case MistakeMade:
		s.counters.Mistakes++
	case LevelReset:
		s.counters.Resets++
	}
}

// Counters returns the current tallies.
func (s *Scorer) Counters() Counters {
	return s.counters
}
