package projection

import "math"

// Foul-trouble and blowout modifier constants, fitted to observed coach
// rotation behavior.
//
// Foul thresholds escalate by period: 2 fouls in the 1st is trouble,
// 3 in the 2nd, 4 in the 3rd. A 5th foul is critical at any point and
// compounds with the period-specific modifier.
const (
	foulP1Threshold = 2
	foulP1Mod       = 0.85
	foulP2Threshold = 3
	foulP2Mod       = 0.80
	foulP3Threshold = 4
	foulP3Mod       = 0.75

	criticalFouls    = 5
	criticalFoulsMod = 0.50

	blowoutLatePeriod = 3
	blowoutDiff       = 20
	blowoutDiffMod    = 0.85
	blowoutSevereDiff = 25
	blowoutSevereMod  = 0.70

	// Legacy flat penalties (minutes subtracted, not multiplied).
	flatFoulThreshold  = 4
	flatFoulPenaltyMin = 5.0
	flatBlowoutPenalty = 8.0
)

// RemainingMinutesFunc estimates how many more minutes a player is
// expected to stay on the floor. Implementations never return a value
// that pushes current+remaining past regulation.
type RemainingMinutesFunc func(expectedMinutes, currentMinutes float64, fouls, scoreDiff, period int, perfFactor float64) float64

// modeledRemaining is the current-generation estimator: the base gap to
// the season average, shrunk multiplicatively for foul trouble and late
// blowouts, then nudged by a momentum term so a player running ahead of
// baseline pace is expected to keep the floor a little longer.
func modeledRemaining(cfg Config) RemainingMinutesFunc {
	return func(expectedMinutes, currentMinutes float64, fouls, scoreDiff, period int, perfFactor float64) float64 {
		base := math.Max(0, expectedMinutes-currentMinutes)
		if base == 0 {
			// Already at or past the average: being hot earns no bonus.
			return 0
		}

		modifier := 1.0
		switch {
		case period == 1 && fouls >= foulP1Threshold:
			modifier *= foulP1Mod
		case period == 2 && fouls >= foulP2Threshold:
			modifier *= foulP2Mod
		case period == 3 && fouls >= foulP3Threshold:
			modifier *= foulP3Mod
		}
		if fouls >= criticalFouls {
			modifier *= criticalFoulsMod
		}

		diff := math.Abs(float64(scoreDiff))
		if period == blowoutLatePeriod && diff > blowoutDiff {
			modifier *= blowoutDiffMod
		}
		if period >= blowoutLatePeriod && diff > blowoutSevereDiff {
			modifier *= blowoutSevereMod
		}

		// Momentum: 1 + k·ln(perf), with perf clamped so a tiny-sample
		// pace spike cannot blow up the logarithm.
		safePerf := math.Max(cfg.PerfClampMin, math.Min(perfFactor, cfg.PerfClampMax))
		momentum := 1.0 + cfg.MomentumK*math.Log(safePerf)

		remaining := base * modifier * momentum
		return math.Min(remaining, math.Max(0, cfg.RegulationMinutes-currentMinutes))
	}
}

// flatRemaining is the legacy estimator: fixed minute penalties
// subtracted from the season-average gap. No momentum term.
func flatRemaining(cfg Config) RemainingMinutesFunc {
	return func(expectedMinutes, currentMinutes float64, fouls, scoreDiff, period int, _ float64) float64 {
		penalty := 0.0
		if fouls >= flatFoulThreshold && (period == 2 || period == 3) {
			penalty += flatFoulPenaltyMin
		}
		diff := math.Abs(float64(scoreDiff))
		if diff > blowoutDiff && period >= blowoutLatePeriod {
			penalty += flatBlowoutPenalty
		}

		remaining := expectedMinutes - currentMinutes - penalty
		if remaining < 0 {
			remaining = 0
		}
		return math.Min(remaining, math.Max(0, cfg.RegulationMinutes-currentMinutes))
	}
}
