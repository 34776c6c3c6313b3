package projection

import "math"

// Range is the confidence band around a projected final stat.
type Range struct {
	Low           float64
	High          float64
	AdjustedSigma float64
}

// RangeFunc builds the confidence band for a projection. currentValue is
// the stat already accumulated; no implementation may return a low below
// it, and High >= Low always holds.
type RangeFunc func(pfs, sigma, minutesPlayed, avgMinutes, currentValue float64) Range

// decayFactor shrinks sigma with the square root of the remaining time
// fraction: uncertainty about the final total collapses faster than
// linearly as fewer unplayed minutes remain.
func decayFactor(minutesPlayed, avgMinutes float64) float64 {
	if avgMinutes <= 0 {
		return 0
	}
	remaining := (avgMinutes - minutesPlayed) / avgMinutes
	if remaining < 0 {
		remaining = 0
	} else if remaining > 1 {
		remaining = 1
	}
	return math.Sqrt(remaining)
}

// substituteSigma replaces an unknown (zero) sigma with a default
// coefficient of variation so the band is never degenerate.
func substituteSigma(cfg Config, pfs, sigma float64) float64 {
	if sigma == 0 {
		return pfs * cfg.DefaultSigmaRatio
	}
	return sigma
}

// asymmetricRange is the refined preset: a tight downside (a player
// cannot produce negative future output) and a wide upside (a hot streak
// continuing is the more variable outcome). Decay has no artificial
// floor; instead the low bound is clamped to what has already happened.
func asymmetricRange(cfg Config) RangeFunc {
	return func(pfs, sigma, minutesPlayed, avgMinutes, currentValue float64) Range {
		sigma = substituteSigma(cfg, pfs, sigma)
		adjusted := sigma * decayFactor(minutesPlayed, avgMinutes)

		low := pfs - cfg.LowMultiplier*adjusted
		high := pfs + cfg.HighMultiplier*adjusted
		return clampRange(low, high, currentValue, adjusted)
	}
}

// flooredRange is the legacy symmetric preset. Decay is floored so the
// band cannot collapse to a point before the game truly ends.
func flooredRange(cfg Config) RangeFunc {
	return func(pfs, sigma, minutesPlayed, avgMinutes, currentValue float64) Range {
		sigma = substituteSigma(cfg, pfs, sigma)
		decay := math.Max(cfg.DecayFloor, decayFactor(minutesPlayed, avgMinutes))
		adjusted := sigma * decay

		low := pfs - cfg.SymmetricMultiplier*adjusted
		high := pfs + cfg.SymmetricMultiplier*adjusted
		return clampRange(low, high, currentValue, adjusted)
	}
}

func clampRange(low, high, currentValue, adjusted float64) Range {
	if low < currentValue {
		low = currentValue
	}
	if high < low {
		high = low
	}
	return Range{Low: low, High: high, AdjustedSigma: adjusted}
}
