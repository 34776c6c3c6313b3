package projection

import "math"

// Fixed per-period alpha weights from the earliest model generation.
const (
	alphaPeriod1   = 0.2
	alphaMidGame   = 0.6 // periods 2 and 3
	alphaPeriod4Up = 0.9
)

// AlphaFunc returns the trust weight given to observed in-game pace over
// the baseline rate, in [0, 1]. Higher alpha means the scoreboard is
// believed more than history.
type AlphaFunc func(minutesPlayed, avgMinutes float64, period int) float64

// quadraticAlpha dampens early-game variance with a squared
// time-progress curve: at 25% of an average night the observed pace only
// carries 6% of the weight, at 75% it carries 56%.
func quadraticAlpha(minutesPlayed, avgMinutes float64, _ int) float64 {
	progress := minutesPlayed / math.Max(10, avgMinutes)
	if progress > 1.0 {
		return 1.0
	}
	return progress * progress
}

// linearAlpha ramps linearly with minutes played and saturates below 1.0
// so the baseline always keeps a sliver of weight. Prevents one-minute
// wonders from owning the projection.
func linearAlpha(cfg Config) AlphaFunc {
	return func(minutesPlayed, _ float64, _ int) float64 {
		return math.Min(cfg.LinearAlphaCap, minutesPlayed/cfg.LinearAlphaMinutes)
	}
}

// periodAlpha is the original fixed schedule: one weight per period.
func periodAlpha(_, _ float64, period int) float64 {
	switch {
	case period <= 1:
		return alphaPeriod1
	case period <= 3:
		return alphaMidGame
	default:
		return alphaPeriod4Up
	}
}

// bankAlpha trusts the baseline completely for the unplayed remainder
// ("bank & burn": what is on the board is banked, the rest regresses to
// the mean).
func bankAlpha(_, _ float64, _ int) float64 { return 0 }

// WeightedRate blends observed and baseline per-minute pace. With zero
// minutes played the observed rate is undefined, so the baseline is used
// regardless of alpha.
func WeightedRate(alpha, currentValue, minutesPlayed, baselineRate float64) float64 {
	if minutesPlayed <= 0 {
		return baselineRate
	}
	observed := currentValue / minutesPlayed
	return alpha*observed + (1-alpha)*baselineRate
}
