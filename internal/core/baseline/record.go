package baseline

import "github.com/raghav-misra/buddard/internal/core/game"

// Record holds one player's precomputed production profile: per-minute
// rates for each tracked stat, season-average minutes, and the standard
// deviation of recent game totals. Sigma of 0 means "unknown" and is
// substituted downstream by the interval estimator.
type Record struct {
	PlayerID              string
	Name                  string
	TeamID                string
	RatePerMinute         map[game.StatType]float64
	Sigma                 map[game.StatType]float64
	ExpectedActiveMinutes float64
}

// SeasonAverage is the player's expected full-game total for one stat.
func (r Record) SeasonAverage(st game.StatType) float64 {
	return r.RatePerMinute[st] * r.ExpectedActiveMinutes
}
