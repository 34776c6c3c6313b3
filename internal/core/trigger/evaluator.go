package trigger

import (
	"math"

	"github.com/raghav-misra/buddard/internal/core/game"
)

// Config tunes the trigger thresholds. Floors keep low-usage players from
// alerting on noise; buffers demand the band clear the threshold with
// conviction rather than by a hair.
type Config struct {
	// SeasonAvgRatio scales the player's season average into the dynamic
	// threshold: T = max(floor, ratio × seasonAvg).
	SeasonAvgRatio float64

	Floors  map[game.StatType]float64
	Buffers map[game.StatType]float64

	// LowAlerts enables the LOW direction (refined mode only).
	LowAlerts bool

	// LowMinutesGate is the fraction of the player's average minutes that
	// must be played before a LOW alert can fire, to avoid early-game
	// false positives.
	LowMinutesGate float64
}

func DefaultConfig() Config {
	return Config{
		SeasonAvgRatio: 0.8,
		Floors: map[game.StatType]float64{
			game.StatPoints:   7,
			game.StatRebounds: 3,
			game.StatAssists:  3,
		},
		Buffers: map[game.StatType]float64{
			game.StatPoints:   1.0,
			game.StatRebounds: 0.5,
			game.StatAssists:  0.5,
		},
		LowAlerts:      true,
		LowMinutesGate: 0.4,
	}
}

// Input is everything the evaluator needs for one (player, stat, period)
// decision.
type Input struct {
	Key        Key
	GameID     string
	PlayerName string
	SeasonAvg  float64
	AvgMinutes float64
	Current    float64
	Minutes    float64
	Low        float64
	High       float64
	PerfFactor float64
	Flags      []string
}

// Evaluator is the per-monitor alert state machine. Each key moves from
// unarmed to fired exactly once; the set grows monotonically and dies
// with the monitor. Not safe for concurrent use — each monitor owns its
// evaluator exclusively.
type Evaluator struct {
	cfg   Config
	fired map[Key]struct{}
}

func NewEvaluator(cfg Config) *Evaluator {
	return &Evaluator{cfg: cfg, fired: make(map[Key]struct{})}
}

// Threshold returns the dynamic trigger level for a stat.
func (e *Evaluator) Threshold(st game.StatType, seasonAvg float64) float64 {
	return math.Max(e.cfg.Floors[st], e.cfg.SeasonAvgRatio*seasonAvg)
}

// Evaluate runs the unarmed→fired transition. The returned bool reports
// whether an alert fired this call. The key is recorded as fired before
// the alert is handed to any sink, so a delivery failure can never cause
// a duplicate.
func (e *Evaluator) Evaluate(in Input) (Alert, bool) {
	if _, done := e.fired[in.Key]; done {
		return Alert{}, false
	}

	threshold := e.Threshold(in.Key.Stat, in.SeasonAvg)
	buffer := e.cfg.Buffers[in.Key.Stat]

	switch {
	case in.Low > threshold+buffer:
		e.fired[in.Key] = struct{}{}
		return newAlert(in, DirectionHigh, threshold), true

	case e.cfg.LowAlerts && in.High < threshold-buffer:
		if in.Minutes <= in.AvgMinutes*e.cfg.LowMinutesGate {
			return Alert{}, false
		}
		e.fired[in.Key] = struct{}{}
		return newAlert(in, DirectionLow, threshold), true
	}

	return Alert{}, false
}

// FiredCount reports how many keys have fired over the monitor lifetime.
func (e *Evaluator) FiredCount() int { return len(e.fired) }
