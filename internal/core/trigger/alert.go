package trigger

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/raghav-misra/buddard/internal/core/game"
)

// Direction says which side of the threshold the whole band cleared.
type Direction string

const (
	DirectionHigh Direction = "HIGH"
	DirectionLow  Direction = "LOW"
)

// Key is the dedup identity of one potential alert. Each key fires at
// most once per monitor lifetime.
type Key struct {
	PlayerID string
	Stat     game.StatType
	Period   int
}

// Alert is the one-shot notification emitted when a projection band
// clears its threshold.
type Alert struct {
	ID         string
	GameID     string
	PlayerID   string
	PlayerName string
	Stat       game.StatType
	Direction  Direction
	Current    float64
	Minutes    float64
	Low        float64
	High       float64
	Threshold  float64
	PerfFactor float64
	Period     int
	Reasoning  string
	FiredAt    time.Time
}

// P25 and P50 are interpolated percentile targets inside the band,
// reported alongside the floor in HIGH alerts.
func (a Alert) P25() float64 { return a.Low + 0.25*(a.High-a.Low) }
func (a Alert) P50() float64 { return a.Low + 0.50*(a.High-a.Low) }

func newAlert(in Input, dir Direction, threshold float64) Alert {
	return Alert{
		ID:         uuid.NewString(),
		GameID:     in.GameID,
		PlayerID:   in.Key.PlayerID,
		PlayerName: in.PlayerName,
		Stat:       in.Key.Stat,
		Direction:  dir,
		Current:    in.Current,
		Minutes:    in.Minutes,
		Low:        in.Low,
		High:       in.High,
		Threshold:  threshold,
		PerfFactor: in.PerfFactor,
		Period:     in.Key.Period,
		Reasoning:  buildReasoning(in),
		FiredAt:    time.Now(),
	}
}

// buildReasoning assembles the human-readable context: period, blending
// factor, and whichever situational flags were active this cycle.
func buildReasoning(in Input) string {
	head := fmt.Sprintf("Q%d Perf=%.2f.", in.Key.Period, in.PerfFactor)
	if len(in.Flags) == 0 {
		return head + " High usage/efficiency."
	}
	return head + " " + strings.Join(in.Flags, ", ")
}
