// Package alerts defines the outbound alert surface. The pipeline is
// agnostic to delivery: sinks are best-effort, failures are counted and
// never retried, and a failed delivery never re-arms a fired trigger.
package alerts

import (
	"context"
	"fmt"
	"os"

	"github.com/raghav-misra/buddard/internal/core/trigger"
)

// Sink delivers one fired alert.
type Sink interface {
	Deliver(ctx context.Context, a trigger.Alert) error
}

// ConsoleSink prints alerts to stdout in the long-form briefing format.
type ConsoleSink struct{}

func (ConsoleSink) Deliver(_ context.Context, a trigger.Alert) error {
	var action string
	if a.Direction == trigger.DirectionHigh {
		action = fmt.Sprintf(
			"• Betting Targets (OVER):\n"+
				"  - Floor (>95%% Hit): %.1f\n"+
				"  - 25th %%ile (~80%% Hit): %.1f\n"+
				"  - 50th %%ile (Median): %.1f\n"+
				"• Action: Check live line. If line <= Target, consider OVER.",
			a.Low, a.P25(), a.P50())
	} else {
		action = fmt.Sprintf("• Action: Check live line. If line > %.1f, consider UNDER.", a.High)
	}

	fmt.Fprintf(os.Stdout,
		"\n--------------------------------------------------\n"+
			"PREDICT: %s %s on %s\n"+
			"--------------------------------------------------\n"+
			"• Current: %.0f %s in %.1f min.\n"+
			"• Projected Range: [%.1f to %.1f] %s\n"+
			"• Reasoning: %s\n"+
			"%s\n"+
			"--------------------------------------------------\n",
		a.Direction, a.Stat, a.PlayerName,
		a.Current, a.Stat, a.Minutes,
		a.Low, a.High, a.Stat,
		a.Reasoning,
		action)
	return nil
}

// GameOverReporter is an optional sink capability: sinks that want the
// end-of-game summary implement it in addition to Deliver.
type GameOverReporter interface {
	GameOver(ctx context.Context, gameID string, homeScore, awayScore, alertsFired int) error
}

// Multi fans one alert out to several sinks. Every sink is attempted;
// the first error is returned.
type Multi []Sink

func (m Multi) Deliver(ctx context.Context, a trigger.Alert) error {
	var firstErr error
	for _, s := range m {
		if err := s.Deliver(ctx, a); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// GameOver forwards the summary to every sink that reports game ends.
func (m Multi) GameOver(ctx context.Context, gameID string, homeScore, awayScore, alertsFired int) error {
	var firstErr error
	for _, s := range m {
		r, ok := s.(GameOverReporter)
		if !ok {
			continue
		}
		if err := r.GameOver(ctx, gameID, homeScore, awayScore, alertsFired); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
