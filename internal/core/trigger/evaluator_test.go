package trigger

import (
	"strings"
	"testing"

	"github.com/raghav-misra/buddard/internal/core/game"
)

func highInput() Input {
	return Input{
		Key:        Key{PlayerID: "203999", Stat: game.StatPoints, Period: 3},
		GameID:     "0022500001",
		PlayerName: "Nikola Jokic",
		SeasonAvg:  18.75, // threshold 0.8×18.75 = 15
		AvgMinutes: 34,
		Current:    16,
		Minutes:    28,
		Low:        18,
		High:       27,
		PerfFactor: 1.3,
	}
}

func TestHighFiresOncePerKey(t *testing.T) {
	e := NewEvaluator(DefaultConfig())
	in := highInput()

	alert, fired := e.Evaluate(in)
	if !fired {
		t.Fatal("expected HIGH alert: low 18 clears threshold 15 + buffer 1")
	}
	if alert.Direction != DirectionHigh {
		t.Errorf("direction = %s, want HIGH", alert.Direction)
	}
	if !almostEqual(alert.Threshold, 15) {
		t.Errorf("threshold = %v, want 15", alert.Threshold)
	}
	if alert.ID == "" {
		t.Error("alert missing ID")
	}

	// Same key again, even with a stronger band: armed keys stay dead.
	in.Low = 25
	if _, fired := e.Evaluate(in); fired {
		t.Error("duplicate alert for fired key")
	}
	if e.FiredCount() != 1 {
		t.Errorf("FiredCount = %d, want 1", e.FiredCount())
	}
}

func TestDistinctKeysFireIndependently(t *testing.T) {
	e := NewEvaluator(DefaultConfig())

	in := highInput()
	if _, fired := e.Evaluate(in); !fired {
		t.Fatal("first key should fire")
	}

	// Same player, next period: a new key.
	in.Key.Period = 4
	if _, fired := e.Evaluate(in); !fired {
		t.Error("new period should fire independently")
	}

	// Same period, different stat.
	in = highInput()
	in.Key.Stat = game.StatRebounds
	in.SeasonAvg = 10 // threshold 8
	in.Low = 9.5      // clears 8 + 0.5
	if _, fired := e.Evaluate(in); !fired {
		t.Error("different stat should fire independently")
	}
}

func TestBufferDemandsConviction(t *testing.T) {
	e := NewEvaluator(DefaultConfig())

	in := highInput()
	in.Low = 15.5 // above threshold 15 but inside the 1.0 buffer
	if _, fired := e.Evaluate(in); fired {
		t.Error("band inside buffer should not fire")
	}
	// The key is still armed: a later, stronger band fires.
	in.Low = 16.5
	if _, fired := e.Evaluate(in); !fired {
		t.Error("armed key should fire once the buffer clears")
	}
}

func TestFloorDominatesThinAverages(t *testing.T) {
	e := NewEvaluator(DefaultConfig())
	// 0.8 × 5 = 4, below the 7-point floor.
	if got := e.Threshold(game.StatPoints, 5); !almostEqual(got, 7) {
		t.Errorf("Threshold = %v, want floor 7", got)
	}
	if got := e.Threshold(game.StatAssists, 10); !almostEqual(got, 8) {
		t.Errorf("Threshold = %v, want 8", got)
	}
}

func TestLowAlertGatedOnMinutes(t *testing.T) {
	e := NewEvaluator(DefaultConfig())

	in := highInput()
	in.Low = 4
	in.High = 12 // below threshold 15 − buffer 1
	in.Minutes = 10
	in.AvgMinutes = 34 // gate: must exceed 0.4×34 = 13.6

	if _, fired := e.Evaluate(in); fired {
		t.Error("LOW fired before the minutes gate")
	}

	in.Minutes = 20
	alert, fired := e.Evaluate(in)
	if !fired {
		t.Fatal("expected LOW alert past the minutes gate")
	}
	if alert.Direction != DirectionLow {
		t.Errorf("direction = %s, want LOW", alert.Direction)
	}
}

func TestLowAlertsDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LowAlerts = false
	e := NewEvaluator(cfg)

	in := highInput()
	in.Low = 4
	in.High = 12
	in.Minutes = 30
	if _, fired := e.Evaluate(in); fired {
		t.Error("LOW fired with LowAlerts disabled")
	}
}

func TestReasoning(t *testing.T) {
	in := highInput()
	a := newAlert(in, DirectionHigh, 15)
	if !strings.HasPrefix(a.Reasoning, "Q3 Perf=1.30.") {
		t.Errorf("reasoning = %q", a.Reasoning)
	}
	if !strings.Contains(a.Reasoning, "High usage/efficiency") {
		t.Errorf("flagless reasoning = %q", a.Reasoning)
	}

	in.Flags = []string{"Foul Trouble", "Hot Hand"}
	a = newAlert(in, DirectionHigh, 15)
	if !strings.Contains(a.Reasoning, "Foul Trouble, Hot Hand") {
		t.Errorf("flagged reasoning = %q", a.Reasoning)
	}
}

func TestPercentileTargets(t *testing.T) {
	a := Alert{Low: 20, High: 28}
	if !almostEqual(a.P25(), 22) {
		t.Errorf("P25 = %v, want 22", a.P25())
	}
	if !almostEqual(a.P50(), 24) {
		t.Errorf("P50 = %v, want 24", a.P50())
	}
}

func almostEqual(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}
