package monitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/raghav-misra/buddard/internal/alerts"
	"github.com/raghav-misra/buddard/internal/core/baseline"
	"github.com/raghav-misra/buddard/internal/core/game"
	"github.com/raghav-misra/buddard/internal/core/projection"
	"github.com/raghav-misra/buddard/internal/core/trigger"
)

// fakeProvider serves a scripted sequence of snapshots, then repeats
// the last one forever.
type fakeProvider struct {
	mu    sync.Mutex
	snaps []*game.LiveSnapshot
	errs  []error
	i     int
}

func (f *fakeProvider) FetchLiveSnapshot(_ context.Context, _ string) (*game.LiveSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.i
	if i >= len(f.snaps) {
		i = len(f.snaps) - 1
	} else {
		f.i++
	}
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	return f.snaps[i], nil
}

// recordingSink counts deliveries and optionally fails every one.
type recordingSink struct {
	mu     sync.Mutex
	alerts []trigger.Alert
	fail   bool
}

func (s *recordingSink) Deliver(_ context.Context, a trigger.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, a)
	if s.fail {
		return errors.New("webhook down")
	}
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.alerts)
}

var _ alerts.Sink = (*recordingSink)(nil)

func testBaselines() *baseline.Store {
	return baseline.NewStore([]baseline.Record{{
		PlayerID: "2544",
		Name:     "LeBron James",
		TeamID:   "1610612747",
		RatePerMinute: map[game.StatType]float64{
			game.StatPoints:   0.5,
			game.StatRebounds: 0.05,
			game.StatAssists:  0.05,
		},
		Sigma: map[game.StatType]float64{
			game.StatPoints:   2.0,
			game.StatRebounds: 1.0,
			game.StatAssists:  1.0,
		},
		ExpectedActiveMinutes: 34,
	}})
}

func testEngine(t *testing.T) *projection.Engine {
	t.Helper()
	e, err := projection.New(projection.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	return e
}

// hotSnapshot puts the tracked player far enough ahead of baseline pace
// that the points band clears its threshold, while rebounds and assists
// stay quiet.
func hotSnapshot(period int) *game.LiveSnapshot {
	return &game.LiveSnapshot{
		GameID:    "0022500001",
		Status:    game.StatusLive,
		Period:    period,
		Clock:     "PT05M00.00S",
		HomeScore: 80,
		AwayScore: 74,
		Players: []game.PlayerSnapshot{{
			PlayerID: "2544",
			Name:     "LeBron James",
			TeamID:   "1610612747",
			Minutes:  28,
			Fouls:    0,
			Values: map[game.StatType]float64{
				game.StatPoints:   22,
				game.StatRebounds: 2,
				game.StatAssists:  2,
			},
		}},
	}
}

func finalSnapshot() *game.LiveSnapshot {
	return &game.LiveSnapshot{GameID: "0022500001", Status: game.StatusFinal}
}

func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.PollInterval = time.Millisecond
	cfg.DeliveryTimeout = time.Second
	return cfg
}

func testRef() game.Ref {
	return game.Ref{GameID: "0022500001", HomeTeamID: "1610612747", AwayTeamID: "1610612743"}
}

func runToCompletion(t *testing.T, m *Monitor) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go m.Run(ctx)
	select {
	case <-m.Done():
	case <-ctx.Done():
		t.Fatal("monitor did not stop")
	}
}

func TestMonitorStopsOnFinalAndDedups(t *testing.T) {
	provider := &fakeProvider{snaps: []*game.LiveSnapshot{
		hotSnapshot(3),
		hotSnapshot(3), // same period: every key already fired
		finalSnapshot(),
	}}
	sink := &recordingSink{}
	m := New(testRef(), provider, testBaselines(), testEngine(t), trigger.DefaultConfig(), sink, fastConfig())

	runToCompletion(t, m)

	if got := sink.count(); got != 1 {
		t.Fatalf("delivered %d alerts, want 1", got)
	}
	a := sink.alerts[0]
	if a.Stat != game.StatPoints || a.Direction != trigger.DirectionHigh {
		t.Errorf("alert = %s %s, want PTS HIGH", a.Stat, a.Direction)
	}
	if a.GameID != "0022500001" || a.PlayerID != "2544" {
		t.Errorf("alert identity = %+v", a)
	}
}

func TestMonitorNewPeriodRearmsKeys(t *testing.T) {
	provider := &fakeProvider{snaps: []*game.LiveSnapshot{
		hotSnapshot(3),
		hotSnapshot(4), // new period, new key
		finalSnapshot(),
	}}
	sink := &recordingSink{}
	m := New(testRef(), provider, testBaselines(), testEngine(t), trigger.DefaultConfig(), sink, fastConfig())

	runToCompletion(t, m)

	if got := sink.count(); got != 2 {
		t.Fatalf("delivered %d alerts, want 2 (one per period)", got)
	}
}

func TestMonitorDeliveryFailureNeverRetries(t *testing.T) {
	provider := &fakeProvider{snaps: []*game.LiveSnapshot{
		hotSnapshot(3),
		hotSnapshot(3),
		hotSnapshot(3),
		finalSnapshot(),
	}}
	sink := &recordingSink{fail: true}
	m := New(testRef(), provider, testBaselines(), testEngine(t), trigger.DefaultConfig(), sink, fastConfig())

	runToCompletion(t, m)

	// The key is marked fired before delivery, so the failing sink is
	// handed the alert exactly once.
	if got := sink.count(); got != 1 {
		t.Fatalf("delivered %d alerts, want 1", got)
	}
}

func TestMonitorSurvivesPollErrors(t *testing.T) {
	provider := &fakeProvider{
		snaps: []*game.LiveSnapshot{nil, hotSnapshot(3), finalSnapshot()},
		errs:  []error{errors.New("transient 500")},
	}
	sink := &recordingSink{}
	m := New(testRef(), provider, testBaselines(), testEngine(t), trigger.DefaultConfig(), sink, fastConfig())

	runToCompletion(t, m)

	if got := sink.count(); got != 1 {
		t.Fatalf("delivered %d alerts, want 1", got)
	}
}

func TestMonitorSkipsPlayersWithoutBaselines(t *testing.T) {
	snap := hotSnapshot(3)
	snap.Players = append(snap.Players,
		game.PlayerSnapshot{ // no baseline record
			PlayerID: "999999", Name: "Ten Day Contract", TeamID: "1610612743",
			Minutes: 20,
			Values:  map[game.StatType]float64{game.StatPoints: 30},
		},
	)
	provider := &fakeProvider{snaps: []*game.LiveSnapshot{snap, finalSnapshot()}}
	sink := &recordingSink{}
	m := New(testRef(), provider, testBaselines(), testEngine(t), trigger.DefaultConfig(), sink, fastConfig())

	runToCompletion(t, m)

	for _, a := range sink.alerts {
		if a.PlayerID == "999999" {
			t.Fatal("alert fired for player without a baseline")
		}
	}
}

func TestMonitorCancellation(t *testing.T) {
	// A game that never goes final: only cancellation stops the worker.
	provider := &fakeProvider{snaps: []*game.LiveSnapshot{hotSnapshot(3)}}
	m := New(testRef(), provider, testBaselines(), testEngine(t), trigger.DefaultConfig(), &recordingSink{}, fastConfig())

	ctx, cancel := context.WithCancel(context.Background())
	go m.Run(ctx)
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-m.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("monitor did not stop after cancel")
	}
}

func TestSituationalFlags(t *testing.T) {
	m := New(testRef(), &fakeProvider{}, testBaselines(), testEngine(t), trigger.DefaultConfig(), &recordingSink{}, DefaultConfig())

	snap := hotSnapshot(3)
	ps := &snap.Players[0]
	ps.Fouls = 4

	flags := m.situationalFlags(snap, ps, 1.5)
	want := map[string]bool{"Foul Trouble": true, "Hot Hand": true}
	for _, f := range flags {
		if !want[f] {
			t.Errorf("unexpected flag %q", f)
		}
		delete(want, f)
	}
	for f := range want {
		t.Errorf("missing flag %q", f)
	}

	// Blowout risk only applies to the winning side.
	snap.HomeScore, snap.AwayScore = 100, 75
	flags = m.situationalFlags(snap, ps, 1.0)
	found := false
	for _, f := range flags {
		if f == "Blowout Risk" {
			found = true
		}
	}
	if !found {
		t.Error("missing Blowout Risk for winning-team player in a rout")
	}
}
