// Package monitor runs one worker per live game. Each worker owns its
// trigger state exclusively, so the whole pipeline is lock-free; the
// baseline store is shared read-only.
package monitor

import (
	"context"
	"errors"
	"time"

	"github.com/raghav-misra/buddard/internal/adapters/outbound/nbastats"
	"github.com/raghav-misra/buddard/internal/alerts"
	"github.com/raghav-misra/buddard/internal/core/baseline"
	"github.com/raghav-misra/buddard/internal/core/game"
	"github.com/raghav-misra/buddard/internal/core/projection"
	"github.com/raghav-misra/buddard/internal/core/trigger"
	"github.com/raghav-misra/buddard/internal/telemetry"
)

// Provider is the live data source for one game.
type Provider interface {
	FetchLiveSnapshot(ctx context.Context, gameID string) (*game.LiveSnapshot, error)
}

// Config tunes the poll loop and the situational flag thresholds.
type Config struct {
	PollInterval    time.Duration
	DeliveryTimeout time.Duration

	// MinMinutes is the observed floor time below which a player is
	// skipped entirely (no meaningful pace yet).
	MinMinutes float64

	HotThreshold  float64 // perf factor above which "Hot Hand" is flagged
	ColdThreshold float64 // perf factor below which "Gone Cold" is flagged

	FoulTroubleCount int // fouls at which the flag is raised mid-game
	BlowoutDiff      int // margin beyond which garbage time threatens
	BlowoutPeriod    int // earliest period the blowout flag applies
}

func DefaultConfig() Config {
	return Config{
		PollInterval:     30 * time.Second,
		DeliveryTimeout:  10 * time.Second,
		MinMinutes:       1.0,
		HotThreshold:     1.2,
		ColdThreshold:    0.8,
		FoulTroubleCount: 4,
		BlowoutDiff:      20,
		BlowoutPeriod:    3,
	}
}

// Monitor polls one game until it goes final or the context is
// cancelled, pushing every tracked player through the projection and
// trigger pipeline each cycle.
type Monitor struct {
	ref       game.Ref
	provider  Provider
	baselines *baseline.Store
	engine    *projection.Engine
	eval      *trigger.Evaluator
	sink      alerts.Sink
	cfg       Config

	done chan struct{}
}

func New(ref game.Ref, provider Provider, baselines *baseline.Store, engine *projection.Engine, triggerCfg trigger.Config, sink alerts.Sink, cfg Config) *Monitor {
	return &Monitor{
		ref:       ref,
		provider:  provider,
		baselines: baselines,
		engine:    engine,
		eval:      trigger.NewEvaluator(triggerCfg),
		sink:      sink,
		cfg:       cfg,
		done:      make(chan struct{}),
	}
}

// Done is closed when the worker has fully exited; the supervisor waits
// on it during shutdown.
func (m *Monitor) Done() <-chan struct{} { return m.done }

// Run blocks until the game is final or ctx is cancelled. Poll failures
// never terminate the loop — the worker simply produces no alerts for
// that cycle and retries after a full interval.
func (m *Monitor) Run(ctx context.Context) {
	defer close(m.done)

	telemetry.Metrics.ActiveMonitors.Inc()
	defer telemetry.Metrics.ActiveMonitors.Dec()

	telemetry.Infof("[%s] monitor started", m.ref.GameID)

	ticker := time.NewTicker(m.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if ctx.Err() != nil {
			telemetry.Infof("[%s] monitor cancelled", m.ref.GameID)
			return
		}

		if final := m.poll(ctx); final {
			telemetry.Infof("[%s] game final, monitor stopping (alerts fired: %d)",
				m.ref.GameID, m.eval.FiredCount())
			return
		}

		select {
		case <-ctx.Done():
			telemetry.Infof("[%s] monitor cancelled", m.ref.GameID)
			return
		case <-ticker.C:
		}
	}
}

// poll runs one cycle. Returns true when the game has reached a
// terminal status.
func (m *Monitor) poll(ctx context.Context) bool {
	telemetry.Metrics.PollCycles.Inc()

	snap, err := m.provider.FetchLiveSnapshot(ctx, m.ref.GameID)
	if err != nil {
		if errors.Is(err, nbastats.ErrNotActive) {
			telemetry.Debugf("[%s] not active yet", m.ref.GameID)
		} else if ctx.Err() == nil {
			telemetry.Metrics.PollErrors.Inc()
			telemetry.Warnf("[%s] poll failed: %v", m.ref.GameID, err)
		}
		return false
	}

	switch snap.Status {
	case game.StatusFinal:
		m.notifyGameOver(ctx, snap)
		return true
	case game.StatusLive:
	default:
		telemetry.Debugf("[%s] not live yet (status=%s)", m.ref.GameID, snap.Status)
		return false
	}

	telemetry.Debugf("[%s] live Q%d %s — scanning %d players",
		m.ref.GameID, snap.Period, snap.Clock, len(snap.Players))

	for i := range snap.Players {
		m.evaluatePlayer(ctx, snap, &snap.Players[i])
	}
	return false
}

func (m *Monitor) evaluatePlayer(ctx context.Context, snap *game.LiveSnapshot, ps *game.PlayerSnapshot) {
	rec, ok := m.baselines.Get(ps.PlayerID)
	if !ok {
		telemetry.Metrics.BaselineMisses.Inc()
		return
	}
	if ps.Minutes < m.cfg.MinMinutes {
		return
	}
	telemetry.Metrics.PlayersEvaluated.Inc()

	// Points pace drives the momentum adjustment for all stats.
	observedPts := ps.Values[game.StatPoints] / ps.Minutes
	perf := projection.PerformanceFactor(observedPts, rec.RatePerMinute[game.StatPoints])

	remaining := m.engine.RemainingMinutes(
		rec.ExpectedActiveMinutes, ps.Minutes,
		ps.Fouls, snap.ScoreDiff(), snap.Period, perf)

	flags := m.situationalFlags(snap, ps, perf)

	for _, st := range game.TrackedStats {
		proj := m.engine.Project(
			ps.Values[st], ps.Minutes,
			rec.RatePerMinute[st], rec.Sigma[st],
			remaining, rec.ExpectedActiveMinutes, snap.Period)

		alert, fired := m.eval.Evaluate(trigger.Input{
			Key:        trigger.Key{PlayerID: ps.PlayerID, Stat: st, Period: snap.Period},
			GameID:     m.ref.GameID,
			PlayerName: ps.Name,
			SeasonAvg:  rec.SeasonAverage(st),
			AvgMinutes: rec.ExpectedActiveMinutes,
			Current:    ps.Values[st],
			Minutes:    ps.Minutes,
			Low:        proj.Low,
			High:       proj.High,
			PerfFactor: perf,
			Flags:      flags,
		})
		if !fired {
			continue
		}

		telemetry.Metrics.AlertsFired.Inc()
		telemetry.Infof("[%s] %s alert: %s %s range=[%.1f-%.1f]",
			m.ref.GameID, alert.Direction, ps.Name, st, proj.Low, proj.High)
		m.deliver(ctx, alert)
	}
}

// deliver hands a fired alert to the sink. The trigger key is already
// marked fired, so a failure here is counted and forgotten — never
// retried, never duplicated.
func (m *Monitor) deliver(ctx context.Context, alert trigger.Alert) {
	dctx, cancel := context.WithTimeout(ctx, m.cfg.DeliveryTimeout)
	defer cancel()

	start := time.Now()
	if err := m.sink.Deliver(dctx, alert); err != nil {
		telemetry.Metrics.AlertDeliveryErrors.Inc()
		telemetry.Warnf("[%s] alert delivery failed: %v", m.ref.GameID, err)
	}
	telemetry.Metrics.DeliveryLatency.Record(time.Since(start))
}

// notifyGameOver posts the final-score summary to sinks that want one.
func (m *Monitor) notifyGameOver(ctx context.Context, snap *game.LiveSnapshot) {
	r, ok := m.sink.(alerts.GameOverReporter)
	if !ok {
		return
	}
	dctx, cancel := context.WithTimeout(ctx, m.cfg.DeliveryTimeout)
	defer cancel()
	if err := r.GameOver(dctx, m.ref.GameID, snap.HomeScore, snap.AwayScore, m.eval.FiredCount()); err != nil {
		telemetry.Warnf("[%s] game-over summary failed: %v", m.ref.GameID, err)
	}
}

func (m *Monitor) situationalFlags(snap *game.LiveSnapshot, ps *game.PlayerSnapshot, perf float64) []string {
	var flags []string
	if ps.Fouls >= m.cfg.FoulTroubleCount && (snap.Period == 2 || snap.Period == 3) {
		flags = append(flags, "Foul Trouble")
	}
	winning := snap.WinningTeamID(m.ref.HomeTeamID, m.ref.AwayTeamID)
	if snap.ScoreDiff() > m.cfg.BlowoutDiff && snap.Period >= m.cfg.BlowoutPeriod && ps.TeamID == winning {
		flags = append(flags, "Blowout Risk")
	}
	if perf > m.cfg.HotThreshold {
		flags = append(flags, "Hot Hand")
	} else if perf < m.cfg.ColdThreshold {
		flags = append(flags, "Gone Cold")
	}
	return flags
}
