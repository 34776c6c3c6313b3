// Package backtest replays finished games at fixed checkpoints through
// the live projection pipeline and scores the resulting bands against
// the actual final lines.
package backtest

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/raghav-misra/buddard/internal/adapters/outbound/nbastats"
	"github.com/raghav-misra/buddard/internal/core/game"
	"github.com/raghav-misra/buddard/internal/core/projection"
	"github.com/raghav-misra/buddard/internal/telemetry"
)

// Checkpoints are clock offsets from tip-off in tenths of a second,
// matching the stats API range parameters.
var checkpoints = []struct {
	Name     string
	EndRange int
	Period   int
}{
	{"Q1 End", 7200, 1},
	{"Halftime", 14400, 2},
	{"Q3 End", 21600, 3},
}

// significantMinutes filters the ground truth to rotation players; a
// nine-minute bench stint is not worth scoring.
const significantMinutes = 20.0

// Fallback sigmas when a player has no usable game-log sample.
var fallbackSigma = map[game.StatType]float64{
	game.StatPoints:   5.0,
	game.StatRebounds: 2.0,
	game.StatAssists:  2.0,
}

// Provider is the subset of the stats client the runner consumes.
type Provider interface {
	FetchBoxScoreRange(ctx context.Context, gameID string, endRange int) ([]nbastats.PlayerLine, error)
	FetchCareerRates(ctx context.Context, playerID string) (nbastats.CareerBaseline, error)
	FetchRecentLogs(ctx context.Context, playerID, season string, n int) ([]nbastats.GameTotals, error)
}

// cacheKey is the structured identity of one cached baseline.
type cacheKey struct {
	PlayerID string
	Season   string
}

type cachedBaseline struct {
	rates      map[game.StatType]float64
	sigma      map[game.StatType]float64
	avgMinutes float64
}

// Runner scores one or more games. The baseline cache lives for the
// Runner's lifetime and is never evicted; discard the Runner to clear it.
type Runner struct {
	provider Provider
	engine   *projection.Engine
	store    *Store
	season   string

	cache map[cacheKey]*cachedBaseline
}

func NewRunner(provider Provider, engine *projection.Engine, store *Store, season string) *Runner {
	return &Runner{
		provider: provider,
		engine:   engine,
		store:    store,
		season:   season,
		cache:    make(map[cacheKey]*cachedBaseline),
	}
}

// Run replays one finished game and returns the scored report.
func (r *Runner) Run(ctx context.Context, gameID string) (*Report, error) {
	telemetry.Infof("backtest: fetching full game %s", gameID)
	final, err := r.provider.FetchBoxScoreRange(ctx, gameID, 0)
	if err != nil {
		return nil, fmt.Errorf("backtest: ground truth: %w", err)
	}

	truth := make(map[string]nbastats.PlayerLine)
	for _, line := range final {
		if line.Minutes > significantMinutes {
			truth[line.PlayerID] = line
		}
	}
	if len(truth) == 0 {
		return nil, fmt.Errorf("backtest: no rotation players in %s", gameID)
	}
	telemetry.Infof("backtest: %d rotation players (> %.0f min)", len(truth), significantMinutes)

	report := NewReport(gameID)
	for _, cp := range checkpoints {
		lines, err := r.provider.FetchBoxScoreRange(ctx, gameID, cp.EndRange)
		if err != nil {
			telemetry.Warnf("backtest: checkpoint %s: %v", cp.Name, err)
			continue
		}

		scoreDiff := teamScoreDiff(lines)
		for _, line := range lines {
			truthLine, ok := truth[line.PlayerID]
			if !ok || line.Minutes < 1 {
				continue
			}
			r.scorePlayer(ctx, report, cp.Name, cp.Period, scoreDiff, line, truthLine)
		}
	}
	return report, nil
}

func (r *Runner) scorePlayer(ctx context.Context, report *Report, checkpoint string, period, scoreDiff int, line, truth nbastats.PlayerLine) {
	bl, err := r.baselineFor(ctx, line.PlayerID)
	if err != nil {
		telemetry.Debugf("backtest: no baseline for %s: %v", line.Name, err)
		return
	}

	current := map[game.StatType]float64{
		game.StatPoints:   line.Points,
		game.StatRebounds: line.Rebounds,
		game.StatAssists:  line.Assists,
	}
	finalVals := map[game.StatType]float64{
		game.StatPoints:   truth.Points,
		game.StatRebounds: truth.Rebounds,
		game.StatAssists:  truth.Assists,
	}

	perf := projection.PerformanceFactor(line.Points/line.Minutes, bl.rates[game.StatPoints])
	remaining := r.engine.RemainingMinutes(bl.avgMinutes, line.Minutes, line.Fouls, scoreDiff, period, perf)

	for _, st := range game.TrackedStats {
		proj := r.engine.Project(current[st], line.Minutes, bl.rates[st], bl.sigma[st], remaining, bl.avgMinutes, period)

		row := Row{
			Ts:         time.Now(),
			GameID:     report.GameID,
			Checkpoint: checkpoint,
			PlayerID:   line.PlayerID,
			PlayerName: line.Name,
			Stat:       string(st),
			Minutes:    line.Minutes,
			Current:    current[st],
			PFS:        proj.PFS,
			Low:        proj.Low,
			High:       proj.High,
			AdjSigma:   proj.AdjustedSigma,
			PerfFactor: perf,
			FinalValue: finalVals[st],
			AbsError:   math.Abs(proj.PFS - finalVals[st]),
			WithinBand: finalVals[st] >= proj.Low && finalVals[st] <= proj.High,
		}
		report.Add(row)

		if r.store != nil {
			if err := r.store.Insert(row); err != nil {
				telemetry.Warnf("backtest: persist row: %v", err)
			}
		}
	}
}

// baselineFor memoizes raw career baselines per player for the run.
// Unlike the research builder, no venue or opponent adjustment applies:
// the backtest scores the projection math, not the matchup model.
func (r *Runner) baselineFor(ctx context.Context, playerID string) (*cachedBaseline, error) {
	key := cacheKey{PlayerID: playerID, Season: r.season}
	if bl, ok := r.cache[key]; ok {
		return bl, nil
	}

	career, err := r.provider.FetchCareerRates(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if career.SeasonMinutes < 50 {
		return nil, fmt.Errorf("only %.0f season minutes", career.SeasonMinutes)
	}

	logs, err := r.provider.FetchRecentLogs(ctx, playerID, r.season, 20)
	if err != nil {
		logs = nil // fixed fallback sigmas apply
	}

	bl := &cachedBaseline{
		rates: map[game.StatType]float64{
			game.StatPoints:   career.PtsPerMin,
			game.StatRebounds: career.RebPerMin,
			game.StatAssists:  career.AstPerMin,
		},
		sigma:      sigmaFromLogs(logs),
		avgMinutes: career.AvgMinutes,
	}
	r.cache[key] = bl
	return bl, nil
}

// sigmaFromLogs computes the stddev of recent totals, falling back to
// fixed defaults for thin samples (a degenerate sigma would make every
// checkpoint band trivially wrong).
func sigmaFromLogs(logs []nbastats.GameTotals) map[game.StatType]float64 {
	out := map[game.StatType]float64{
		game.StatPoints:   fallbackSigma[game.StatPoints],
		game.StatRebounds: fallbackSigma[game.StatRebounds],
		game.StatAssists:  fallbackSigma[game.StatAssists],
	}
	if len(logs) < 2 {
		return out
	}

	n := float64(len(logs))
	for st, pick := range map[game.StatType]func(nbastats.GameTotals) float64{
		game.StatPoints:   func(g nbastats.GameTotals) float64 { return g.Points },
		game.StatRebounds: func(g nbastats.GameTotals) float64 { return g.Rebounds },
		game.StatAssists:  func(g nbastats.GameTotals) float64 { return g.Assists },
	} {
		var sum float64
		for _, g := range logs {
			sum += pick(g)
		}
		mean := sum / n
		var ss float64
		for _, g := range logs {
			d := pick(g) - mean
			ss += d * d
		}
		out[st] = math.Sqrt(ss / (n - 1))
	}
	return out
}

// teamScoreDiff reconstructs the margin at a checkpoint by summing
// player points per team (the range endpoint has no team score field).
func teamScoreDiff(lines []nbastats.PlayerLine) int {
	totals := make(map[string]float64, 2)
	for _, l := range lines {
		totals[l.TeamID] += l.Points
	}
	vals := make([]float64, 0, 2)
	for _, v := range totals {
		vals = append(vals, v)
	}
	if len(vals) != 2 {
		return 0
	}
	return int(math.Abs(vals[0] - vals[1]))
}
