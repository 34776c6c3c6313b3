// Package research builds the daily baselines file: per-minute rates,
// expected minutes, and recent-total sigma for every player on today's
// slate, adjusted for venue, recent form, and opponent defense.
package research

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/raghav-misra/buddard/internal/adapters/outbound/nbastats"
	"github.com/raghav-misra/buddard/internal/core/game"
	"github.com/raghav-misra/buddard/internal/telemetry"
)

const (
	minSeasonMinutes = 50 // below this the sample is useless
	sigmaGames       = 20 // variance window over recent totals
	recentFormGames  = 5  // recent-form blend window

	seasonWeight     = 0.7
	recentFormWeight = 0.3

	homeModifier = 1.02
	awayModifier = 0.98
)

// Provider is the subset of the stats client the builder consumes.
type Provider interface {
	FetchSchedule(ctx context.Context, date string) ([]game.Ref, error)
	FetchTeamRoster(ctx context.Context, teamID, season string) ([]nbastats.RosterPlayer, error)
	FetchCareerRates(ctx context.Context, playerID string) (nbastats.CareerBaseline, error)
	FetchRecentLogs(ctx context.Context, playerID, season string, n int) ([]nbastats.GameTotals, error)
	FetchTeamDefense(ctx context.Context, season string) (map[string]nbastats.TeamDefense, error)
}

// Builder accumulates one run's baselines. A Builder is single-use: its
// caches live for exactly one run and are discarded with it.
type Builder struct {
	provider Provider
	season   string
	outPath  string

	mu      sync.Mutex
	players map[string]filePlayer

	defOnce    singleflight.Group
	defRatings *defenseRatings
}

func NewBuilder(provider Provider, season, outPath string) *Builder {
	return &Builder{
		provider: provider,
		season:   season,
		outPath:  outPath,
		players:  make(map[string]filePlayer),
	}
}

type fileStats struct {
	BaselinePtsMin float64 `json:"baseline_pts_min"`
	BaselineRebMin float64 `json:"baseline_reb_min"`
	BaselineAstMin float64 `json:"baseline_ast_min"`
	AvgMinutes     float64 `json:"avg_minutes"`
	SigmaPts       float64 `json:"sigma_pts"`
	SigmaReb       float64 `json:"sigma_reb"`
	SigmaAst       float64 `json:"sigma_ast"`
}

type filePlayer struct {
	Name   string    `json:"name"`
	TeamID string    `json:"team_id"`
	Stats  fileStats `json:"stats"`
}

type fileMeta struct {
	GeneratedDate string `json:"generated_date"`
	Timestamp     int64  `json:"timestamp"`
}

type fileDoc struct {
	Meta    fileMeta              `json:"_meta"`
	Players map[string]filePlayer `json:"players"`
}

// Build produces the baselines file for a date (YYYY-MM-DD). If a file
// for the same date already exists the run is skipped — the slate only
// needs to be researched once per day.
func (b *Builder) Build(ctx context.Context, date string) error {
	if b.alreadyBuilt(date) {
		telemetry.Infof("research: baselines for %s already built, skipping", date)
		return nil
	}

	refs, err := b.provider.FetchSchedule(ctx, date)
	if err != nil {
		return fmt.Errorf("research: %w", err)
	}
	if len(refs) == 0 {
		telemetry.Infof("research: no games on %s", date)
		return b.save(date)
	}
	telemetry.Infof("research: %d games on %s", len(refs), date)

	for _, ref := range refs {
		// Home and away rosters are independent; the client's rate
		// limiter serializes the actual requests.
		var wg sync.WaitGroup
		for _, side := range []struct {
			teamID, opponentID string
			home               bool
		}{
			{ref.HomeTeamID, ref.AwayTeamID, true},
			{ref.AwayTeamID, ref.HomeTeamID, false},
		} {
			side := side
			wg.Add(1)
			go func() {
				defer wg.Done()
				b.processTeam(ctx, side.teamID, side.opponentID, side.home)
			}()
		}
		wg.Wait()

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	return b.save(date)
}

func (b *Builder) alreadyBuilt(date string) bool {
	data, err := os.ReadFile(b.outPath)
	if err != nil {
		return false
	}
	var doc fileDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return false
	}
	return doc.Meta.GeneratedDate == date
}

func (b *Builder) processTeam(ctx context.Context, teamID, opponentID string, home bool) {
	roster, err := b.provider.FetchTeamRoster(ctx, teamID, b.season)
	if err != nil {
		telemetry.Warnf("research: roster %s: %v", teamID, err)
		return
	}

	for _, p := range roster {
		b.mu.Lock()
		_, seen := b.players[p.PlayerID]
		b.mu.Unlock()
		if seen {
			continue
		}

		stats, err := b.playerStats(ctx, p.PlayerID, opponentID, home)
		if err != nil {
			telemetry.Debugf("research: skip %s (%s): %v", p.Name, p.PlayerID, err)
			continue
		}

		b.mu.Lock()
		b.players[p.PlayerID] = filePlayer{Name: p.Name, TeamID: teamID, Stats: *stats}
		b.mu.Unlock()
	}
}

func (b *Builder) playerStats(ctx context.Context, playerID, opponentID string, home bool) (*fileStats, error) {
	career, err := b.provider.FetchCareerRates(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if career.SeasonMinutes < minSeasonMinutes {
		return nil, fmt.Errorf("only %.0f season minutes", career.SeasonMinutes)
	}

	logs, err := b.provider.FetchRecentLogs(ctx, playerID, b.season, sigmaGames)
	if err != nil {
		logs = nil // sigma falls back to zero, substituted downstream
	}

	pts, reb, ast := blendRecentForm(career, logs)

	// Venue: small, flat bump at home, dip on the road.
	mod := awayModifier
	if home {
		mod = homeModifier
	}
	pts *= mod
	reb *= mod
	ast *= mod

	// Opponent: pace gives more possessions, DvP gives softer matchups.
	if ratings := b.defense(ctx); ratings != nil {
		if opp, ok := ratings.teams[opponentID]; ok {
			pace := ratings.paceModifier(opp)
			pts *= pace * ratings.statModifier(opp, game.StatPoints)
			reb *= pace * ratings.statModifier(opp, game.StatRebounds)
			ast *= pace * ratings.statModifier(opp, game.StatAssists)
		}
	}

	sp, sr, sa := sigmaOfTotals(logs)

	return &fileStats{
		BaselinePtsMin: pts,
		BaselineRebMin: reb,
		BaselineAstMin: ast,
		AvgMinutes:     career.AvgMinutes,
		SigmaPts:       sp,
		SigmaReb:       sr,
		SigmaAst:       sa,
	}, nil
}

func (b *Builder) save(date string) error {
	if err := os.MkdirAll(filepath.Dir(b.outPath), 0o755); err != nil {
		return fmt.Errorf("research: create data dir: %w", err)
	}

	b.mu.Lock()
	doc := fileDoc{
		Meta:    fileMeta{GeneratedDate: date, Timestamp: time.Now().Unix()},
		Players: b.players,
	}
	b.mu.Unlock()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("research: marshal baselines: %w", err)
	}
	if err := os.WriteFile(b.outPath, data, 0o644); err != nil {
		return fmt.Errorf("research: write baselines: %w", err)
	}

	telemetry.Infof("research: saved %d player baselines to %s", len(doc.Players), b.outPath)
	return nil
}
