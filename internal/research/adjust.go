package research

import (
	"context"
	"math"

	"github.com/raghav-misra/buddard/internal/adapters/outbound/nbastats"
	"github.com/raghav-misra/buddard/internal/core/game"
	"github.com/raghav-misra/buddard/internal/telemetry"
)

// defenseRatings holds the league team-defense table plus league
// averages, fetched at most once per run.
type defenseRatings struct {
	teams map[string]nbastats.TeamDefense

	avgPace   float64
	avgOppPts float64
	avgOppReb float64
	avgOppAst float64
}

// defense lazily fetches the league defense table. Both team goroutines
// race here on first use; singleflight collapses them into one request.
func (b *Builder) defense(ctx context.Context) *defenseRatings {
	v, err, _ := b.defOnce.Do("defense/"+b.season, func() (any, error) {
		if b.defRatings != nil {
			return b.defRatings, nil
		}
		teams, err := b.provider.FetchTeamDefense(ctx, b.season)
		if err != nil {
			return nil, err
		}
		b.defRatings = newDefenseRatings(teams)
		telemetry.Infof("research: league averages — pace %.2f, opp PTS %.1f, opp REB %.1f, opp AST %.1f",
			b.defRatings.avgPace, b.defRatings.avgOppPts, b.defRatings.avgOppReb, b.defRatings.avgOppAst)
		return b.defRatings, nil
	})
	if err != nil {
		telemetry.Warnf("research: team defense unavailable, skipping opponent adjustment: %v", err)
		return nil
	}
	return v.(*defenseRatings)
}

func newDefenseRatings(teams map[string]nbastats.TeamDefense) *defenseRatings {
	r := &defenseRatings{teams: teams}
	if len(teams) == 0 {
		return r
	}
	n := float64(len(teams))
	for _, t := range teams {
		r.avgPace += t.Pace
		r.avgOppPts += t.OppPoints
		r.avgOppReb += t.OppRebounds
		r.avgOppAst += t.OppAssists
	}
	r.avgPace /= n
	r.avgOppPts /= n
	r.avgOppReb /= n
	r.avgOppAst /= n
	return r
}

// paceModifier scales production by the opponent's possessions relative
// to league average: a fast opponent means more chances for everyone.
func (r *defenseRatings) paceModifier(opp nbastats.TeamDefense) float64 {
	if r.avgPace <= 0 {
		return 1.0
	}
	return opp.Pace / r.avgPace
}

// statModifier scales by how much of a stat the opponent allows versus
// league average: a defense giving up 10% more points than average
// projects 10% more points against it.
func (r *defenseRatings) statModifier(opp nbastats.TeamDefense, st game.StatType) float64 {
	var allowed, avg float64
	switch st {
	case game.StatPoints:
		allowed, avg = opp.OppPoints, r.avgOppPts
	case game.StatRebounds:
		allowed, avg = opp.OppRebounds, r.avgOppReb
	case game.StatAssists:
		allowed, avg = opp.OppAssists, r.avgOppAst
	}
	if avg <= 0 {
		return 1.0
	}
	return allowed / avg
}

// blendRecentForm mixes the season per-minute rates with the last few
// games' pace (70/30). With no usable recent sample the season rates
// stand alone.
func blendRecentForm(career nbastats.CareerBaseline, logs []nbastats.GameTotals) (pts, reb, ast float64) {
	pts, reb, ast = career.PtsPerMin, career.RebPerMin, career.AstPerMin

	recent := logs
	if len(recent) > recentFormGames {
		recent = recent[:recentFormGames]
	}
	var mins, p, r, a float64
	for _, g := range recent {
		mins += g.Minutes
		p += g.Points
		r += g.Rebounds
		a += g.Assists
	}
	if mins <= 0 {
		return pts, reb, ast
	}

	pts = seasonWeight*pts + recentFormWeight*(p/mins)
	reb = seasonWeight*reb + recentFormWeight*(r/mins)
	ast = seasonWeight*ast + recentFormWeight*(a/mins)
	return pts, reb, ast
}

// sigmaOfTotals is the sample standard deviation of recent game totals.
// The range is built on final totals, not per-minute pace, so the sigma
// is too. Fewer than two games yields 0 ("unknown"), substituted by the
// interval estimator.
func sigmaOfTotals(logs []nbastats.GameTotals) (sp, sr, sa float64) {
	if len(logs) < 2 {
		return 0, 0, 0
	}
	return stddev(logs, func(g nbastats.GameTotals) float64 { return g.Points }),
		stddev(logs, func(g nbastats.GameTotals) float64 { return g.Rebounds }),
		stddev(logs, func(g nbastats.GameTotals) float64 { return g.Assists })
}

func stddev(logs []nbastats.GameTotals, value func(nbastats.GameTotals) float64) float64 {
	n := float64(len(logs))
	var sum float64
	for _, g := range logs {
		sum += value(g)
	}
	mean := sum / n

	var ss float64
	for _, g := range logs {
		d := value(g) - mean
		ss += d * d
	}
	return math.Sqrt(ss / (n - 1))
}
