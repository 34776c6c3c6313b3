package nbastats

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// CareerBaseline is the current-season per-minute production profile.
type CareerBaseline struct {
	PtsPerMin     float64
	RebPerMin     float64
	AstPerMin     float64
	AvgMinutes    float64
	SeasonMinutes float64
	GamesPlayed   float64
}

// FetchCareerRates pulls the season totals table and converts the most
// recent season row into per-minute rates.
func (c *Client) FetchCareerRates(ctx context.Context, playerID string) (CareerBaseline, error) {
	url := fmt.Sprintf("%s/playercareerstats?PerMode=Totals&PlayerID=%s", c.statsBase, playerID)

	var resp statsResponse
	if err := c.getJSON(ctx, url, &resp); err != nil {
		return CareerBaseline{}, fmt.Errorf("career rates %s: %w", playerID, err)
	}

	table, ok := resp.table("SeasonTotalsRegularSeason")
	if !ok || len(table.RowSet) == 0 {
		return CareerBaseline{}, fmt.Errorf("career rates %s: %w", playerID, ErrNoData)
	}

	// Last row is the current season.
	current := table.rows()[len(table.RowSet)-1]
	minutes := current.float("MIN")
	if minutes <= 0 {
		return CareerBaseline{}, fmt.Errorf("career rates %s: zero minutes: %w", playerID, ErrNoData)
	}
	games := current.float("GP")
	if games <= 0 {
		return CareerBaseline{}, fmt.Errorf("career rates %s: zero games: %w", playerID, ErrNoData)
	}

	return CareerBaseline{
		PtsPerMin:     current.float("PTS") / minutes,
		RebPerMin:     current.float("REB") / minutes,
		AstPerMin:     current.float("AST") / minutes,
		AvgMinutes:    minutes / games,
		SeasonMinutes: minutes,
		GamesPlayed:   games,
	}, nil
}

// GameTotals is one past game's final line, used for sigma estimation
// and recent-form blending.
type GameTotals struct {
	Minutes  float64
	Points   float64
	Rebounds float64
	Assists  float64
}

// FetchRecentLogs returns up to n most recent game totals for a player.
func (c *Client) FetchRecentLogs(ctx context.Context, playerID, season string, n int) ([]GameTotals, error) {
	url := fmt.Sprintf("%s/playergamelog?PlayerID=%s&Season=%s&SeasonType=Regular+Season",
		c.statsBase, playerID, strings.ReplaceAll(season, " ", "+"))

	var resp statsResponse
	if err := c.getJSON(ctx, url, &resp); err != nil {
		return nil, fmt.Errorf("game logs %s: %w", playerID, err)
	}

	table, ok := resp.table("PlayerGameLog")
	if !ok {
		return nil, fmt.Errorf("game logs %s: %w", playerID, ErrNoData)
	}

	rows := table.rows()
	if len(rows) > n {
		rows = rows[:n] // feed is newest-first
	}
	logs := make([]GameTotals, 0, len(rows))
	for _, r := range rows {
		logs = append(logs, GameTotals{
			Minutes:  r.float("MIN"),
			Points:   r.float("PTS"),
			Rebounds: r.float("REB"),
			Assists:  r.float("AST"),
		})
	}
	return logs, nil
}

// RosterPlayer is one roster entry.
type RosterPlayer struct {
	PlayerID string
	Name     string
}

func (c *Client) FetchTeamRoster(ctx context.Context, teamID, season string) ([]RosterPlayer, error) {
	url := fmt.Sprintf("%s/commonteamroster?TeamID=%s&Season=%s", c.statsBase, teamID, season)

	var resp statsResponse
	if err := c.getJSON(ctx, url, &resp); err != nil {
		return nil, fmt.Errorf("roster %s: %w", teamID, err)
	}

	table, ok := resp.table("CommonTeamRoster")
	if !ok {
		return nil, fmt.Errorf("roster %s: %w", teamID, ErrNoData)
	}

	players := make([]RosterPlayer, 0, len(table.RowSet))
	for _, r := range table.rows() {
		players = append(players, RosterPlayer{
			PlayerID: r.str("PLAYER_ID"),
			Name:     r.str("PLAYER"),
		})
	}
	return players, nil
}

// TeamDefense merges the advanced (pace) and opponent (allowed totals)
// team tables for one season.
type TeamDefense struct {
	TeamID      string
	Pace        float64
	OppPoints   float64
	OppRebounds float64
	OppAssists  float64
}

func (c *Client) FetchTeamDefense(ctx context.Context, season string) (map[string]TeamDefense, error) {
	advanced, err := c.leagueDashTeamStats(ctx, season, "Advanced")
	if err != nil {
		return nil, err
	}
	opponent, err := c.leagueDashTeamStats(ctx, season, "Opponent")
	if err != nil {
		return nil, err
	}

	out := make(map[string]TeamDefense, len(advanced.RowSet))
	for _, r := range advanced.rows() {
		id := r.str("TEAM_ID")
		out[id] = TeamDefense{TeamID: id, Pace: r.float("PACE")}
	}
	for _, r := range opponent.rows() {
		id := r.str("TEAM_ID")
		td := out[id]
		td.TeamID = id
		td.OppPoints = r.float("OPP_PTS")
		td.OppRebounds = r.float("OPP_REB")
		td.OppAssists = r.float("OPP_AST")
		out[id] = td
	}
	return out, nil
}

func (c *Client) leagueDashTeamStats(ctx context.Context, season, measureType string) (resultSet, error) {
	url := fmt.Sprintf("%s/leaguedashteamstats?Season=%s&MeasureType=%s&SeasonType=Regular+Season",
		c.statsBase, season, measureType)

	var resp statsResponse
	if err := c.getJSON(ctx, url, &resp); err != nil {
		return resultSet{}, fmt.Errorf("team stats %s: %w", measureType, err)
	}
	table, ok := resp.table("LeagueDashTeamStats")
	if !ok {
		return resultSet{}, fmt.Errorf("team stats %s: %w", measureType, ErrNoData)
	}
	return table, nil
}

// ── range boxscore (backtest checkpoints) ──────────────────────

// PlayerLine is one player's cumulative line within a clock range.
type PlayerLine struct {
	PlayerID string
	Name     string
	TeamID   string
	Minutes  float64
	Points   float64
	Rebounds float64
	Assists  float64
	Fouls    int
}

type boxscoreV3 struct {
	BoxScoreTraditional struct {
		GameID   string     `json:"gameId"`
		HomeTeam v3TeamSide `json:"homeTeam"`
		AwayTeam v3TeamSide `json:"awayTeam"`
	} `json:"boxScoreTraditional"`
}

type v3TeamSide struct {
	TeamID  json.Number `json:"teamId"`
	Players []struct {
		PersonID   json.Number `json:"personId"`
		FirstName  string      `json:"firstName"`
		FamilyName string      `json:"familyName"`
		Statistics struct {
			Minutes       string  `json:"minutes"` // "32:10"
			Points        float64 `json:"points"`
			ReboundsTotal float64 `json:"reboundsTotal"`
			Assists       float64 `json:"assists"`
			FoulsPersonal float64 `json:"foulsPersonal"`
		} `json:"statistics"`
	} `json:"players"`
}

// FetchBoxScoreRange returns per-player cumulative lines from game start
// to endRange (tenths of a second of game time). endRange 0 means the
// full game.
func (c *Client) FetchBoxScoreRange(ctx context.Context, gameID string, endRange int) ([]PlayerLine, error) {
	url := fmt.Sprintf("%s/boxscoretraditionalv3?GameID=%s&StartPeriod=0&EndPeriod=0&StartRange=0&EndRange=%d&RangeType=%d",
		c.statsBase, gameID, endRange, rangeType(endRange))

	var resp boxscoreV3
	if err := c.getJSON(ctx, url, &resp); err != nil {
		return nil, fmt.Errorf("boxscore range %s: %w", gameID, err)
	}

	lines := append(
		convertV3(resp.BoxScoreTraditional.HomeTeam),
		convertV3(resp.BoxScoreTraditional.AwayTeam)...,
	)
	if len(lines) == 0 {
		return nil, fmt.Errorf("boxscore range %s: %w", gameID, ErrNoData)
	}
	return lines, nil
}

func rangeType(endRange int) int {
	if endRange > 0 {
		return 2
	}
	return 0
}

func convertV3(side v3TeamSide) []PlayerLine {
	out := make([]PlayerLine, 0, len(side.Players))
	for _, p := range side.Players {
		out = append(out, PlayerLine{
			PlayerID: p.PersonID.String(),
			Name:     strings.TrimSpace(p.FirstName + " " + p.FamilyName),
			TeamID:   side.TeamID.String(),
			Minutes:  ParseClockMinutes(p.Statistics.Minutes),
			Points:   p.Statistics.Points,
			Rebounds: p.Statistics.ReboundsTotal,
			Assists:  p.Statistics.Assists,
			Fouls:    int(p.Statistics.FoulsPersonal),
		})
	}
	return out
}

// ParseClockMinutes converts "MM:SS" to fractional minutes.
func ParseClockMinutes(s string) float64 {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0
	}
	var m, sec float64
	if _, err := fmt.Sscanf(s, "%f:%f", &m, &sec); err != nil {
		return 0
	}
	return m + sec/60.0
}
