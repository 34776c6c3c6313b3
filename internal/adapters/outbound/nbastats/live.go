package nbastats

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/raghav-misra/buddard/internal/core/game"
)

// FetchSchedule returns the games scheduled for a date (YYYY-MM-DD).
func (c *Client) FetchSchedule(ctx context.Context, date string) ([]game.Ref, error) {
	url := fmt.Sprintf("%s/scoreboardv2?DayOffset=0&GameDate=%s&LeagueID=00", c.statsBase, date)

	var resp statsResponse
	if err := c.getJSON(ctx, url, &resp); err != nil {
		return nil, fmt.Errorf("fetch schedule: %w", err)
	}

	header, ok := resp.table("GameHeader")
	if !ok {
		return nil, fmt.Errorf("fetch schedule: %w", ErrNoData)
	}

	refs := make([]game.Ref, 0, len(header.RowSet))
	for _, r := range header.rows() {
		refs = append(refs, game.Ref{
			GameID:     r.str("GAME_ID"),
			HomeTeamID: r.str("HOME_TEAM_ID"),
			AwayTeamID: r.str("VISITOR_TEAM_ID"),
		})
	}
	return refs, nil
}

// ── live boxscore (CDN) ────────────────────────────────────────

type liveBoxscore struct {
	Game struct {
		GameID     string       `json:"gameId"`
		GameStatus int          `json:"gameStatus"` // 1=scheduled 2=live 3=final
		Period     int          `json:"period"`
		GameClock  string       `json:"gameClock"`
		HomeTeam   liveTeamSide `json:"homeTeam"`
		AwayTeam   liveTeamSide `json:"awayTeam"`
	} `json:"game"`
}

type liveTeamSide struct {
	TeamID  json.Number  `json:"teamId"`
	Score   int          `json:"score"`
	Players []livePlayer `json:"players"`
}

type livePlayer struct {
	PersonID   json.Number `json:"personId"`
	Name       string      `json:"name"`
	Statistics struct {
		Minutes       string  `json:"minutes"` // "PT12M34.00S"
		Points        float64 `json:"points"`
		ReboundsTotal float64 `json:"reboundsTotal"`
		Assists       float64 `json:"assists"`
		FoulsPersonal int     `json:"foulsPersonal"`
	} `json:"statistics"`
}

// FetchLiveSnapshot reads the CDN live boxscore for one game. Before
// tip-off the CDN serves an error document instead of JSON; that is
// reported as ErrNotActive, which callers treat as "try next cycle".
func (c *Client) FetchLiveSnapshot(ctx context.Context, gameID string) (*game.LiveSnapshot, error) {
	url := fmt.Sprintf("%s/boxscore/boxscore_%s.json", c.liveBase, gameID)

	var box liveBoxscore
	if err := c.getJSON(ctx, url, &box); err != nil {
		if strings.Contains(err.Error(), "decode") || strings.Contains(err.Error(), "status 403") || strings.Contains(err.Error(), "status 404") {
			return nil, fmt.Errorf("%w: %s", ErrNotActive, gameID)
		}
		return nil, err
	}

	snap := &game.LiveSnapshot{
		GameID:    box.Game.GameID,
		Status:    game.Status(box.Game.GameStatus),
		Period:    box.Game.Period,
		Clock:     box.Game.GameClock,
		HomeScore: box.Game.HomeTeam.Score,
		AwayScore: box.Game.AwayTeam.Score,
	}
	snap.Players = append(
		convertPlayers(box.Game.HomeTeam),
		convertPlayers(box.Game.AwayTeam)...,
	)
	return snap, nil
}

func convertPlayers(side liveTeamSide) []game.PlayerSnapshot {
	out := make([]game.PlayerSnapshot, 0, len(side.Players))
	for _, p := range side.Players {
		out = append(out, game.PlayerSnapshot{
			PlayerID: p.PersonID.String(),
			Name:     p.Name,
			TeamID:   side.TeamID.String(),
			Minutes:  ParseISOMinutes(p.Statistics.Minutes),
			Fouls:    p.Statistics.FoulsPersonal,
			Values: map[game.StatType]float64{
				game.StatPoints:   p.Statistics.Points,
				game.StatRebounds: p.Statistics.ReboundsTotal,
				game.StatAssists:  p.Statistics.Assists,
			},
		})
	}
	return out
}

// ParseISOMinutes converts the live feed's ISO-8601 duration minutes
// field ("PT12M34.00S") to fractional minutes. Malformed input parses
// to 0, which downstream treats as "insufficient sample".
func ParseISOMinutes(s string) float64 {
	s = strings.TrimPrefix(s, "PT")
	if s == "" {
		return 0
	}

	var minutes, seconds float64
	if i := strings.Index(s, "M"); i >= 0 {
		m, err := strconv.ParseFloat(s[:i], 64)
		if err != nil {
			return 0
		}
		minutes = m
		s = s[i+1:]
	}
	if i := strings.Index(s, "S"); i >= 0 {
		sec, err := strconv.ParseFloat(s[:i], 64)
		if err != nil {
			return minutes
		}
		seconds = sec
	}
	return minutes + seconds/60.0
}
