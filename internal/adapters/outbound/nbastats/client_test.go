package nbastats

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParseISOMinutes(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"PT12M34.00S", 12 + 34.0/60},
		{"PT36M00.00S", 36},
		{"PT0M30.00S", 0.5},
		{"PT00M00.00S", 0},
		{"", 0},
		{"PT", 0},
		{"garbage", 0},
	}
	for _, tt := range tests {
		if got := ParseISOMinutes(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("ParseISOMinutes(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseClockMinutes(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"32:30", 32.5},
		{"0:45", 0.75},
		{"", 0},
		{"32", 0},
	}
	for _, tt := range tests {
		if got := ParseClockMinutes(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("ParseClockMinutes(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRowAccessors(t *testing.T) {
	rs := resultSet{
		Headers: []string{"PLAYER_ID", "PLAYER", "MIN", "FG_PCT"},
		RowSet: [][]any{
			{float64(203999), "Nikola Jokic", float64(2150), nil},
		},
	}
	r := rs.rows()[0]

	if got := r.str("PLAYER_ID"); got != "203999" {
		t.Errorf("numeric id as string = %q, want 203999", got)
	}
	if got := r.str("PLAYER"); got != "Nikola Jokic" {
		t.Errorf("str = %q", got)
	}
	if got := r.float("MIN"); got != 2150 {
		t.Errorf("float = %v, want 2150", got)
	}
	if got := r.float("FG_PCT"); got != 0 {
		t.Errorf("null cell float = %v, want 0", got)
	}
	if got := r.float("MISSING"); got != 0 {
		t.Errorf("missing column float = %v, want 0", got)
	}
	if got := r.str("MISSING"); got != "" {
		t.Errorf("missing column str = %q, want empty", got)
	}
}

func statsServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchCareerRates(t *testing.T) {
	srv := statsServer(t, `{
		"resultSets": [{
			"name": "SeasonTotalsRegularSeason",
			"headers": ["SEASON_ID", "GP", "MIN", "PTS", "REB", "AST"],
			"rowSet": [
				["2024-25", 70, 2400, 1800, 700, 600],
				["2025-26", 20, 700, 560, 210, 180]
			]
		}]
	}`)
	c := NewClientWithBases(srv.URL, "")

	bl, err := c.FetchCareerRates(context.Background(), "203999")
	if err != nil {
		t.Fatal(err)
	}
	// The last row (current season) drives the rates.
	if math.Abs(bl.PtsPerMin-0.8) > 1e-9 {
		t.Errorf("PtsPerMin = %v, want 0.8", bl.PtsPerMin)
	}
	if math.Abs(bl.AvgMinutes-35) > 1e-9 {
		t.Errorf("AvgMinutes = %v, want 35", bl.AvgMinutes)
	}
	if bl.SeasonMinutes != 700 || bl.GamesPlayed != 20 {
		t.Errorf("season totals = %v min, %v gp", bl.SeasonMinutes, bl.GamesPlayed)
	}
}

func TestFetchCareerRatesNoData(t *testing.T) {
	srv := statsServer(t, `{"resultSets": []}`)
	c := NewClientWithBases(srv.URL, "")

	_, err := c.FetchCareerRates(context.Background(), "203999")
	if !errors.Is(err, ErrNoData) {
		t.Errorf("err = %v, want ErrNoData", err)
	}
}

func TestFetchSchedule(t *testing.T) {
	srv := statsServer(t, `{
		"resultSets": [{
			"name": "GameHeader",
			"headers": ["GAME_ID", "HOME_TEAM_ID", "VISITOR_TEAM_ID"],
			"rowSet": [["0022500001", 1610612747, 1610612743]]
		}]
	}`)
	c := NewClientWithBases(srv.URL, "")

	refs, err := c.FetchSchedule(context.Background(), "2026-01-15")
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 1 {
		t.Fatalf("got %d refs", len(refs))
	}
	want := "0022500001"
	if refs[0].GameID != want || refs[0].HomeTeamID != "1610612747" || refs[0].AwayTeamID != "1610612743" {
		t.Errorf("ref = %+v", refs[0])
	}
}

func TestFetchLiveSnapshot(t *testing.T) {
	srv := statsServer(t, `{
		"game": {
			"gameId": "0022500001",
			"gameStatus": 2,
			"period": 3,
			"gameClock": "PT05M12.00S",
			"homeTeam": {
				"teamId": 1610612747,
				"score": 78,
				"players": [{
					"personId": 2544,
					"name": "LeBron James",
					"statistics": {
						"minutes": "PT24M00.00S",
						"points": 21,
						"reboundsTotal": 6,
						"assists": 7,
						"foulsPersonal": 2
					}
				}]
			},
			"awayTeam": {"teamId": 1610612743, "score": 70, "players": []}
		}
	}`)
	c := NewClientWithBases("", srv.URL)

	snap, err := c.FetchLiveSnapshot(context.Background(), "0022500001")
	if err != nil {
		t.Fatal(err)
	}
	if snap.Period != 3 || snap.HomeScore != 78 || snap.ScoreDiff() != 8 {
		t.Errorf("snapshot = %+v", snap)
	}
	if len(snap.Players) != 1 {
		t.Fatalf("got %d players", len(snap.Players))
	}
	p := snap.Players[0]
	if p.PlayerID != "2544" || p.TeamID != "1610612747" || p.Fouls != 2 {
		t.Errorf("player = %+v", p)
	}
	if math.Abs(p.Minutes-24) > 1e-9 {
		t.Errorf("minutes = %v, want 24", p.Minutes)
	}
}

func TestFetchLiveSnapshotPregame(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)
	c := NewClientWithBases("", srv.URL)

	_, err := c.FetchLiveSnapshot(context.Background(), "0022500001")
	if !errors.Is(err, ErrNotActive) {
		t.Errorf("err = %v, want ErrNotActive", err)
	}
}

func TestFetchBoxScoreRange(t *testing.T) {
	srv := statsServer(t, `{
		"boxScoreTraditional": {
			"gameId": "0022500001",
			"homeTeam": {
				"teamId": 1610612747,
				"players": [{
					"personId": 2544,
					"firstName": "LeBron",
					"familyName": "James",
					"statistics": {
						"minutes": "11:30",
						"points": 9,
						"reboundsTotal": 3,
						"assists": 2,
						"foulsPersonal": 1
					}
				}]
			},
			"awayTeam": {"teamId": 1610612743, "players": []}
		}
	}`)
	c := NewClientWithBases(srv.URL, "")

	lines, err := c.FetchBoxScoreRange(context.Background(), "0022500001", 7200)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 1 {
		t.Fatalf("got %d lines", len(lines))
	}
	l := lines[0]
	if l.Name != "LeBron James" || l.Fouls != 1 {
		t.Errorf("line = %+v", l)
	}
	if math.Abs(l.Minutes-11.5) > 1e-9 {
		t.Errorf("minutes = %v, want 11.5", l.Minutes)
	}
}

func TestRangeType(t *testing.T) {
	if got := rangeType(7200); got != 2 {
		t.Errorf("rangeType(7200) = %d, want 2", got)
	}
	if got := rangeType(0); got != 0 {
		t.Errorf("rangeType(0) = %d, want 0", got)
	}
}
