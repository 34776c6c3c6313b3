package game

// StatType identifies one tracked box-score statistic.
type StatType string

const (
	StatPoints   StatType = "PTS"
	StatRebounds StatType = "REB"
	StatAssists  StatType = "AST"
)

// TrackedStats is the evaluation order for every pipeline pass.
var TrackedStats = []StatType{StatPoints, StatRebounds, StatAssists}

// Status is the lifecycle state of a game as reported by the provider.
// Mirrors the upstream gameStatus codes: 1=scheduled, 2=live, 3=final.
type Status int

const (
	StatusScheduled Status = 1
	StatusLive      Status = 2
	StatusFinal     Status = 3
)

func (s Status) String() string {
	switch s {
	case StatusScheduled:
		return "scheduled"
	case StatusLive:
		return "live"
	case StatusFinal:
		return "final"
	default:
		return "unknown"
	}
}

// Ref identifies one scheduled game.
type Ref struct {
	GameID     string
	HomeTeamID string
	AwayTeamID string
}

// PlayerSnapshot is one player's cumulative line at poll time.
type PlayerSnapshot struct {
	PlayerID string
	Name     string
	TeamID   string
	Minutes  float64 // fractional minutes played
	Fouls    int
	Values   map[StatType]float64
}

// LiveSnapshot is a point-in-time read of a game. Produced by the
// provider adapter, treated as an immutable value by the pipeline.
type LiveSnapshot struct {
	GameID    string
	Status    Status
	Period    int
	Clock     string // informational only
	HomeScore int
	AwayScore int
	Players   []PlayerSnapshot
}

// ScoreDiff returns the absolute score margin.
func (s *LiveSnapshot) ScoreDiff() int {
	d := s.HomeScore - s.AwayScore
	if d < 0 {
		return -d
	}
	return d
}

// WinningTeamID returns the home team id when the home side leads or the
// game is tied, matching the upstream tie-break.
func (s *LiveSnapshot) WinningTeamID(homeTeamID, awayTeamID string) string {
	if s.HomeScore > s.AwayScore {
		return homeTeamID
	}
	return awayTeamID
}
