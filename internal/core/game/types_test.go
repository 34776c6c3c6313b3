package game

import "testing"

func TestStatusString(t *testing.T) {
	tests := []struct {
		st   Status
		want string
	}{
		{StatusScheduled, "scheduled"},
		{StatusLive, "live"},
		{StatusFinal, "final"},
		{Status(7), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.st.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.st, got, tt.want)
		}
	}
}

func TestScoreDiff(t *testing.T) {
	s := LiveSnapshot{HomeScore: 98, AwayScore: 110}
	if got := s.ScoreDiff(); got != 12 {
		t.Errorf("ScoreDiff = %d, want 12", got)
	}
}

func TestWinningTeamID(t *testing.T) {
	s := LiveSnapshot{HomeScore: 98, AwayScore: 110}
	if got := s.WinningTeamID("H", "A"); got != "A" {
		t.Errorf("WinningTeamID = %q, want A", got)
	}

	// Ties break toward the home side.
	s = LiveSnapshot{HomeScore: 100, AwayScore: 100}
	if got := s.WinningTeamID("H", "A"); got != "H" {
		t.Errorf("tied WinningTeamID = %q, want H", got)
	}
}
