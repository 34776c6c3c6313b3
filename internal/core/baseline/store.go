package baseline

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/raghav-misra/buddard/internal/core/game"
)

// fileStats matches the per-player stats block written by the research
// builder (and by the original generation of the baselines file).
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

// Meta is the metadata block of the baselines file.
type Meta struct {
	GeneratedDate string `json:"generated_date"`
}

type fileDoc struct {
	Meta    *Meta                 `json:"_meta,omitempty"`
	Players map[string]filePlayer `json:"players,omitempty"`
}

// Store is a read-only lookup of player baselines, loaded once at startup
// and shared across monitors without synchronization.
type Store struct {
	players map[string]Record
	byName  map[string]string // normalized name -> player id
	meta    Meta
}

// NewStore builds a Store from already-materialized records. Records with
// a non-positive expected-minutes figure are dropped here so they can
// never reach the remaining-time estimator.
func NewStore(records []Record) *Store {
	s := &Store{
		players: make(map[string]Record, len(records)),
		byName:  make(map[string]string, len(records)),
	}
	for _, r := range records {
		if r.ExpectedActiveMinutes <= 0 {
			continue
		}
		s.players[r.PlayerID] = r
		if r.Name != "" {
			s.byName[NormalizeName(r.Name)] = r.PlayerID
		}
	}
	return s
}

// Load reads the baselines file. Both the current format (with a "_meta"
// block and a "players" map) and the legacy flat map are accepted. On a
// missing or unparseable file it returns an empty, usable Store alongside
// the error; the caller logs once and every lookup simply misses.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return NewStore(nil), fmt.Errorf("read baselines: %w", err)
	}

	var doc fileDoc
	players := map[string]filePlayer{}
	if err := json.Unmarshal(data, &doc); err == nil && doc.Meta != nil && doc.Players != nil {
		players = doc.Players
	} else if err := json.Unmarshal(data, &players); err != nil {
		return NewStore(nil), fmt.Errorf("parse baselines: %w", err)
	}

	records := make([]Record, 0, len(players))
	for id, p := range players {
		records = append(records, recordFromFile(id, p))
	}
	s := NewStore(records)
	if doc.Meta != nil {
		s.meta = *doc.Meta
	}
	return s, nil
}

func recordFromFile(id string, p filePlayer) Record {
	return Record{
		PlayerID: id,
		Name:     p.Name,
		TeamID:   p.TeamID,
		RatePerMinute: map[game.StatType]float64{
			game.StatPoints:   p.Stats.BaselinePtsMin,
			game.StatRebounds: p.Stats.BaselineRebMin,
			game.StatAssists:  p.Stats.BaselineAstMin,
		},
		Sigma: map[game.StatType]float64{
			game.StatPoints:   p.Stats.SigmaPts,
			game.StatRebounds: p.Stats.SigmaReb,
			game.StatAssists:  p.Stats.SigmaAst,
		},
		ExpectedActiveMinutes: p.Stats.AvgMinutes,
	}
}

// Get returns the record for a player id. Absence is normal (two-way
// players, late signings) and callers skip silently.
func (s *Store) Get(playerID string) (Record, bool) {
	r, ok := s.players[playerID]
	return r, ok
}

// FindByName resolves a player by display name, ignoring case and
// diacritics (Dončić == Doncic).
func (s *Store) FindByName(name string) (Record, bool) {
	id, ok := s.byName[NormalizeName(name)]
	if !ok {
		return Record{}, false
	}
	return s.players[id], true
}

func (s *Store) Len() int { return len(s.players) }

func (s *Store) Meta() Meta { return s.meta }
