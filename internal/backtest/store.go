package backtest

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Row is one scored (checkpoint, player, stat) projection.
type Row struct {
	Ts         time.Time
	GameID     string
	Checkpoint string
	PlayerID   string
	PlayerName string
	Stat       string

	Minutes    float64
	Current    float64
	PFS        float64
	Low        float64
	High       float64
	AdjSigma   float64
	PerfFactor float64

	FinalValue float64
	AbsError   float64
	WithinBand bool
}

// Store persists backtest checkpoint rows in SQLite so runs can be
// aggregated across games later.
type Store struct {
	db *sql.DB
}

func OpenStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS backtest_checkpoints (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			ts          TEXT NOT NULL,
			game_id     TEXT NOT NULL,
			checkpoint  TEXT NOT NULL,
			player_id   TEXT NOT NULL,
			player_name TEXT,
			stat        TEXT NOT NULL,

			minutes     REAL,
			current_val REAL,
			pfs         REAL,
			low         REAL,
			high        REAL,
			adj_sigma   REAL,
			perf_factor REAL,

			final_val   REAL,
			abs_error   REAL,
			within_band INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bt_game ON backtest_checkpoints(game_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bt_stat ON backtest_checkpoints(stat)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init schema (%s): %w", stmt, err)
		}
	}

	return &Store{db: db}, nil
}

func (s *Store) Insert(r Row) error {
	within := 0
	if r.WithinBand {
		within = 1
	}
	_, err := s.db.Exec(`INSERT INTO backtest_checkpoints (
		ts, game_id, checkpoint, player_id, player_name, stat,
		minutes, current_val, pfs, low, high, adj_sigma, perf_factor,
		final_val, abs_error, within_band
	) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		r.Ts.UTC().Format(time.RFC3339), r.GameID, r.Checkpoint, r.PlayerID, r.PlayerName, r.Stat,
		r.Minutes, r.Current, r.PFS, r.Low, r.High, r.AdjSigma, r.PerfFactor,
		r.FinalValue, r.AbsError, within,
	)
	if err != nil {
		return fmt.Errorf("insert checkpoint row: %w", err)
	}
	return nil
}

// GameCount reports how many distinct games the store has scored.
func (s *Store) GameCount() (int64, error) {
	var n int64
	err := s.db.QueryRow(`SELECT COUNT(DISTINCT game_id) FROM backtest_checkpoints`).Scan(&n)
	return n, err
}

func (s *Store) Close() error { return s.db.Close() }
