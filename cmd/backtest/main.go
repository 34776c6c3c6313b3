// Replays finished games through the projection pipeline and scores
// the bands against the actual final lines.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/raghav-misra/buddard/internal/adapters/outbound/nbastats"
	"github.com/raghav-misra/buddard/internal/backtest"
	"github.com/raghav-misra/buddard/internal/config"
	"github.com/raghav-misra/buddard/internal/core/baseline"
	"github.com/raghav-misra/buddard/internal/core/projection"
	"github.com/raghav-misra/buddard/internal/telemetry"
)

func main() {
	games := flag.String("game", "", "game ID(s) to replay, comma-separated (required)")
	dbPath := flag.String("db", "", "sqlite path for checkpoint rows (defaults to BACKTEST_DB_PATH)")
	player := flag.String("player", "", "only print rows for this player (name, resolved via baselines)")
	worst := flag.Int("worst", 5, "number of worst misses to print")
	flag.Parse()

	if *games == "" {
		fmt.Fprintln(os.Stderr, "usage: backtest -game <GAME_ID>[,<GAME_ID>...]")
		os.Exit(2)
	}

	cfg := config.Load()
	telemetry.Init(telemetry.ParseLogLevel(cfg.LogLevel))

	tuning, err := config.LoadTuning(cfg.TuningPath)
	if err != nil {
		telemetry.Warnf("Tuning file unavailable, using defaults: %v", err)
	}
	engine, err := projection.New(tuning.ProjectionConfig())
	if err != nil {
		telemetry.Errorf("Projection config: %v", err)
		os.Exit(1)
	}

	var store *backtest.Store
	path := cfg.BacktestDBPath
	if *dbPath != "" {
		path = *dbPath
	}
	if path != "" {
		store, err = backtest.OpenStore(path)
		if err != nil {
			telemetry.Errorf("Backtest store: %v", err)
			os.Exit(1)
		}
		defer store.Close()
	}

	playerID := resolvePlayer(cfg.BaselinesPath, *player)

	provider := nbastats.NewClientWithBases(cfg.StatsBaseURL, cfg.LiveBaseURL)
	runner := backtest.NewRunner(provider, engine, store, cfg.Season)

	ctx := context.Background()
	for _, gameID := range strings.Split(*games, ",") {
		gameID = strings.TrimSpace(gameID)
		if gameID == "" {
			continue
		}

		report, err := runner.Run(ctx, gameID)
		if err != nil {
			telemetry.Errorf("Backtest %s: %v", gameID, err)
			continue
		}

		if playerID != "" {
			printPlayerRows(report, playerID)
			continue
		}

		fmt.Println(report)
		if *worst > 0 {
			fmt.Println("Worst misses:")
			for _, row := range report.WorstMisses(*worst) {
				fmt.Printf("  %-10s %-22s %-4s proj=%.1f [%.1f, %.1f] final=%.1f (off by %.1f)\n",
					row.Checkpoint, row.PlayerName, row.Stat, row.PFS, row.Low, row.High, row.FinalValue, row.AbsError)
			}
		}
	}

	if store != nil {
		if n, err := store.GameCount(); err == nil {
			telemetry.Infof("Store now holds %d games", n)
		}
	}
}

// resolvePlayer maps a free-form player name to an ID through the
// baselines file. Accent and case differences are tolerated.
func resolvePlayer(baselinesPath, name string) string {
	if name == "" {
		return ""
	}
	store, err := baseline.Load(baselinesPath)
	if err != nil {
		telemetry.Errorf("Player filter needs baselines: %v", err)
		os.Exit(1)
	}
	rec, ok := store.FindByName(name)
	if !ok {
		telemetry.Errorf("Player %q not found in baselines", name)
		os.Exit(1)
	}
	telemetry.Infof("Filtering to %s (%s)", rec.Name, rec.PlayerID)
	return rec.PlayerID
}

func printPlayerRows(report *backtest.Report, playerID string) {
	for _, row := range report.Rows() {
		if row.PlayerID != playerID {
			continue
		}
		band := " "
		if row.WithinBand {
			band = "*"
		}
		fmt.Printf("%s %-10s %-4s min=%.1f cur=%.1f proj=%.1f [%.1f, %.1f] final=%.1f\n",
			band, row.Checkpoint, row.Stat, row.Minutes, row.Current, row.PFS, row.Low, row.High, row.FinalValue)
	}
}
