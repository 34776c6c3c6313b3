// Prints the slate for a date, for picking backtest game IDs.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/raghav-misra/buddard/internal/adapters/outbound/nbastats"
	"github.com/raghav-misra/buddard/internal/config"
	"github.com/raghav-misra/buddard/internal/telemetry"
)

func main() {
	date := flag.String("date", time.Now().Format("2006-01-02"), "slate date (YYYY-MM-DD)")
	flag.Parse()

	cfg := config.Load()
	telemetry.Init(telemetry.ParseLogLevel(cfg.LogLevel))

	provider := nbastats.NewClientWithBases(cfg.StatsBaseURL, cfg.LiveBaseURL)
	refs, err := provider.FetchSchedule(context.Background(), *date)
	if err != nil {
		telemetry.Errorf("Schedule: %v", err)
		os.Exit(1)
	}

	if len(refs) == 0 {
		fmt.Printf("No games on %s\n", *date)
		return
	}
	fmt.Printf("%d games on %s:\n", len(refs), *date)
	for _, ref := range refs {
		fmt.Printf("  %s  home=%s away=%s\n", ref.GameID, ref.HomeTeamID, ref.AwayTeamID)
	}
}
