// Standalone baseline research run. The monitor daemon normally does
// this on startup; this binary exists for cron jobs and re-runs.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/raghav-misra/buddard/internal/adapters/outbound/nbastats"
	"github.com/raghav-misra/buddard/internal/config"
	"github.com/raghav-misra/buddard/internal/research"
	"github.com/raghav-misra/buddard/internal/telemetry"
)

func main() {
	date := flag.String("date", time.Now().Format("2006-01-02"), "slate date (YYYY-MM-DD)")
	out := flag.String("out", "", "output path (defaults to BASELINES_PATH)")
	force := flag.Bool("force", false, "rebuild even if the file is current")
	flag.Parse()

	cfg := config.Load()
	telemetry.Init(telemetry.ParseLogLevel(cfg.LogLevel))

	outPath := cfg.BaselinesPath
	if *out != "" {
		outPath = *out
	}
	if *force {
		if err := os.Remove(outPath); err != nil && !os.IsNotExist(err) {
			telemetry.Errorf("Remove stale baselines: %v", err)
			os.Exit(1)
		}
	}

	provider := nbastats.NewClientWithBases(cfg.StatsBaseURL, cfg.LiveBaseURL)
	builder := research.NewBuilder(provider, cfg.Season, outPath)

	if err := builder.Build(context.Background(), *date); err != nil {
		telemetry.Errorf("Research: %v", err)
		os.Exit(1)
	}
}
