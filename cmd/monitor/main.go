package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/raghav-misra/buddard/internal/adapters/inbound/livefeed"
	"github.com/raghav-misra/buddard/internal/adapters/outbound/discord"
	"github.com/raghav-misra/buddard/internal/adapters/outbound/nbastats"
	"github.com/raghav-misra/buddard/internal/alerts"
	"github.com/raghav-misra/buddard/internal/config"
	"github.com/raghav-misra/buddard/internal/core/baseline"
	"github.com/raghav-misra/buddard/internal/core/monitor"
	"github.com/raghav-misra/buddard/internal/core/projection"
	"github.com/raghav-misra/buddard/internal/research"
	"github.com/raghav-misra/buddard/internal/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.Init(telemetry.ParseLogLevel(cfg.LogLevel))
	telemetry.Infof("Starting monitor daemon")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	provider := nbastats.NewClientWithBases(cfg.StatsBaseURL, cfg.LiveBaseURL)
	today := time.Now().Format("2006-01-02")

	// ── Research ────────────────────────────────────────────────
	if cfg.ResearchOnStart {
		builder := research.NewBuilder(provider, cfg.Season, cfg.BaselinesPath)
		if err := builder.Build(ctx, today); err != nil {
			telemetry.Warnf("Research failed, using existing baselines: %v", err)
		}
	}

	baselines, err := baseline.Load(cfg.BaselinesPath)
	if err != nil {
		telemetry.Warnf("Baselines unavailable, running degraded: %v", err)
	} else {
		telemetry.Infof("Loaded %d player baselines (generated %s)", baselines.Len(), baselines.Meta().GeneratedDate)
	}

	// ── Tuning ──────────────────────────────────────────────────
	tuning, err := config.LoadTuning(cfg.TuningPath)
	if err != nil {
		telemetry.Warnf("Tuning file unavailable, using defaults: %v", err)
	}

	engine, err := projection.New(tuning.ProjectionConfig())
	if err != nil {
		telemetry.Errorf("Projection config: %v", err)
		os.Exit(1)
	}

	// ── Alert sinks ─────────────────────────────────────────────
	sinks := alerts.Multi{alerts.ConsoleSink{}}
	notifier := discord.NewNotifier(cfg.DiscordWebhookURL)
	if notifier.Enabled() {
		sinks = append(sinks, notifier)
		telemetry.Infof("Discord alerts enabled")
	}

	// ── Supervisor ──────────────────────────────────────────────
	monCfg := monitor.DefaultConfig()
	monCfg.PollInterval = cfg.PollInterval
	supervisor := monitor.NewSupervisor(provider, baselines, engine, tuning.TriggerConfig(), sinks, monCfg)

	// ── Optional push feed ──────────────────────────────────────
	if cfg.LiveFeedWSURL != "" {
		feed := livefeed.NewClient(cfg.LiveFeedWSURL, func(u livefeed.StatusUpdate) {
			supervisor.OnStatus(u.GameID, u.GameStatus())
		})
		go feed.ConnectWithRetry(ctx)
		telemetry.Infof("Live status feed enabled: %s", cfg.LiveFeedWSURL)
	}

	// ── Schedule refresh loop ───────────────────────────────────
	go func() {
		syncSchedule(ctx, provider, supervisor, today)
		ticker := time.NewTicker(cfg.ScheduleRefresh)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				syncSchedule(ctx, provider, supervisor, time.Now().Format("2006-01-02"))
			}
		}
	}()

	// ── Shutdown ────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	telemetry.Infof("Shutting down...")
	cancel()
	supervisor.StopAll()

	telemetry.Infof("Shutdown complete  polls=%d  evaluated=%d  alerts=%d  poll_errors=%d  delivery_errors=%d  baseline_misses=%d",
		telemetry.Metrics.PollCycles.Value(),
		telemetry.Metrics.PlayersEvaluated.Value(),
		telemetry.Metrics.AlertsFired.Value(),
		telemetry.Metrics.PollErrors.Value(),
		telemetry.Metrics.AlertDeliveryErrors.Value(),
		telemetry.Metrics.BaselineMisses.Value(),
	)
}

func syncSchedule(ctx context.Context, provider *nbastats.Client, supervisor *monitor.Supervisor, date string) {
	refs, err := provider.FetchSchedule(ctx, date)
	if err != nil {
		telemetry.Warnf("Schedule refresh: %v", err)
		return
	}
	supervisor.Sync(ctx, refs)
	telemetry.Infof("Schedule synced  games=%d  active_monitors=%d", len(refs), supervisor.ActiveCount())
}
