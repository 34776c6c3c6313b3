package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/raghav-misra/buddard/internal/core/game"
	"github.com/raghav-misra/buddard/internal/core/projection"
	"github.com/raghav-misra/buddard/internal/core/trigger"
)

// Tuning is the quantitative knob file: strategy selection plus every
// threshold the projection and trigger layers consume. A missing file
// means the compiled-in defaults run unchanged.
type Tuning struct {
	Strategies struct {
		Remaining string `yaml:"remaining"`
		Blend     string `yaml:"blend"`
		Interval  string `yaml:"interval"`
	} `yaml:"strategies"`

	Projection struct {
		RegulationMinutes   float64 `yaml:"regulation_minutes"`
		MomentumK           float64 `yaml:"momentum_k"`
		PerfClampMin        float64 `yaml:"perf_clamp_min"`
		PerfClampMax        float64 `yaml:"perf_clamp_max"`
		DefaultSigmaRatio   float64 `yaml:"default_sigma_ratio"`
		DecayFloor          float64 `yaml:"decay_floor"`
		SymmetricMultiplier float64 `yaml:"symmetric_multiplier"`
		LowMultiplier       float64 `yaml:"low_multiplier"`
		HighMultiplier      float64 `yaml:"high_multiplier"`
	} `yaml:"projection"`

	Thresholds struct {
		SeasonAvgRatio float64            `yaml:"season_avg_ratio"`
		LowAlerts      *bool              `yaml:"low_alerts"`
		LowMinutesGate float64            `yaml:"low_minutes_gate"`
		Floors         map[string]float64 `yaml:"floors"`
		Buffers        map[string]float64 `yaml:"buffers"`
	} `yaml:"thresholds"`
}

// LoadTuning reads the tuning file. On any failure it returns a
// zero-value Tuning (defaults everywhere) alongside the error so the
// caller can log once and keep running.
func LoadTuning(path string) (Tuning, error) {
	var t Tuning

	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("read tuning: %w", err)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Tuning{}, fmt.Errorf("parse tuning: %w", err)
	}
	return t, nil
}

// ProjectionConfig merges the tuning file over the projection defaults.
func (t Tuning) ProjectionConfig() projection.Config {
	cfg := projection.DefaultConfig()

	setStr(&cfg.RemainingStrategy, t.Strategies.Remaining)
	setStr(&cfg.BlendStrategy, t.Strategies.Blend)
	setStr(&cfg.IntervalStrategy, t.Strategies.Interval)

	p := t.Projection
	setF(&cfg.RegulationMinutes, p.RegulationMinutes)
	setF(&cfg.MomentumK, p.MomentumK)
	setF(&cfg.PerfClampMin, p.PerfClampMin)
	setF(&cfg.PerfClampMax, p.PerfClampMax)
	setF(&cfg.DefaultSigmaRatio, p.DefaultSigmaRatio)
	setF(&cfg.DecayFloor, p.DecayFloor)
	setF(&cfg.SymmetricMultiplier, p.SymmetricMultiplier)
	setF(&cfg.LowMultiplier, p.LowMultiplier)
	setF(&cfg.HighMultiplier, p.HighMultiplier)

	return cfg
}

// TriggerConfig merges the tuning file over the trigger defaults.
func (t Tuning) TriggerConfig() trigger.Config {
	cfg := trigger.DefaultConfig()

	th := t.Thresholds
	setF(&cfg.SeasonAvgRatio, th.SeasonAvgRatio)
	setF(&cfg.LowMinutesGate, th.LowMinutesGate)
	if th.LowAlerts != nil {
		cfg.LowAlerts = *th.LowAlerts
	}
	for stat, v := range th.Floors {
		cfg.Floors[game.StatType(stat)] = v
	}
	for stat, v := range th.Buffers {
		cfg.Buffers[game.StatType(stat)] = v
	}
	return cfg
}

func setF(dst *float64, v float64) {
	if v != 0 {
		*dst = v
	}
}

func setStr(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
