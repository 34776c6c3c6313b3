package projection

import "testing"

func TestNewRejectsUnknownStrategies(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RemainingStrategy = "psychic"
	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for unknown remaining strategy")
	}

	cfg = DefaultConfig()
	cfg.BlendStrategy = "vibes"
	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for unknown blend strategy")
	}

	cfg = DefaultConfig()
	cfg.IntervalStrategy = "exact"
	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for unknown interval strategy")
	}
}

func TestBankProjection(t *testing.T) {
	e, err := New(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	// 10 banked, 0.5/min baseline over 15 remaining minutes. The observed
	// pace (0.5/min here too) is irrelevant in bank mode.
	got := e.ProjectFinal(10, 20, 0.5, 15, 32, 2)
	if !almostEqual(got, 17.5) {
		t.Errorf("ProjectFinal = %v, want 17.5", got)
	}

	// A hot first half banks but does not extrapolate: 20 points in 20
	// minutes still projects the baseline rate for the rest.
	got = e.ProjectFinal(20, 20, 0.5, 15, 32, 2)
	if !almostEqual(got, 27.5) {
		t.Errorf("ProjectFinal hot = %v, want 27.5", got)
	}
}

func TestQuadraticProjectionChasesPace(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BlendStrategy = BlendQuadratic
	e, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}

	// 24 of 32 average minutes: alpha = 0.5625. Observed 1.0/min vs
	// baseline 0.5/min blends to 0.78125/min.
	got := e.ProjectFinal(24, 24, 0.5, 8, 32, 3)
	want := 24 + (0.5625*1.0+0.4375*0.5)*8
	if !almostEqual(got, want) {
		t.Errorf("ProjectFinal = %v, want %v", got, want)
	}
}

func TestProjectFullBand(t *testing.T) {
	e, err := New(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	p := e.Project(10, 20, 0.5, 0, 15, 32, 2)
	if !almostEqual(p.PFS, 17.5) {
		t.Errorf("PFS = %v, want 17.5", p.PFS)
	}
	if p.Low < 10 {
		t.Errorf("low %v fell below current 10", p.Low)
	}
	if p.High < p.Low {
		t.Errorf("inverted band [%v, %v]", p.Low, p.High)
	}
	// Unknown sigma was substituted, then decayed.
	if p.AdjustedSigma <= 0 {
		t.Errorf("adjusted sigma = %v, want > 0", p.AdjustedSigma)
	}
}

func TestEngineDelegatesRemaining(t *testing.T) {
	e, err := New(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if got := e.RemainingMinutes(32, 20, 0, 0, 2, 1.0); !almostEqual(got, 12) {
		t.Errorf("RemainingMinutes = %v, want 12", got)
	}
	if got := e.Alpha(20, 32, 2); got != 0 {
		t.Errorf("bank alpha = %v, want 0", got)
	}
}
