package projection

import "fmt"

// Strategy mode names, selected by configuration. Each axis keeps every
// generation of the model that proved useful rather than hardcoding one.
const (
	// RemainingMinutesStrategy
	RemainingModeled = "modeled" // multiplicative foul/blowout/momentum modifiers
	RemainingFlat    = "flat"    // additive minute penalties, no momentum

	// BlendStrategy (alpha curve for observed-vs-baseline pace)
	BlendBank      = "bank"      // pure baseline for the unplayed remainder
	BlendQuadratic = "quadratic" // (played/avg)^2 time-progress dampening
	BlendLinear    = "linear"    // minutes/35 capped at 0.95
	BlendPeriod    = "period"    // fixed alpha per period

	// IntervalStrategy
	IntervalAsymmetric = "asymmetric" // 1.0σ floor / 2.0σ ceiling, no decay floor
	IntervalFloored    = "floored"    // symmetric multiplier with a 0.1 decay floor
)

// Config carries every quantitative knob of the projection pipeline.
// Values come from the tuning file; zero-value fields are invalid, use
// DefaultConfig as the starting point.
type Config struct {
	RemainingStrategy string
	BlendStrategy     string
	IntervalStrategy  string

	// Remaining-time estimation
	RegulationMinutes float64 // hard cap on current+remaining; overtime not modeled
	MomentumK         float64 // coefficient on ln(perf) in the momentum modifier
	PerfClampMin      float64 // lower bound on perf before the logarithm
	PerfClampMax      float64 // upper bound on perf before the logarithm

	// Alpha curves
	LinearAlphaCap     float64 // ceiling for the linear curve
	LinearAlphaMinutes float64 // minutes at which the linear curve saturates

	// Interval estimation
	DefaultSigmaRatio   float64 // sigma substitute when unknown, as a fraction of PFS
	DecayFloor          float64 // minimum decay in the floored preset
	SymmetricMultiplier float64 // σ multiplier in the floored preset
	LowMultiplier       float64 // downside σ multiplier in the asymmetric preset
	HighMultiplier      float64 // upside σ multiplier in the asymmetric preset
}

// DefaultConfig is the refined-generation model: bank-&-burn projection,
// modeled remaining minutes, asymmetric interval.
func DefaultConfig() Config {
	return Config{
		RemainingStrategy: RemainingModeled,
		BlendStrategy:     BlendBank,
		IntervalStrategy:  IntervalAsymmetric,

		RegulationMinutes: 48,
		MomentumK:         0.2,
		PerfClampMin:      0.5,
		PerfClampMax:      2.0,

		LinearAlphaCap:     0.95,
		LinearAlphaMinutes: 35,

		DefaultSigmaRatio:   0.2,
		DecayFloor:          0.1,
		SymmetricMultiplier: 1.5,
		LowMultiplier:       1.0,
		HighMultiplier:      2.0,
	}
}

// Validate rejects unknown strategy names early, at wiring time.
func (c Config) Validate() error {
	switch c.RemainingStrategy {
	case RemainingModeled, RemainingFlat:
	default:
		return fmt.Errorf("unknown remaining-minutes strategy %q", c.RemainingStrategy)
	}
	switch c.BlendStrategy {
	case BlendBank, BlendQuadratic, BlendLinear, BlendPeriod:
	default:
		return fmt.Errorf("unknown blend strategy %q", c.BlendStrategy)
	}
	switch c.IntervalStrategy {
	case IntervalAsymmetric, IntervalFloored:
	default:
		return fmt.Errorf("unknown interval strategy %q", c.IntervalStrategy)
	}
	return nil
}
