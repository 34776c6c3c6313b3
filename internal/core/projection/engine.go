package projection

// Projection is the ephemeral output of one evaluation pass for one
// (player, stat). Recomputed every poll cycle, never persisted.
type Projection struct {
	PFS           float64
	Low           float64
	High          float64
	AdjustedSigma float64
}

// Engine binds the configured strategy functions into one pipeline
// instance. Engines are immutable after New and safe for concurrent use.
type Engine struct {
	cfg       Config
	remaining RemainingMinutesFunc
	alpha     AlphaFunc
	rng       RangeFunc
}

func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{cfg: cfg}

	switch cfg.RemainingStrategy {
	case RemainingFlat:
		e.remaining = flatRemaining(cfg)
	default:
		e.remaining = modeledRemaining(cfg)
	}

	switch cfg.BlendStrategy {
	case BlendQuadratic:
		e.alpha = quadraticAlpha
	case BlendLinear:
		e.alpha = linearAlpha(cfg)
	case BlendPeriod:
		e.alpha = periodAlpha
	default:
		e.alpha = bankAlpha
	}

	switch cfg.IntervalStrategy {
	case IntervalFloored:
		e.rng = flooredRange(cfg)
	default:
		e.rng = asymmetricRange(cfg)
	}

	return e, nil
}

func (e *Engine) Config() Config { return e.cfg }

// RemainingMinutes estimates the player's expected remaining floor time.
// Callers must filter out records with non-positive expected minutes.
func (e *Engine) RemainingMinutes(expectedMinutes, currentMinutes float64, fouls, scoreDiff, period int, perfFactor float64) float64 {
	return e.remaining(expectedMinutes, currentMinutes, fouls, scoreDiff, period, perfFactor)
}

// Alpha returns the configured blend weight for the current game state.
func (e *Engine) Alpha(minutesPlayed, avgMinutes float64, period int) float64 {
	return e.alpha(minutesPlayed, avgMinutes, period)
}

// ProjectFinal computes the projected final stat: the banked current
// value plus the blended pace over the expected remaining minutes.
func (e *Engine) ProjectFinal(currentValue, minutesPlayed, baselineRate, remainingMinutes, avgMinutes float64, period int) float64 {
	alpha := e.alpha(minutesPlayed, avgMinutes, period)
	rate := WeightedRate(alpha, currentValue, minutesPlayed, baselineRate)
	return currentValue + rate*remainingMinutes
}

// Project runs the interval estimator on top of ProjectFinal, returning
// the full band for one stat.
func (e *Engine) Project(currentValue, minutesPlayed, baselineRate, sigma, remainingMinutes, avgMinutes float64, period int) Projection {
	pfs := e.ProjectFinal(currentValue, minutesPlayed, baselineRate, remainingMinutes, avgMinutes, period)
	r := e.rng(pfs, sigma, minutesPlayed, avgMinutes, currentValue)
	return Projection{PFS: pfs, Low: r.Low, High: r.High, AdjustedSigma: r.AdjustedSigma}
}
