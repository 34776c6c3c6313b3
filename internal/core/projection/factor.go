package projection

// PerformanceFactor is the ratio of observed to baseline per-minute pace:
// 1.5 means the player is producing 50% above their season rate. A zero
// baseline yields exactly 1.0 — never a division by zero.
func PerformanceFactor(observedRate, baselineRate float64) float64 {
	if baselineRate == 0 {
		return 1.0
	}
	return observedRate / baselineRate
}
