package backtest

import "math/rand"

// Sampler draws simulated trade outcomes from a biased coin flip. The win
// probability is the configured base rate reduced by a small volatility
// penalty; wins hit the profit target, losses hit the stop. Seeded
// explicitly so runs are reproducible.
type Sampler struct {
	rng          *rand.Rand
	winRate      float64
	profitTarget float64
	stopLoss     float64
}

// NewSampler creates a sampler with the given base win rate and payoff
// levels. stopLoss is expressed as a negative fraction.
func NewSampler(seed int64, winRate, profitTarget, stopLoss float64) *Sampler {
	return &Sampler{
		rng:          rand.New(rand.NewSource(seed)),
		winRate:      winRate,
		profitTarget: profitTarget,
		stopLoss:     stopLoss,
	}
}

// AdjustedWinRate returns the win probability after the volatility penalty,
// capped at 10 percentage points.
func (s *Sampler) AdjustedWinRate(volatility float64) float64 {
	penalty := volatility * 0.1
	if penalty > 0.1 {
		penalty = 0.1
	}
	return s.winRate - penalty
}

// Outcome draws one trade result for a day with the given annualized
// volatility. Returns the P&L fraction and whether the trade won.
func (s *Sampler) Outcome(volatility float64) (float64, bool) {
	if s.rng.Float64() < s.AdjustedWinRate(volatility) {
		return s.profitTarget, true
	}
	return s.stopLoss, false
}
