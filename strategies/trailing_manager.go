package strategies

import "math"

// TrailingManager ratchets a stop loss as an open position gains. Past +2%
// the stop moves to break even; past +5% it locks in roughly 3% profit. The
// stop never moves down.
type TrailingManager struct {
	entryPrice    float64
	stopLoss      float64
	breakevenDone bool
	secureDone    bool
}

func NewTrailingManager(entryPrice float64, stopLoss float64) *TrailingManager {
	return &TrailingManager{
		entryPrice: entryPrice,
		stopLoss:   stopLoss,
	}
}

// Update adjusts the stop for the latest price and returns it.
func (t *TrailingManager) Update(price float64) float64 {
	if t.entryPrice == 0 {
		return t.stopLoss
	}
	gainPct := (price - t.entryPrice) / t.entryPrice * 100
	if !t.breakevenDone && gainPct >= 2 {
		t.stopLoss = math.Max(t.stopLoss, t.entryPrice)
		t.breakevenDone = true
	}
	if !t.secureDone && gainPct >= 5 {
		t.stopLoss = math.Max(t.stopLoss, t.entryPrice*1.03)
		t.secureDone = true
	}
	return t.stopLoss
}

// StopLoss returns the current stop without updating it.
func (t *TrailingManager) StopLoss() float64 {
	return t.stopLoss
}
