package models

import (
	"fmt"
	"math"
)

// FeeSchedule describes the broker fee model. Per-share components carry a
// minimum, and the platform fee is additionally capped at a fraction of the
// order notional.
type FeeSchedule struct {
	CommissionPerShare  float64
	CommissionMin       float64
	PlatformFeePerShare float64
	PlatformFeeMin      float64
	PlatformMaxRatio    float64
}

// Validate rejects malformed schedules at load time. A negative fee would
// silently turn the viability gate into a profit generator, so it is a hard
// configuration error rather than something to clamp.
func (f FeeSchedule) Validate() error {
	if f.CommissionPerShare < 0 || f.CommissionMin < 0 {
		return fmt.Errorf("fee schedule: negative commission (%f/%f)", f.CommissionPerShare, f.CommissionMin)
	}
	if f.PlatformFeePerShare < 0 || f.PlatformFeeMin < 0 {
		return fmt.Errorf("fee schedule: negative platform fee (%f/%f)", f.PlatformFeePerShare, f.PlatformFeeMin)
	}
	if f.PlatformMaxRatio < 0 || f.PlatformMaxRatio > 1 {
		return fmt.Errorf("fee schedule: platform max ratio %f outside [0,1]", f.PlatformMaxRatio)
	}
	return nil
}

// ViabilityResult is derived on demand and never persisted.
type ViabilityResult struct {
	NetProfit   float64
	TotalFees   float64
	Viable      bool
	ROIAfterFee float64
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// CalculateTradeViability computes the net outcome of a prospective trade
// after fees. Pure and deterministic: same inputs, same outputs.
// Viability is strict — a trade that only breaks even is not viable.
func CalculateTradeViability(entryPrice float64, targetPrice float64, quantity int, fees FeeSchedule) ViabilityResult {
	qty := float64(quantity)

	commission := math.Max(fees.CommissionPerShare*qty, fees.CommissionMin)
	platform := math.Max(fees.PlatformFeePerShare*qty, fees.PlatformFeeMin)
	platform = math.Min(platform, entryPrice*qty*fees.PlatformMaxRatio)

	totalFees := round2(commission + platform)
	gross := (targetPrice - entryPrice) * qty
	net := round2(gross - totalFees)

	roi := 0.0
	if entryPrice != 0 && quantity != 0 {
		roi = net / (entryPrice * qty)
	}

	return ViabilityResult{
		NetProfit:   net,
		TotalFees:   totalFees,
		Viable:      net > 0,
		ROIAfterFee: roi,
	}
}
