package models

import "time"

// Indicators is a snapshot of every signal source known for a ticker at
// evaluation time. Any pointer field may be nil: missing data is the normal
// case for thin penny-stock tapes, and every consumer must treat a nil field
// as "no contribution" rather than an error.
type Indicators struct {
	RSI               *float64
	EMAShort          *float64
	EMALong           *float64
	VWAP              *float64
	MACD              *float64
	MACDSignal        *float64
	Volume            *float64
	VolumePriorWindow *float64
	VolumeRatio       *float64
	FloatShares       *float64
	Price             *float64
	PricePrior        *float64
	PumpPct           *float64
	Momentum          *float64
	ATR               *float64
	CatalystScore     *float64
	CatalystDate      *time.Time
	HasFDA            bool
}

// Float wraps a literal into an optional indicator field.
func Float(v float64) *float64 {
	return &v
}

// IsEmpty returns true when the snapshot carries no usable signal at all.
func (ind *Indicators) IsEmpty() bool {
	if ind == nil {
		return true
	}
	return ind.RSI == nil && ind.EMAShort == nil && ind.EMALong == nil &&
		ind.VWAP == nil && ind.MACD == nil && ind.MACDSignal == nil &&
		ind.Volume == nil && ind.FloatShares == nil && ind.Price == nil &&
		ind.PumpPct == nil && ind.Momentum == nil && ind.CatalystScore == nil
}

// EMADiff returns EMAShort - EMALong when both sides are present.
func (ind *Indicators) EMADiff() *float64 {
	if ind.EMAShort == nil || ind.EMALong == nil {
		return nil
	}
	diff := *ind.EMAShort - *ind.EMALong
	return &diff
}
