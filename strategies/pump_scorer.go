package strategies

import (
	"gitlab.com/aoterocom/PennyWatchBot/helpers"
	"gitlab.com/aoterocom/PennyWatchBot/models"
)

// Bucket caps. Each signal contributes a bounded amount of points so that a
// single runaway indicator can never drown out the rest of the tape.
const (
	pumpPointsPerPct  = 20.0
	pumpPointsCap     = 40.0
	volumeTierHigh    = 15.0
	volumeTierMid     = 10.0
	volumeTierLow     = 5.0
	emaCrossPoints    = 20.0
	rsiBandPoints     = 15.0
	rsiOverboughtPts  = 5.0
	macdMomentumPts   = 10.0
	vwapDiscountPts   = 5.0
	catalystPoints    = 25.0
	smallFloatPoints  = 5.0
	catalystThreshold = 0.7
	smallFloatShares  = 100_000_000
)

// ScoreDetails is the per-bucket breakdown persisted alongside the composite
// score, plus the raw inputs it was computed from.
type ScoreDetails struct {
	PumpPoints     float64  `json:"pump_points"`
	VolumePoints   float64  `json:"volume_points"`
	EMAPoints      float64  `json:"ema_points"`
	RSIPoints      float64  `json:"rsi_points"`
	MACDPoints     float64  `json:"macd_points"`
	VWAPPoints     float64  `json:"vwap_points"`
	CatalystPoints float64  `json:"catalyst_points"`
	FloatPoints    float64  `json:"float_points"`
	PumpPct        *float64 `json:"pump_pct_60s,omitempty"`
	RSI            *float64 `json:"rsi,omitempty"`
	EMADiff        *float64 `json:"ema_diff,omitempty"`
	Volume         *float64 `json:"volume,omitempty"`
	Momentum       *float64 `json:"momentum,omitempty"`
}

// PumpScorer combines the noisy per-ticker signals into a composite score in
// [0, 100] using capped additive buckets. Absent indicators contribute zero,
// never an error: a half-empty snapshot still scores on whatever is there.
type PumpScorer struct {
}

func NewPumpScorer() PumpScorer {
	return PumpScorer{}
}

func (s *PumpScorer) Score(ind *models.Indicators) float64 {
	score, _ := s.ScoreWithDetails(ind)
	return score
}

func (s *PumpScorer) ScoreWithDetails(ind *models.Indicators) (float64, ScoreDetails) {
	details := ScoreDetails{}
	if ind == nil || ind.IsEmpty() {
		return 0, details
	}

	details.PumpPct = ind.PumpPct
	details.RSI = ind.RSI
	details.EMADiff = ind.EMADiff()
	details.Volume = ind.Volume
	details.Momentum = ind.Momentum

	if ind.PumpPct != nil && *ind.PumpPct > 0 {
		details.PumpPoints = helpers.Clamp(*ind.PumpPct*pumpPointsPerPct, 0, pumpPointsCap)
	}

	if ind.Volume != nil {
		switch {
		case *ind.Volume > 1_000_000:
			details.VolumePoints = volumeTierHigh
		case *ind.Volume > 500_000:
			details.VolumePoints = volumeTierMid
		case *ind.Volume > 100_000:
			details.VolumePoints = volumeTierLow
		}
	}

	// Ratio check guards the zero denominator: no EMA long, no bucket.
	if ind.EMAShort != nil && ind.EMALong != nil && *ind.EMALong != 0 &&
		*ind.EMAShort / *ind.EMALong > 1.001 {
		details.EMAPoints = emaCrossPoints
	}

	// The ideal band is "momentum building, not yet exhausted". Above the
	// band the ticker still gets a token bonus, never both.
	if ind.RSI != nil {
		if *ind.RSI >= 65 && *ind.RSI <= 72 {
			details.RSIPoints = rsiBandPoints
		} else if *ind.RSI > 72 {
			details.RSIPoints = rsiOverboughtPts
		}
	}

	if ind.MACD != nil && ind.MACDSignal != nil && *ind.MACD > *ind.MACDSignal &&
		ind.Momentum != nil && *ind.Momentum > 1 {
		details.MACDPoints = macdMomentumPts
	}

	// Single VWAP discipline for the whole run: a mean-reversion entry wants
	// the price at a slight discount to VWAP, within 0.2% of it.
	if ind.VWAP != nil && ind.Price != nil &&
		*ind.Price < *ind.VWAP && *ind.Price >= *ind.VWAP*0.998 {
		details.VWAPPoints = vwapDiscountPts
	}

	if ind.CatalystScore != nil && *ind.CatalystScore > catalystThreshold {
		details.CatalystPoints = catalystPoints
	}

	if ind.FloatShares != nil && *ind.FloatShares < smallFloatShares {
		details.FloatPoints = smallFloatPoints
	}

	total := details.PumpPoints + details.VolumePoints + details.EMAPoints +
		details.RSIPoints + details.MACDPoints + details.VWAPPoints +
		details.CatalystPoints + details.FloatPoints

	return helpers.Clamp(helpers.RoundTo(total, 2), 0, 100), details
}
