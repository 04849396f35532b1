package strategies

import "gitlab.com/aoterocom/PennyWatchBot/models"

// IsBuySignal checks whether the technical entry conditions line up: EMA
// cross, MACD above its signal, price at-or-below VWAP (same mean-reversion
// discipline as the scorer) and a volume ratio showing real participation.
// Missing fields fail their condition rather than erroring.
func IsBuySignal(ind *models.Indicators) bool {
	if ind == nil {
		return false
	}
	if ind.EMAShort == nil || ind.EMALong == nil || *ind.EMAShort <= *ind.EMALong {
		return false
	}
	if ind.MACD == nil || ind.MACDSignal == nil || *ind.MACD <= *ind.MACDSignal {
		return false
	}
	if ind.Price == nil || ind.VWAP == nil || *ind.Price >= *ind.VWAP {
		return false
	}
	if ind.VolumeRatio == nil || *ind.VolumeRatio <= 1.5 {
		return false
	}
	return true
}
