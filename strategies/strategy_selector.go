package strategies

import "gitlab.com/aoterocom/PennyWatchBot/models"

// Pump percentage above which a position is managed with a dynamic trailing
// stop instead of the default scalp.
const trailingPumpPct = 5.0

// SelectStrategy picks the position-management strategy for a ticker. Fixed
// priority chain: a hard pump gets the trailing stop, an FDA catalyst gets
// held for the day, everything else is scalped.
func SelectStrategy(ind *models.Indicators) models.StrategyType {
	if ind != nil && ind.PumpPct != nil && *ind.PumpPct > trailingPumpPct {
		return models.StrategyTrailingDynamic
	}
	if ind != nil && ind.HasFDA {
		return models.StrategyBuyHoldDay
	}
	return models.StrategyScalpingAggressif
}
