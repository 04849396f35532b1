package interfaces

import (
	"gitlab.com/aoterocom/PennyWatchBot/models"
)

type (
	// IndicatorProvider supplies the per-ticker indicator snapshot the scorer
	// and decision engine work from. A nil snapshot with a nil error means
	// "no data right now" — fetch failures are absorbed at this boundary and
	// surfaced as absent data, never as errors to the callers.
	IndicatorProvider interface {
		Snapshot(ticker string) (*models.Indicators, error)
	}
)
