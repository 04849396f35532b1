package interfaces

import (
	"gitlab.com/aoterocom/PennyWatchBot/models"
)

type (
	// OrderExecutor places or simulates an order. The decision engine only
	// decides; whoever implements this actually trades.
	OrderExecutor interface {
		ExecuteOrder(ticker string, price float64, quantity int, action models.TradeAction) (models.OrderResult, error)
	}
)
