package models

type TradeAction string

const (
	TradeActionAchat TradeAction = "achat"
	TradeActionVente             = "vente"
)

// OrderResult is what an executor reports back after placing or simulating
// an order.
type OrderResult struct {
	Ticker   string
	Action   TradeAction
	Price    float64
	Quantity int
	Filled   bool
}
