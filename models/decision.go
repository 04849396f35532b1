package models

import "time"

type StrategyType string

const (
	StrategyTrailingDynamic   StrategyType = "trailing_dynamic"
	StrategyBuyHoldDay                     = "buy_hold_day"
	StrategyScalpingAggressif              = "scalping_aggressif"
)

// TradeDecision is the immutable outcome of one evaluation cycle for one
// ticker. Approved and Viable are deliberately independent: a decision can be
// approved on signal strength while still failing the net-after-fees check,
// and downstream consumers are expected to look at both.
type TradeDecision struct {
	Ticker       string
	Price        float64
	Quantity     int
	Fees         float64
	Strategy     StrategyType
	Score        float64
	Confidence   float64
	Approved     bool
	Viable       bool
	ReasonsBuy   []string
	ReasonsAvoid []string
	CreatedAt    time.Time
}

// Blocked reports whether the decision was rejected before signal evaluation
// could approve it (throttle, risk gate or missing data).
func (d *TradeDecision) Blocked() bool {
	return !d.Approved && len(d.ReasonsAvoid) > 0
}

// OrderSuggestion carries the order parameters derived from a decision.
type OrderSuggestion struct {
	Price      float64
	Quantity   int
	StopLoss   float64
	TakeProfit float64
	OrderType  string
}
