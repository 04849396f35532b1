package services

import (
	"fmt"
	"math"
	"time"

	"gitlab.com/aoterocom/PennyWatchBot/helpers"
	"gitlab.com/aoterocom/PennyWatchBot/interfaces"
	"gitlab.com/aoterocom/PennyWatchBot/models"
	"gitlab.com/aoterocom/PennyWatchBot/strategies"
)

const (
	approvalConfidence = 0.7
	targetGainPct      = 0.05
	capitalRiskPct     = 0.02
	maxStopLossPct     = 0.08
)

// DecisionEngineService orchestrates scorer, throttle, risk gate and
// viability into one TradeDecision per ticker per cycle. Stateless across
// cycles; each ticker is evaluated independently from its own snapshot.
type DecisionEngineService struct {
	indicatorProvider interfaces.IndicatorProvider
	scorer            strategies.PumpScorer
	riskGateService   *RiskGateService
	fees              models.FeeSchedule
	orderQuantity     int
	clock             func() time.Time
}

func NewDecisionEngineService(indicatorProvider interfaces.IndicatorProvider, riskGateService *RiskGateService,
	fees models.FeeSchedule, orderQuantity int) (*DecisionEngineService, error) {

	if err := fees.Validate(); err != nil {
		return nil, err
	}
	if orderQuantity < 1 {
		orderQuantity = 1
	}
	return &DecisionEngineService{
		indicatorProvider: indicatorProvider,
		scorer:            strategies.NewPumpScorer(),
		riskGateService:   riskGateService,
		fees:              fees,
		orderQuantity:     orderQuantity,
		clock:             time.Now,
	}, nil
}

// Evaluate produces a decision for the ticker. It never fails: fetch errors
// degrade to "no data" and blocked decisions carry their reasons.
func (e *DecisionEngineService) Evaluate(ticker string) models.TradeDecision {
	decision, _ := e.EvaluateWithDetails(ticker)
	return decision
}

// EvaluateWithDetails additionally returns the scorer's bucket breakdown so
// the caller can persist it alongside the score.
func (e *DecisionEngineService) EvaluateWithDetails(ticker string) (models.TradeDecision, strategies.ScoreDetails) {
	now := e.clock().UTC()
	decision := models.TradeDecision{
		Ticker:    ticker,
		Quantity:  e.orderQuantity,
		Strategy:  models.StrategyScalpingAggressif,
		CreatedAt: now,
	}

	ind, err := e.indicatorProvider.Snapshot(ticker)
	if err != nil {
		// Fetch failures stop at this boundary and become absent data.
		helpers.Logger.Errorln(fmt.Sprintf("%s: indicator fetch failed: %s", ticker, err.Error()))
		ind = nil
	}
	if ind.IsEmpty() {
		decision.ReasonsAvoid = append(decision.ReasonsAvoid, "Aucune donnée disponible")
		return decision, strategies.ScoreDetails{}
	}

	score, details := e.scorer.ScoreWithDetails(ind)
	decision.Score = score
	if ind.Price != nil {
		decision.Price = *ind.Price
	}

	blocked := false

	// Hard stop first: a ticker scoring 100 a fourth time today is still out.
	if e.riskGateService.ThrottleExceeded(ticker, now) {
		decision.ReasonsAvoid = append(decision.ReasonsAvoid, "Limite de trades journaliers atteinte")
		blocked = true
	}

	if reason, isBlocked := e.riskGateService.BlockReason(now); isBlocked {
		decision.ReasonsAvoid = append(decision.ReasonsAvoid, reason)
		blocked = true
	}

	e.collectSignalReasons(ind, &decision, now)

	decision.Strategy = strategies.SelectStrategy(ind)
	decision.Confidence = math.Min(score/100.0, 1.0)
	decision.Approved = decision.Confidence >= approvalConfidence && !blocked

	// Viability is reported independently of approval so both fields can be
	// asserted on their own. An approved-but-not-viable decision must not be
	// silently flipped.
	if decision.Price > 0 {
		target := decision.Price * (1 + targetGainPct)
		viability := models.CalculateTradeViability(decision.Price, target, decision.Quantity, e.fees)
		decision.Viable = viability.Viable
		decision.Fees = viability.TotalFees
		if !viability.Viable {
			decision.ReasonsAvoid = append(decision.ReasonsAvoid, "Frais supérieurs au gain espéré")
		}
	}

	return decision, details
}

func (e *DecisionEngineService) collectSignalReasons(ind *models.Indicators, decision *models.TradeDecision, now time.Time) {
	if strategies.IsBuySignal(ind) {
		decision.ReasonsBuy = append(decision.ReasonsBuy, "Conditions techniques réunies")
	} else {
		decision.ReasonsAvoid = append(decision.ReasonsAvoid, "Conditions techniques insuffisantes")
	}

	if ind.HasFDA {
		decision.ReasonsBuy = append(decision.ReasonsBuy, "Catalyseur FDA")
	}

	volumeRatio := 1.0
	if ind.VolumeRatio != nil {
		volumeRatio = *ind.VolumeRatio
	}
	if volumeRatio <= 1.5 {
		decision.ReasonsAvoid = append(decision.ReasonsAvoid, "Volume trop faible")
	}

	if ind.CatalystDate != nil {
		if ind.CatalystDate.Sub(now) > 24*time.Hour {
			decision.ReasonsAvoid = append(decision.ReasonsAvoid, "Catalyseur trop lointain")
		} else {
			decision.ReasonsBuy = append(decision.ReasonsBuy, "Catalyseur imminent")
		}
	}
}

// SuggestOrder derives order parameters from the snapshot: 2% of capital,
// ATR-based stop loss capped at 8%, +5% take profit.
func (e *DecisionEngineService) SuggestOrder(ind *models.Indicators, capital float64) models.OrderSuggestion {
	suggestion := models.OrderSuggestion{
		Quantity:  1,
		OrderType: "limit",
	}
	if ind == nil || ind.Price == nil || *ind.Price <= 0 {
		return suggestion
	}

	price := *ind.Price
	suggestion.Price = price
	if capital > 0 {
		qty := int(capital * capitalRiskPct / price)
		if qty > 1 {
			suggestion.Quantity = qty
		}
	}

	stopLossPct := maxStopLossPct
	if ind.ATR != nil && *ind.ATR > 0 {
		stopLossPct = math.Min(maxStopLossPct, 2*(*ind.ATR)/price)
	}
	suggestion.StopLoss = helpers.RoundTo(price*(1-stopLossPct), 2)
	suggestion.TakeProfit = helpers.RoundTo(price*(1+targetGainPct), 2)
	return suggestion
}

// InTradingWindow bounds automated entries to the liquid hours: nothing
// before 13:45 UTC (pre-open churn) and nothing after 20:45 UTC.
func InTradingWindow(t time.Time) bool {
	t = t.UTC()
	if t.Hour() < 13 || (t.Hour() == 13 && t.Minute() < 45) {
		return false
	}
	if t.Hour() > 20 || (t.Hour() == 20 && t.Minute() > 45) {
		return false
	}
	return true
}
