package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gitlab.com/aoterocom/PennyWatchBot/database"
	"gitlab.com/aoterocom/PennyWatchBot/models"
)

type executorStub struct {
	executed []models.OrderResult
}

func (e *executorStub) ExecuteOrder(ticker string, price float64, quantity int,
	action models.TradeAction) (models.OrderResult, error) {

	order := models.OrderResult{
		Ticker:   ticker,
		Action:   action,
		Price:    price,
		Quantity: quantity,
		Filled:   true,
	}
	e.executed = append(e.executed, order)
	return order, nil
}

type notifierStub struct {
	messages []string
}

func (n *notifierStub) SendAlert(message string) bool {
	n.messages = append(n.messages, message)
	return true
}

func newTestTrader(t *testing.T, dbs *database.DBService, provider *providerStub,
	executor *executorStub, notifier *notifierStub, tickers []string) *WatchlistTraderService {

	t.Helper()
	engine := newEngine(t, dbs, provider, RiskLimits{MaxTradesPerDay: 3}, cheapFees(), 100)
	return NewWatchlistTraderService(engine, dbs, provider, executor, notifier, tickers, 10*time.Millisecond, true)
}

func TestRunCyclePersistsScores(t *testing.T) {
	dbs := newTestDB(t)
	provider := &providerStub{snapshots: map[string]*models.Indicators{
		"ABCD": strongIndicators(),
		"WXYZ": nil,
	}}
	trader := newTestTrader(t, dbs, provider, &executorStub{}, &notifierStub{}, []string{"ABCD", "WXYZ"})

	trader.RunCycle()

	score, err := dbs.ScoreFor("ABCD", time.Now())
	assert.NoError(t, err)
	assert.NotNil(t, score)
	assert.Equal(t, 90.0, score.Score)

	// No-data tickers still get a row: score zero, not a crash.
	score, err = dbs.ScoreFor("WXYZ", time.Now())
	assert.NoError(t, err)
	assert.NotNil(t, score)
	assert.Equal(t, 0.0, score.Score)
}

func TestRunCycleIdempotentAcrossPasses(t *testing.T) {
	dbs := newTestDB(t)
	provider := &providerStub{snapshots: map[string]*models.Indicators{"ABCD": strongIndicators()}}
	trader := newTestTrader(t, dbs, provider, &executorStub{}, &notifierStub{}, []string{"ABCD"})

	trader.RunCycle()
	trader.RunCycle()

	scores, err := dbs.ScoresOn(time.Now())
	assert.NoError(t, err)
	assert.Len(t, scores, 1)
}

// tradingHoursClock pins the trader to today at 15:00 UTC, inside the
// trading window but on the real calendar day so throttle reads line up.
func tradingHoursClock() time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour).Add(15 * time.Hour)
}

func TestRunCycleTradesOnlyApprovedViable(t *testing.T) {
	dbs := newTestDB(t)
	provider := &providerStub{snapshots: map[string]*models.Indicators{
		"GOOD": strongIndicators(),
		"WEAK": {Price: models.Float(10.0), Volume: models.Float(200_000)},
	}}
	executor := &executorStub{}
	notifier := &notifierStub{}
	trader := newTestTrader(t, dbs, provider, executor, notifier, []string{"GOOD", "WEAK"})
	trader.clock = tradingHoursClock

	trader.RunCycle()

	assert.Len(t, executor.executed, 1)
	assert.Equal(t, "GOOD", executor.executed[0].Ticker)
	assert.Len(t, notifier.messages, 1)

	count, err := dbs.TradesOnDay("GOOD", time.Now().UTC())
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// The ledger row carries the fees the viability gate computed.
	trade, err := dbs.TradeByID(executorTradeID(t, dbs))
	assert.NoError(t, err)
	assert.Equal(t, 1.99, trade.Fees)
}

// executorTradeID returns the single open ledger row's ID.
func executorTradeID(t *testing.T, dbs *database.DBService) uint {
	t.Helper()
	trades, err := dbs.OpenTrades(true)
	if err != nil || len(trades) != 1 {
		t.Fatalf("expected exactly one open trade, got %d (err %v)", len(trades), err)
	}
	return trades[0].ID
}

func TestThrottleStopsFourthTradeOfDay(t *testing.T) {
	dbs := newTestDB(t)
	provider := &providerStub{snapshots: map[string]*models.Indicators{"ABCD": strongIndicators()}}
	executor := &executorStub{}
	trader := newTestTrader(t, dbs, provider, executor, &notifierStub{}, []string{"ABCD"})
	trader.clock = tradingHoursClock

	for i := 0; i < 5; i++ {
		trader.RunCycle()
	}

	// Three trades recorded, then the throttle holds the line.
	count, err := dbs.TradesOnDay("ABCD", time.Now().UTC())
	assert.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.Len(t, executor.executed, 3)
}

func TestStartStopsGracefully(t *testing.T) {
	dbs := newTestDB(t)
	provider := &providerStub{snapshots: map[string]*models.Indicators{"ABCD": strongIndicators()}}
	trader := newTestTrader(t, dbs, provider, &executorStub{}, &notifierStub{}, []string{"ABCD"})

	done := make(chan struct{})
	go func() {
		trader.Start()
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	trader.Stop()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("trader did not stop")
	}

	// Stop is idempotent.
	trader.Stop()
}

func TestExitPassTakeProfit(t *testing.T) {
	dbs := newTestDB(t)
	provider := &providerStub{snapshots: map[string]*models.Indicators{
		"ABCD": {Price: models.Float(10.5)},
	}}
	executor := &executorStub{}
	trader := newTestTrader(t, dbs, provider, executor, &notifierStub{}, []string{"ABCD"})
	trader.clock = tradingHoursClock

	tradeID, err := dbs.RecordTrade("ABCD", "achat", 10.0, 100, 1.99, "scalping_aggressif", true, time.Now().UTC())
	assert.NoError(t, err)

	trader.RunCycle()

	open, err := dbs.OpenPositionCount(true)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), open)

	closed, err := dbs.TradeByID(tradeID)
	assert.NoError(t, err)
	assert.Equal(t, "Take Profit", closed.ExitTrigger)
	assert.Equal(t, 10.5, *closed.ExitPrice)
	assert.Equal(t, 48.01, *closed.GainNet)

	// The exit went through the executor as a sell.
	assert.Len(t, executor.executed, 1)
	assert.Equal(t, models.TradeAction(models.TradeActionVente), executor.executed[0].Action)
}

func TestExitPassStopLoss(t *testing.T) {
	dbs := newTestDB(t)
	provider := &providerStub{snapshots: map[string]*models.Indicators{
		"ABCD": {Price: models.Float(9.0)},
	}}
	trader := newTestTrader(t, dbs, provider, &executorStub{}, &notifierStub{}, []string{"ABCD"})
	trader.clock = tradingHoursClock

	tradeID, err := dbs.RecordTrade("ABCD", "achat", 10.0, 100, 0, "scalping_aggressif", true, time.Now().UTC())
	assert.NoError(t, err)

	trader.RunCycle()

	closed, err := dbs.TradeByID(tradeID)
	assert.NoError(t, err)
	assert.Equal(t, "Stop Loss", closed.ExitTrigger)
	assert.Equal(t, -100.0, *closed.GainNet)
}

func TestExitPassTrailingStopRatchets(t *testing.T) {
	dbs := newTestDB(t)
	provider := &providerStub{snapshots: map[string]*models.Indicators{
		"ABCD": {Price: models.Float(10.25)},
	}}
	trader := newTestTrader(t, dbs, provider, &executorStub{}, &notifierStub{}, []string{"ABCD"})
	trader.clock = tradingHoursClock

	tradeID, err := dbs.RecordTrade("ABCD", "achat", 10.0, 100, 0, "trailing_dynamic", true, time.Now().UTC())
	assert.NoError(t, err)

	// +2.5% ratchets the stop to break even but keeps the position open.
	trader.RunCycle()
	open, err := dbs.OpenPositionCount(true)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), open)

	// Pulling back below the ratcheted stop closes as a trailing stop.
	provider.snapshots["ABCD"] = &models.Indicators{Price: models.Float(9.9)}
	trader.RunCycle()

	closed, err := dbs.TradeByID(tradeID)
	assert.NoError(t, err)
	assert.Equal(t, "Trailing Stop", closed.ExitTrigger)
	assert.Equal(t, -10.0, *closed.GainNet)
}

func TestExitPassEndOfDay(t *testing.T) {
	dbs := newTestDB(t)
	provider := &providerStub{snapshots: map[string]*models.Indicators{
		"ABCD": {Price: models.Float(10.0)},
	}}
	trader := newTestTrader(t, dbs, provider, &executorStub{}, &notifierStub{}, []string{"ABCD"})
	trader.clock = func() time.Time {
		return time.Now().UTC().Truncate(24 * time.Hour).Add(21*time.Hour + 30*time.Minute)
	}

	tradeID, err := dbs.RecordTrade("ABCD", "achat", 10.0, 100, 0, "buy_hold_day", true, time.Now().UTC())
	assert.NoError(t, err)

	trader.RunCycle()

	closed, err := dbs.TradeByID(tradeID)
	assert.NoError(t, err)
	assert.Equal(t, "End Of Day", closed.ExitTrigger)
	assert.Equal(t, 0.0, *closed.GainNet)
}

func TestExitPassKeepsHealthyPositionOpen(t *testing.T) {
	dbs := newTestDB(t)
	provider := &providerStub{snapshots: map[string]*models.Indicators{
		"ABCD": {Price: models.Float(10.2)},
	}}
	trader := newTestTrader(t, dbs, provider, &executorStub{}, &notifierStub{}, []string{"ABCD"})
	trader.clock = tradingHoursClock

	_, err := dbs.RecordTrade("ABCD", "achat", 10.0, 100, 0, "scalping_aggressif", true, time.Now().UTC())
	assert.NoError(t, err)

	trader.RunCycle()

	open, err := dbs.OpenPositionCount(true)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), open)
}
