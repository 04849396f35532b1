package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"gitlab.com/aoterocom/PennyWatchBot/database"
	dbmodels "gitlab.com/aoterocom/PennyWatchBot/database/models"
	"gitlab.com/aoterocom/PennyWatchBot/helpers"
	"gitlab.com/aoterocom/PennyWatchBot/interfaces"
	"gitlab.com/aoterocom/PennyWatchBot/models"
	"gitlab.com/aoterocom/PennyWatchBot/strategies"
)

// WatchlistTraderService drives the evaluation loop: every poll interval it
// scores the whole watchlist, persists the results in one batch, hands
// approved viable decisions to the executor and manages the resulting open
// positions until an exit condition closes them. Ticker evaluations run
// concurrently — they share no state until the final persistence write.
type WatchlistTraderService struct {
	decisionEngine    *DecisionEngineService
	databaseService   *database.DBService
	indicatorProvider interfaces.IndicatorProvider
	orderExecutor     interfaces.OrderExecutor
	notifier          interfaces.Notifier

	tickers      []string
	pollInterval time.Duration
	simulated    bool

	// One trailing stop per open ledger row, keyed by trade ID. Only touched
	// from RunCycle, which runs on a single goroutine.
	trailing map[uint]*strategies.TrailingManager

	stopChan chan struct{}
	stopOnce sync.Once
	clock    func() time.Time
}

func NewWatchlistTraderService(decisionEngine *DecisionEngineService, databaseService *database.DBService,
	indicatorProvider interfaces.IndicatorProvider, orderExecutor interfaces.OrderExecutor,
	notifier interfaces.Notifier, tickers []string, pollInterval time.Duration,
	simulated bool) *WatchlistTraderService {

	return &WatchlistTraderService{
		decisionEngine:    decisionEngine,
		databaseService:   databaseService,
		indicatorProvider: indicatorProvider,
		orderExecutor:     orderExecutor,
		notifier:          notifier,
		tickers:           tickers,
		pollInterval:      pollInterval,
		simulated:         simulated,
		trailing:          make(map[uint]*strategies.TrailingManager),
		stopChan:          make(chan struct{}),
		clock:             time.Now,
	}
}

// Start blocks, re-evaluating the ticker set at the poll interval until Stop
// is called. The stop signal is only checked between cycles, so an in-flight
// batch always completes or rolls back as a whole.
func (t *WatchlistTraderService) Start() {
	helpers.Logger.Infoln(fmt.Sprintf("🖖🏻 Watchlist trader started (%d tickers, every %s)", len(t.tickers), t.pollInterval))
	for {
		t.RunCycle()

		select {
		case <-t.stopChan:
			helpers.Logger.Infoln("Watchlist trader stopped")
			return
		case <-time.After(t.pollInterval):
		}
	}
}

// Stop requests a graceful shutdown. Safe to call more than once.
func (t *WatchlistTraderService) Stop() {
	t.stopOnce.Do(func() {
		close(t.stopChan)
	})
}

type cycleResult struct {
	decision models.TradeDecision
	row      database.ScoreRow
	snapshot snapshotValues
}

type snapshotValues struct {
	pumpPct float64
	emaDiff float64
	rsi     float64
}

// RunCycle evaluates every ticker once and persists the outcome. Exposed so
// a one-shot scoring pass can reuse the exact trading code path.
func (t *WatchlistTraderService) RunCycle() {
	now := t.clock().UTC()
	results := make([]cycleResult, len(t.tickers))

	var wg sync.WaitGroup
	for i, ticker := range t.tickers {
		wg.Add(1)
		go func(i int, ticker string) {
			defer wg.Done()
			decision, details := t.decisionEngine.EvaluateWithDetails(ticker)

			detailsJSON, err := json.Marshal(details)
			if err != nil {
				helpers.Logger.Errorln(fmt.Sprintf("%s: marshal details: %s", ticker, err.Error()))
				detailsJSON = []byte("{}")
			}

			snapshot := snapshotValues{}
			if details.PumpPct != nil {
				snapshot.pumpPct = *details.PumpPct
			}
			if details.EMADiff != nil {
				snapshot.emaDiff = *details.EMADiff
			}
			if details.RSI != nil {
				snapshot.rsi = *details.RSI
			}

			results[i] = cycleResult{
				decision: decision,
				row: database.ScoreRow{
					Symbol:      ticker,
					Date:        database.Day(now),
					Score:       decision.Score,
					DetailsJSON: string(detailsJSON),
				},
				snapshot: snapshot,
			}
		}(i, ticker)
	}
	wg.Wait()

	rows := make([]database.ScoreRow, 0, len(results))
	for _, result := range results {
		rows = append(rows, result.row)
	}
	if _, err := t.databaseService.UpsertScores(rows); err != nil {
		// The batch rolled back as a whole; this cycle's scores are lost but
		// the store stays consistent.
		helpers.Logger.Errorln(fmt.Sprintf("score upsert failed, batch rolled back: %s", err.Error()))
		return
	}

	for _, result := range results {
		if err := t.databaseService.SaveWatchlistSnapshot(result.decision.Ticker, result.decision.Score,
			result.snapshot.pumpPct, result.snapshot.emaDiff, result.snapshot.rsi); err != nil {
			helpers.Logger.Errorln(fmt.Sprintf("%s: watchlist snapshot: %s", result.decision.Ticker, err.Error()))
		}

		t.maybeTrade(result.decision, now)
	}

	t.manageOpenPositions(now)
}

func (t *WatchlistTraderService) maybeTrade(decision models.TradeDecision, now time.Time) {
	if !decision.Approved || !decision.Viable {
		if decision.Blocked() {
			helpers.Logger.Debugln(fmt.Sprintf("%s: rejected (%s)", decision.Ticker,
				strings.Join(decision.ReasonsAvoid, ", ")))
		}
		return
	}
	if !InTradingWindow(now) {
		helpers.Logger.Debugln(fmt.Sprintf("%s: approved but outside trading window", decision.Ticker))
		return
	}

	if t.notifier != nil {
		message := fmt.Sprintf("🚨 %s: score %.2f, confiance %.2f, stratégie %s",
			decision.Ticker, decision.Score, decision.Confidence, decision.Strategy)
		if !t.notifier.SendAlert(message) {
			helpers.Logger.Warnln(fmt.Sprintf("%s: alert delivery failed", decision.Ticker))
		}
	}

	if t.orderExecutor == nil {
		return
	}
	order, err := t.orderExecutor.ExecuteOrder(decision.Ticker, decision.Price, decision.Quantity, models.TradeActionAchat)
	if err != nil {
		helpers.Logger.Errorln(fmt.Sprintf("%s: order execution failed: %s", decision.Ticker, err.Error()))
		return
	}
	if !order.Filled {
		return
	}

	// The ledger write lands before the next cycle's throttle check reads it.
	_, err = t.databaseService.RecordTrade(decision.Ticker, string(models.TradeActionAchat), order.Price,
		order.Quantity, decision.Fees, string(decision.Strategy), t.simulated, now)
	if err != nil {
		helpers.Logger.Errorln(fmt.Sprintf("%s: trade record failed: %s", decision.Ticker, err.Error()))
	}
}

// manageOpenPositions walks the open ledger rows, ratchets each trailing stop
// from the latest price and closes whatever hit an exit condition. Positions
// with no tape this cycle stay open untouched.
func (t *WatchlistTraderService) manageOpenPositions(now time.Time) {
	trades, err := t.databaseService.OpenTrades(t.simulated)
	if err != nil {
		helpers.Logger.Errorln(fmt.Sprintf("open position scan failed: %s", err.Error()))
		return
	}

	for _, trade := range trades {
		ind, err := t.indicatorProvider.Snapshot(trade.Ticker)
		if err != nil {
			helpers.Logger.Errorln(fmt.Sprintf("%s: indicator fetch failed: %s", trade.Ticker, err.Error()))
			continue
		}
		if ind == nil || ind.Price == nil {
			continue
		}
		price := *ind.Price

		manager := t.trailing[trade.ID]
		if manager == nil {
			manager = strategies.NewTrailingManager(trade.Price, trade.Price*(1-maxStopLossPct))
			t.trailing[trade.ID] = manager
		}
		stop := manager.Update(price)

		var trigger models.ExitTrigger
		switch {
		case !InTradingWindow(now):
			trigger = models.ExitTriggerEndOfDay
		case price >= trade.Price*(1+targetGainPct):
			trigger = models.ExitTriggerTakeProfit
		case price <= stop && stop >= trade.Price:
			trigger = models.ExitTriggerTrailingStop
		case price <= stop:
			trigger = models.ExitTriggerStopLoss
		default:
			continue
		}

		t.closePosition(trade, price, trigger)
	}
}

func (t *WatchlistTraderService) closePosition(trade dbmodels.Trade, price float64, trigger models.ExitTrigger) {
	if t.orderExecutor != nil {
		order, err := t.orderExecutor.ExecuteOrder(trade.Ticker, price, trade.Quantity, models.TradeActionVente)
		if err != nil {
			helpers.Logger.Errorln(fmt.Sprintf("%s: exit order failed: %s", trade.Ticker, err.Error()))
			return
		}
		if !order.Filled {
			return
		}
		price = order.Price
	}

	// Entry fees were booked on the opening row; the net is gross minus those.
	gainNet := helpers.RoundTo((price-trade.Price)*float64(trade.Quantity)-trade.Fees, 2)
	if err := t.databaseService.CloseTrade(trade.ID, price, gainNet, trigger); err != nil {
		helpers.Logger.Errorln(fmt.Sprintf("%s: trade close failed: %s", trade.Ticker, err.Error()))
		return
	}
	delete(t.trailing, trade.ID)
	helpers.Logger.Infoln(fmt.Sprintf("📉 %s: vente %d @ %.2f (%s), gain net %.2f",
		trade.Ticker, trade.Quantity, price, string(trigger), gainNet))
}
