package services

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gitlab.com/aoterocom/PennyWatchBot/database"
	"gitlab.com/aoterocom/PennyWatchBot/helpers"
)

const defaultMaxTradesPerDay = 3

// RiskLimits are the global thresholds guarding new decisions. A nil pointer
// means the threshold is not configured and its check is skipped — absence of
// a limit is "no limit", not "zero limit".
type RiskLimits struct {
	MaxConcurrentPositions *int
	DailyLossLimit         *float64
	MaxTradesPerDay        int
}

// LimitsFromEnv reads the risk thresholds the same way the rest of the bot
// reads its configuration. Unset variables leave the matching check disabled;
// malformed or negative values are configuration errors, never defaults.
func LimitsFromEnv() (RiskLimits, error) {
	limits := RiskLimits{
		MaxTradesPerDay: defaultMaxTradesPerDay,
	}
	if raw := os.Getenv("maxConcurrentPositions"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return limits, fmt.Errorf("error: invalid maxConcurrentPositions %q: %w", raw, err)
		}
		if v < 0 {
			return limits, fmt.Errorf("error: negative maxConcurrentPositions %d", v)
		}
		limits.MaxConcurrentPositions = &v
	}
	if raw := os.Getenv("dailyLossLimit"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return limits, fmt.Errorf("error: invalid dailyLossLimit %q: %w", raw, err)
		}
		if v < 0 {
			return limits, fmt.Errorf("error: negative dailyLossLimit %f", v)
		}
		limits.DailyLossLimit = &v
	}
	if raw := os.Getenv("maxTradesPerDay"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return limits, fmt.Errorf("error: invalid maxTradesPerDay %q: %w", raw, err)
		}
		if v < 1 {
			return limits, fmt.Errorf("error: maxTradesPerDay must be at least 1, got %d", v)
		}
		limits.MaxTradesPerDay = v
	}
	return limits, nil
}

// RiskGateService answers two questions before any decision is allowed out:
// are the global risk limits breached, and has this ticker already burned its
// daily trade allowance. Read-only against the trade ledger.
type RiskGateService struct {
	databaseService *database.DBService
	limits          RiskLimits
}

func NewRiskGateService(databaseService *database.DBService, limits RiskLimits) *RiskGateService {
	return &RiskGateService{
		databaseService: databaseService,
		limits:          limits,
	}
}

// BlockReason runs the configured checks in order and short-circuits on the
// first violation. Ledger read failures are logged and the check skipped,
// mirroring how a missing ledger counts as zero history.
func (r *RiskGateService) BlockReason(now time.Time) (string, bool) {
	if r.limits.MaxConcurrentPositions != nil {
		open, err := r.databaseService.OpenPositionCount(true)
		if err != nil {
			helpers.Logger.Errorln(fmt.Sprintf("risk gate: open position count: %s", err.Error()))
		} else if open >= int64(*r.limits.MaxConcurrentPositions) {
			return "Max concurrent positions reached", true
		}
	}

	if r.limits.DailyLossLimit != nil {
		loss, err := r.databaseService.RealizedLossOn(now)
		if err != nil {
			helpers.Logger.Errorln(fmt.Sprintf("risk gate: realized loss: %s", err.Error()))
		} else if loss >= *r.limits.DailyLossLimit {
			return "Daily loss limit reached", true
		}
	}

	return "", false
}

// TradesToday returns how many ledger rows exist for the ticker on the UTC
// day of `now`.
func (r *RiskGateService) TradesToday(ticker string, now time.Time) int64 {
	count, err := r.databaseService.TradesOnDay(ticker, now)
	if err != nil {
		helpers.Logger.Errorln(fmt.Sprintf("risk gate: trades for %s: %s", ticker, err.Error()))
		return 0
	}
	return count
}

// ThrottleExceeded is the hard per-ticker stop: once the daily allowance is
// burned, no score is high enough to trade again today.
func (r *RiskGateService) ThrottleExceeded(ticker string, now time.Time) bool {
	return r.TradesToday(ticker, now) >= int64(r.limits.MaxTradesPerDay)
}
