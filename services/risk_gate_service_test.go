package services

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gitlab.com/aoterocom/PennyWatchBot/database"
	"gitlab.com/aoterocom/PennyWatchBot/models"
)

func newTestDB(t *testing.T) *database.DBService {
	t.Helper()
	dbs, err := database.NewDBService(filepath.Join(t.TempDir(), "trades.db"))
	if err != nil {
		t.Fatalf("couldn't open test database: %v", err)
	}
	return dbs
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestRiskGateNoLimitsConfigured(t *testing.T) {
	dbs := newTestDB(t)
	gate := NewRiskGateService(dbs, RiskLimits{MaxTradesPerDay: 3})

	now := time.Now().UTC()
	_, err := dbs.RecordTrade("ABCD", "achat", 2.0, 100, 0, "scalping_aggressif", true, now)
	assert.NoError(t, err)

	// Absent thresholds mean no limit, not zero limit.
	reason, blocked := gate.BlockReason(now)
	assert.False(t, blocked)
	assert.Empty(t, reason)
}

func TestRiskGateMaxConcurrentPositions(t *testing.T) {
	dbs := newTestDB(t)
	gate := NewRiskGateService(dbs, RiskLimits{
		MaxConcurrentPositions: intPtr(1),
		MaxTradesPerDay:        3,
	})

	now := time.Now().UTC()
	reason, blocked := gate.BlockReason(now)
	assert.False(t, blocked)

	_, err := dbs.RecordTrade("ABCD", "achat", 2.0, 100, 0, "scalping_aggressif", true, now)
	assert.NoError(t, err)

	reason, blocked = gate.BlockReason(now)
	assert.True(t, blocked)
	assert.Equal(t, "Max concurrent positions reached", reason)
}

func TestRiskGateDailyLossLimit(t *testing.T) {
	dbs := newTestDB(t)
	gate := NewRiskGateService(dbs, RiskLimits{
		DailyLossLimit:  floatPtr(100.0),
		MaxTradesPerDay: 3,
	})

	now := time.Now().UTC()
	tradeID, err := dbs.RecordTrade("ABCD", "achat", 2.0, 100, 0, "scalping_aggressif", true, now)
	assert.NoError(t, err)

	_, blocked := gate.BlockReason(now)
	assert.False(t, blocked)

	assert.NoError(t, dbs.CloseTrade(tradeID, 0.5, -150.0, models.ExitTriggerStopLoss))

	reason, blocked := gate.BlockReason(now)
	assert.True(t, blocked)
	assert.Equal(t, "Daily loss limit reached", reason)
}

func TestRiskGateChecksOrdered(t *testing.T) {
	dbs := newTestDB(t)
	gate := NewRiskGateService(dbs, RiskLimits{
		MaxConcurrentPositions: intPtr(1),
		DailyLossLimit:         floatPtr(10.0),
		MaxTradesPerDay:        3,
	})

	now := time.Now().UTC()
	openID, err := dbs.RecordTrade("ABCD", "achat", 2.0, 100, 0, "scalping_aggressif", true, now)
	assert.NoError(t, err)
	_, err = dbs.RecordTrade("WXYZ", "achat", 2.0, 100, 0, "scalping_aggressif", true, now)
	assert.NoError(t, err)
	assert.NoError(t, dbs.CloseTrade(openID, 1.0, -100.0, models.ExitTriggerStopLoss))

	// Both thresholds are breached; the position check fires first.
	reason, blocked := gate.BlockReason(now)
	assert.True(t, blocked)
	assert.Equal(t, "Max concurrent positions reached", reason)
}

func TestThrottleHardStop(t *testing.T) {
	dbs := newTestDB(t)
	gate := NewRiskGateService(dbs, RiskLimits{MaxTradesPerDay: 3})

	now := time.Now().UTC()
	for i := 0; i < 2; i++ {
		_, err := dbs.RecordTrade("ABCD", "achat", 2.0, 100, 0, "scalping_aggressif", true, now)
		assert.NoError(t, err)
	}
	assert.False(t, gate.ThrottleExceeded("ABCD", now))

	_, err := dbs.RecordTrade("ABCD", "achat", 2.0, 100, 0, "scalping_aggressif", true, now)
	assert.NoError(t, err)

	assert.True(t, gate.ThrottleExceeded("ABCD", now))
	// Other tickers keep their own allowance.
	assert.False(t, gate.ThrottleExceeded("WXYZ", now))
}

func TestLimitsFromEnv(t *testing.T) {
	t.Setenv("maxConcurrentPositions", "4")
	t.Setenv("dailyLossLimit", "250.5")
	t.Setenv("maxTradesPerDay", "5")

	limits, err := LimitsFromEnv()
	assert.NoError(t, err)
	assert.NotNil(t, limits.MaxConcurrentPositions)
	assert.Equal(t, 4, *limits.MaxConcurrentPositions)
	assert.NotNil(t, limits.DailyLossLimit)
	assert.Equal(t, 250.5, *limits.DailyLossLimit)
	assert.Equal(t, 5, limits.MaxTradesPerDay)
}

func TestLimitsFromEnvDefaults(t *testing.T) {
	t.Setenv("maxConcurrentPositions", "")
	t.Setenv("dailyLossLimit", "")
	t.Setenv("maxTradesPerDay", "")

	limits, err := LimitsFromEnv()
	assert.NoError(t, err)
	assert.Nil(t, limits.MaxConcurrentPositions)
	assert.Nil(t, limits.DailyLossLimit)
	assert.Equal(t, 3, limits.MaxTradesPerDay)
}

func TestLimitsFromEnvRejectsBadValues(t *testing.T) {
	t.Setenv("maxConcurrentPositions", "")
	t.Setenv("maxTradesPerDay", "")

	// A typo must fail loudly, not silently disable the loss limit.
	t.Setenv("dailyLossLimit", "abc")
	_, err := LimitsFromEnv()
	assert.Error(t, err)

	// A negative position cap would block every trade forever.
	t.Setenv("dailyLossLimit", "")
	t.Setenv("maxConcurrentPositions", "-2")
	_, err = LimitsFromEnv()
	assert.Error(t, err)

	t.Setenv("maxConcurrentPositions", "")
	t.Setenv("dailyLossLimit", "-50")
	_, err = LimitsFromEnv()
	assert.Error(t, err)

	t.Setenv("dailyLossLimit", "")
	t.Setenv("maxTradesPerDay", "0")
	_, err = LimitsFromEnv()
	assert.Error(t, err)
}
