package database

import (
	"database/sql"
	"errors"
	"time"

	database "gitlab.com/aoterocom/PennyWatchBot/database/models"
	"gitlab.com/aoterocom/PennyWatchBot/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const dayFormat = "2006-01-02"

type DBService struct {
	DB *gorm.DB
}

// ScoreRow is one scoring result heading for the scores table.
type ScoreRow struct {
	Symbol      string
	Date        string
	Score       float64
	DetailsJSON string
}

func NewDBService(dbPath string) (*DBService, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	dbs := &DBService{
		DB: db,
	}

	err = dbs.DB.AutoMigrate(&database.Score{}, &database.Trade{}, &database.WatchlistEntry{})
	if err != nil {
		return nil, err
	}

	return dbs, nil
}

// UpsertScores writes a batch of score rows in one transaction. A (symbol,
// date) collision overwrites score and details — last write wins within the
// day. All rows commit or none do.
func (dbs *DBService) UpsertScores(rows []ScoreRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	var count int64
	err := dbs.DB.Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			dbScore := database.Score{
				Symbol:      row.Symbol,
				Date:        row.Date,
				Score:       row.Score,
				DetailsJSON: row.DetailsJSON,
			}
			result := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "symbol"}, {Name: "date"}},
				DoUpdates: clause.AssignmentColumns([]string{"score", "details_json", "updated_at"}),
			}).Create(&dbScore)
			if result.Error != nil {
				return result.Error
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// SaveWatchlistSnapshot overwrites the live snapshot row for a ticker.
func (dbs *DBService) SaveWatchlistSnapshot(ticker string, score float64, pumpPct float64, emaDiff float64, rsi float64) error {
	entry := database.WatchlistEntry{
		Ticker:  ticker,
		Score:   score,
		PumpPct: pumpPct,
		EmaDiff: emaDiff,
		RSI:     rsi,
	}
	return dbs.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "ticker"}},
		DoUpdates: clause.AssignmentColumns([]string{"score", "pump_pct", "ema_diff", "rsi", "updated_at"}),
	}).Create(&entry).Error
}

// RecordTrade appends one row to the trade ledger. No upsert semantics here:
// every call is a new event.
func (dbs *DBService) RecordTrade(ticker string, action string, price float64, quantity int, fees float64,
	provenance string, simulated bool, timestamp time.Time) (uint, error) {

	trade := database.Trade{
		Ticker:     ticker,
		Action:     action,
		Price:      price,
		Quantity:   quantity,
		Fees:       fees,
		Provenance: provenance,
		Simulated:  simulated,
		Timestamp:  timestamp,
	}
	if err := dbs.DB.Create(&trade).Error; err != nil {
		return 0, err
	}
	return trade.ID, nil
}

// CloseTrade sets the exit fields of a ledger row, once. Closing an already
// closed trade is an error: the ledger stays append-only apart from this
// single settable pair.
func (dbs *DBService) CloseTrade(tradeID uint, exitPrice float64, gainNet float64, exitTrigger models.ExitTrigger) error {
	var trade database.Trade
	if err := dbs.DB.First(&trade, tradeID).Error; err != nil {
		return err
	}
	if trade.ExitPrice != nil {
		return errors.New("trade already closed")
	}
	return dbs.DB.Model(&trade).Updates(map[string]interface{}{
		"exit_price":   exitPrice,
		"gain_net":     gainNet,
		"exit_trigger": string(exitTrigger),
	}).Error
}

// TradesOnDay counts the ledger rows for a ticker on the UTC day of `day`.
// Basis of the daily throttle.
func (dbs *DBService) TradesOnDay(ticker string, day time.Time) (int64, error) {
	dayStart := day.UTC().Truncate(24 * time.Hour)
	dayEnd := dayStart.Add(24 * time.Hour)

	var count int64
	err := dbs.DB.Model(&database.Trade{}).
		Where("ticker = ? AND timestamp >= ? AND timestamp < ?", ticker, dayStart, dayEnd).
		Count(&count).Error
	return count, err
}

// OpenTrades returns the ledger rows that never got an exit price.
func (dbs *DBService) OpenTrades(simulated bool) ([]database.Trade, error) {
	var trades []database.Trade
	err := dbs.DB.
		Where("simulated = ? AND exit_price IS NULL", simulated).
		Find(&trades).Error
	return trades, err
}

// TradeByID fetches one ledger row.
func (dbs *DBService) TradeByID(tradeID uint) (*database.Trade, error) {
	var trade database.Trade
	if err := dbs.DB.First(&trade, tradeID).Error; err != nil {
		return nil, err
	}
	return &trade, nil
}

// OpenPositionCount counts ledger rows that never got an exit price.
func (dbs *DBService) OpenPositionCount(simulated bool) (int64, error) {
	var count int64
	err := dbs.DB.Model(&database.Trade{}).
		Where("simulated = ? AND exit_price IS NULL", simulated).
		Count(&count).Error
	return count, err
}

// RealizedLossOn sums the losses (negative gain_net) settled on the given UTC
// day, returned as a positive number.
func (dbs *DBService) RealizedLossOn(day time.Time) (float64, error) {
	dayStart := day.UTC().Truncate(24 * time.Hour)
	dayEnd := dayStart.Add(24 * time.Hour)

	var total sql.NullFloat64
	err := dbs.DB.Model(&database.Trade{}).
		Where("gain_net < 0 AND updated_at >= ? AND updated_at < ?", dayStart, dayEnd).
		Select("SUM(gain_net)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	if !total.Valid {
		return 0, nil
	}
	return -total.Float64, nil
}

// ScoresOn returns all score rows persisted for the given UTC day.
func (dbs *DBService) ScoresOn(day time.Time) ([]database.Score, error) {
	var scores []database.Score
	err := dbs.DB.Where("date = ?", day.UTC().Format(dayFormat)).Find(&scores).Error
	return scores, err
}

// ScoreFor returns the score row for a symbol on a day, or nil when absent.
func (dbs *DBService) ScoreFor(symbol string, day time.Time) (*database.Score, error) {
	var score database.Score
	err := dbs.DB.Where("symbol = ? AND date = ?", symbol, day.UTC().Format(dayFormat)).First(&score).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &score, nil
}

// Day formats a timestamp the way the scores table keys its date column.
func Day(t time.Time) string {
	return t.UTC().Format(dayFormat)
}
