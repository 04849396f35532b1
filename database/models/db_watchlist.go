package database

import "gorm.io/gorm"

// WatchlistEntry is the live snapshot row for a ticker, overwritten on every
// scoring pass. Distinct from Score, which keeps one row per day.
type WatchlistEntry struct {
	gorm.Model
	Ticker  string `gorm:"uniqueIndex;size:200"`
	Score   float64
	PumpPct float64
	EmaDiff float64
	RSI     float64
}
