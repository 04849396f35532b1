package database

import "gorm.io/gorm"

// Score is one historical scoring row per (symbol, day). Re-scoring the same
// symbol on the same day overwrites in place.
type Score struct {
	gorm.Model
	Symbol      string `json:"symbol" gorm:"uniqueIndex:idx_symbol_date;size:200"`
	Date        string `json:"date" gorm:"uniqueIndex:idx_symbol_date;size:200"`
	Score       float64
	DetailsJSON string
}
