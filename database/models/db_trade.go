package database

import (
	"time"

	"gorm.io/gorm"
)

// Trade is one row of the append-only trade ledger. Rows are never mutated
// after insert except to set the exit fields once on close.
type Trade struct {
	gorm.Model
	Ticker      string `gorm:"index;size:200"`
	Action      string `gorm:"size:20"`
	Price       float64
	Quantity    int
	Fees        float64
	Provenance  string `gorm:"size:200"`
	Simulated   bool
	Timestamp   time.Time `gorm:"index"`
	ExitPrice   *float64
	GainNet     *float64
	ExitTrigger string `gorm:"size:50"`
}
