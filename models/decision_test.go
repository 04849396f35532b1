package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecisionBlocked(t *testing.T) {
	rejected := TradeDecision{ReasonsAvoid: []string{"Limite de trades journaliers atteinte"}}
	assert.True(t, rejected.Blocked())

	// An approved decision with a viability warning is not blocked.
	approved := TradeDecision{Approved: true, ReasonsAvoid: []string{"Frais supérieurs au gain espéré"}}
	assert.False(t, approved.Blocked())

	assert.False(t, (&TradeDecision{}).Blocked())
}
