package models

type ExitTrigger string

const (
	ExitTriggerStopLoss     ExitTrigger = "Stop Loss"
	ExitTriggerTrailingStop             = "Trailing Stop"
	ExitTriggerTakeProfit               = "Take Profit"
	ExitTriggerEndOfDay                 = "End Of Day"
	ExitTriggerManual                   = "Manual"
	ExitTriggerNone                     = ""
)
