package oms

import (
	"time"

	"github.com/shopspring/decimal"
)

// Config is the subset of spec §6's configuration surface the OMS
// needs for reconciliation and the hedge protocol.
type Config struct {
	ReplaceThresholdBps decimal.Decimal
	HedgeSlipBps        decimal.Decimal
	HedgeChaseSec       time.Duration
	HedgeMaxTries       int
	HedgeDeadlineMs     time.Duration
	ChaseGain           decimal.Decimal
}
