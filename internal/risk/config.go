package risk

import (
	"time"

	"github.com/shopspring/decimal"
)

// Config is the subset of spec §6's configuration surface the guard
// table needs.
type Config struct {
	BookStaleSec                time.Duration
	FundingStaleSec              time.Duration
	MaxUnhedgedNotional          decimal.Decimal
	MaxUnhedgedSec               time.Duration
	RejectStreakHalt             int
	ControlledReconnectGraceSec  time.Duration
}
