package strategy

import "github.com/shopspring/decimal"

// Config is the subset of spec §6's configuration surface the pure
// quoting function needs. internal/config loads the full surface and
// projects this slice out of it.
type Config struct {
	QuoteQty          decimal.Decimal
	BaseHalfSpreadBps decimal.Decimal
	KOBI              decimal.Decimal
	InventorySkewBps  decimal.Decimal
	FundingSkewBps    decimal.Decimal
	MinAbsFunding     decimal.Decimal
	ReplaceThresholdBps decimal.Decimal
}
