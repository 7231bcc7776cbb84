package oms

import "github.com/shopspring/decimal"

// ProfitStats accumulates realized PnL and fee totals across both legs,
// the same bookkeeping shape as the teacher's ProfitFixer/tradeRecover
// flow, generalized into a plain running-total struct since this engine
// keeps no persisted state across restarts (spec §6).
type ProfitStats struct {
	RealizedPnL decimal.Decimal
	TotalFees   decimal.Decimal
	TradeCount  int
}

// AddFill folds one fill's fee into the running totals. Realized PnL
// itself is computed by the caller (it depends on matching buy/sell
// legs across both instruments) and added via AddRealized.
func (p *ProfitStats) AddFill(fee decimal.Decimal) {
	p.TotalFees = p.TotalFees.Add(fee)
	p.TradeCount++
}

// AddRealized folds a realized PnL delta into the running total.
func (p *ProfitStats) AddRealized(delta decimal.Decimal) {
	p.RealizedPnL = p.RealizedPnL.Add(delta)
}

// Net returns realized PnL net of fees.
func (p ProfitStats) Net() decimal.Decimal {
	return p.RealizedPnL.Sub(p.TotalFees)
}
