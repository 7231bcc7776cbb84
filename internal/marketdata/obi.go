package marketdata

import (
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"

	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/types"
)

// epsilon guards the OBI denominator against division by zero when both
// sides of the book are empty.
var epsilon = decimal.New(1, -9)

// sumSize totals the size of the first n entries of levels (fewer if
// levels is shorter), returning the total and how many contributed.
func sumSize(levels []types.PriceLevel, n int) (decimal.Decimal, int) {
	total := decimal.Zero
	used := 0
	for i := 0; i < n && i < len(levels); i++ {
		total = total.Add(levels[i].Size)
		used++
	}
	return total, used
}

// computeOBI implements the order-book-imbalance formula from spec §4.1:
//
//	obi = (sum(bid.size) - sum(ask.size)) / (sum(bid.size) + sum(ask.size) + eps)
//
// clipped to [-1, +1]. levelsUsed is the greater of the two sides'
// contributing level counts, so a one-sided empty book still reports how
// many levels the non-empty side actually had.
func computeOBI(bidLevels, askLevels []types.PriceLevel, depth int) (obi decimal.Decimal, levelsUsed int) {
	bidSum, bidUsed := sumSize(bidLevels, depth)
	askSum, askUsed := sumSize(askLevels, depth)

	levelsUsed = bidUsed
	if askUsed > levelsUsed {
		levelsUsed = askUsed
	}

	denom := bidSum.Add(askSum).Add(epsilon)
	raw := bidSum.Sub(askSum).Div(denom)

	one := decimal.NewFromInt(1)
	negOne := decimal.NewFromInt(-1)
	if raw.GreaterThan(one) {
		raw = one
	} else if raw.LessThan(negOne) {
		raw = negOne
	}
	return raw, levelsUsed
}

// smoother applies an EWMA to successive OBI readings (via
// gonum.org/v1/gonum/stat). Its output is published as
// MarketSnapshot.OBISmoothed for observability; the strategy's k_obi
// term reads the raw OBI.
type smoother struct {
	alpha float64
	value float64
	ready bool
}

func newSmoother(alpha float64) *smoother {
	if alpha <= 0 || alpha > 1 {
		alpha = 0.3
	}
	return &smoother{alpha: alpha}
}

// update folds in a new raw OBI reading and returns the smoothed value.
func (s *smoother) update(raw float64) float64 {
	if !s.ready {
		s.value = raw
		s.ready = true
		return s.value
	}
	// stat.Mean with weights {alpha, 1-alpha} expresses the EWMA blend
	// without hand-rolling the arithmetic inline.
	s.value = stat.Mean([]float64{raw, s.value}, []float64{s.alpha, 1 - s.alpha})
	return s.value
}

// mustFloat converts a decimal already clipped to [-1, +1] to float64
// for the gonum smoothing step; the precision loss is irrelevant at
// that range.
func mustFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

// decimalFromFloat is the inverse conversion back into the domain's
// fixed-point type after smoothing.
func decimalFromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}
