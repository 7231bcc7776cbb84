package marketdata

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/types"
)

func lvl(px, sz float64) types.PriceLevel {
	return types.PriceLevel{Price: decimal.NewFromFloat(px), Size: decimal.NewFromFloat(sz)}
}

func TestComputeOBI_BalancedBookIsZero(t *testing.T) {
	obi, used := computeOBI([]types.PriceLevel{lvl(100, 1)}, []types.PriceLevel{lvl(101, 1)}, 5)
	assert.True(t, obi.Abs().LessThan(decimal.NewFromFloat(0.0001)))
	assert.Equal(t, 1, used)
}

func TestComputeOBI_ClippedToBounds(t *testing.T) {
	obi, used := computeOBI([]types.PriceLevel{lvl(100, 50)}, nil, 5)
	assert.True(t, obi.Equal(decimal.NewFromInt(1)) || obi.LessThan(decimal.NewFromInt(1)))
	assert.False(t, obi.GreaterThan(decimal.NewFromInt(1)))
	assert.Equal(t, 1, used)

	obi2, _ := computeOBI(nil, []types.PriceLevel{lvl(101, 50)}, 5)
	assert.False(t, obi2.LessThan(decimal.NewFromInt(-1)))
}

func TestComputeOBI_EmptyBothSidesIsWellDefined(t *testing.T) {
	obi, used := computeOBI(nil, nil, 5)
	assert.True(t, obi.Equal(decimal.Zero))
	assert.Equal(t, 0, used)
}

func TestNormalizer_PublishesUncrossedSnapshot(t *testing.T) {
	mb := NewMailbox()
	n := NewNormalizer("ETHUSDT", mb, 0.5)

	now := time.Now()
	n.Feed(BookUpdate{
		Instrument: types.InstrumentSpot,
		Source:     types.DepthSourcePrimary,
		BidLevels:  []types.PriceLevel{lvl(100, 2)},
		AskLevels:  []types.PriceLevel{lvl(100.1, 2)},
		Ts:         now,
	})
	n.Feed(BookUpdate{
		Instrument: types.InstrumentPerp,
		Source:     types.DepthSourcePrimary,
		BidLevels:  []types.PriceLevel{lvl(100, 3), lvl(99.9, 1)},
		AskLevels:  []types.PriceLevel{lvl(100.2, 1), lvl(100.3, 1)},
		Ts:         now,
	})

	snap, ok := mb.Latest()
	require.True(t, ok)
	assert.True(t, snap.Valid())
	assert.Equal(t, types.DepthSourcePrimary, snap.Source)
	assert.Equal(t, 2, snap.LevelsUsed)
}

func TestNormalizer_OBIIsMemorylessButSmoothedTracksHistory(t *testing.T) {
	mb := NewMailbox()
	n := NewNormalizer("ETHUSDT", mb, 0.5)

	now := time.Now()
	n.Feed(BookUpdate{
		Instrument: types.InstrumentPerp,
		Source:     types.DepthSourcePrimary,
		BidLevels:  []types.PriceLevel{lvl(100, 10)},
		AskLevels:  []types.PriceLevel{lvl(100.1, 1)},
		Ts:         now,
	})
	first, ok := mb.Latest()
	require.True(t, ok)
	assert.True(t, first.OBI.Equal(first.OBISmoothed), "first reading has no history to smooth against")

	n.Feed(BookUpdate{
		Instrument: types.InstrumentPerp,
		Source:     types.DepthSourcePrimary,
		BidLevels:  []types.PriceLevel{lvl(100, 1)},
		AskLevels:  []types.PriceLevel{lvl(100.1, 10)},
		Ts:         now.Add(time.Second),
	})
	second, ok := mb.Latest()
	require.True(t, ok)

	rawSecond, _ := computeOBI([]types.PriceLevel{lvl(100, 1)}, []types.PriceLevel{lvl(100.1, 10)}, DepthLevels)
	assert.True(t, second.OBI.Equal(rawSecond), "OBI must be the pure per-snapshot ratio with no memory of the prior tick")
	assert.False(t, second.OBI.Equal(second.OBISmoothed), "OBISmoothed must differ once the book flips hard, proving it carries history OBI does not")
}

func TestNormalizer_FallbackReducesDepthToOne(t *testing.T) {
	mb := NewMailbox()
	n := NewNormalizer("ETHUSDT", mb, 0)

	now := time.Now()
	n.Feed(BookUpdate{
		Instrument: types.InstrumentPerp,
		Source:     types.DepthSourceFallback,
		BidLevels:  []types.PriceLevel{lvl(100, 3), lvl(99.9, 5)},
		AskLevels:  []types.PriceLevel{lvl(100.2, 1)},
		Ts:         now,
	})

	snap, ok := mb.Latest()
	require.True(t, ok)
	assert.Equal(t, types.DepthSourceFallback, snap.Source)
	assert.Equal(t, 1, snap.LevelsUsed, "fallback channel must only contribute the top level")
}
