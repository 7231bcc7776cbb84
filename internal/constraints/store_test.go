package constraints

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/gateway"
	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/types"
)

type fakeGateway struct {
	gateway.Gateway
}

func (fakeGateway) LoadConstraints(ctx context.Context, symbol string, leg types.Leg) (types.Constraints, error) {
	instrument := types.InstrumentSpot
	if leg == types.LegPerpBid {
		instrument = types.InstrumentPerp
	}
	return types.Constraints{
		Symbol:      symbol,
		Instrument:  instrument,
		PriceTick:   decimal.NewFromFloat(0.01),
		SizeStep:    decimal.NewFromFloat(0.001),
		MinNotional: decimal.NewFromInt(5),
		MinSize:     decimal.NewFromFloat(0.001),
	}, nil
}

func TestStore_LoadBothLegs(t *testing.T) {
	s := NewStore()
	assert.False(t, s.Loaded())

	err := s.Load(context.Background(), fakeGateway{}, "ETHUSDT")
	require.NoError(t, err)
	assert.True(t, s.Loaded())

	spot, ok := s.Get(types.InstrumentSpot)
	require.True(t, ok)
	assert.Equal(t, types.InstrumentSpot, spot.Instrument)

	perp, ok := s.Get(types.InstrumentPerp)
	require.True(t, ok)
	assert.Equal(t, types.InstrumentPerp, perp.Instrument)
}

func TestStore_DebugYAMLRendersWithoutError(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Load(context.Background(), fakeGateway{}, "ETHUSDT"))

	out, err := s.DebugYAML()
	require.NoError(t, err)
	assert.Contains(t, out, "ETHUSDT")

	_ = time.Second
}
