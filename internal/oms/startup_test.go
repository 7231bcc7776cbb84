package oms

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/gateway"
	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/types"
)

type fakeStartupGateway struct {
	gateway.Gateway
	canceled []string
	snapshot types.Inventory
}

func (f *fakeStartupGateway) CancelOrder(ctx context.Context, symbol, clientID, exchOrderID string) error {
	f.canceled = append(f.canceled, clientID)
	return nil
}

func (f *fakeStartupGateway) GetPositionSnapshot(ctx context.Context, symbol string) (types.Inventory, error) {
	return f.snapshot, nil
}

func TestReconcileStartup_CancelsOnlyOwnIDsAndReturnsSnapshot(t *testing.T) {
	fake := &fakeStartupGateway{snapshot: types.Inventory{PerpPos: decimal.NewFromInt(1)}}
	ownID := types.NewClientOrderId(types.IntentQuote, types.LegPerpBid, 0, types.NewNonce())

	inv, err := ReconcileStartup(context.Background(), fake, "ETHUSDT", []string{ownID, "not-our-format"})
	require.NoError(t, err)
	assert.Equal(t, []string{ownID}, fake.canceled)
	assert.True(t, inv.PerpPos.Equal(decimal.NewFromInt(1)))
}
