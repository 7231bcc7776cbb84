package funding

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/gateway"
	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/types"
)

type fakeFundingGateway struct {
	gateway.Gateway
	calls  int32
	rate   decimal.Decimal
	fail   bool
}

func (f *fakeFundingGateway) GetFundingRate(ctx context.Context, symbol string) (decimal.Decimal, time.Time, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.fail {
		return decimal.Zero, time.Time{}, assertErr
	}
	return f.rate, time.Now(), nil
}

var assertErr = errFake{}

type errFake struct{}

func (errFake) Error() string { return "fake gateway error" }

func TestMonitor_RetainsPreviousOnError(t *testing.T) {
	fake := &fakeFundingGateway{rate: decimal.NewFromFloat(0.0001)}
	m := NewMonitor(fake, "ETHUSDT")
	m.PollInterval = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	go m.Run(ctx)

	require.Eventually(t, func() bool {
		return !m.Latest().Ts.IsZero()
	}, time.Second, time.Millisecond)

	good := m.Latest()
	fake.fail = true

	time.Sleep(30 * time.Millisecond)
	cancel()

	assert.Equal(t, good.Rate, m.Latest().Rate, "state must be retained across poll errors")
}

func TestFundingState_Stale(t *testing.T) {
	now := time.Now()
	s := types.FundingState{Ts: now.Add(-200 * time.Second)}
	assert.True(t, s.Stale(now, DefaultStaleWindow))

	s2 := types.FundingState{Ts: now.Add(-10 * time.Second)}
	assert.False(t, s2.Stale(now, DefaultStaleWindow))
}
