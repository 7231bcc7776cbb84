// Package funding polls the venue's funding rate on a fixed interval
// and exposes the latest known value, degrading gracefully on poll
// errors rather than going stale immediately (spec §4.2 Funding
// Monitor). Shaped after the teacher's PriceHeartBeat: a small piece of
// state that records "last good value" plus "when it was last good",
// generalized here from book prices to the funding rate.
package funding

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/gateway"
	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/types"
)

// DefaultPollInterval is spec §6's default poll cadence.
const DefaultPollInterval = 30 * time.Second

// DefaultStaleWindow is spec §6's default funding_stale_sec.
const DefaultStaleWindow = 120 * time.Second

// Monitor polls gateway.GetFundingRate on PollInterval and retains the
// previous FundingState on error (spec §4.2 "retain-previous-on-error"),
// so a single failed poll does not itself trip the funding_stale guard
// until StaleWindow has actually elapsed.
type Monitor struct {
	gw     gateway.Gateway
	symbol string

	PollInterval time.Duration
	StaleWindow  time.Duration

	mu    sync.Mutex
	state types.FundingState
}

// NewMonitor builds a Monitor with spec-default cadence/window; callers
// may override PollInterval/StaleWindow before calling Run.
func NewMonitor(gw gateway.Gateway, symbol string) *Monitor {
	return &Monitor{
		gw:           gw,
		symbol:       symbol,
		PollInterval: DefaultPollInterval,
		StaleWindow:  DefaultStaleWindow,
	}
}

// Latest returns the most recently known FundingState. Callers must
// check Stale against their own "now" before trusting Rate.
func (m *Monitor) Latest() types.FundingState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Run polls until ctx is canceled. It never returns a non-nil error on
// a transient poll failure; those are swallowed (the retained state's
// growing age is itself the signal, surfaced via Stale). It only
// returns when ctx is done.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.PollInterval)
	defer ticker.Stop()

	m.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.poll(ctx)
		}
	}
}

func (m *Monitor) poll(ctx context.Context) {
	rate, ts, err := m.gw.GetFundingRate(ctx, m.symbol)
	if err != nil {
		// retain-previous-on-error: leave m.state untouched so Stale()
		// is the only thing that degrades.
		return
	}

	m.mu.Lock()
	m.state = types.FundingState{Rate: rate, Ts: ts}
	m.mu.Unlock()
}

// ErrNeverPolled is returned by callers that require a non-zero state
// before proceeding (e.g. the strategy's first tick).
var ErrNeverPolled = errors.New("funding monitor has not completed a successful poll yet")
