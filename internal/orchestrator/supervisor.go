// Package orchestrator supervises the child tasks of spec §4.6: funding
// poller, perp and spot market-data readers, perp and spot private-event
// readers, hedge watcher, scheduled jobs, strategy ticker (which also
// evaluates the risk guards each tick) and, when configured, the admin
// server. On any task's terminal
// failure it cancels everything, forces Mode=HALTED, and exits — the
// fail-closed posture spec §4.6 requires. Grounded on the teacher's
// quoteWorker/hedgeWorker ticker-plus-stop-channel shape, generalized
// to errgroup-supervised goroutines since there is no bbgo.Environment
// to register shutdown hooks against here.
package orchestrator

import (
	"context"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/constraints"
	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/funding"
	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/gateway"
	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/logging"
	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/marketdata"
	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/notify"
	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/oms"
	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/risk"
	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/strategy"
	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/types"
)

// Supervisor owns one symbol's full runtime: the component instances
// and the goroutines that drive them.
type Supervisor struct {
	Config Config

	GW          gateway.Gateway
	Mailbox     *marketdata.Mailbox
	Normalizer  *marketdata.Normalizer
	FundingMon  *funding.Monitor
	Constraints *constraints.Store
	OMS         *oms.OMS
	ModeMachine *risk.ModeMachine
	Recorder    logging.Recorder
	Notifier    *notify.Notifier

	StrategyCfg strategy.Config
	OMSCfg      oms.Config
	RiskCfg     risk.Config

	inventory types.Inventory
	admin     *adminServer
	privConn  *connTracker
	hedgeSent *hedgeSentTracker
}

// Run starts every child task and blocks until one fails or ctx is
// canceled, then performs the fail-closed shutdown sequence.
func (s *Supervisor) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.privConn = newConnTracker()
	s.hedgeSent = newHedgeSentTracker()

	g, gCtx := errgroup.WithContext(runCtx)

	g.Go(func() error { return s.runFundingPoller(gCtx) })
	g.Go(func() error { return s.runMarketDataReader(gCtx, types.LegPerpBid) })
	g.Go(func() error { return s.runMarketDataReader(gCtx, types.LegSpotIOC) })
	g.Go(func() error { return s.runPrivateEventReader(gCtx, types.LegPerpBid) })
	g.Go(func() error { return s.runPrivateEventReader(gCtx, types.LegSpotIOC) })
	g.Go(func() error { return s.runHedgeWatcher(gCtx) })
	g.Go(func() error { return s.runScheduledJobs(gCtx) })
	g.Go(func() error { return s.runStrategyTicker(gCtx) })

	if s.Config.AdminAddr != "" {
		s.admin = newAdminServer(s.Config.AdminAddr, s)
		g.Go(func() error { return s.admin.Run(gCtx) })
	}

	err := g.Wait()
	return s.shutdown(err)
}

// shutdown implements spec §4.6's "cancel-all -> HALTED -> exit" on any
// task's terminal failure.
func (s *Supervisor) shutdown(cause error) error {
	s.ModeMachine.Transition(risk.ActionHalt, false)

	var combined error
	if cause != nil {
		combined = multierr.Append(combined, cause)
	}

	if bid := s.OMS.LiveBid(); bid != nil {
		if err := s.GW.CancelOrder(context.Background(), s.Config.Symbol, bid.ClientID, bid.ExchOrderID); err != nil {
			combined = multierr.Append(combined, err)
		}
	}
	if ask := s.OMS.LiveAsk(); ask != nil {
		if err := s.GW.CancelOrder(context.Background(), s.Config.Symbol, ask.ClientID, ask.ExchOrderID); err != nil {
			combined = multierr.Append(combined, err)
		}
	}

	s.Recorder.Record(logging.Record{
		Ts:    time.Now(),
		Event: logging.EventModeChange,
		Mode:  string(types.ModeHalted),
	})

	if s.Notifier != nil {
		_ = s.Notifier.Halted(s.Config.Symbol, "shutdown", errString(cause))
	}

	return combined
}

func errString(err error) string {
	if err == nil {
		return "graceful shutdown"
	}
	return err.Error()
}

func (s *Supervisor) runFundingPoller(ctx context.Context) error {
	return s.FundingMon.Run(ctx)
}
