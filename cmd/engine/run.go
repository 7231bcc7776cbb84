package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/codingconcepts/env"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/config"
	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/constraints"
	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/funding"
	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/gateway"
	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/gateway/bitget"
	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/gateway/simulated"
	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/logging"
	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/marketdata"
	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/notify"
	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/oms"
	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/orchestrator"
	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/risk"
	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/strategy"
	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/types"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the engine until a shutdown signal or a fail-closed guard halts it",
	RunE:  runEngine,
}

func runEngine(cmd *cobra.Command, args []string) error {
	cfgPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}

	cfg, err := config.Load(cfgPath, cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	lock, err := acquireLock(cfg.Symbol)
	if err != nil {
		return err
	}
	defer lock.Unlock()

	gw, err := buildGateway(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	constraintsStore := constraints.NewStore()
	if err := constraintsStore.Load(ctx, gw, cfg.Symbol); err != nil {
		return fmt.Errorf("load constraints: %w", err)
	}

	if cfg.AutoSetPositionMode {
		if err := ensurePositionMode(ctx, gw, cfg); err != nil {
			return fmt.Errorf("set position mode: %w", err)
		}
	}

	openIDs, err := gw.ListOpenOrders(ctx, cfg.Symbol)
	if err != nil {
		return fmt.Errorf("list open orders: %w", err)
	}
	residual, err := oms.ReconcileStartup(ctx, gw, cfg.Symbol, openIDs)
	if err != nil {
		return fmt.Errorf("reconcile startup: %w", err)
	}

	printBanner(cfg, constraintsStore)

	recorder := logging.NewLogrusRecorder(logging.Config{
		PrimaryPath:  cfg.LogPrimaryPath,
		IncidentPath: cfg.LogIncidentPath,
	})
	notifier := notify.NewNotifier(cfg.SlackWebhookURL, cfg.SlackChannel)

	mailbox := marketdata.NewMailbox()
	normalizer := marketdata.NewNormalizer(cfg.Symbol, mailbox, 0.2)

	fundingMon := funding.NewMonitor(gw, cfg.Symbol)
	if cfg.FundingStaleSec > 0 {
		fundingMon.StaleWindow = cfg.FundingStaleSec
	}

	omsRegistry := oms.NewOMS(cfg.Symbol)
	modeMachine := risk.NewModeMachine()

	sup := &orchestrator.Supervisor{
		Config: orchestrator.Config{
			Symbol:           cfg.Symbol,
			TickInterval:     cfg.TickSec,
			AdminAddr:        cfg.AdminAddr,
			ProfitReportCron: cfg.ProfitReportCron,
		},
		GW:          gw,
		Mailbox:     mailbox,
		Normalizer:  normalizer,
		FundingMon:  fundingMon,
		Constraints: constraintsStore,
		OMS:         omsRegistry,
		ModeMachine: modeMachine,
		Recorder:    recorder,
		Notifier:    notifier,

		StrategyCfg: strategy.Config{
			QuoteQty:            decimal.NewFromFloat(cfg.QuoteQty),
			BaseHalfSpreadBps:   decimal.NewFromFloat(cfg.BaseHalfSpreadBps),
			KOBI:                decimal.NewFromFloat(cfg.KOBI),
			InventorySkewBps:    decimal.NewFromFloat(cfg.InventorySkewBps),
			FundingSkewBps:      decimal.NewFromFloat(cfg.FundingSkewBps),
			MinAbsFunding:       decimal.NewFromFloat(cfg.MinAbsFunding),
			ReplaceThresholdBps: decimal.NewFromFloat(cfg.ReplaceThresholdBps),
		},
		OMSCfg: oms.Config{
			ReplaceThresholdBps: decimal.NewFromFloat(cfg.ReplaceThresholdBps),
			HedgeSlipBps:        decimal.NewFromFloat(cfg.HedgeSlipBps),
			HedgeChaseSec:       cfg.HedgeChaseSec,
			HedgeMaxTries:       cfg.HedgeMaxTries,
			HedgeDeadlineMs:     cfg.HedgeDeadlineMs,
			ChaseGain:           decimal.NewFromFloat(cfg.ChaseGain),
		},
		RiskCfg: risk.Config{
			BookStaleSec:                cfg.BookStaleSec,
			FundingStaleSec:             cfg.FundingStaleSec,
			MaxUnhedgedNotional:         decimal.NewFromFloat(cfg.MaxUnhedgedNotional),
			MaxUnhedgedSec:              cfg.MaxUnhedgedSec,
			RejectStreakHalt:            cfg.RejectStreakHalt,
			ControlledReconnectGraceSec: cfg.ControlledReconnectGraceSec,
		},
	}

	sup.FlattenResidual(ctx, residual)

	return sup.Run(ctx)
}

// buildGateway selects the real Bitget gateway or the simulated
// dry-run one per cfg.DryRun (spec §9).
func buildGateway(cfg *config.Config) (gateway.Gateway, error) {
	if cfg.DryRun {
		return simulated.New(simulated.Config{
			Symbol:       cfg.Symbol,
			StartMid:     decimal.NewFromInt(3000),
			SpreadBps:    decimal.NewFromFloat(5),
			TickInterval: 500 * time.Millisecond,
			Seed:         1,
			FundingRate:  decimal.NewFromFloat(0.0001),
		}), nil
	}

	var creds config.Credentials
	if err := env.Set(&creds); err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}

	bCfg := bitget.DefaultConfig()
	bCfg.APIKey = creds.APIKey
	bCfg.APISecret = creds.APISecret
	bCfg.Passphrase = creds.Passphrase

	return bitget.New(bCfg), nil
}

// ensurePositionMode checks the account's current position mode
// against cfg.ExpectedPositionMode and flips it if they differ, rather
// than letting the risk guard halt on posmode_mismatch every restart.
func ensurePositionMode(ctx context.Context, gw gateway.Gateway, cfg *config.Config) error {
	want := gateway.PositionMode(cfg.ExpectedPositionMode)

	got, err := gw.GetPositionMode(ctx, types.InstrumentPerp)
	if err != nil {
		return err
	}
	if got != want {
		return gw.SetPositionMode(ctx, types.InstrumentPerp, want)
	}
	return nil
}
