package risk

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/types"
)

func baseConfig() Config {
	return Config{
		BookStaleSec:                2 * time.Second,
		FundingStaleSec:             2 * time.Minute,
		MaxUnhedgedNotional:         decimal.NewFromInt(1000),
		MaxUnhedgedSec:              30 * time.Second,
		RejectStreakHalt:            5,
		ControlledReconnectGraceSec: 10 * time.Second,
	}
}

func baseInputs(now time.Time) Inputs {
	return Inputs{
		Now:                now,
		ConstraintsLoaded:  true,
		BookTs:             now,
		Funding:            types.FundingState{Rate: decimal.NewFromFloat(0.0003), Ts: now},
		Inventory:          types.Inventory{},
		Mid:                decimal.NewFromInt(2000),
		PrivateWSConnected: true,
	}
}

func TestEvaluate_NoGuardsTrippedOnHealthyInputs(t *testing.T) {
	now := time.Now()
	verdicts := Evaluate(baseConfig(), baseInputs(now))
	assert.Empty(t, verdicts)
	assert.Equal(t, ActionNone, WorstAction(verdicts))
}

func TestEvaluate_BookStaleTripsCooldown(t *testing.T) {
	now := time.Now()
	in := baseInputs(now)
	in.BookTs = now.Add(-5 * time.Second)
	verdicts := Evaluate(baseConfig(), in)

	found := false
	for _, v := range verdicts {
		if v.Guard == GuardBookStale {
			found = true
		}
	}
	assert.True(t, found)
	assert.Equal(t, ActionCancelAllAndCooldown, WorstAction(verdicts))
}

func TestEvaluate_RejectStreakHalts(t *testing.T) {
	now := time.Now()
	in := baseInputs(now)
	in.ConsecutiveRejects = 5
	verdicts := Evaluate(baseConfig(), in)
	assert.Equal(t, ActionHalt, WorstAction(verdicts))
}

func TestEvaluate_UnhedgedExposureTripsCancelAll(t *testing.T) {
	now := time.Now()
	in := baseInputs(now)
	in.Inventory = types.Inventory{PerpPos: decimal.NewFromInt(10)}
	verdicts := Evaluate(baseConfig(), in)

	found := false
	for _, v := range verdicts {
		if v.Guard == GuardUnhedgedExposure {
			found = true
		}
	}
	assert.True(t, found)
}

func TestModeMachine_HaltedIsSticky(t *testing.T) {
	m := NewModeMachine()
	m.Transition(ActionHalt, false)
	assert.Equal(t, types.ModeHalted, m.Current())

	m.Transition(ActionNone, false)
	assert.Equal(t, types.ModeHalted, m.Current(), "halted must never leave once entered")
}

func TestModeMachine_HedgingIsInformational(t *testing.T) {
	m := NewModeMachine()
	m.Transition(ActionNone, false)
	assert.Equal(t, types.ModeQuoting, m.Current())

	m.Transition(ActionNone, true)
	assert.Equal(t, types.ModeHedging, m.Current())
}
