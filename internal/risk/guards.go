// Package risk evaluates the guard table of spec §4.5 every tick and
// owns the Mode state machine of spec §3/§4.5. Shaped after the
// teacher's BasicCircuitBreaker.IsHalted: a cheap check run before
// anything else happens each cycle, generalized from a single PnL
// breaker to the full guard predicate table.
package risk

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/types"
)

// Guard names exactly as spec §4.5 names them; used as both the
// QuotePlan "reason" string and the logging `reason` field.
const (
	GuardConstraintsMissing = "constraints_missing"
	GuardBookStale          = "book_stale"
	GuardFundingStale       = "funding_stale"
	GuardUnhedgedExposure   = "unhedged_exposure"
	GuardRejectStreak       = "reject_streak"
	GuardPrivateWSDown      = "private_ws_down"
	GuardPosModeMismatch    = "posmode_mismatch"
)

// Action is what a tripped guard demands of the orchestrator.
type Action int

const (
	ActionNone Action = iota
	ActionSoftNoQuote
	ActionCancelAll
	ActionCancelAllAndCooldown
	ActionHalt
	ActionRefuseStart
)

// Verdict is the result of one guard's evaluation.
type Verdict struct {
	Tripped bool
	Guard   string
	Action  Action
}

// Inputs bundles everything the guard table reads on one tick.
type Inputs struct {
	Now time.Time

	ConstraintsLoaded bool

	BookTs time.Time

	Funding types.FundingState

	Inventory      types.Inventory
	Mid            decimal.Decimal
	OldestHedgeAge time.Duration

	ConsecutiveRejects int

	PrivateWSConnected    bool
	PrivateWSDownSince    time.Time

	AccountPositionMode    string
	ExpectedPositionMode   string
}

// Evaluate runs every guard in table order and returns every tripped
// one; callers apply the most severe action among the results (HALT >
// COOLDOWN > soft no-quote).
func Evaluate(cfg Config, in Inputs) []Verdict {
	var out []Verdict

	if !in.ConstraintsLoaded {
		out = append(out, Verdict{Tripped: true, Guard: GuardConstraintsMissing, Action: ActionSoftNoQuote})
	}

	if !in.BookTs.IsZero() && in.Now.Sub(in.BookTs) > cfg.BookStaleSec {
		out = append(out, Verdict{Tripped: true, Guard: GuardBookStale, Action: ActionCancelAllAndCooldown})
	} else if in.BookTs.IsZero() {
		out = append(out, Verdict{Tripped: true, Guard: GuardBookStale, Action: ActionCancelAllAndCooldown})
	}

	if in.Funding.Stale(in.Now, cfg.FundingStaleSec) {
		out = append(out, Verdict{Tripped: true, Guard: GuardFundingStale, Action: ActionCancelAll})
	}

	unhedgedNotional := in.Inventory.UnhedgedNotional(in.Mid)
	if unhedgedNotional.GreaterThan(cfg.MaxUnhedgedNotional) || in.OldestHedgeAge > cfg.MaxUnhedgedSec {
		out = append(out, Verdict{Tripped: true, Guard: GuardUnhedgedExposure, Action: ActionCancelAll})
	}

	if in.ConsecutiveRejects >= cfg.RejectStreakHalt {
		out = append(out, Verdict{Tripped: true, Guard: GuardRejectStreak, Action: ActionHalt})
	}

	if !in.PrivateWSConnected && !in.PrivateWSDownSince.IsZero() && in.Now.Sub(in.PrivateWSDownSince) > cfg.ControlledReconnectGraceSec {
		out = append(out, Verdict{Tripped: true, Guard: GuardPrivateWSDown, Action: ActionHalt})
	}

	if in.AccountPositionMode != "" && in.ExpectedPositionMode != "" && in.AccountPositionMode != in.ExpectedPositionMode {
		out = append(out, Verdict{Tripped: true, Guard: GuardPosModeMismatch, Action: ActionRefuseStart})
	}

	return out
}

// WorstAction picks the most severe action across a set of verdicts,
// in the order ActionRefuseStart > ActionHalt > ActionCancelAllAndCooldown
// > ActionCancelAll > ActionSoftNoQuote > ActionNone.
func WorstAction(verdicts []Verdict) Action {
	worst := ActionNone
	rank := map[Action]int{
		ActionNone:                 0,
		ActionSoftNoQuote:          1,
		ActionCancelAll:            2,
		ActionCancelAllAndCooldown: 3,
		ActionHalt:                 4,
		ActionRefuseStart:          5,
	}
	for _, v := range verdicts {
		if rank[v.Action] > rank[worst] {
			worst = v.Action
		}
	}
	return worst
}
