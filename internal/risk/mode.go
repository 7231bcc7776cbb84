package risk

import "github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/types"

// ModeMachine holds the current Mode and applies the transitions of
// spec §3/§4.5. HALTED is sticky: once set, Transition never leaves it.
type ModeMachine struct {
	current types.Mode
}

// NewModeMachine starts in IDLE.
func NewModeMachine() *ModeMachine {
	return &ModeMachine{current: types.ModeIdle}
}

// Current returns the machine's mode.
func (m *ModeMachine) Current() types.Mode {
	return m.current
}

// Transition folds one tick's worst guard Action and hedging state
// into the next Mode. hasOpenHedgeTicket only matters when no guard
// action applies: from any non-halted mode it then selects HEDGING over
// QUOTING, and HEDGING is purely informational (spec §4.5).
func (m *ModeMachine) Transition(worst Action, hasOpenHedgeTicket bool) types.Mode {
	if m.current == types.ModeHalted {
		return m.current
	}

	switch worst {
	case ActionHalt, ActionRefuseStart:
		m.current = types.ModeHalted
		return m.current
	case ActionCancelAllAndCooldown:
		m.current = types.ModeCooldown
		return m.current
	case ActionCancelAll:
		m.current = types.ModeCooldown
		return m.current
	case ActionSoftNoQuote:
		if m.current == types.ModeIdle {
			return m.current
		}
		m.current = types.ModeCooldown
		return m.current
	}

	if hasOpenHedgeTicket {
		m.current = types.ModeHedging
	} else {
		m.current = types.ModeQuoting
	}
	return m.current
}
