// Package logging implements the JSONL event schema of spec §6: every
// domain event emits a structured record with an exact field set.
// Built around sirupsen/logrus (matching the teacher's package-level
// `log = logrus.WithField(...)` idiom), but every other package talks
// to a narrow Recorder interface instead of importing logrus directly.
package logging

import "time"

// Event names spec §6 enumerates.
const (
	EventTick             = "tick"
	EventOrderNew         = "order_new"
	EventOrderCancel      = "order_cancel"
	EventOrderSkip        = "order_skip"
	EventFill             = "fill"
	EventState            = "state"
	EventRisk             = "risk"
	EventConstraintsLoaded = "constraints_loaded"
	EventHedgeTicketOpen  = "hedge_ticket_open"
	EventHedgeTicketDone  = "hedge_ticket_done"
	EventModeChange       = "mode_change"
)

// Record is the exact field set spec §6 names. Data/Res carry
// event-specific payloads; Simulated is omitted (encoded as absent,
// per §6 "absence of the field is interpreted as real") when false.
type Record struct {
	Ts          time.Time   `json:"ts"`
	Event       string      `json:"event"`
	Intent      string      `json:"intent,omitempty"`
	Source      string      `json:"source,omitempty"`
	Mode        string      `json:"mode,omitempty"`
	Reason      string      `json:"reason,omitempty"`
	Leg         string      `json:"leg,omitempty"`
	CycleID     uint64      `json:"cycle_id,omitempty"`
	ClientID    string      `json:"client_id,omitempty"`
	ExchOrderID string      `json:"exch_order_id,omitempty"`
	TradeID     string      `json:"trade_id,omitempty"`
	Data        interface{} `json:"data,omitempty"`
	Res         interface{} `json:"res,omitempty"`
	Simulated   *bool       `json:"simulated,omitempty"`
}

// Recorder is the narrow logging surface every other package depends
// on, so only internal/logging imports logrus directly.
type Recorder interface {
	Record(r Record)
}
