package oms

// CloseReasonInflight is the order_skip reason spec §4.4 names for the
// double-fire hazard ("flatten_all vs routine close").
const CloseReasonInflight = "close_inflight"

// CloseReasonAlreadyFilled is the order_skip reason for the paired
// place instruction Reconcile would otherwise send right after a
// cancel that turned out to be too late: the live order already
// filled, so there is nothing left to replace (spec §4.4).
const CloseReasonAlreadyFilled = "already_filled"

// AcquireClose implements the close-exclusion cooperative flag: before
// any unwind/flatten on a symbol, the caller must acquire it. A second
// caller while it is held is rejected rather than blocked, since this
// is a single-threaded engine with no goroutine to park (spec §4.4
// "Close exclusion").
func (o *OMS) AcquireClose(symbol string) bool {
	if o.closing[symbol] {
		return false
	}
	o.closing[symbol] = true
	return true
}

// ReleaseClose clears the flag once the close/unwind completes.
func (o *OMS) ReleaseClose(symbol string) {
	delete(o.closing, symbol)
}

// ClosePending reports whether symbol currently has a close/unwind
// in flight.
func (o *OMS) ClosePending(symbol string) bool {
	return o.closing[symbol]
}
