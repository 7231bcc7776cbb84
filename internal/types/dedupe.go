package types

import "fmt"

// DedupeKey identifies a fill for replay suppression, per spec §3:
// (leg, trade_id) when a trade_id is available, else a composite
// fallback of (leg, exch_order_id, ts, price, qty).
type DedupeKey string

// NewDedupeKey builds the key for a fill following the §3 rule.
func NewDedupeKey(f NormalizedFill) DedupeKey {
	if f.TradeID != "" {
		return DedupeKey(fmt.Sprintf("%s|%s", f.Leg, f.TradeID))
	}
	return DedupeKey(fmt.Sprintf("%s|%s|%d|%s|%s", f.Leg, f.ExchOrderID, f.Ts.UnixNano(), f.Price.String(), f.Qty.String()))
}

// DedupeSetCapacity is the bounded retention size from spec §3 ("~10^4").
const DedupeSetCapacity = 10_000

// DedupeSet is a bounded, FIFO-evicting set of DedupeKeys used to
// suppress replayed fills across reconnects (spec §3/§8 I2). It is not
// safe for concurrent use; the engine's single-threaded event loop
// (spec §5) is the only caller.
type DedupeSet struct {
	capacity int
	seen     map[DedupeKey]struct{}
	order    []DedupeKey
}

func NewDedupeSet(capacity int) *DedupeSet {
	if capacity <= 0 {
		capacity = DedupeSetCapacity
	}
	return &DedupeSet{
		capacity: capacity,
		seen:     make(map[DedupeKey]struct{}, capacity),
		order:    make([]DedupeKey, 0, capacity),
	}
}

// Seen reports whether key was already recorded.
func (d *DedupeSet) Seen(key DedupeKey) bool {
	_, ok := d.seen[key]
	return ok
}

// Record adds key to the set, evicting the oldest entry if at capacity.
// Returns false if the key was already present (a duplicate), true if
// it was newly recorded.
func (d *DedupeSet) Record(key DedupeKey) bool {
	if d.Seen(key) {
		return false
	}
	if len(d.order) >= d.capacity {
		oldest := d.order[0]
		d.order = d.order[1:]
		delete(d.seen, oldest)
	}
	d.seen[key] = struct{}{}
	d.order = append(d.order, key)
	return true
}
