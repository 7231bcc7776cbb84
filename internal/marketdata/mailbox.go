package marketdata

import (
	"sync"

	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/types"
)

// Mailbox is a single-slot, latest-wins publisher of MarketSnapshot
// values. Readers always see the freshest snapshot; any snapshot they
// did not get to before the next Publish is simply gone, matching spec
// §4.1 ("readers always get the freshest copy, missed intermediates are
// acceptable"). This mirrors the teacher's `book.CopyDepth`-then-read
// idiom (always take a fresh copy rather than track a feed of diffs).
type Mailbox struct {
	mu   sync.Mutex
	slot types.MarketSnapshot
	has  bool
}

// NewMailbox returns an empty mailbox.
func NewMailbox() *Mailbox {
	return &Mailbox{}
}

// Publish overwrites the slot unconditionally.
func (m *Mailbox) Publish(s types.MarketSnapshot) {
	m.mu.Lock()
	m.slot = s
	m.has = true
	m.mu.Unlock()
}

// Latest returns the most recently published snapshot and whether one
// has ever been published.
func (m *Mailbox) Latest() (types.MarketSnapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slot, m.has
}
