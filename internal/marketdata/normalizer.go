package marketdata

import (
	"time"

	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/types"
)

// DepthLevels is the configured number of book levels the Normalizer
// requests from the primary channel (spec §4.1 "5-level depth").
const DepthLevels = 5

// BookUpdate is a wholesale (snapshot, not diff) replacement of one
// side's depth, as delivered by the gateway's public book stream. Every
// update the gateway emits fully replaces the previous levels for that
// instrument/source; there is no incremental-diff application in this
// engine (spec §4.1 "wholesale snapshot replace").
type BookUpdate struct {
	Instrument types.Instrument
	Source     types.DepthSource
	BidLevels  []types.PriceLevel
	AskLevels  []types.PriceLevel
	Ts         time.Time
}

// Normalizer folds the two legs' book updates into a single
// MarketSnapshot and publishes it to a Mailbox. It holds the latest
// wholesale replacement per (instrument, source) and recomputes OBI on
// every perp-side update.
//
// Not safe for concurrent use by multiple writers; the orchestrator's
// single market-data reader goroutine is the only caller of Feed.
type Normalizer struct {
	symbol string

	spotBook bookState
	perpBook bookState

	smoother *smoother

	mailbox *Mailbox
}

type bookState struct {
	source    types.DepthSource
	bidLevels []types.PriceLevel
	askLevels []types.PriceLevel
	ts        time.Time
}

func (b bookState) bbo() types.BBO {
	bbo := types.BBO{Ts: b.ts}
	if len(b.bidLevels) > 0 {
		bbo.BidPrice = b.bidLevels[0].Price
		bbo.BidSize = b.bidLevels[0].Size
	}
	if len(b.askLevels) > 0 {
		bbo.AskPrice = b.askLevels[0].Price
		bbo.AskSize = b.askLevels[0].Size
	}
	return bbo
}

// NewNormalizer builds a Normalizer publishing into mailbox. ewmaAlpha
// controls the OBI smoothing weight (see smoother); pass 0 to use the
// default.
func NewNormalizer(symbol string, mailbox *Mailbox, ewmaAlpha float64) *Normalizer {
	return &Normalizer{
		symbol:   symbol,
		smoother: newSmoother(ewmaAlpha),
		mailbox:  mailbox,
	}
}

// Feed applies one book update and republishes the combined snapshot.
// A primary-channel update always overwrites a prior fallback-channel
// state for the same instrument (and vice versa): whichever channel
// last spoke for an instrument is authoritative for it, per spec §4.1
// ("fallback to single-level top-of-book on subscription failure or
// staleness").
func (n *Normalizer) Feed(u BookUpdate) {
	next := bookState{
		source:    u.Source,
		bidLevels: u.BidLevels,
		askLevels: u.AskLevels,
		ts:        u.Ts,
	}
	switch u.Instrument {
	case types.InstrumentSpot:
		n.spotBook = next
	case types.InstrumentPerp:
		n.perpBook = next
	}
	n.publish()
}

func (n *Normalizer) publish() {
	depth := DepthLevels
	if n.perpBook.source == types.DepthSourceFallback {
		depth = 1
	}

	rawOBI, levelsUsed := computeOBI(n.perpBook.bidLevels, n.perpBook.askLevels, depth)
	smoothed := n.smoother.update(mustFloat(rawOBI))

	ts := n.spotBook.ts
	if n.perpBook.ts.After(ts) {
		ts = n.perpBook.ts
	}

	snap := types.MarketSnapshot{
		Symbol:       n.symbol,
		SpotBBO:      n.spotBook.bbo(),
		PerpBBO:      n.perpBook.bbo(),
		PerpBidDepth: n.perpBook.bidLevels,
		PerpAskDepth: n.perpBook.askLevels,
		OBI:          rawOBI,
		OBISmoothed:  decimalFromFloat(smoothed),
		LevelsUsed:   levelsUsed,
		Source:       n.perpBook.source,
		Ts:           ts,
	}
	n.mailbox.Publish(snap)
}
