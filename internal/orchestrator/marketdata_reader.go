package orchestrator

import (
	"context"

	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/marketdata"
	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/types"
)

// runMarketDataReader subscribes one leg's public book stream and
// feeds every update into the shared Normalizer. leg is only used to
// pick the subscription and tag the resulting Instrument; it carries
// no order semantics here.
func (s *Supervisor) runMarketDataReader(ctx context.Context, leg types.Leg) error {
	instrument := types.InstrumentPerp
	if leg == types.LegSpotIOC {
		instrument = types.InstrumentSpot
	}

	updates, err := s.GW.SubscribePublicBooks(ctx, s.Config.Symbol, leg)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case u, ok := <-updates:
			if !ok {
				return nil
			}
			s.Normalizer.Feed(marketdata.BookUpdate{
				Instrument: instrument,
				Source:     u.Source,
				BidLevels:  u.BidLevels,
				AskLevels:  u.AskLevels,
				Ts:         u.Ts,
			})
		}
	}
}
