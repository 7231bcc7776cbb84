// Package constraints loads and holds the per-symbol, per-leg trading
// rules once at startup (spec §4.0 Constraints Store) so every other
// component reads immutable values instead of re-querying the gateway.
package constraints

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/gateway"
	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/types"
)

// Store holds the loaded Constraints for both legs of one symbol.
// Immutable after Load returns; concurrent reads are safe.
type Store struct {
	mu    sync.RWMutex
	byLeg map[types.Instrument]types.Constraints
}

// NewStore returns an empty, unloaded Store.
func NewStore() *Store {
	return &Store{byLeg: make(map[types.Instrument]types.Constraints)}
}

// Load fetches spot and perp constraints for symbol from gw and
// validates both before installing them. It is meant to run once at
// startup; calling it again replaces the held values, which is useful
// for an admin-triggered reload but not otherwise exercised by the
// engine.
func (s *Store) Load(ctx context.Context, gw gateway.Gateway, symbol string) error {
	spot, err := gw.LoadConstraints(ctx, symbol, types.LegSpotIOC)
	if err != nil {
		return errors.Wrap(err, "load spot constraints")
	}
	if err := spot.Validate(); err != nil {
		return errors.Wrap(err, "validate spot constraints")
	}

	perp, err := gw.LoadConstraints(ctx, symbol, types.LegPerpBid)
	if err != nil {
		return errors.Wrap(err, "load perp constraints")
	}
	if err := perp.Validate(); err != nil {
		return errors.Wrap(err, "validate perp constraints")
	}

	s.mu.Lock()
	s.byLeg[types.InstrumentSpot] = spot
	s.byLeg[types.InstrumentPerp] = perp
	s.mu.Unlock()
	return nil
}

// Get returns the loaded Constraints for an instrument, and whether it
// has been loaded yet (false before the first successful Load, feeding
// the constraints_missing guard).
func (s *Store) Get(instrument types.Instrument) (types.Constraints, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byLeg[instrument]
	return c, ok
}

// Loaded reports whether both legs' constraints are present.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, spotOK := s.byLeg[types.InstrumentSpot]
	_, perpOK := s.byLeg[types.InstrumentPerp]
	return spotOK && perpOK
}

// DebugYAML renders the currently loaded constraints as YAML, for
// startup-banner/operator inspection only; this is not a persistence
// mechanism (spec §6 "Persisted state: none" still holds).
func (s *Store) DebugYAML() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, err := yaml.Marshal(s.byLeg)
	if err != nil {
		return "", fmt.Errorf("marshal constraints: %w", err)
	}
	return string(b), nil
}
