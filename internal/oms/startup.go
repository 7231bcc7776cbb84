package oms

import (
	"context"
	stderrors "errors"

	"github.com/pkg/errors"

	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/gateway"
	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/types"
)

// IsOwnClientID reports whether id carries this engine's client-id
// shape, recognised by ParseClientOrderId at startup (spec §6
// "Persisted state: none" — on restart the engine cancels everything
// it can recognise by its deterministic prefix).
//
// Any of the four Intent values qualifies; this prefix check is really
// "does ParseClientOrderId succeed", kept as a named predicate for
// readability at call sites.
func IsOwnClientID(id string) bool {
	_, _, _, _, ok := types.ParseClientOrderId(id)
	return ok
}

// ReconcileStartup implements spec §6's crash-safety story: cancel
// every open order this engine can recognise by client-id prefix, then
// rebuild Inventory from a fresh position snapshot rather than any
// local state. It returns the residual Inventory so the caller can
// decide whether an immediate unwind is needed (any non-zero net
// exposure after reconciliation per §6 "any residual exposure triggers
// an immediate unwind at startup").
func ReconcileStartup(ctx context.Context, gw gateway.Gateway, symbol string, openClientIDs []string) (types.Inventory, error) {
	for _, id := range openClientIDs {
		if !IsOwnClientID(id) {
			continue
		}
		err := gw.CancelOrder(ctx, symbol, id, "")
		if err != nil && !stderrors.Is(err, gateway.ErrOrderAlreadyClosed) {
			return types.Inventory{}, errors.Wrapf(err, "cancel stale order %s", id)
		}
	}

	inv, err := gw.GetPositionSnapshot(ctx, symbol)
	if err != nil {
		return types.Inventory{}, errors.Wrap(err, "get position snapshot")
	}
	return inv, nil
}
