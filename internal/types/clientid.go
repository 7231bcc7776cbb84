package types

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// MaxClientOrderIdLen is the hard cap from spec §3.
const MaxClientOrderIdLen = 36

// nonceLen is kept short deliberately: the cycle counter already makes
// ids unique within a run, the nonce only needs to break ties across
// restarts (spec §3 "nonce is a short random suffix ensuring collision
// freedom across restarts").
const nonceLen = 6

// NewNonce returns a short, collision-resistant suffix derived from a
// fresh UUID4. It is not meant to be cryptographically unguessable, only
// distinct across process restarts.
func NewNonce() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")[:nonceLen]
}

// ClientOrderId builds the deterministic `{intent}-{leg}-{cycle}-{nonce}`
// id described in spec §3/§9. Callers supply the nonce explicitly so
// that chase retries (spec §4.4 step 5) can mint a fresh one per attempt
// while everything else about the id stays traceable to its origin.
func NewClientOrderId(intent Intent, leg Leg, cycle uint64, nonce string) string {
	id := fmt.Sprintf("%s-%s-%d-%s", intent, leg, cycle, nonce)
	if len(id) > MaxClientOrderIdLen {
		// Extremely unlikely given the fixed-width components above, but
		// the invariant is load-bearing (spec §9), so truncate the nonce
		// rather than silently violate the length bound.
		overflow := len(id) - MaxClientOrderIdLen
		if overflow < len(nonce) {
			return fmt.Sprintf("%s-%s-%d-%s", intent, leg, cycle, nonce[:len(nonce)-overflow])
		}
		return id[:MaxClientOrderIdLen]
	}
	return id
}

// ParseClientOrderId splits an id produced by NewClientOrderId back into
// its components. Used at startup to recognise this engine's own
// pre-restart orders by their deterministic prefix (spec §6 "Persisted
// state: none").
func ParseClientOrderId(id string) (intent Intent, leg Leg, cycle string, nonce string, ok bool) {
	parts := strings.SplitN(id, "-", 4)
	if len(parts) != 4 {
		return "", "", "", "", false
	}
	return Intent(parts[0]), Leg(parts[1]), parts[2], parts[3], true
}
