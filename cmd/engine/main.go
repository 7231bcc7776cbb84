// Command engine runs the delta-neutral ETH spot/perpetual market maker
// described in SPEC_FULL.md: it loads configuration, wires either the
// real Bitget gateway or the simulated dry-run one, and supervises the
// engine until a shutdown signal or a fail-closed guard trip halts it.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
