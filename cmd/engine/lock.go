package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// acquireLock takes an exclusive, non-blocking lock keyed on symbol so
// two engine processes never trade the same symbol concurrently. The
// returned flock must be held (not unlocked) for the process lifetime;
// the OS releases it on exit regardless.
func acquireLock(symbol string) (*flock.Flock, error) {
	path := filepath.Join(os.TempDir(), fmt.Sprintf("bitget-eth-mm-bi-funding-%s.lock", symbol))
	lock := flock.New(path)

	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("another engine instance already holds the lock for %s (%s)", symbol, path)
	}
	return lock, nil
}
