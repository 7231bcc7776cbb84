package orchestrator

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/types"
)

// adminServer is the minimal operator surface: a liveness probe and the
// Prometheus scrape endpoint for the gauges/counters registered across
// internal/strategy, internal/oms, etc. A full web framework is not
// justified for two routes, so this is plain net/http.
type adminServer struct {
	addr string
	sup  *Supervisor
	srv  *http.Server
}

func newAdminServer(addr string, sup *Supervisor) *adminServer {
	a := &adminServer{addr: addr, sup: sup}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", a.handleHealthz)
	mux.Handle("/metrics", promhttp.Handler())

	a.srv = &http.Server{Addr: addr, Handler: mux}
	return a
}

func (a *adminServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	mode := a.sup.ModeMachine.Current()
	w.Header().Set("Content-Type", "application/json")
	if mode == types.ModeHalted {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(map[string]string{
		"symbol": a.sup.Config.Symbol,
		"mode":   string(mode),
	})
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (a *adminServer) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() { errCh <- a.srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		_ = a.srv.Shutdown(context.Background())
		return ctx.Err()
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
