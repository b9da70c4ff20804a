package service

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/rs/cors"
)

// HealthzServer answers liveness probes while the reporter sits in
// interval mode between runs.
type HealthzServer struct {
	server *http.Server
}

// Start serves /healthz on addr. It blocks like http.ListenAndServe
// and returns http.ErrServerClosed after a Shutdown.
func (h *HealthzServer) Start(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", handleHealthz)

	h.server = &http.Server{
		Addr:              addr,
		Handler:           cors.AllowAll().Handler(mux),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	return h.server.ListenAndServe()
}

// Shutdown drains in-flight probes. Safe to call when Start never ran.
func (h *HealthzServer) Shutdown(ctx context.Context) error {
	if h.server == nil {
		return nil
	}
	return h.server.Shutdown(ctx)
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	log.Debug("Received health check request", "remote", r.RemoteAddr)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
}
