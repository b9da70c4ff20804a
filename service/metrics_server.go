package service

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsServer exposes the prometheus registry for scraping.
type MetricsServer struct {
	server *http.Server
}

// Start serves /metrics on addr. It blocks like http.ListenAndServe
// and returns http.ErrServerClosed after a Shutdown.
func (m *MetricsServer) Start(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	m.server = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	return m.server.ListenAndServe()
}

// Shutdown drains in-flight scrapes. Safe to call when Start never ran.
func (m *MetricsServer) Shutdown(ctx context.Context) error {
	if m.server == nil {
		return nil
	}
	return m.server.Shutdown(ctx)
}
