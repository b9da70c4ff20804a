package service

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/ethereum-optimism/infra/op-reporter/metrics"
	"github.com/ethereum/go-ethereum/log"
)

const (
	HealthzHost = "0.0.0.0"
	HealthzPort = "8080"

	MetricsHost = "0.0.0.0"
	MetricsPort = "7300"

	shutdownGrace = 5 * time.Second
)

// Service bundles the reporter's HTTP sidecars: the healthz endpoint
// for liveness probes and the prometheus scrape endpoint.
type Service struct {
	Healthz *HealthzServer
	Metrics *MetricsServer
}

func New() *Service {
	return &Service{
		Healthz: &HealthzServer{},
		Metrics: &MetricsServer{},
	}
}

// Start brings both sidecars up in the background. Serve failures are
// logged and recorded, never fatal: report runs work without sidecars.
func (s *Service) Start(ctx context.Context) {
	go serve(ctx, "healthz", net.JoinHostPort(HealthzHost, HealthzPort), s.Healthz.Start)
	go serve(ctx, "metrics", net.JoinHostPort(MetricsHost, MetricsPort), s.Metrics.Start)
}

func serve(ctx context.Context, name, addr string, start func(context.Context, string) error) {
	log.Info("starting "+name+" server", "addr", addr)
	if err := start(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("error starting "+name+" server", "err", err)
		metrics.RecordErrorDetails("error starting "+name+" server", err)
	}
}

// Shutdown drains both sidecars, waiting at most the grace period.
func (s *Service) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	if err := s.Healthz.Shutdown(ctx); err != nil {
		log.Warn("healthz server did not drain cleanly", "err", err)
	}
	if err := s.Metrics.Shutdown(ctx); err != nil {
		log.Warn("metrics server did not drain cleanly", "err", err)
	}
	log.Info("service stopped")
}
