package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/agentjobs/validation-gateway/module/component"
	"github.com/agentjobs/validation-gateway/module/irrecoverable"
)

const metricsEndpoint = "/metrics"

// Server is the http server that will be serving the /metrics request for prometheus
type Server struct {
	component.Component
	cm *component.ComponentManager

	server *http.Server
	log    zerolog.Logger
}

// NewServer creates a new server that listens on the given address and
// responds to only the `/metrics` endpoint
func NewServer(log zerolog.Logger, address string, gatherer prometheus.Gatherer) *Server {
	mux := http.NewServeMux()
	mux.Handle(metricsEndpoint, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	m := &Server{
		server: &http.Server{Addr: address, Handler: mux, ReadHeaderTimeout: 10 * time.Second},
		log:    log.With().Str("component", "metrics_server").Logger(),
	}
	m.cm = component.NewComponentManagerBuilder().
		AddWorker(m.serve).
		AddWorker(m.shutdownOnCancel).
		Build()
	m.Component = m.cm
	return m
}

func (m *Server) serve(ctx irrecoverable.SignalerContext, ready component.ReadyFunc) {
	l, err := net.Listen("tcp", m.server.Addr)
	if err != nil {
		ctx.Throw(fmt.Errorf("could not start metrics server: %w", err))
		return
	}
	m.log.Info().Str("address", l.Addr().String()).Str("endpoint", metricsEndpoint).Msg("metrics server started")
	ready()

	err = m.server.Serve(l)
	if err != nil {
		// http.ErrServerClosed is returned when Close or Shutdown is called
		// we don't consider this an error, so print this with debug level instead
		if errors.Is(err, http.ErrServerClosed) {
			m.log.Debug().Err(err).Msg("metrics server shutdown")
			return
		}
		ctx.Throw(fmt.Errorf("metrics server failed: %w", err))
	}
}

func (m *Server) shutdownOnCancel(ctx irrecoverable.SignalerContext, ready component.ReadyFunc) {
	ready()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = m.server.Shutdown(shutdownCtx)
}
