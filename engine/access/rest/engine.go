package rest

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/agentjobs/validation-gateway/module"
	"github.com/agentjobs/validation-gateway/module/component"
	"github.com/agentjobs/validation-gateway/module/irrecoverable"
)

const shutdownTimeout = 5 * time.Second

// Engine runs the HTTP server of the gateway as a component.
type Engine struct {
	component.Component
	cm *component.ComponentManager

	log    zerolog.Logger
	server *http.Server

	addrLock sync.RWMutex
	address  net.Addr
}

func NewEngine(log zerolog.Logger, listenAddress string, api API, socket http.Handler, gatherer prometheus.Gatherer, restCollector module.RestMetrics) *Engine {
	log = log.With().Str("engine", "rest").Logger()
	e := &Engine{
		log:    log,
		server: NewServer(log, listenAddress, api, socket, gatherer, restCollector),
	}
	e.cm = component.NewComponentManagerBuilder().
		AddWorker(e.serve).
		AddWorker(e.shutdownOnCancel).
		Build()
	e.Component = e.cm
	return e
}

// Address returns the address the server listens on, or nil before it started.
func (e *Engine) Address() net.Addr {
	e.addrLock.RLock()
	defer e.addrLock.RUnlock()
	return e.address
}

func (e *Engine) serve(ctx irrecoverable.SignalerContext, ready component.ReadyFunc) {
	e.log.Info().Str("rest_api_address", e.server.Addr).Msg("starting REST server on address")

	l, err := net.Listen("tcp", e.server.Addr)
	if err != nil {
		ctx.Throw(fmt.Errorf("failed to start the REST server: %w", err))
		return
	}

	e.addrLock.Lock()
	e.address = l.Addr()
	e.addrLock.Unlock()
	e.log.Debug().Str("rest_api_address", l.Addr().String()).Msg("listening on port")
	ready()

	err = e.server.Serve(l) // blocking call
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		ctx.Throw(fmt.Errorf("fatal error in REST server: %w", err))
	}
}

func (e *Engine) shutdownOnCancel(ctx irrecoverable.SignalerContext, ready component.ReadyFunc) {
	ready()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := e.server.Shutdown(shutdownCtx)
	if err != nil {
		e.log.Error().Err(err).Msg("error stopping http REST server")
	}
}
