package rest

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/agentjobs/validation-gateway/module"
)

const (
	routeListAssignments = "ListAssignments"
	routeJobRecords      = "JobRecords"
	routeAgentSocket     = "AgentSocket"
	routeMetrics         = "Metrics"
)

// NewRouter returns the router of the gateway API. The socket handler, the
// metrics gatherer and the request collector are optional.
func NewRouter(logger zerolog.Logger, api API, socket http.Handler, gatherer prometheus.Gatherer, restCollector module.RestMetrics) *mux.Router {
	router := mux.NewRouter().StrictSlash(true)
	handler := NewHandler(logger, api)

	v1Subrouter := router.PathPrefix("/v1").Subrouter()
	v1Subrouter.Use(LoggingMiddleware(logger))
	if restCollector != nil {
		v1Subrouter.Use(MetricsMiddleware(restCollector))
	}
	v1Subrouter.
		Methods(http.MethodGet).
		Path("/validation/assignments").
		Name(routeListAssignments).
		HandlerFunc(handler.ListAssignments)
	v1Subrouter.
		Methods(http.MethodGet).
		Path("/validation/jobs/{jobId}/records").
		Name(routeJobRecords).
		HandlerFunc(handler.JobRecords)
	if socket != nil {
		v1Subrouter.
			Methods(http.MethodGet).
			Path("/agents/socket").
			Name(routeAgentSocket).
			Handler(socket)
	}

	if gatherer != nil {
		router.
			Methods(http.MethodGet).
			Path("/metrics").
			Name(routeMetrics).
			Handler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	return router
}

// NewServer returns an HTTP server initialized with the gateway API handler
func NewServer(logger zerolog.Logger, listenAddress string, api API, socket http.Handler, gatherer prometheus.Gatherer, restCollector module.RestMetrics) *http.Server {
	router := NewRouter(logger, api, socket, gatherer, restCollector)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodOptions,
			http.MethodHead},
	})

	return &http.Server{
		Addr:         listenAddress,
		Handler:      c.Handler(router),
		WriteTimeout: time.Second * 15,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
	}
}
