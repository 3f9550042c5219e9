package infinitynode

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/encoding/json"

	"github.com/uhlik-sinovate-development/SIN-core/errors"
	"github.com/uhlik-sinovate-development/SIN-core/ulogger"
)

var (
	rpcCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "infinitynode_rpc_calls_total",
			Help: "Total number of infinitynode RPC commands dispatched, by command and outcome.",
		},
		[]string{"command", "outcome"},
	)

	scansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "infinitynode_scans_total",
			Help: "Total number of Scanner.BuildList passes, by outcome.",
		},
		[]string{"outcome"},
	)

	burnsRegisteredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "infinitynode_burns_registered_total",
			Help: "Total number of burn outputs accepted into the matured registry, by tier.",
		},
		[]string{"tier"},
	)

	burnsRejectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "infinitynode_burns_rejected_total",
			Help: "Total number of candidate burn outputs rejected (malformed funding, duplicate identity).",
		},
	)
)

func init() {
	prometheus.MustRegister(rpcCallsTotal, scansTotal, burnsRegisteredTotal, burnsRejectedTotal)
}

// HTTPServer exposes the RPC dispatcher over HTTP as POST /rpc/{command}
// (form-encoded args) alongside a Prometheus /metrics endpoint.
type HTTPServer struct {
	svc    *Service
	logger ulogger.Logger
	server *http.Server
}

// NewHTTPServer builds an HTTP listener bound to addr. addr == "" means the
// caller should not call ListenAndServe; the dispatcher can still be
// invoked in-process via svc.Dispatch.
func NewHTTPServer(svc *Service, addr string, logger ulogger.Logger) *HTTPServer {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/rpc/", newRPCHandler(svc, logger))

	return &HTTPServer{
		svc:    svc,
		logger: logger,
		server: &http.Server{Addr: addr, Handler: mux},
	}
}

// Run blocks serving HTTP until ctx is canceled, then shuts down gracefully.
// It is a no-op when the server was built with addr == "".
func (h *HTTPServer) Run(ctx context.Context) error {
	if h.server.Addr == "" {
		return nil
	}

	errCh := make(chan error, 1)

	go func() {
		errCh <- h.server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		return h.server.Shutdown(context.Background())
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return errors.NewServiceError("infinitynode RPC listener failed", err)
		}
		return nil
	}
}

func newRPCHandler(svc *Service, logger ulogger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		command := r.URL.Path[len("/rpc/"):]

		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form encoding", http.StatusBadRequest)
			return
		}

		args := r.Form["arg"]

		result, err := svc.Dispatch(r.Context(), command, args...)
		if err != nil {
			rpcCallsTotal.WithLabelValues(command, "error").Inc()
			logger.Warnf("infinitynode rpc %s failed: %v", command, err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		rpcCallsTotal.WithLabelValues(command, "ok").Inc()

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			logger.Errorf("infinitynode rpc %s: failed to encode response: %v", command, err)
		}
	}
}
