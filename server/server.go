package server

import (
	// Go Internal Packages
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	// Local Packages
	pipeline "fraud-stream/pipeline"

	// External Packages
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type StateReporter interface {
	State() pipeline.State
}

// Backlog reports how many failed points wait in the dead letter queue.
type Backlog interface {
	Pending(ctx context.Context) (int64, error)
}

// Server exposes pipeline metrics, kafka client metrics and health over HTTP.
type Server struct {
	srv    *http.Server
	logger *zap.Logger
}

// NewRouter wires the observability routes. kafkaMetrics and backlog may be nil.
func NewRouter(gatherer prometheus.Gatherer, kafkaMetrics http.Handler, state StateReporter, backlog Backlog) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	if kafkaMetrics != nil {
		r.Handle("/metrics/kafka", kafkaMetrics).Methods(http.MethodGet)
	}
	r.HandleFunc("/healthz", healthHandler(state, backlog)).Methods(http.MethodGet)
	return r
}

func healthHandler(state StateReporter, backlog Backlog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := state.State()
		body := map[string]any{"state": st.String()}
		if backlog != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			pending, err := backlog.Pending(ctx)
			cancel()
			if err != nil {
				body["dlq_error"] = err.Error()
			} else {
				body["dlq_pending"] = pending
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if st != pipeline.Running {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(body)
	}
}

func NewServer(addr string, handler http.Handler, logger *zap.Logger) *Server {
	return &Server{
		srv:    &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 5 * time.Second},
		logger: logger,
	}
}

// Start serves in the background.
func (s *Server) Start() {
	go func() {
		s.logger.Info("metrics server listening", zap.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("metrics server stopped", zap.Error(err))
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
