// Package api serves the status endpoints of a running batch.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/okian/vidmatch/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
)

// Server wires the status routes.
type Server struct {
	healthHandler  *HealthHandler
	metricsHandler http.Handler
	statsHandler   *StatsHandler
}

// NewServer creates a status server reading stats from statsProvider.
func NewServer(statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		metricsHandler: NewMetricsHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
	}
}

// Register attaches all routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", MetricsMiddleware(s.metricsHandler.ServeHTTP, "metrics"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
}

// Listener runs the status routes on addr until Shutdown.
type Listener struct {
	srv    *http.Server
	ln     net.Listener
	logger logger.Logger
}

// Listen binds addr and starts serving in the background. Binding errors
// are returned synchronously so a bad address fails the command early.
func Listen(ctx context.Context, addr string, s *Server) (*Listener, error) {
	mux := http.NewServeMux()
	s.Register(mux)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("status server listen %s: %w", addr, err)
	}

	l := &Listener{
		srv: &http.Server{
			Handler:           mux,
			ReadTimeout:       readTimeout,
			WriteTimeout:      writeTimeout,
			IdleTimeout:       idleTimeout,
			ReadHeaderTimeout: readHeaderTimeout,
		},
		ln:     ln,
		logger: logger.Get().Named("http"),
	}

	go func() {
		l.logger.Info(ctx, "status server listening", logger.String("addr", ln.Addr().String()))
		if err := l.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.logger.Error(ctx, "status server failed", logger.Error(err))
		}
	}()
	return l, nil
}

// Addr returns the bound address.
func (l *Listener) Addr() string { return l.ln.Addr().String() }

// Shutdown stops the server gracefully.
func (l *Listener) Shutdown(ctx context.Context) error {
	if err := l.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("status server shutdown: %w", err)
	}
	return nil
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, errorResponse{Code: code, Message: http.StatusText(status)})
}
