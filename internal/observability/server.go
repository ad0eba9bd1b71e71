package observability

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthStatus is what /health reports. Checker implementations fill it from
// whatever the application considers its live state.
type HealthStatus struct {
	Status     string `json:"status"`
	Files      int    `json:"files"`
	LastScanAt string `json:"last_scan_at,omitempty"`
}

type HealthChecker interface {
	Check(ctx context.Context) HealthStatus
}

type Server struct {
	addr    string
	checker HealthChecker
	server  *http.Server
}

func NewServer(addr string, checker HealthChecker) *Server {
	return &Server{addr: addr, checker: checker}
}

func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		status := s.checker.Check(r.Context())
		w.Header().Set("Content-Type", "application/json")
		if status.Status != "up" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(status)
	})

	s.server = &http.Server{
		Addr:    s.addr,
		Handler: mux,
	}

	slog.Info("observability server starting", "addr", s.addr)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("observability server failed", "error", err)
		}
	}()

	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
