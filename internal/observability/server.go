// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

// Package observability provides HTTP endpoints for metrics and health
// probes, plus the Prometheus counters recorded by the auth service.
package observability

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/oops"
)

// ReadinessChecker returns whether the service is ready to accept work.
type ReadinessChecker func() bool

// Package-level counters so the auth service can record events without
// holding a Server instance.
var (
	logins = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatehouse_logins_total",
			Help: "Total number of login attempts by result",
		},
		[]string{"result"},
	)

	tokenValidations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatehouse_token_validations_total",
			Help: "Total number of token validations by source (cache, store, miss)",
		},
		[]string{"source"},
	)

	tokensSwept = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gatehouse_tokens_swept_total",
			Help: "Total number of expired token rows removed by the sweeper",
		},
	)
)

// RecordLogin increments the login counter for a result ("success" or
// "rejected").
func RecordLogin(result string) {
	logins.WithLabelValues(result).Inc()
}

// RecordTokenValidation increments the validation counter for a source
// ("cache", "store", or "miss").
func RecordTokenValidation(source string) {
	tokenValidations.WithLabelValues(source).Inc()
}

// RecordTokensSwept adds the number of rows removed by a sweep pass.
func RecordTokensSwept(n int64) {
	if n > 0 {
		tokensSwept.Add(float64(n))
	}
}

// Server serves the metrics and health probe endpoints.
type Server struct {
	addr       string
	listener   net.Listener
	httpServer *http.Server
	registry   *prometheus.Registry
	isReady    ReadinessChecker
	running    atomic.Bool
}

// NewServer creates an observability server listening on addr
// ("host:port"; ":9100" binds all interfaces). A dedicated registry is
// used so tests never pollute the global one.
func NewServer(addr string, readinessChecker ReadinessChecker) *Server {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(logins, tokenValidations, tokensSwept)

	return &Server{
		addr:     addr,
		registry: registry,
		isReady:  readinessChecker,
	}
}

// Start begins serving. The returned channel receives any server error
// after startup and is closed on graceful shutdown.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Errorf("observability server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.With("addr", s.addr).Wrap(err)
	}
	s.listener = listener

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
	mux.HandleFunc("/healthz/liveness", s.handleLiveness)
	mux.HandleFunc("/healthz/readiness", s.handleReadiness)

	httpSrv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			slog.Error("observability server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	slog.Info("observability server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.running.Store(true)
			return oops.With("operation", "shutdown observability server").Wrap(err)
		}
	}

	slog.Info("observability server stopped")
	return nil
}

// Addr returns the bound address, or "" if the server never started.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

func (s *Server) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // health check write error is acceptable
	w.Write([]byte("ok\n"))
}

func (s *Server) handleReadiness(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if s.isReady == nil || s.isReady() {
		w.WriteHeader(http.StatusOK)
		//nolint:errcheck // health check write error is acceptable
		w.Write([]byte("ok\n"))
		return
	}

	w.WriteHeader(http.StatusServiceUnavailable)
	//nolint:errcheck // health check write error is acceptable
	w.Write([]byte("not ready\n"))
}
