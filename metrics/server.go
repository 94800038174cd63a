package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server publishes a prometheus registry over HTTP.
type Server struct {
	addr     string
	path     string
	gatherer prometheus.Gatherer
	logger   *slog.Logger
	listener net.Listener
	server   *http.Server
}

type option func(Server) Server

func WithAddr(addr string) option {
	return func(s Server) Server {
		s.addr = addr
		return s
	}
}

func WithPath(path string) option {
	return func(s Server) Server {
		s.path = path
		return s
	}
}

// WithGatherer serves g instead of the default registry.
func WithGatherer(g prometheus.Gatherer) option {
	return func(s Server) Server {
		s.gatherer = g
		return s
	}
}

func WithLogger(logger *slog.Logger) option {
	return func(s Server) Server {
		s.logger = logger
		return s
	}
}

// NewServer starts listening immediately and serves in the background until
// Close is called.
func NewServer(opts ...option) (*Server, error) {
	s := Server{
		addr:     "localhost:9464",
		path:     "/metrics",
		gatherer: prometheus.DefaultGatherer,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		s = opt(s)
	}

	l, err := net.Listen("tcp", s.addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	mux := http.NewServeMux()
	mux.Handle(s.path, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	s.listener = l
	s.server = &http.Server{
		Addr:    l.Addr().String(),
		Handler: mux,
	}
	go func() {
		if err := s.server.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("metrics server stopped", "error", err)
		}
	}()
	s.logger.Debug("metrics server listening", "addr", s.server.Addr, "path", s.path)
	return &s, nil
}

// Addr returns the address the server is bound to.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// URL returns the full scrape URL.
func (s *Server) URL() string {
	return "http://" + s.Addr() + s.path
}

func (s *Server) Close() error {
	err := s.server.Shutdown(context.Background())
	_ = s.listener.Close()
	return err
}
