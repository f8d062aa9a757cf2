package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/Abdurahmanit/GroupProject/room-service/internal/config"
	"github.com/Abdurahmanit/GroupProject/room-service/internal/platform/logger"
)

type Server struct {
	srv    *http.Server
	cfg    config.HTTPConfig
	logger *logger.Logger
}

// NewServer leaves the server write timeout unset: WebSocket sessions apply
// cfg.WriteTimeout per frame instead.
func NewServer(cfg config.HTTPConfig, handler http.Handler, log *logger.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           handler,
			ReadHeaderTimeout: cfg.ReadTimeout,
		},
		cfg:    cfg,
		logger: log.Named("http_server"),
	}
}

// Start listens and serves until Shutdown. It returns once the listener is
// bound; serve errors are delivered on the returned channel.
func (s *Server) Start() (<-chan error, error) {
	lis, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return nil, err
	}
	s.logger.Info("HTTP server listening", "address", lis.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	return errCh, nil
}

// Shutdown stops accepting connections and waits for in-flight requests up
// to the configured shutdown timeout. Hijacked WebSocket connections are
// not tracked by net/http, so callers close sessions separately.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("HTTP server shutting down")
	if err := s.srv.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown failed", "error", err.Error())
		return err
	}
	s.logger.Info("HTTP server stopped")
	return nil
}
