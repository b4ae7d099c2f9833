package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// HTTPService serves an http.Handler on a listener as a lifecycle Service.
type HTTPService struct {
	ln      net.Listener
	srv     *http.Server
	timeout time.Duration
	logger  *zap.Logger
}

// NewHTTPService wraps h for serving on an already bound ln.
//
// Precondition: ln, h and logger must be non-nil; shutdownTimeout must be > 0.
func NewHTTPService(ln net.Listener, h http.Handler, shutdownTimeout time.Duration, logger *zap.Logger) *HTTPService {
	return &HTTPService{
		ln:      ln,
		srv:     &http.Server{Handler: h, ReadHeaderTimeout: 10 * time.Second},
		timeout: shutdownTimeout,
		logger:  logger,
	}
}

// Addr returns the bound listen address.
func (s *HTTPService) Addr() net.Addr { return s.ln.Addr() }

// Start serves until Stop. A graceful stop is not an error.
func (s *HTTPService) Start() error {
	s.logger.Info("http listening", zap.String("addr", s.ln.Addr().String()))
	if err := s.srv.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop drains in-flight requests for up to the shutdown timeout, then closes
// whatever is left. Hijacked websocket connections are not closed here.
func (s *HTTPService) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		s.logger.Warn("http shutdown timed out, closing", zap.Error(err))
		_ = s.srv.Close()
	}
}

// OnShutdown registers f to run when Stop begins shutting the server down.
func (s *HTTPService) OnShutdown(f func()) { s.srv.RegisterOnShutdown(f) }
