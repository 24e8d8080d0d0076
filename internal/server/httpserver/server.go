// Package httpserver provides the HTTP/HTTPS front of the gateway.
//
// It uses the Go standard library net/http, exposing the proxy data
// plane (/v1, /tiles), the admin plane (/admin/v1) and the public
// health and metrics endpoints.
package httpserver

import (
	"context"
	"net/http"
	"time"
)

// Server wraps http.Server with the gateway defaults.
type Server struct {
	httpServer *http.Server
}

// New creates an HTTP server for the given handler.
func New(addr string, handler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// ListenAndServeTLS starts the HTTPS server.
func (s *Server) ListenAndServeTLS(certFile, keyFile string) error {
	return s.httpServer.ListenAndServeTLS(certFile, keyFile)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
