// Package httpserver builds the console's HTTP server.
package httpserver

import (
	"net/http"
	"time"
)

// writeTimeout must exceed the 30s per-request timeout the router middleware
// applies, so slow report and chart requests are cancelled by the middleware
// with an error body instead of a severed connection.
const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 15 * time.Second
	writeTimeout      = 35 * time.Second
	idleTimeout       = 2 * time.Minute
)

// New builds the console server with timeouts matched to the middleware chain.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}
