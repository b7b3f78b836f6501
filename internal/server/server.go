// internal/server/server.go
package server

import (
	"crypto/tls"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/netutil"
)

const (
	defaultReadHeaderTimeout = 10 * time.Second
	defaultIdleTimeout       = 60 * time.Second
)

// BindError reports a listening socket that could not be bound: invalid
// address, privileged port, or port already in use.
type BindError struct {
	Addr string
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("binding %s: %v", e.Addr, e.Err)
}

func (e *BindError) Unwrap() error { return e.Err }

// Options controls serving behavior. The zero value serves one connection at
// a time with the default timeouts.
type Options struct {
	// MaxConns is the number of connections admitted concurrently. Zero
	// means one at a time; the next accept waits until the previous
	// connection is fully handled and closed. Negative means unlimited.
	MaxConns int

	// ReadHeaderTimeout bounds how long a client may sit silent after the
	// TLS handshake before its connection is closed.
	ReadHeaderTimeout time.Duration

	// IdleTimeout bounds how long a keep-alive connection may sit between
	// requests.
	IdleTimeout time.Duration

	// ErrorLog receives per-connection serving errors such as failed TLS
	// handshakes. Nil uses the log package default. Handshake failures are
	// never fatal; they only surface here.
	ErrorLog *log.Logger
}

// Server owns a bound listener and serves HTTPS on it. Construct with Listen,
// release with Close on every exit path, including startup failures after the
// bind succeeded.
type Server struct {
	ln   net.Listener
	opts Options
}

// Listen binds a TCP listener on addr. It does not start serving; the caller
// loads TLS material afterwards and calls ServeTLS, so a certificate failure
// can still close the bound socket.
func Listen(addr string, opts Options) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, &BindError{Addr: addr, Err: err}
	}
	if opts.ReadHeaderTimeout == 0 {
		opts.ReadHeaderTimeout = defaultReadHeaderTimeout
	}
	if opts.IdleTimeout == 0 {
		opts.IdleTimeout = defaultIdleTimeout
	}
	return &Server{ln: ln, opts: opts}, nil
}

// Addr returns the listener's bound address, useful when listening on port 0.
func (s *Server) Addr() net.Addr { return s.ln.Addr() }

// Close releases the listening socket. Serving stops shortly after.
func (s *Server) Close() error { return s.ln.Close() }

// ServeTLS wraps the listener with the TLS config and serves handler until
// the listener is closed. Every accepted connection performs the TLS
// handshake before any request bytes are read; a failed handshake drops that
// connection only.
func (s *Server) ServeTLS(tlsCfg *tls.Config, handler http.Handler) error {
	ln := s.ln
	switch {
	case s.opts.MaxConns == 0:
		ln = netutil.LimitListener(ln, 1)
	case s.opts.MaxConns > 0:
		ln = netutil.LimitListener(ln, s.opts.MaxConns)
	}

	httpSrv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: s.opts.ReadHeaderTimeout,
		IdleTimeout:       s.opts.IdleTimeout,
		ErrorLog:          s.opts.ErrorLog,
	}
	return httpSrv.Serve(tls.NewListener(ln, tlsCfg))
}
