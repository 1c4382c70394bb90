package gateway

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"hubgate/internal/auth"
	"hubgate/internal/config"
	"hubgate/internal/session"
	"hubgate/pkg/logging"
)

// Server is the HTTP face of the gateway: it terminates the session
// cookie, runs the login flow against the hub, and proxies everything an
// authenticated user requests to the fronted application.
type Server struct {
	controller *auth.Controller
	store      *session.Store
	metrics    *auth.Metrics

	prefix        string
	callbackPath  string
	cookieName    string
	secureCookies bool
	addr          string

	proxy http.Handler

	httpServer *http.Server
	listener   net.Listener
	errCh      chan error

	mu      sync.Mutex
	started bool
}

// NewServer assembles the gateway routes. The upstream URL may be empty,
// in which case application paths answer 503 while the auth endpoints
// keep working.
func NewServer(cfg *config.Config, controller *auth.Controller, store *session.Store, metrics *auth.Metrics) (*Server, error) {
	s := &Server{
		controller:    controller,
		store:         store,
		metrics:       metrics,
		prefix:        cfg.Gateway.ServicePrefix,
		callbackPath:  cfg.CallbackPath(),
		cookieName:    cfg.Gateway.CookieName,
		secureCookies: strings.HasPrefix(cfg.Hub.CallbackURL, "https://"),
		addr:          cfg.ListenAddr(),
		errCh:         make(chan error, 1),
	}

	var upstream *url.URL
	if cfg.Gateway.UpstreamURL != "" {
		u, err := url.Parse(cfg.Gateway.UpstreamURL)
		if err != nil {
			return nil, fmt.Errorf("invalid upstream URL %q: %w", cfg.Gateway.UpstreamURL, err)
		}
		upstream = u
	}
	s.proxy = newUpstreamProxy(upstream)

	mux := http.NewServeMux()
	mux.Handle(s.callbackPath, s.authenticate(http.HandlerFunc(s.handleCallbackFallthrough)))
	mux.Handle(s.prefix+"api/me", s.authenticate(http.HandlerFunc(s.handleMe)))
	mux.Handle(s.prefix+"api/status", s.authenticate(http.HandlerFunc(s.handleStatus)))
	mux.Handle(s.prefix+"logout", http.HandlerFunc(s.handleLogout))
	mux.Handle("/", s.authenticate(http.HandlerFunc(s.handleApp)))

	s.httpServer = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s, nil
}

// Start binds the listen address and begins serving. Bind failures are
// returned synchronously; later serve failures surface on Err().
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("gateway server already started")
	}
	s.started = true
	s.mu.Unlock()

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.listener = ln

	logging.Info("Gateway", "Gateway listening on %s (prefix %s)", ln.Addr(), s.prefix)

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			logging.Error("Gateway", err, "HTTP server error")
			s.errCh <- err
		}
	}()

	return nil
}

// Stop drains the server gracefully, bounded by a shutdown timeout.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		return nil
	}

	logging.Info("Gateway", "Stopping gateway server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Warn("Gateway", "Graceful shutdown failed, closing: %v", err)
		return s.httpServer.Close()
	}
	return nil
}

// Err reports a fatal serve error, if one ever happens. The channel never
// closes and delivers at most one error.
func (s *Server) Err() <-chan error {
	return s.errCh
}

// Addr returns the bound address once Start has succeeded. Useful when
// listening on an ephemeral port.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.addr
	}
	return s.listener.Addr().String()
}

// Handler exposes the route table without a listener.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// handleCallbackFallthrough serves a callback request that needed no login
// work (already authenticated, or no code present and the middleware chose
// not to redirect). Nothing lives on this path; send the user home.
func (s *Server) handleCallbackFallthrough(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, s.prefix, http.StatusFound)
}
