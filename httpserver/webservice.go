package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/momentics/nilservice/internal/engine"
	"github.com/momentics/nilservice/internal/sockopt"
	"github.com/momentics/nilservice/service"
	"github.com/momentics/nilservice/tlsconfig"
)

var webListenConfig = net.ListenConfig{Control: sockopt.Control}

// WebService is the HTTP(S) web service engine of spec.md §4.9.
type WebService struct {
	opts Options
	life engine.Lifecycle

	mu          sync.Mutex
	routes      map[string]*wsRoute
	getHandlers map[string]service.GetHandler

	listener   net.Listener
	server     *http.Server
	ready      chan struct{}
	tlsWatcher *tlsconfig.Watcher
}

// NewWebService builds an http-server, or an https-server when
// opts.CertDir is set (spec.md §6): the cert/key/dh triplet is loaded and
// hot-reloaded through tlsconfig.Watcher and installed as opts.TLSConfig,
// unless the caller already supplied one directly.
func NewWebService(opts Options) (*WebService, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("httpserver: invalid options: %w", err)
	}

	s := &WebService{
		opts:        opts,
		routes:      make(map[string]*wsRoute),
		getHandlers: make(map[string]service.GetHandler),
		ready:       make(chan struct{}),
	}

	if opts.TLSConfig == nil && opts.CertDir != "" {
		w, err := tlsconfig.NewWatcher(opts.CertDir)
		if err != nil {
			return nil, fmt.Errorf("httpserver: %w", err)
		}
		s.tlsWatcher = w
		s.opts.TLSConfig = w.Config()
	}

	return s, nil
}

// Ready is closed once the listener is bound and Addr becomes valid.
func (s *WebService) Ready() <-chan struct{} { return s.ready }

// Addr returns the bound listener address. Only valid after Ready closes.
func (s *WebService) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// UseWS registers (or returns, if already registered) the websocket
// sub-Service bound to route.
func (s *WebService) UseWS(route string) (service.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.routes[route]; ok {
		return existing, nil
	}
	if _, taken := s.getHandlers[route]; taken {
		return nil, service.ErrRouteTaken
	}
	r := newWSRoute(route)
	s.routes[route] = r
	return r, nil
}

// OnGet registers a handler for plain HTTP GET requests on route.
func (s *WebService) OnGet(route string, cb service.GetHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getHandlers[route] = cb
}

// Start binds the listener, announces readiness for the web service and
// every registered ws route, then serves until Stop closes the listener.
func (s *WebService) Start() error {
	if err := s.life.Begin(service.ErrAlreadyRunning, service.ErrNotRestarted); err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
	ln, err := webListenConfig.Listen(context.Background(), "tcp", addr)
	if err != nil {
		s.life.End()
		return err
	}

	local := service.ID(ln.Addr().String())
	s.mu.Lock()
	s.listener = ln
	for route, r := range s.routes {
		r.fireReady(service.ID(string(local) + route))
	}
	s.mu.Unlock()
	close(s.ready)

	s.server = &http.Server{
		Handler:     s,
		ReadTimeout: s.opts.readTimeout(),
		TLSConfig:   s.opts.TLSConfig,
	}

	var serveErr error
	if s.opts.TLSConfig != nil {
		serveErr = s.server.ServeTLS(ln, "", "")
	} else {
		serveErr = s.server.Serve(ln)
	}
	if errors.Is(serveErr, http.ErrServerClosed) {
		return nil
	}
	return serveErr
}

// ServeHTTP routes one inbound request to a registered ws upgrade or GET
// handler, per spec.md §4.9.
func (s *WebService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Server", s.opts.serverBanner())
	w.Header().Set("Access-Control-Allow-Origin", s.opts.corsAllowOrigin())
	w.Header().Set("Access-Control-Allow-Methods", http.MethodGet)

	s.mu.Lock()
	route, isWS := s.routes[r.URL.Path]
	getCB, isGet := s.getHandlers[r.URL.Path]
	s.mu.Unlock()

	if isWS {
		if !hasUpgradeHeader(r) {
			// Known ws route probed without an Upgrade header: respond
			// 200 with an empty body, per spec.md §4.9.
			w.WriteHeader(http.StatusOK)
			return
		}
		route.serveUpgrade(w, r)
		return
	}

	if isGet && r.Method == http.MethodGet {
		tx := &transaction{route: r.URL.Path, w: w}
		getCB(tx)
		return
	}

	http.Error(w, "unknown route", http.StatusBadRequest)
}

func hasUpgradeHeader(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}

// Stop closes the listener and every registered ws route's connections
// concurrently, aggregating any close errors.
func (s *WebService) Stop() {
	if s.listener != nil {
		_ = s.listener.Close()
	}

	s.mu.Lock()
	routes := make([]*wsRoute, 0, len(s.routes))
	for _, r := range s.routes {
		routes = append(routes, r)
	}
	s.mu.Unlock()

	var g errgroup.Group
	var errMu sync.Mutex
	var result *multierror.Error
	for _, r := range routes {
		r := r
		g.Go(func() error {
			if err := r.closeAll(); err != nil {
				errMu.Lock()
				result = multierror.Append(result, err)
				errMu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	if err := result.ErrorOrNil(); err != nil {
		engine.Log.WithError(err).Warn("httpserver: errors closing websocket routes")
	}

	if s.tlsWatcher != nil {
		_ = s.tlsWatcher.Close()
	}

	s.life.End()
}

// Restart prepares the engine for another Start after Stop.
func (s *WebService) Restart() error {
	s.mu.Lock()
	s.ready = make(chan struct{})
	s.listener = nil
	s.mu.Unlock()
	s.life.Reset()
	return nil
}
