package websocket

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"

	"github.com/momentics/nilservice/internal/corrid"
	"github.com/momentics/nilservice/internal/engine"
	"github.com/momentics/nilservice/internal/sockopt"
	"github.com/momentics/nilservice/service"
	"github.com/momentics/nilservice/tlsconfig"
)

var wsListenConfig = net.ListenConfig{Control: sockopt.Control}

// Server is the websocket-server StandaloneService of spec.md §4.8: a TCP
// listener performing the RFC 6455 handshake on every accepted connection
// before treating it as a peer, mirroring stream.Server's accept loop.
type Server struct {
	opts Options

	handlers *engine.Handlers
	conns    *engine.Conns
	strand   *engine.Strand
	life     engine.Lifecycle

	listener   net.Listener
	tlsWatcher *tlsconfig.Watcher
}

// NewServer builds a ws-server, or a wss-server when opts.CertDir is set
// (spec.md §6): the cert/key/dh triplet is loaded and hot-reloaded through
// tlsconfig.Watcher and installed as opts.TLSConfig, unless the caller
// already supplied one directly.
func NewServer(opts Options) (*Server, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("websocket: invalid options: %w", err)
	}

	s := &Server{
		opts:     opts,
		handlers: engine.NewHandlers("websocket-server"),
		conns:    engine.NewConns(),
	}

	if opts.TLSConfig == nil && opts.CertDir != "" {
		w, err := tlsconfig.NewWatcher(opts.CertDir)
		if err != nil {
			return nil, fmt.Errorf("websocket: %w", err)
		}
		s.tlsWatcher = w
		s.opts.TLSConfig = w.Config()
	}

	return s, nil
}

func (s *Server) OnReady(h service.LifecycleHandler)      { s.handlers.OnReady(h) }
func (s *Server) OnConnect(h service.LifecycleHandler)    { s.handlers.OnConnect(h) }
func (s *Server) OnDisconnect(h service.LifecycleHandler) { s.handlers.OnDisconnect(h) }
func (s *Server) OnMessage(h service.MessageHandler)      { s.handlers.OnMessage(h) }

func (s *Server) Start() error {
	if err := s.life.Begin(service.ErrAlreadyRunning, service.ErrNotRestarted); err != nil {
		return err
	}
	s.strand = engine.NewStrand(256)

	addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
	var ln net.Listener
	var err error
	if s.opts.TLSConfig != nil {
		var plain net.Listener
		plain, err = wsListenConfig.Listen(context.Background(), "tcp", addr)
		if err == nil {
			ln = tls.NewListener(plain, s.opts.TLSConfig)
		}
	} else {
		ln, err = wsListenConfig.Listen(context.Background(), "tcp", addr)
	}
	if err != nil {
		s.life.End()
		return err
	}
	s.listener = ln

	s.handlers.FireReady(service.ID(ln.Addr().String()))

	for {
		nc, err := ln.Accept()
		if err != nil {
			return nil
		}
		go s.acceptOne(nc)
	}
}

func (s *Server) acceptOne(nc net.Conn) {
	path, err := serverHandshake(nc)
	if err != nil {
		_ = nc.Close()
		return
	}
	if path != s.opts.path() {
		_ = nc.Close()
		return
	}

	id := service.ID(nc.RemoteAddr().String())
	engine.Log.WithFields(map[string]interface{}{
		"transport": "websocket-server",
		"peer":      id,
		"corr_id":   corrid.New(),
	}).Debug("accepted connection")

	conn := newWSConn(nc, id, false)
	s.conns.Put(id, conn)

	s.strand.Post(func() { s.handlers.FireConnect(id) })

	_ = conn.readLoop(func(payload []byte) {
		s.strand.Post(func() { s.handlers.FireMessage(id, payload, uint64(len(payload))) })
	})

	s.conns.Delete(id)
	_ = nc.Close()
	s.strand.Post(func() { s.handlers.FireDisconnect(id) })
}

func (s *Server) Stop() {
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.conns.CloseAll()
	if s.strand != nil {
		s.strand.Close()
	}
	if s.tlsWatcher != nil {
		_ = s.tlsWatcher.Close()
	}
	s.life.End()
}

func (s *Server) Restart() error {
	s.life.Reset()
	return nil
}

func (s *Server) Publish(payload []byte) error {
	s.conns.Each(func(_ service.ID, closer io.Closer) {
		if c, ok := closer.(*wsConn); ok {
			_ = c.sendBinary(payload)
		}
	})
	return nil
}

func (s *Server) PublishExcept(except service.ID, payload []byte) error {
	s.conns.Each(func(id service.ID, closer io.Closer) {
		if id == except {
			return
		}
		if c, ok := closer.(*wsConn); ok {
			_ = c.sendBinary(payload)
		}
	})
	return nil
}

func (s *Server) Send(id service.ID, payload []byte) error {
	closer, ok := s.conns.Get(id)
	if !ok {
		return nil
	}
	c, ok := closer.(*wsConn)
	if !ok {
		return nil
	}
	return c.sendBinary(payload)
}

func (s *Server) SendMulti(ids []service.ID, payload []byte) error {
	for _, id := range ids {
		_ = s.Send(id, payload)
	}
	return nil
}
