package stream

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"

	"github.com/momentics/nilservice/internal/corrid"
	"github.com/momentics/nilservice/internal/engine"
	"github.com/momentics/nilservice/internal/framing"
	"github.com/momentics/nilservice/internal/sockopt"
	"github.com/momentics/nilservice/service"
)

var streamListenConfig = net.ListenConfig{Control: sockopt.Control}

// Server is the stream-server StandaloneService: a TCP (optionally TLS)
// listener dispatching length-prefixed frames, per spec.md §4.6.2.
type Server struct {
	opts Options

	handlers *engine.Handlers
	conns    *engine.Conns
	strand   *engine.Strand
	life     engine.Lifecycle

	listener net.Listener
}

// NewServer builds a stream-server engine. Construction never touches
// the network; Start does.
func NewServer(opts Options) (*Server, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("stream: invalid options: %w", err)
	}
	return &Server{
		opts:     opts,
		handlers: engine.NewHandlers("stream-server"),
		conns:    engine.NewConns(),
	}, nil
}

func (s *Server) OnReady(h service.LifecycleHandler)      { s.handlers.OnReady(h) }
func (s *Server) OnConnect(h service.LifecycleHandler)    { s.handlers.OnConnect(h) }
func (s *Server) OnDisconnect(h service.LifecycleHandler) { s.handlers.OnDisconnect(h) }
func (s *Server) OnMessage(h service.MessageHandler)      { s.handlers.OnMessage(h) }

// Start binds the listening socket, fires OnReady with the bound local
// endpoint, then accepts connections until Stop closes the listener.
// Blocks the calling goroutine for the engine's lifetime (spec.md §5).
func (s *Server) Start() error {
	if err := s.life.Begin(service.ErrAlreadyRunning, service.ErrNotRestarted); err != nil {
		return err
	}
	s.strand = engine.NewStrand(256)

	addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
	var (
		ln  net.Listener
		err error
	)
	if s.opts.TLSConfig != nil {
		var plain net.Listener
		plain, err = streamListenConfig.Listen(context.Background(), "tcp", addr)
		if err == nil {
			ln = tls.NewListener(plain, s.opts.TLSConfig)
		}
	} else {
		ln, err = streamListenConfig.Listen(context.Background(), "tcp", addr)
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
			// Stop() closing the listener surfaces here; treat every
			// accept error as shutdown since we own the listener.
			return nil
		}
		s.acceptOne(nc)
	}
}

func (s *Server) acceptOne(nc net.Conn) {
	id := service.ID(nc.RemoteAddr().String())
	corr := corrid.New()
	engine.Log.WithFields(map[string]interface{}{
		"transport": "stream-server",
		"peer":      id,
		"corr_id":   corr,
	}).Debug("accepted connection")

	c := newStreamConn(nc, id, func(error) { s.dropPeer(id) })
	s.conns.Put(id, c)
	s.strand.Post(func() { s.handlers.FireConnect(id) })

	go func() {
		for {
			payload, err := framing.ReadFrame(nc)
			if err != nil {
				s.dropPeer(id)
				return
			}
			s.strand.Post(func() { s.handlers.FireMessage(id, payload, uint64(len(payload))) })
		}
	}()
}

// dropPeer removes and closes id's connection, then posts FireDisconnect
// to the strand so it serializes with any in-flight FireConnect/
// FireMessage for other peers (spec.md §8's single-engine serialization
// invariant).
func (s *Server) dropPeer(id service.ID) {
	if c, ok := s.conns.Get(id); ok {
		s.conns.Delete(id)
		_ = c.Close()
		s.strand.Post(func() { s.handlers.FireDisconnect(id) })
	}
}

// Stop closes the listener and every open connection. Non-blocking,
// idempotent, safe from any goroutine.
func (s *Server) Stop() {
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.conns.CloseAll()
	if s.strand != nil {
		s.strand.Close()
	}
	s.life.End()
}

// Restart prepares the engine for another Start after Stop.
func (s *Server) Restart() error {
	s.listener = nil
	s.conns = engine.NewConns()
	s.life.Reset()
	return nil
}

func (s *Server) Publish(payload []byte) error {
	s.conns.Each(func(_ service.ID, c io.Closer) {
		if cc, ok := c.(*streamConn); ok {
			cc.send(payload)
		}
	})
	return nil
}

func (s *Server) PublishExcept(except service.ID, payload []byte) error {
	s.conns.Each(func(id service.ID, c io.Closer) {
		if id == except {
			return
		}
		if cc, ok := c.(*streamConn); ok {
			cc.send(payload)
		}
	})
	return nil
}

func (s *Server) Send(id service.ID, payload []byte) error {
	if c, ok := s.conns.Get(id); ok {
		if cc, ok := c.(*streamConn); ok {
			cc.send(payload)
		}
	}
	return nil
}

func (s *Server) SendMulti(ids []service.ID, payload []byte) error {
	for _, id := range ids {
		_ = s.Send(id, payload)
	}
	return nil
}
