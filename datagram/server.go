package datagram

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/momentics/nilservice/internal/engine"
	"github.com/momentics/nilservice/internal/sockopt"
	"github.com/momentics/nilservice/service"
)

var datagramListenConfig = net.ListenConfig{Control: sockopt.Control}

type peer struct {
	addr  *net.UDPAddr
	timer *time.Timer
}

// Server is the datagram-server StandaloneService of spec.md §4.7.1: a
// UDP socket tracking per-source-endpoint liveness via keepalive
// packets.
type Server struct {
	opts Options

	handlers *engine.Handlers
	strand   *engine.Strand
	life     engine.Lifecycle

	mu    sync.Mutex
	peers map[service.ID]*peer

	conn *net.UDPConn
}

// NewServer builds a datagram-server engine.
func NewServer(opts Options) (*Server, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("datagram: invalid options: %w", err)
	}
	return &Server{
		opts:     opts,
		handlers: engine.NewHandlers("datagram-server"),
		peers:    make(map[service.ID]*peer),
	}, nil
}

func (s *Server) OnReady(h service.LifecycleHandler)      { s.handlers.OnReady(h) }
func (s *Server) OnConnect(h service.LifecycleHandler)    { s.handlers.OnConnect(h) }
func (s *Server) OnDisconnect(h service.LifecycleHandler) { s.handlers.OnDisconnect(h) }
func (s *Server) OnMessage(h service.MessageHandler)      { s.handlers.OnMessage(h) }

// Start binds the UDP socket, fires OnReady, then receives packets until
// Stop closes the socket. Blocks the calling goroutine.
func (s *Server) Start() error {
	if err := s.life.Begin(service.ErrAlreadyRunning, service.ErrNotRestarted); err != nil {
		return err
	}
	s.strand = engine.NewStrand(256)

	addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
	pc, err := datagramListenConfig.ListenPacket(context.Background(), "udp", addr)
	if err != nil {
		s.life.End()
		return err
	}
	conn, ok := pc.(*net.UDPConn)
	if !ok {
		s.life.End()
		return fmt.Errorf("datagram: unexpected packet conn type %T", pc)
	}
	s.conn = conn

	s.handlers.FireReady(service.ID(conn.LocalAddr().String()))

	buf := make([]byte, s.opts.bufferSize())
	for {
		n, from, err := conn.ReadFromUDP(buf)
		if err != nil {
			return nil
		}
		tag, payload, ok := decode(buf[:n])
		if !ok {
			continue // malformed datagram, dropped silently
		}
		payloadCopy := append([]byte(nil), payload...)
		s.handlePacket(tag, from, payloadCopy)
	}
}

func (s *Server) handlePacket(tag byte, from *net.UDPAddr, payload []byte) {
	id := service.ID(from.String())
	switch tag {
	case TagKeepalive:
		s.strand.Post(func() { s.onKeepalive(id, from) })
		_, _ = s.conn.WriteToUDP(encode(TagKeepalive, nil), from)
	case TagUser:
		s.strand.Post(func() { s.handlers.FireMessage(id, payload, uint64(len(payload))) })
	}
}

func (s *Server) onKeepalive(id service.ID, from *net.UDPAddr) {
	s.mu.Lock()
	p, known := s.peers[id]
	if !known {
		p = &peer{addr: from}
		s.peers[id] = p
	}
	timeout := s.opts.timeout()
	p.timer = s.rearm(p.timer, id, timeout)
	s.mu.Unlock()

	if !known {
		s.handlers.FireConnect(id)
	}
}

// rearm stops any existing timer for id and arms a fresh one, returning
// it. Called with s.mu held.
func (s *Server) rearm(old *time.Timer, id service.ID, timeout time.Duration) *time.Timer {
	if old != nil {
		old.Stop()
	}
	return time.AfterFunc(timeout, func() {
		s.strand.Post(func() { s.expire(id) })
	})
}

func (s *Server) expire(id service.ID) {
	s.mu.Lock()
	_, known := s.peers[id]
	delete(s.peers, id)
	s.mu.Unlock()

	if known {
		s.handlers.FireDisconnect(id)
	}
}

// Stop closes the socket and stops every peer's liveness timer.
func (s *Server) Stop() {
	if s.conn != nil {
		_ = s.conn.Close()
	}
	s.mu.Lock()
	for _, p := range s.peers {
		if p.timer != nil {
			p.timer.Stop()
		}
	}
	s.peers = make(map[service.ID]*peer)
	s.mu.Unlock()
	if s.strand != nil {
		s.strand.Close()
	}
	s.life.End()
}

// Restart prepares the engine for another Start after Stop.
func (s *Server) Restart() error {
	s.peers = make(map[service.ID]*peer)
	s.life.Reset()
	return nil
}

func (s *Server) Publish(payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.peers {
		_, _ = s.conn.WriteToUDP(encode(TagUser, payload), p.addr)
	}
	return nil
}

func (s *Server) PublishExcept(except service.ID, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range s.peers {
		if id == except {
			continue
		}
		_, _ = s.conn.WriteToUDP(encode(TagUser, payload), p.addr)
	}
	return nil
}

func (s *Server) Send(id service.ID, payload []byte) error {
	s.mu.Lock()
	p, ok := s.peers[id]
	s.mu.Unlock()
	if !ok {
		return nil // unknown id: silent no-op, per spec.md §7
	}
	_, _ = s.conn.WriteToUDP(encode(TagUser, payload), p.addr)
	return nil
}

func (s *Server) SendMulti(ids []service.ID, payload []byte) error {
	for _, id := range ids {
		_ = s.Send(id, payload)
	}
	return nil
}
