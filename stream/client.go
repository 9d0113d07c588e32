package stream

import (
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/momentics/nilservice/internal/engine"
	"github.com/momentics/nilservice/internal/framing"
	"github.com/momentics/nilservice/service"
)

// ReconnectInterval is the delay between reconnection attempts,
// matching spec.md §4.6.3's "default 25 ms".
const ReconnectInterval = 25 * time.Millisecond

// Client is the stream-client StandaloneService: dials a stream-server
// and maintains the Idle/Connecting/Connected/Reconnecting state
// machine of spec.md §4.10.
type Client struct {
	opts Options

	handlers *engine.Handlers
	conns    *engine.Conns
	life     engine.Lifecycle

	mu      sync.Mutex
	current *streamConn
	stopped chan struct{}
}

// NewClient builds a stream-client engine.
func NewClient(opts Options) (*Client, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("stream: invalid options: %w", err)
	}
	return &Client{
		opts:     opts,
		handlers: engine.NewHandlers("stream-client"),
		conns:    engine.NewConns(),
	}, nil
}

func (c *Client) OnReady(h service.LifecycleHandler)      { c.handlers.OnReady(h) }
func (c *Client) OnConnect(h service.LifecycleHandler)    { c.handlers.OnConnect(h) }
func (c *Client) OnDisconnect(h service.LifecycleHandler) { c.handlers.OnDisconnect(h) }
func (c *Client) OnMessage(h service.MessageHandler)      { c.handlers.OnMessage(h) }

// Start dials the configured server, reconnecting every ReconnectInterval
// on failure, until Stop is called. Blocks the calling goroutine.
func (c *Client) Start() error {
	if err := c.life.Begin(service.ErrAlreadyRunning, service.ErrNotRestarted); err != nil {
		return err
	}
	c.stopped = make(chan struct{})

	addr := fmt.Sprintf("%s:%d", c.opts.Host, c.opts.Port)
	for {
		select {
		case <-c.stopped:
			return nil
		default:
		}

		var (
			nc  net.Conn
			err error
		)
		if c.opts.TLSConfig != nil {
			nc, err = tls.Dial("tcp", addr, c.opts.TLSConfig)
		} else {
			nc, err = net.Dial("tcp", addr)
		}
		if err != nil {
			select {
			case <-time.After(ReconnectInterval):
				continue
			case <-c.stopped:
				return nil
			}
		}

		c.handlers.FireReady(service.ID(nc.LocalAddr().String()))
		id := service.ID(nc.RemoteAddr().String())
		conn := newStreamConn(nc, id, func(error) {})

		c.mu.Lock()
		c.current = conn
		c.mu.Unlock()
		c.conns.Put(id, conn)
		c.handlers.FireConnect(id)

		c.readLoop(conn, id)

		c.mu.Lock()
		c.current = nil
		c.mu.Unlock()
		c.conns.Delete(id)
		c.handlers.FireDisconnect(id)

		select {
		case <-c.stopped:
			return nil
		case <-time.After(ReconnectInterval):
		}
	}
}

func (c *Client) readLoop(conn *streamConn, id service.ID) {
	for {
		payload, err := framing.ReadFrame(conn.Conn)
		if err != nil {
			_ = conn.Close()
			return
		}
		c.handlers.FireMessage(id, payload, uint64(len(payload)))
	}
}

// Stop closes the active connection (if any) and cancels reconnection.
func (c *Client) Stop() {
	if c.stopped != nil {
		select {
		case <-c.stopped:
		default:
			close(c.stopped)
		}
	}
	c.mu.Lock()
	cur := c.current
	c.mu.Unlock()
	if cur != nil {
		_ = cur.Close()
	}
	c.life.End()
}

// Restart prepares the engine for another Start after Stop.
func (c *Client) Restart() error {
	c.conns = engine.NewConns()
	c.life.Reset()
	return nil
}

func (c *Client) Publish(payload []byte) error {
	c.conns.Each(func(_ service.ID, conn io.Closer) {
		if cc, ok := conn.(*streamConn); ok {
			cc.send(payload)
		}
	})
	return nil
}

func (c *Client) PublishExcept(except service.ID, payload []byte) error {
	c.conns.Each(func(id service.ID, conn io.Closer) {
		if id == except {
			return
		}
		if cc, ok := conn.(*streamConn); ok {
			cc.send(payload)
		}
	})
	return nil
}

func (c *Client) Send(id service.ID, payload []byte) error {
	if conn, ok := c.conns.Get(id); ok {
		if cc, ok := conn.(*streamConn); ok {
			cc.send(payload)
		}
	}
	return nil
}

func (c *Client) SendMulti(ids []service.ID, payload []byte) error {
	for _, id := range ids {
		_ = c.Send(id, payload)
	}
	return nil
}
