package websocket

import (
	"crypto/tls"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/momentics/nilservice/internal/engine"
	"github.com/momentics/nilservice/service"
)

// ReconnectInterval is the pause between dial attempts after a dropped
// or refused connection, mirroring stream.Client's reconnect loop.
const ReconnectInterval = 25 * time.Millisecond

// Client is the websocket-client StandaloneService of spec.md §4.8.
type Client struct {
	opts Options

	handlers *engine.Handlers
	life     engine.Lifecycle

	mu      sync.Mutex
	current *wsConn
	stopped chan struct{}
}

func NewClient(opts Options) (*Client, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("websocket: invalid options: %w", err)
	}
	return &Client{
		opts:     opts,
		handlers: engine.NewHandlers("websocket-client"),
	}, nil
}

func (c *Client) OnReady(h service.LifecycleHandler)      { c.handlers.OnReady(h) }
func (c *Client) OnConnect(h service.LifecycleHandler)    { c.handlers.OnConnect(h) }
func (c *Client) OnDisconnect(h service.LifecycleHandler) { c.handlers.OnDisconnect(h) }
func (c *Client) OnMessage(h service.MessageHandler)      { c.handlers.OnMessage(h) }

func (c *Client) Start() error {
	if err := c.life.Begin(service.ErrAlreadyRunning, service.ErrNotRestarted); err != nil {
		return err
	}
	c.stopped = make(chan struct{})

	addr := fmt.Sprintf("%s:%d", c.opts.Host, c.opts.Port)
	c.handlers.FireReady(service.ID(addr))

	for {
		select {
		case <-c.stopped:
			return nil
		default:
		}

		var nc net.Conn
		var err error
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

		if err := clientHandshake(nc, c.opts.Host, c.opts.path()); err != nil {
			_ = nc.Close()
			select {
			case <-time.After(ReconnectInterval):
				continue
			case <-c.stopped:
				return nil
			}
		}

		id := service.ID(nc.RemoteAddr().String())
		conn := newWSConn(nc, id, true)
		c.mu.Lock()
		c.current = conn
		c.mu.Unlock()

		c.handlers.FireConnect(id)

		_ = conn.readLoop(func(payload []byte) {
			c.handlers.FireMessage(id, payload, uint64(len(payload)))
		})

		_ = nc.Close()
		c.mu.Lock()
		c.current = nil
		c.mu.Unlock()
		c.handlers.FireDisconnect(id)

		select {
		case <-c.stopped:
			return nil
		case <-time.After(ReconnectInterval):
		}
	}
}

func (c *Client) Stop() {
	if c.stopped != nil {
		select {
		case <-c.stopped:
		default:
			close(c.stopped)
		}
	}
	c.mu.Lock()
	if c.current != nil {
		_ = c.current.Close()
	}
	c.mu.Unlock()
	c.life.End()
}

func (c *Client) Restart() error {
	c.life.Reset()
	return nil
}

func (c *Client) Publish(payload []byte) error {
	c.mu.Lock()
	conn := c.current
	c.mu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.sendBinary(payload)
}

func (c *Client) PublishExcept(except service.ID, payload []byte) error {
	c.mu.Lock()
	conn := c.current
	c.mu.Unlock()
	if conn == nil || conn.id == except {
		return nil
	}
	return conn.sendBinary(payload)
}

func (c *Client) Send(id service.ID, payload []byte) error {
	c.mu.Lock()
	conn := c.current
	c.mu.Unlock()
	if conn == nil || conn.id != id {
		return nil
	}
	return conn.sendBinary(payload)
}

func (c *Client) SendMulti(ids []service.ID, payload []byte) error {
	for _, id := range ids {
		_ = c.Send(id, payload)
	}
	return nil
}
