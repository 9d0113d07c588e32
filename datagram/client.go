package datagram

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/momentics/nilservice/internal/engine"
	"github.com/momentics/nilservice/service"
)

// Client is the datagram-client StandaloneService of spec.md §4.7.2: a
// single logical peer (the configured server) tracked by an independent
// ping loop and a receive-timeout liveness state machine (spec.md §4.10
// "Unknown/Alive").
type Client struct {
	opts Options

	handlers *engine.Handlers
	strand   *engine.Strand
	life     engine.Lifecycle

	conn       *net.UDPConn
	serverID   service.ID
	pingTicker *time.Ticker
	stopCh     chan struct{}

	mu        sync.Mutex
	alive     bool
	recvTimer *time.Timer
}

// NewClient builds a datagram-client engine.
func NewClient(opts Options) (*Client, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("datagram: invalid options: %w", err)
	}
	return &Client{
		opts:     opts,
		handlers: engine.NewHandlers("datagram-client"),
	}, nil
}

func (c *Client) OnReady(h service.LifecycleHandler)      { c.handlers.OnReady(h) }
func (c *Client) OnConnect(h service.LifecycleHandler)    { c.handlers.OnConnect(h) }
func (c *Client) OnDisconnect(h service.LifecycleHandler) { c.handlers.OnDisconnect(h) }
func (c *Client) OnMessage(h service.MessageHandler)      { c.handlers.OnMessage(h) }

// Start dials the configured server endpoint, begins the keepalive ping
// loop (every Timeout/2) and a receive-timeout watchdog, then blocks
// receiving packets until Stop closes the socket.
func (c *Client) Start() error {
	if err := c.life.Begin(service.ErrAlreadyRunning, service.ErrNotRestarted); err != nil {
		return err
	}
	c.strand = engine.NewStrand(64)
	c.stopCh = make(chan struct{})

	addr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", c.opts.Host, c.opts.Port))
	if err != nil {
		c.life.End()
		return err
	}
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		c.life.End()
		return err
	}
	c.conn = conn
	c.serverID = service.ID(addr.String())

	c.handlers.FireReady(service.ID(conn.LocalAddr().String()))

	timeout := c.opts.timeout()
	c.pingTicker = time.NewTicker(timeout / 2)
	go c.pingLoop()

	buf := make([]byte, c.opts.bufferSize())
	for {
		n, err := conn.Read(buf)
		if err != nil {
			return nil
		}
		tag, payload, ok := decode(buf[:n])
		if !ok {
			continue
		}
		payloadCopy := append([]byte(nil), payload...)
		switch tag {
		case TagKeepalive:
			c.strand.Post(c.onAliveReply)
		case TagUser:
			c.strand.Post(func() { c.handlers.FireMessage(c.serverID, payloadCopy, uint64(len(payloadCopy))) })
		}
	}
}

func (c *Client) pingLoop() {
	for {
		select {
		case <-c.pingTicker.C:
			_, _ = c.conn.Write(encode(TagKeepalive, nil))
		case <-c.stopCh:
			return
		}
	}
}

func (c *Client) onAliveReply() {
	c.mu.Lock()
	wasAlive := c.alive
	c.alive = true
	timeout := c.opts.timeout()
	if c.recvTimer != nil {
		c.recvTimer.Stop()
	}
	c.recvTimer = time.AfterFunc(timeout, func() {
		c.strand.Post(c.onRecvTimeout)
	})
	c.mu.Unlock()

	if !wasAlive {
		c.handlers.FireConnect(c.serverID)
	}
}

func (c *Client) onRecvTimeout() {
	c.mu.Lock()
	wasAlive := c.alive
	c.alive = false
	c.mu.Unlock()

	if wasAlive {
		c.handlers.FireDisconnect(c.serverID)
	}
}

// Stop cancels the ping loop and the receive watchdog and closes the
// socket.
func (c *Client) Stop() {
	if c.pingTicker != nil {
		c.pingTicker.Stop()
	}
	if c.stopCh != nil {
		select {
		case <-c.stopCh:
		default:
			close(c.stopCh)
		}
	}
	c.mu.Lock()
	if c.recvTimer != nil {
		c.recvTimer.Stop()
	}
	c.mu.Unlock()
	if c.conn != nil {
		_ = c.conn.Close()
	}
	if c.strand != nil {
		c.strand.Close()
	}
	c.life.End()
}

// Restart prepares the engine for another Start after Stop.
func (c *Client) Restart() error {
	c.mu.Lock()
	c.alive = false
	c.mu.Unlock()
	c.life.Reset()
	return nil
}

func (c *Client) Publish(payload []byte) error { return c.Send(c.serverID, payload) }

func (c *Client) PublishExcept(except service.ID, payload []byte) error {
	if except == c.serverID {
		return nil
	}
	return c.Send(c.serverID, payload)
}

func (c *Client) Send(id service.ID, payload []byte) error {
	if id != c.serverID {
		return nil // unknown id: silent no-op
	}
	_, err := c.conn.Write(encode(TagUser, payload))
	return err
}

func (c *Client) SendMulti(ids []service.ID, payload []byte) error {
	for _, id := range ids {
		_ = c.Send(id, payload)
	}
	return nil
}
