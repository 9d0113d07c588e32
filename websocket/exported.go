package websocket

import (
	"net"

	"github.com/momentics/nilservice/service"
)

// Conn is an already-handshaken websocket connection, exported so
// httpserver's UseWS routes — which perform the HTTP upgrade themselves
// via http.Hijacker — can reuse this package's RFC 6455 framing instead
// of reimplementing it.
type Conn struct {
	*wsConn
}

// NewServerConn wraps a hijacked, already-upgraded connection as a
// server-side websocket Conn (unmasked outbound frames, per RFC 6455 §5.1).
func NewServerConn(nc net.Conn, id service.ID) *Conn {
	return &Conn{newWSConn(nc, id, false)}
}

// SendBinary sends one binary-opcode frame.
func (c *Conn) SendBinary(payload []byte) error { return c.wsConn.sendBinary(payload) }

// ReadLoop reads frames until close or error, invoking onData for every
// data frame's payload; see wsConn.readLoop.
func (c *Conn) ReadLoop(onData func(payload []byte)) error { return c.wsConn.readLoop(onData) }

// AcceptKey computes Sec-WebSocket-Accept for clientKey per RFC 6455
// §1.3, exported for callers (httpserver's UseWS) that complete their
// own HTTP upgrade response after hijacking the connection.
func AcceptKey(clientKey string) string { return acceptKey(clientKey) }
