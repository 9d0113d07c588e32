package websocket

import (
	"net"
	"sync"

	"github.com/momentics/nilservice/service"
)

// wsConn is one established websocket session: a net.Conn plus the
// masking rule for outbound frames (clients mask, servers don't, per
// RFC 6455 §5.1) and a write mutex serializing frame emission so
// concurrent Send/Publish calls never interleave two frames on the wire.
type wsConn struct {
	net.Conn
	id       service.ID
	isClient bool

	writeMu sync.Mutex
}

func newWSConn(nc net.Conn, id service.ID, isClient bool) *wsConn {
	return &wsConn{Conn: nc, id: id, isClient: isClient}
}

func (c *wsConn) sendBinary(payload []byte) error {
	return c.sendFrame(OpBinary, payload)
}

func (c *wsConn) sendFrame(opcode byte, payload []byte) error {
	raw, err := encodeFrame(opcode, payload, c.isClient)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_, err = c.Conn.Write(raw)
	return err
}

// readLoop reads frames until a Close frame or an i/o error. onData is
// invoked with the payload of each binary, text or continuation frame;
// fragmented messages are not reassembled. The loop replies to pings,
// ignores pongs, and exits cleanly on a peer-initiated close.
func (c *wsConn) readLoop(onData func(payload []byte)) error {
	for {
		frame, err := readFrame(c.Conn)
		if err != nil {
			return err
		}
		switch frame.Opcode {
		case OpBinary, OpText, OpContinuation:
			onData(frame.Payload)
		case OpPing:
			if err := c.sendFrame(OpPong, frame.Payload); err != nil {
				return err
			}
		case OpPong:
			// liveness acknowledged; no action required
		case OpClose:
			_ = c.sendFrame(OpClose, frame.Payload)
			return nil
		}
	}
}
