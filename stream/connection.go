package stream

import (
	"net"

	"github.com/momentics/nilservice/internal/framing"
	"github.com/momentics/nilservice/service"
)

// conn owns one accepted or dialed socket: the raw net.Conn, its ID, and
// the framer writer that serializes concurrent Sends (spec.md §3 "Owns
// the read buffer, the socket, a link back to its owning engine, and
// the peer ID").
type streamConn struct {
	net.Conn
	id     service.ID
	writer *framing.Writer
}

func newStreamConn(nc net.Conn, id service.ID, onWriteErr func(error)) *streamConn {
	return &streamConn{
		Conn:   nc,
		id:     id,
		writer: framing.NewWriter(nc, onWriteErr),
	}
}

func (c *streamConn) send(payload []byte) { c.writer.Enqueue(payload) }

func (c *streamConn) Close() error {
	c.writer.Close()
	return c.Conn.Close()
}
