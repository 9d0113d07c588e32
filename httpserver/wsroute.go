package httpserver

import (
	"io"
	"net/http"

	"github.com/momentics/nilservice/internal/engine"
	"github.com/momentics/nilservice/service"
	"github.com/momentics/nilservice/websocket"
)

// wsRoute is the websocket sub-Service spec.md §4.9 says UseWS(route)
// returns: owned by the parent WebService, sharing its lifetime, with
// peer IDs and connect/message/disconnect semantics identical to a
// plain §4.8 websocket-server.
type wsRoute struct {
	route    string
	handlers *engine.Handlers
	conns    *engine.Conns
	strand   *engine.Strand
}

// newWSRoute builds a route and starts its strand immediately: a route's
// lifetime is the parent WebService's lifetime, not a separate
// start/stop phase, so there is no later point to create it at.
func newWSRoute(route string) *wsRoute {
	return &wsRoute{
		route:    route,
		handlers: engine.NewHandlers("httpserver-ws:" + route),
		conns:    engine.NewConns(),
		strand:   engine.NewStrand(256),
	}
}

func (r *wsRoute) OnReady(h service.LifecycleHandler)      { r.handlers.OnReady(h) }
func (r *wsRoute) OnConnect(h service.LifecycleHandler)    { r.handlers.OnConnect(h) }
func (r *wsRoute) OnDisconnect(h service.LifecycleHandler) { r.handlers.OnDisconnect(h) }
func (r *wsRoute) OnMessage(h service.MessageHandler)      { r.handlers.OnMessage(h) }

func (r *wsRoute) Publish(payload []byte) error {
	r.conns.Each(func(_ service.ID, closer io.Closer) {
		if c, ok := closer.(*websocket.Conn); ok {
			_ = c.SendBinary(payload)
		}
	})
	return nil
}

func (r *wsRoute) PublishExcept(except service.ID, payload []byte) error {
	r.conns.Each(func(id service.ID, closer io.Closer) {
		if id == except {
			return
		}
		if c, ok := closer.(*websocket.Conn); ok {
			_ = c.SendBinary(payload)
		}
	})
	return nil
}

func (r *wsRoute) Send(id service.ID, payload []byte) error {
	closer, ok := r.conns.Get(id)
	if !ok {
		return nil
	}
	c, ok := closer.(*websocket.Conn)
	if !ok {
		return nil
	}
	return c.SendBinary(payload)
}

func (r *wsRoute) SendMulti(ids []service.ID, payload []byte) error {
	for _, id := range ids {
		_ = r.Send(id, payload)
	}
	return nil
}

// fireReady announces the route's public ID, computed by the parent as
// parentLocalEndpoint + route, once the parent WebService has bound its
// listener.
func (r *wsRoute) fireReady(id service.ID) { r.handlers.FireReady(id) }

// serveUpgrade hijacks w's connection, completes the handshake response
// (the request line itself has already been validated by the caller),
// and runs the read loop for the lifetime of the connection.
func (r *wsRoute) serveUpgrade(w http.ResponseWriter, req *http.Request) {
	hj, ok := w.(http.Hijacker)
	if !ok {
		http.Error(w, "upgrade not supported", http.StatusInternalServerError)
		return
	}
	key := req.Header.Get("Sec-WebSocket-Key")
	if key == "" || req.Header.Get("Sec-WebSocket-Version") != "13" {
		http.Error(w, "invalid websocket upgrade", http.StatusBadRequest)
		return
	}

	nc, buf, err := hj.Hijack()
	if err != nil {
		return
	}
	if buf.Reader.Buffered() > 0 {
		_ = nc.Close()
		return
	}

	resp := "HTTP/1.1 101 Switching Protocols\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Accept: " + websocket.AcceptKey(key) + "\r\n\r\n"
	if _, err := nc.Write([]byte(resp)); err != nil {
		_ = nc.Close()
		return
	}

	id := service.ID(nc.RemoteAddr().String())
	conn := websocket.NewServerConn(nc, id)
	r.conns.Put(id, conn)
	r.strand.Post(func() { r.handlers.FireConnect(id) })

	_ = conn.ReadLoop(func(payload []byte) {
		r.strand.Post(func() { r.handlers.FireMessage(id, payload, uint64(len(payload))) })
	})

	r.conns.Delete(id)
	_ = nc.Close()
	r.strand.Post(func() { r.handlers.FireDisconnect(id) })
}

func (r *wsRoute) closeAll() error {
	err := r.conns.CloseAll()
	r.strand.Close()
	return err
}
