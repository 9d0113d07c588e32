package service

// Runnable is the lifecycle surface every engine exposes.
//
// Start blocks the calling goroutine for the lifetime of the engine.
// Stop is non-blocking, idempotent, and safe to call from any goroutine.
// Restart tears down the previous run's context so a subsequent Start
// opens fresh sockets; calling Start again without a prior Restart after
// Stop is a programming error (see ErrNotRestarted).
type Runnable interface {
	Start() error
	Stop()
	Restart() error
}

// Messaging is the publish/send surface. The loopback engine posts
// delivery to its strand and the stream engines queue each frame on the
// connection's writer, returning before the write reaches the wire; the
// datagram and websocket engines (including httpserver routes) write on
// the calling goroutine and return after the write.
type Messaging interface {
	// Publish sends payload to every known peer.
	Publish(payload []byte) error
	// PublishExcept sends payload to every known peer other than id.
	PublishExcept(id ID, payload []byte) error
	// Send unicasts payload to a single peer. Unknown ids are a silent no-op.
	Send(id ID, payload []byte) error
	// SendMulti multicasts payload to the given peers. Unknown ids are skipped.
	SendMulti(ids []ID, payload []byte) error
}

// MessageHandler is the canonical, fully-adapted message callback shape.
// data aliases the decoded payload; length equals len(data) and is kept
// as a distinct parameter to mirror the wire-level contract of spec.md §4.2.
type MessageHandler func(id ID, data []byte, length uint64)

// LifecycleHandler is the canonical ready/connect/disconnect callback shape.
type LifecycleHandler func(id ID)

// Observable is the handler-registration surface. Registrations are not
// thread-safe once Start has been called; callers must install every
// handler before starting the engine. Handlers registered for the same
// event fire in registration order.
type Observable interface {
	OnReady(h LifecycleHandler)
	OnConnect(h LifecycleHandler)
	OnDisconnect(h LifecycleHandler)
	OnMessage(h MessageHandler)
}

// Service composes the messaging and observation surfaces a caller
// interacts with once an engine is running.
type Service interface {
	Messaging
	Observable
}

// StandaloneService is a complete, self-contained transport unit: every
// transport namespace in this module (except http(s)) returns one of
// these from its constructor (loopback.New, NewServer, NewClient).
type StandaloneService interface {
	Runnable
	Service
}

// WebService is a Runnable that can allocate per-route websocket
// sub-Services. Each sub-Service is owned by the WebService and shares
// its lifetime.
type WebService interface {
	Runnable
	// UseWS registers (or returns, if already registered) the websocket
	// sub-Service bound to route.
	UseWS(route string) (Service, error)
	// OnGet registers a handler for plain HTTP GET requests on route.
	OnGet(route string, cb GetHandler)
}

// GetHandler serves a plain HTTP GET request routed by the web engine.
type GetHandler func(tx Transaction)

// Transaction is the minimal surface a GetHandler needs: read the
// requested route, set the response content type, and write a body.
type Transaction interface {
	GetRoute() string
	SetContentType(ct string)
	Send(body []byte)
}
