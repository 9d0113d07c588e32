// Package engine holds the substrate shared by every transport engine:
// the ordered handler set, the single-goroutine strand that serializes
// engine events, the connection map, and the Fresh/Running/Stopped
// lifecycle state machine (spec.md §4.10, §5).
//
// This generalizes the teacher's per-engine "one accept loop, one
// connection map, one facade" pattern (server/server.go,
// protocol/connection.go) so every transport in this module shares it
// instead of re-deriving it.
package engine

import (
	"github.com/sirupsen/logrus"

	"github.com/momentics/nilservice/service"
)

// Handlers is the ordered, append-only registry of lifecycle and
// message callbacks for one engine. It is written by the owning
// goroutine before Start and read-only thereafter — per spec.md §5 the
// contract explicitly declines to lock it past that point, so no mutex
// guards the slices themselves.
type Handlers struct {
	log     *logrus.Entry
	ready   []service.LifecycleHandler
	connect []service.LifecycleHandler
	disconn []service.LifecycleHandler
	message []service.MessageHandler
}

// NewHandlers builds an empty handler set logging under the given
// transport name.
func NewHandlers(transport string) *Handlers {
	return &Handlers{log: Log.WithField("transport", transport)}
}

func (h *Handlers) OnReady(fn service.LifecycleHandler)      { h.ready = append(h.ready, fn) }
func (h *Handlers) OnConnect(fn service.LifecycleHandler)    { h.connect = append(h.connect, fn) }
func (h *Handlers) OnDisconnect(fn service.LifecycleHandler) { h.disconn = append(h.disconn, fn) }
func (h *Handlers) OnMessage(fn service.MessageHandler)      { h.message = append(h.message, fn) }

// FireReady, FireConnect and FireDisconnect invoke every registered
// lifecycle handler, in registration order, isolating panics so one
// failing handler cannot take down the engine's strand (spec.md §3,
// SPEC_FULL.md §7).
func (h *Handlers) FireReady(id service.ID)      { h.fireLifecycle("ready", h.ready, id) }
func (h *Handlers) FireConnect(id service.ID)    { h.fireLifecycle("connect", h.connect, id) }
func (h *Handlers) FireDisconnect(id service.ID) { h.fireLifecycle("disconnect", h.disconn, id) }

func (h *Handlers) fireLifecycle(event string, hs []service.LifecycleHandler, id service.ID) {
	for _, fn := range hs {
		h.guard(event, id, func() { fn(id) })
	}
}

// FireMessage invokes every registered message handler, in registration
// order, with the decoded payload.
func (h *Handlers) FireMessage(id service.ID, data []byte, length uint64) {
	for _, fn := range h.message {
		h.guard("message", id, func() { fn(id, data, length) })
	}
}

func (h *Handlers) guard(event string, id service.ID, call func()) {
	defer func() {
		if r := recover(); r != nil {
			h.log.WithFields(logrus.Fields{
				"event": event,
				"peer":  id,
				"panic": r,
			}).Error("handler panicked; isolated from engine strand")
		}
	}()
	call()
}
