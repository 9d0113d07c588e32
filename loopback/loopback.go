// Package loopback implements the in-process Self engine of spec.md §4.5:
// a StandaloneService whose only peer is the calling process itself,
// serialized through the same single-goroutine strand the other engines
// use for their event loops.
package loopback

import (
	"github.com/momentics/nilservice/internal/engine"
	"github.com/momentics/nilservice/service"
)

// SelfID is the sole peer identity this engine ever reports.
const SelfID = service.SelfID

// StrandQueueDepth bounds the self engine's pending-task queue.
const StrandQueueDepth = 256

// Self is the loopback StandaloneService.
type Self struct {
	handlers *engine.Handlers
	strand   *engine.Strand
	life     engine.Lifecycle
	stopped  chan struct{}
}

// New builds a loopback engine.
func New() *Self {
	return &Self{handlers: engine.NewHandlers("loopback")}
}

func (s *Self) OnReady(h service.LifecycleHandler)      { s.handlers.OnReady(h) }
func (s *Self) OnConnect(h service.LifecycleHandler)    { s.handlers.OnConnect(h) }
func (s *Self) OnDisconnect(h service.LifecycleHandler) { s.handlers.OnDisconnect(h) }
func (s *Self) OnMessage(h service.MessageHandler)      { s.handlers.OnMessage(h) }

// Start posts the ready/connect announcement onto the strand and blocks
// until Stop closes it, so the strand's draining goroutine keeps running
// for the lifetime of the engine.
func (s *Self) Start() error {
	if err := s.life.Begin(service.ErrAlreadyRunning, service.ErrNotRestarted); err != nil {
		return err
	}
	s.strand = engine.NewStrand(StrandQueueDepth)
	s.stopped = make(chan struct{})

	ready := make(chan struct{})
	s.strand.Post(func() {
		s.handlers.FireReady(SelfID)
		s.handlers.FireConnect(SelfID)
		close(ready)
	})
	<-ready
	<-s.stopped
	return nil
}

func (s *Self) Stop() {
	if s.strand != nil {
		s.strand.Close()
	}
	if s.stopped != nil {
		select {
		case <-s.stopped:
		default:
			close(s.stopped)
		}
	}
	s.life.End()
}

func (s *Self) Restart() error {
	s.life.Reset()
	return nil
}

func (s *Self) Publish(payload []byte) error {
	s.strand.Post(func() { s.handlers.FireMessage(SelfID, payload, uint64(len(payload))) })
	return nil
}

func (s *Self) PublishExcept(except service.ID, payload []byte) error {
	if except == SelfID {
		return nil
	}
	return s.Publish(payload)
}

func (s *Self) Send(id service.ID, payload []byte) error {
	if id != SelfID {
		return nil
	}
	return s.Publish(payload)
}

func (s *Self) SendMulti(ids []service.ID, payload []byte) error {
	for _, id := range ids {
		if id == SelfID {
			return s.Publish(payload)
		}
	}
	return nil
}
