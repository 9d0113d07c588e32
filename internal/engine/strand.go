package engine

// Strand is a single-threaded serialization domain: work posted to it
// runs FIFO, one task at a time, on one dedicated goroutine. This is the
// Go realization of spec.md §5's "strand" — the teacher's equivalent is
// the single accept-loop goroutine plus per-connection goroutines in
// server/server.go, generalized here so every engine's lifecycle and
// messaging events funnel through one serialization point regardless of
// transport.
type Strand struct {
	tasks chan func()
	done  chan struct{}
}

// NewStrand starts a strand with the given task queue depth.
func NewStrand(queueDepth int) *Strand {
	s := &Strand{
		tasks: make(chan func(), queueDepth),
		done:  make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *Strand) run() {
	for {
		select {
		case fn := <-s.tasks:
			fn()
		case <-s.done:
			// Drain whatever was already queued before exiting, so a
			// Publish racing with Stop still reaches peers that were
			// connected when it was posted.
			for {
				select {
				case fn := <-s.tasks:
					fn()
				default:
					return
				}
			}
		}
	}
}

// Post enqueues fn for execution on the strand goroutine. Safe to call
// from any goroutine, including concurrently. A task posted after Close
// either runs during the final drain or is silently dropped: spec.md §5
// promises no completion notification for pending writes, so dropping
// is within contract.
func (s *Strand) Post(fn func()) {
	select {
	case s.tasks <- fn:
	case <-s.done:
	}
}

// Close stops the strand goroutine after it drains its current queue.
func (s *Strand) Close() {
	select {
	case <-s.done:
		// already closed
	default:
		close(s.done)
	}
}
