// Package framing implements the stream transport's wire framing:
// writes are length-prefixed and serialized through a FIFO queue so
// concurrent callers never interleave two messages' bytes on one
// connection (spec.md §4.6.1); reads accumulate a length-prefixed frame
// before dispatch.
//
// The write queue uses github.com/eapache/queue, the same dependency
// the teacher pulls in for its reactor batch queues
// (core/concurrency and internal/concurrency/lock_free_queue.go), here
// repurposed as the per-connection outbound FIFO.
package framing

import (
	"encoding/binary"
	"io"
	"sync"

	"github.com/eapache/queue"
)

// HeaderSize is the length of the little-endian u64 frame header
// spec.md §3 and §6 specify for the stream transport.
const HeaderSize = 8

// Writer serializes concurrent writers onto one net.Conn (or any
// io.Writer) in submission order, one goroutine draining a FIFO queue.
type Writer struct {
	mu     sync.Mutex
	q      *queue.Queue
	notify chan struct{}
	done   chan struct{}
	dst    io.Writer
	onErr  func(error)
}

// NewWriter starts a writer goroutine flushing frames to dst in the
// order they were enqueued. onErr is invoked (once) with the first
// write error observed; the writer goroutine exits after that.
func NewWriter(dst io.Writer, onErr func(error)) *Writer {
	w := &Writer{
		q:      queue.New(),
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
		dst:    dst,
		onErr:  onErr,
	}
	go w.loop()
	return w
}

// Enqueue appends a length-prefixed frame for payload to the write
// queue and returns immediately; it never blocks on I/O.
func (w *Writer) Enqueue(payload []byte) {
	frame := make([]byte, HeaderSize+len(payload))
	binary.LittleEndian.PutUint64(frame, uint64(len(payload)))
	copy(frame[HeaderSize:], payload)

	w.mu.Lock()
	w.q.Add(frame)
	w.mu.Unlock()

	select {
	case w.notify <- struct{}{}:
	default:
	}
}

func (w *Writer) loop() {
	for {
		w.mu.Lock()
		var frame []byte
		if w.q.Length() > 0 {
			frame = w.q.Remove().([]byte)
		}
		w.mu.Unlock()

		if frame == nil {
			select {
			case <-w.notify:
				continue
			case <-w.done:
				return
			}
		}

		if _, err := w.dst.Write(frame); err != nil {
			if w.onErr != nil {
				w.onErr(err)
			}
			return
		}
	}
}

// Close stops the writer goroutine once its queue is empty: frames
// already queued are still written to dst first, and fail if dst has
// been closed. spec.md §5 promises no completion notification for
// pending writes on Stop.
func (w *Writer) Close() {
	select {
	case <-w.done:
	default:
		close(w.done)
	}
}
