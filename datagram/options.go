// Package datagram implements the connectionless, best-effort transport
// of spec.md §4.7: one-byte-tagged UDP packets with a heartbeat-based
// liveness state machine on both server and client sides.
package datagram

import (
	"time"

	validator "github.com/go-playground/validator/v10"
)

// Options configures a datagram-server or datagram-client engine, per
// spec.md §6's option table.
type Options struct {
	Host string `validate:"required"`
	Port int    `validate:"min=0,max=65535"`

	// Buffer sizes the per-packet read buffer. Zero uses DefaultBuffer.
	Buffer int `validate:"gte=0"`

	// Timeout is the liveness window. Zero uses DefaultTimeout. The
	// client pings at Timeout/2 and expects a reply within Timeout; the
	// server disconnects a peer after Timeout without a keepalive.
	Timeout time.Duration `validate:"gte=0"`
}

// DefaultBuffer and DefaultTimeout match spec.md §6's documented defaults.
const (
	DefaultBuffer  = 1024
	DefaultTimeout = 2 * time.Second
)

var v = validator.New()

// Validate checks Options against its struct tags before any socket is
// allocated.
func (o Options) Validate() error {
	return v.Struct(o)
}

func (o Options) bufferSize() int {
	if o.Buffer > 0 {
		return o.Buffer
	}
	return DefaultBuffer
}

func (o Options) timeout() time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	return DefaultTimeout
}
