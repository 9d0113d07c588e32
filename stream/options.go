// Package stream implements the ordered, reliable, connection-oriented
// transport of spec.md §4.6: a length-prefixed framer over TCP (with an
// optional TLS wrapping) for both the server and client roles.
package stream

import (
	"crypto/tls"

	validator "github.com/go-playground/validator/v10"
)

// Options configures a stream-server or stream-client engine, per
// spec.md §6's option table.
type Options struct {
	Host string `validate:"required"`
	Port int    `validate:"min=0,max=65535"`

	// Buffer is validated but not used: the read path allocates each
	// frame's payload at its own length, so no per-connection read
	// buffer of this capacity exists.
	Buffer int `validate:"gte=0"`

	// TLSConfig, when non-nil, wraps accepted/dialed connections with
	// TLS. It is not exposed as a separate "tls-stream" transport
	// namespace (spec.md only names wss, not a bare TLS stream, as a
	// distinct transport); websocket/ has its own TLSConfig and does not
	// use this package.
	TLSConfig *tls.Config `validate:"-"`
}

// DefaultBuffer is the value bufferSize reports when Options.Buffer is
// left at zero; like Buffer, it does not size any read buffer.
const DefaultBuffer = 4096

var v = validator.New()

// Validate checks Options against its struct tags before any socket is
// allocated, per SPEC_FULL.md §6.
func (o Options) Validate() error {
	return v.Struct(o)
}

func (o Options) bufferSize() int {
	if o.Buffer > 0 {
		return o.Buffer
	}
	return DefaultBuffer
}
