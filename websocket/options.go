package websocket

import (
	"crypto/tls"

	validator "github.com/go-playground/validator/v10"
)

// Options configures a websocket-server or websocket-client engine, per
// spec.md §6's option table plus the route path a server listens on / a
// client connects to.
type Options struct {
	Host string `validate:"required"`
	Port int    `validate:"min=0,max=65535"`

	// Path is the HTTP upgrade route. Defaults to "/".
	Path string `validate:"-"`

	// Buffer is validated but not used: frames are read at their own
	// length, so no per-connection read buffer of this capacity exists.
	Buffer int `validate:"gte=0"`

	// TLSConfig, if non-nil, serves/dials wss:// instead of ws://.
	TLSConfig *tls.Config `validate:"-"`

	// CertDir, for a wss-server, names a directory containing cert.pem,
	// key.pem and dh.pem (spec.md §6). NewServer loads and hot-reloads
	// the certificate from this directory through tlsconfig.Watcher when
	// TLSConfig is left nil. Unused by clients — a wss-client sets
	// TLSConfig directly, per spec.md §6's option table.
	CertDir string `validate:"-"`
}

const DefaultBuffer = 4096

var v = validator.New()

func (o Options) Validate() error {
	return v.Struct(o)
}

func (o Options) path() string {
	if o.Path == "" {
		return "/"
	}
	return o.Path
}

func (o Options) bufferSize() int {
	if o.Buffer > 0 {
		return o.Buffer
	}
	return DefaultBuffer
}
