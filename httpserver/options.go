// Package httpserver implements the HTTP(S) web service engine of
// spec.md §4.9: a Runnable that dispatches inbound requests either to a
// websocket upgrade registered via UseWS or a plain GET handler
// registered via OnGet.
package httpserver

import (
	"crypto/tls"
	"time"

	validator "github.com/go-playground/validator/v10"
)

// Options configures a WebService, per spec.md §6's option table.
type Options struct {
	Host string `validate:"required"`
	Port int    `validate:"min=0,max=65535"`

	// ReadTimeout bounds how long an inbound HTTP socket may sit without
	// completing its request line/headers before it is closed without a
	// response. Zero uses DefaultReadTimeout (60s, per spec.md §4.9).
	ReadTimeout time.Duration `validate:"gte=0"`

	// TLSConfig, if non-nil, serves https/wss instead of http/ws.
	TLSConfig *tls.Config `validate:"-"`

	// CertDir, for an https-server, names a directory containing
	// cert.pem, key.pem and dh.pem (spec.md §6). NewWebService loads and
	// hot-reloads the certificate from this directory through
	// tlsconfig.Watcher and installs it as TLSConfig when TLSConfig is
	// left nil.
	CertDir string `validate:"-"`

	// ServerBanner is sent as the Server response header. Defaults to
	// DefaultServerBanner.
	ServerBanner string `validate:"-"`

	// CORSAllowOrigin is echoed as Access-Control-Allow-Origin on every
	// response. Defaults to DefaultCORSAllowOrigin ("*"), per spec.md
	// §6's "CORS headers permit any origin and the GET method."
	CORSAllowOrigin string `validate:"-"`
}

const (
	DefaultReadTimeout     = 60 * time.Second
	DefaultServerBanner    = "nilservice"
	DefaultCORSAllowOrigin = "*"
)

var v = validator.New()

func (o Options) Validate() error {
	return v.Struct(o)
}

func (o Options) readTimeout() time.Duration {
	if o.ReadTimeout > 0 {
		return o.ReadTimeout
	}
	return DefaultReadTimeout
}

func (o Options) serverBanner() string {
	if o.ServerBanner != "" {
		return o.ServerBanner
	}
	return DefaultServerBanner
}

func (o Options) corsAllowOrigin() string {
	if o.CORSAllowOrigin != "" {
		return o.CORSAllowOrigin
	}
	return DefaultCORSAllowOrigin
}
