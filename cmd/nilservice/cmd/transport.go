package cmd

import (
	"fmt"
	"time"

	"github.com/momentics/nilservice/datagram"
	"github.com/momentics/nilservice/loopback"
	"github.com/momentics/nilservice/service"
	"github.com/momentics/nilservice/stream"
	"github.com/momentics/nilservice/websocket"
)

// buildEngine constructs the StandaloneService named by transport/mode
// from the bound Config, mirroring the sandbox's per-transport `create_*`
// factory functions.
func buildEngine(transport, mode string) (service.StandaloneService, error) {
	switch transport {
	case "self":
		return loopback.New(), nil

	case "stream":
		opts := stream.Options{Host: cfg.Host, Port: cfg.Port, Buffer: cfg.Buffer}
		if mode == "server" {
			return stream.NewServer(opts)
		}
		return stream.NewClient(opts)

	case "datagram":
		opts := datagram.Options{Host: cfg.Host, Port: cfg.Port, Buffer: cfg.Buffer}
		if cfg.Timeout > 0 {
			opts.Timeout = time.Duration(cfg.Timeout) * time.Second
		}
		if mode == "server" {
			return datagram.NewServer(opts)
		}
		return datagram.NewClient(opts)

	case "websocket":
		opts := websocket.Options{Host: cfg.Host, Port: cfg.Port, Path: cfg.Route, Buffer: cfg.Buffer}
		if mode == "server" {
			// A non-empty --cert-dir turns this into the wss-server
			// variant of spec.md §6; NewServer loads the cert/key/dh
			// triplet through tlsconfig.Watcher.
			opts.CertDir = cfg.CertDir
			return websocket.NewServer(opts)
		}
		return websocket.NewClient(opts)

	default:
		return nil, fmt.Errorf("unknown transport %q (want self, stream, datagram, websocket)", transport)
	}
}

// installLifecycleLogging wires the ready/connect/disconnect logging the
// sandbox's `handlers` template function installs on every service.
func installLifecycleLogging(svc service.Service, label string) {
	svc.OnReady(func(id service.ID) { fmt.Printf("%s local        : %s\n", label, id) })
	svc.OnConnect(func(id service.ID) { fmt.Printf("%s connected    : %s\n", label, id) })
	svc.OnDisconnect(func(id service.ID) { fmt.Printf("%s disconnected : %s\n", label, id) })
}
