package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/momentics/nilservice/codec"
	"github.com/momentics/nilservice/httpserver"
	"github.com/momentics/nilservice/service"
)

var broadcastInterval time.Duration

var broadcastCmd = &cobra.Command{
	Use:   "broadcast",
	Short: "Host a websocket route on an HTTP(S) server and tick a counter to every connected peer",
	Args:  cobra.NoArgs,
	RunE:  runBroadcast,
}

func init() {
	broadcastCmd.Flags().DurationVar(&broadcastInterval, "interval", time.Second, "tick interval")
	rootCmd.AddCommand(broadcastCmd)
}

func runBroadcast(_ *cobra.Command, _ []string) error {
	// A non-empty --cert-dir turns this into the https-server variant of
	// spec.md §6; NewWebService loads the cert/key/dh triplet through
	// tlsconfig.Watcher.
	web, err := httpserver.NewWebService(httpserver.Options{Host: cfg.Host, Port: cfg.Port, CertDir: cfg.CertDir})
	if err != nil {
		return err
	}

	route, err := web.UseWS(cfg.Route)
	if err != nil {
		return err
	}
	installLifecycleLogging(route, "[broadcast]")
	route.OnMessage(func(id service.ID, data []byte, length uint64) {
		fmt.Printf("[broadcast] recv from %s (%d bytes)\n", id, length)
	})

	web.OnGet("/healthz", func(tx service.Transaction) {
		tx.SetContentType("text/plain")
		tx.Send([]byte("ok\n"))
	})

	errCh := make(chan error, 1)
	go func() { errCh <- web.Start() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var tick uint64
	ticker := time.NewTicker(broadcastInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			payload := codec.Concat(codec.Field(codec.Uint64, tick))
			if err := route.Publish(payload); err != nil {
				fmt.Printf("[broadcast] publish error: %v\n", err)
			}
			tick++
		case <-sigCh:
			web.Stop()
			return <-errCh
		case err := <-errCh:
			return err
		}
	}
}
