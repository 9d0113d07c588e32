package stream_test

import (
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/momentics/nilservice/service"
	"github.com/momentics/nilservice/stream"
)

func TestStreamEcho(t *testing.T) {
	srv, err := stream.NewServer(stream.Options{Host: "127.0.0.1", Port: 0})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}

	srvReady := make(chan service.ID, 1)
	srv.OnReady(func(id service.ID) { srvReady <- id })
	srv.OnMessage(func(id service.ID, data []byte, length uint64) {
		if string(data) != "ping" {
			return
		}
		_ = srv.Send(id, []byte("pong"))
	})

	go srv.Start()
	defer srv.Stop()

	var addr service.ID
	select {
	case addr = <-srvReady:
	case <-time.After(2 * time.Second):
		t.Fatal("server never became ready")
	}

	host, port := splitHostPort(t, string(addr))

	cli, err := stream.NewClient(stream.Options{Host: host, Port: port})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	cli.OnConnect(func(id service.ID) {
		_ = cli.Publish([]byte("ping"))
	})
	cli.OnMessage(func(id service.ID, data []byte, length uint64) {
		if string(data) == "pong" {
			wg.Done()
		}
	})

	go cli.Start()
	defer cli.Stop()

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("did not receive pong")
	}
}

func splitHostPort(t *testing.T, addr string) (string, int) {
	t.Helper()
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatalf("SplitHostPort(%q): %v", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("Atoi(%q): %v", portStr, err)
	}
	return host, port
}
