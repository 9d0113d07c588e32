package datagram_test

import (
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/momentics/nilservice/datagram"
	"github.com/momentics/nilservice/service"
)

func TestDatagramHeartbeat(t *testing.T) {
	srv, err := datagram.NewServer(datagram.Options{
		Host:    "127.0.0.1",
		Port:    0,
		Timeout: 150 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}

	srvReady := make(chan service.ID, 1)
	srvConnect := make(chan service.ID, 1)
	srvDisconnect := make(chan service.ID, 1)
	srvMessage := make(chan string, 1)

	srv.OnReady(func(id service.ID) { srvReady <- id })
	srv.OnConnect(func(id service.ID) { srvConnect <- id })
	srv.OnDisconnect(func(id service.ID) { srvDisconnect <- id })
	srv.OnMessage(func(id service.ID, data []byte, length uint64) {
		srvMessage <- string(data)
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

	cli, err := datagram.NewClient(datagram.Options{
		Host:    host,
		Port:    port,
		Timeout: 150 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	cliConnect := make(chan service.ID, 1)
	cli.OnConnect(func(id service.ID) { cliConnect <- id })

	go cli.Start()
	defer cli.Stop()

	select {
	case <-srvConnect:
	case <-time.After(2 * time.Second):
		t.Fatal("server never saw client connect")
	}
	select {
	case <-cliConnect:
	case <-time.After(2 * time.Second):
		t.Fatal("client never saw server reply")
	}

	if err := cli.Publish([]byte("hello")); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	select {
	case got := <-srvMessage:
		if got != "hello" {
			t.Fatalf("got message %q, want %q", got, "hello")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server never received user message")
	}

	cli.Stop()

	select {
	case <-srvDisconnect:
	case <-time.After(2 * time.Second):
		t.Fatal("server never saw client disconnect after ping loop stopped")
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
