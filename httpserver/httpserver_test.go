package httpserver_test

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/momentics/nilservice/httpserver"
	"github.com/momentics/nilservice/service"
	"github.com/momentics/nilservice/websocket"
)

func TestWebServiceWSRouteEcho(t *testing.T) {
	srv, err := httpserver.NewWebService(httpserver.Options{Host: "127.0.0.1", Port: 0})
	if err != nil {
		t.Fatalf("NewWebService: %v", err)
	}
	route, err := srv.UseWS("/ws")
	if err != nil {
		t.Fatalf("UseWS: %v", err)
	}
	route.OnMessage(func(id service.ID, data []byte, length uint64) {
		if string(data) != "ping" {
			return
		}
		_ = route.Send(id, []byte("pong"))
	})

	go srv.Start()
	defer srv.Stop()
	addr := waitReady(t, srv)
	host, port := splitAddr(t, addr)

	cli, err := websocket.NewClient(websocket.Options{Host: host, Port: port, Path: "/ws"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	cli.OnConnect(func(id service.ID) { _ = cli.Publish([]byte("ping")) })
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
		t.Fatal("did not receive pong through httpserver ws route")
	}
}

func splitAddr(t *testing.T, addr string) (string, int) {
	t.Helper()
	idx := strings.LastIndex(addr, ":")
	if idx < 0 {
		t.Fatalf("malformed addr %q", addr)
	}
	port, err := strconv.Atoi(addr[idx+1:])
	if err != nil {
		t.Fatalf("Atoi: %v", err)
	}
	return addr[:idx], port
}

func TestWebServiceGetRoute(t *testing.T) {
	srv, err := httpserver.NewWebService(httpserver.Options{Host: "127.0.0.1", Port: 0})
	if err != nil {
		t.Fatalf("NewWebService: %v", err)
	}
	srv.OnGet("/hello", func(tx service.Transaction) {
		tx.SetContentType("text/plain")
		tx.Send([]byte("world"))
	})

	go srv.Start()
	defer srv.Stop()
	addr := waitReady(t, srv)

	resp, err := http.Get("http://" + addr + "/hello")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "world" {
		t.Fatalf("body = %q, want %q", body, "world")
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/plain" {
		t.Fatalf("Content-Type = %q, want text/plain", ct)
	}
	if banner := resp.Header.Get("Server"); banner != httpserver.DefaultServerBanner {
		t.Fatalf("Server = %q, want %q", banner, httpserver.DefaultServerBanner)
	}
}

func TestWebServiceUnknownRouteIs400(t *testing.T) {
	srv, err := httpserver.NewWebService(httpserver.Options{Host: "127.0.0.1", Port: 0})
	if err != nil {
		t.Fatalf("NewWebService: %v", err)
	}

	go srv.Start()
	defer srv.Stop()
	addr := waitReady(t, srv)

	resp, err := http.Get("http://" + addr + "/nope")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestWebServiceWSRouteWithoutUpgradeIs200Empty(t *testing.T) {
	srv, err := httpserver.NewWebService(httpserver.Options{Host: "127.0.0.1", Port: 0})
	if err != nil {
		t.Fatalf("NewWebService: %v", err)
	}
	if _, err := srv.UseWS("/ws"); err != nil {
		t.Fatalf("UseWS: %v", err)
	}

	go srv.Start()
	defer srv.Stop()
	addr := waitReady(t, srv)

	resp, err := http.Get("http://" + addr + "/ws")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if len(body) != 0 {
		t.Fatalf("body = %q, want empty", body)
	}
}

func waitReady(t *testing.T, srv *httpserver.WebService) string {
	t.Helper()
	select {
	case <-srv.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("server never became ready")
	}
	return srv.Addr()
}
