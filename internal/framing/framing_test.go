package framing_test

import (
	"bytes"
	"net"
	"testing"
	"time"

	"github.com/momentics/nilservice/internal/framing"
)

func TestReadFrameRoundTrip(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	w := framing.NewWriter(client, func(error) {})
	defer w.Close()
	w.Enqueue([]byte("ping"))

	server.SetReadDeadline(time.Now().Add(5 * time.Second))
	got, err := framing.ReadFrame(server)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if string(got) != "ping" {
		t.Fatalf("got %q, want ping", got)
	}
}

func TestReadFrameOrdering(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	w := framing.NewWriter(client, func(error) {})
	defer w.Close()
	w.Enqueue([]byte("first"))
	w.Enqueue([]byte("second"))

	server.SetReadDeadline(time.Now().Add(5 * time.Second))
	first, err := framing.ReadFrame(server)
	if err != nil || string(first) != "first" {
		t.Fatalf("first = %q, err=%v", first, err)
	}
	second, err := framing.ReadFrame(server)
	if err != nil || string(second) != "second" {
		t.Fatalf("second = %q, err=%v", second, err)
	}
}

func TestReadFrameTruncatedHeader(t *testing.T) {
	buf := bytes.NewReader([]byte{1, 2, 3})
	if _, err := framing.ReadFrame(buf); err == nil {
		t.Fatal("expected error on truncated header")
	}
}
