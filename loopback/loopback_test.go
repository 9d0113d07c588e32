package loopback_test

import (
	"testing"
	"time"

	"github.com/momentics/nilservice/loopback"
	"github.com/momentics/nilservice/service"
)

func TestSelfReadyConnectMessage(t *testing.T) {
	self := loopback.New()

	ready := make(chan service.ID, 1)
	connect := make(chan service.ID, 1)
	message := make(chan string, 1)

	self.OnReady(func(id service.ID) { ready <- id })
	self.OnConnect(func(id service.ID) { connect <- id })
	self.OnMessage(func(id service.ID, data []byte, length uint64) { message <- string(data) })

	go self.Start()
	defer self.Stop()

	select {
	case id := <-ready:
		if id != loopback.SelfID {
			t.Fatalf("ready id = %q, want %q", id, loopback.SelfID)
		}
	case <-time.After(time.Second):
		t.Fatal("never became ready")
	}

	select {
	case id := <-connect:
		if id != loopback.SelfID {
			t.Fatalf("connect id = %q, want %q", id, loopback.SelfID)
		}
	case <-time.After(time.Second):
		t.Fatal("never connected")
	}

	if err := self.Publish([]byte("hello")); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	select {
	case got := <-message:
		if got != "hello" {
			t.Fatalf("message = %q, want %q", got, "hello")
		}
	case <-time.After(time.Second):
		t.Fatal("never received published message")
	}
}

func TestSelfPublishExceptAndSend(t *testing.T) {
	self := loopback.New()
	message := make(chan string, 4)
	self.OnMessage(func(id service.ID, data []byte, length uint64) { message <- string(data) })
	self.OnReady(func(service.ID) {})
	self.OnConnect(func(service.ID) {})

	go self.Start()
	defer self.Stop()

	time.Sleep(10 * time.Millisecond)

	if err := self.PublishExcept(loopback.SelfID, []byte("skip")); err != nil {
		t.Fatalf("PublishExcept: %v", err)
	}
	if err := self.Send("someone-else", []byte("skip")); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := self.Send(loopback.SelfID, []byte("deliver")); err != nil {
		t.Fatalf("Send: %v", err)
	}

	select {
	case got := <-message:
		if got != "deliver" {
			t.Fatalf("message = %q, want %q", got, "deliver")
		}
	case <-time.After(time.Second):
		t.Fatal("expected exactly one delivered message")
	}

	select {
	case got := <-message:
		t.Fatalf("unexpected extra message %q", got)
	case <-time.After(50 * time.Millisecond):
	}
}
