package handler_test

import (
	"testing"

	"github.com/momentics/nilservice/codec"
	"github.com/momentics/nilservice/handler"
	"github.com/momentics/nilservice/service"
)

func TestTagDispatch(t *testing.T) {
	var got0, got1 string
	h := handler.Map(codec.Uint32,
		handler.Mapping[uint32]{Tag: 0, Handler: handler.BytesOnly(func(data []byte, _ uint64) {
			got0 = string(data)
		})},
		handler.Mapping[uint32]{Tag: 1, Handler: handler.BytesOnly(func(data []byte, _ uint64) {
			got1 = string(data)
		})},
	)

	payload0 := codec.Concat(codec.Field(codec.Uint32, uint32(0)), codec.Field(codec.String, "a"))
	h(service.SelfID, payload0, uint64(len(payload0)))
	if got0 != "a" {
		t.Fatalf("got0 = %q, want a", got0)
	}

	payload1 := codec.Concat(codec.Field(codec.Uint32, uint32(1)), codec.Field(codec.String, "b"))
	h(service.SelfID, payload1, uint64(len(payload1)))
	if got1 != "b" {
		t.Fatalf("got1 = %q, want b", got1)
	}

	got0, got1 = "", ""
	payload7 := codec.Concat(codec.Field(codec.Uint32, uint32(7)), codec.Field(codec.String, "c"))
	h(service.SelfID, payload7, uint64(len(payload7)))
	if got0 != "" || got1 != "" {
		t.Fatalf("unmatched tag invoked a handler: got0=%q got1=%q", got0, got1)
	}
}

func TestIDOnlyAdaptor(t *testing.T) {
	var seen service.ID
	h := handler.IDOnly(func(id service.ID) { seen = id })
	h("peer-1", []byte("ignored"), 7)
	if seen != "peer-1" {
		t.Fatalf("seen = %q, want peer-1", seen)
	}
}
