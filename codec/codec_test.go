package codec_test

import (
	"testing"

	"github.com/momentics/nilservice/codec"
)

func TestBuiltinRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		run  func(t *testing.T)
	}{
		{"uint32", func(t *testing.T) {
			v := uint32(0xdeadbeef)
			buf := codec.Of(codec.Uint32, v)
			if len(buf) != 4 {
				t.Fatalf("size = %d, want 4", len(buf))
			}
			got := codec.Uint32.Deserialize(buf, uint64(len(buf)))
			if got != v {
				t.Fatalf("got %x, want %x", got, v)
			}
		}},
		{"int64", func(t *testing.T) {
			v := int64(-12345)
			buf := codec.Of(codec.Int64, v)
			got := codec.Int64.Deserialize(buf, uint64(len(buf)))
			if got != v {
				t.Fatalf("got %d, want %d", got, v)
			}
		}},
		{"string", func(t *testing.T) {
			v := "hello"
			buf := codec.Of(codec.String, v)
			got := codec.String.Deserialize(buf, uint64(len(buf)))
			if got != v {
				t.Fatalf("got %q, want %q", got, v)
			}
		}},
	}
	for _, c := range cases {
		t.Run(c.name, c.run)
	}
}

func TestConcatAndConsume(t *testing.T) {
	buf := codec.Concat(
		codec.Field(codec.Uint32, uint32(0)),
		codec.Field(codec.String, "hello"),
	)
	if len(buf) != 9 {
		t.Fatalf("len = %d, want 9", len(buf))
	}

	data := buf
	size := uint64(len(buf))
	tag := codec.Consume(&data, &size, codec.Uint32)
	if tag != 0 {
		t.Fatalf("tag = %d, want 0", tag)
	}
	rest := codec.Consume(&data, &size, codec.String)
	if rest != "hello" {
		t.Fatalf("rest = %q, want hello", rest)
	}
	if size != 0 {
		t.Fatalf("size = %d, want 0", size)
	}
}

func TestArrayCodec(t *testing.T) {
	c := codec.NewArrayCodec(codec.Uint16, 3)
	v := []uint16{1, 2, 3}
	buf := make([]byte, c.Size(v))
	n := c.Serialize(buf, v)
	if n != 6 {
		t.Fatalf("n = %d, want 6", n)
	}
	got := c.Deserialize(buf, n)
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Fatalf("got %v, want [1 2 3]", got)
	}
}
