package codec

import "encoding/binary"

// intCodec implements Codec for any fixed-width integer type via a pair
// of pure functions, avoiding one boilerplate type per width.
type intCodec[T ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~int8 | ~int16 | ~int32 | ~int64] struct {
	width uint64
	put   func(dst []byte, v T)
	get   func(src []byte) T
}

func (c intCodec[T]) Size(T) uint64 { return c.width }

func (c intCodec[T]) Serialize(dst []byte, v T) uint64 {
	c.put(dst, v)
	return c.width
}

func (c intCodec[T]) Deserialize(src []byte, n uint64) T {
	return c.get(src)
}

// Uint8, Uint16, ... are the built-in codecs for native byte order
// integers, matching spec.md §4.1 ("written in native byte order as
// contiguous bytes of their width"). Native order here is little-endian,
// the wire order spec.md §3 mandates for the stream length prefix.
var (
	Uint8 Codec[uint8] = intCodec[uint8]{
		width: 1,
		put:   func(dst []byte, v uint8) { dst[0] = v },
		get:   func(src []byte) uint8 { return src[0] },
	}
	Uint16 Codec[uint16] = intCodec[uint16]{
		width: 2,
		put:   func(dst []byte, v uint16) { binary.LittleEndian.PutUint16(dst, v) },
		get:   func(src []byte) uint16 { return binary.LittleEndian.Uint16(src) },
	}
	Uint32 Codec[uint32] = intCodec[uint32]{
		width: 4,
		put:   func(dst []byte, v uint32) { binary.LittleEndian.PutUint32(dst, v) },
		get:   func(src []byte) uint32 { return binary.LittleEndian.Uint32(src) },
	}
	Uint64 Codec[uint64] = intCodec[uint64]{
		width: 8,
		put:   func(dst []byte, v uint64) { binary.LittleEndian.PutUint64(dst, v) },
		get:   func(src []byte) uint64 { return binary.LittleEndian.Uint64(src) },
	}
	Int8 Codec[int8] = intCodec[int8]{
		width: 1,
		put:   func(dst []byte, v int8) { dst[0] = byte(v) },
		get:   func(src []byte) int8 { return int8(src[0]) },
	}
	Int16 Codec[int16] = intCodec[int16]{
		width: 2,
		put:   func(dst []byte, v int16) { binary.LittleEndian.PutUint16(dst, uint16(v)) },
		get:   func(src []byte) int16 { return int16(binary.LittleEndian.Uint16(src)) },
	}
	Int32 Codec[int32] = intCodec[int32]{
		width: 4,
		put:   func(dst []byte, v int32) { binary.LittleEndian.PutUint32(dst, uint32(v)) },
		get:   func(src []byte) int32 { return int32(binary.LittleEndian.Uint32(src)) },
	}
	Int64 Codec[int64] = intCodec[int64]{
		width: 8,
		put:   func(dst []byte, v int64) { binary.LittleEndian.PutUint64(dst, uint64(v)) },
		get:   func(src []byte) int64 { return int64(binary.LittleEndian.Uint64(src)) },
	}
)

// stringCodec implements Codec[string]. Per spec.md §4.1 and the Open
// Question in spec.md §9, a string consumes the entire remaining buffer
// on deserialization: it carries no length prefix of its own, so it must
// be the last field of any concat'd payload (or be preceded by a
// manually-prefixed length, which is the caller's responsibility).
type stringCodec struct{}

func (stringCodec) Size(v string) uint64 { return uint64(len(v)) }

func (stringCodec) Serialize(dst []byte, v string) uint64 {
	copy(dst, v)
	return uint64(len(v))
}

func (stringCodec) Deserialize(src []byte, n uint64) string {
	return string(src[:n])
}

// String is the built-in whole-buffer string codec.
var String Codec[string] = stringCodec{}

// arrayCodec adapts an element codec into a Codec for a fixed-size Go array,
// encoding element-wise as spec.md §4.1 requires.
type arrayCodec[T any, A ~[]T] struct {
	elem Codec[T]
	n    int
}

// NewArrayCodec builds a fixed-size array codec of n elements of elem.
// A is expressed as a slice type at the codec boundary (Go generics
// cannot parametrize array length), so callers pass a slice of n
// elements. The length is not checked: Size and Serialize cover every
// element of the slice they are given, Deserialize decodes as many
// elements as fit in n bytes, and n is only a capacity hint.
func NewArrayCodec[T any](elem Codec[T], n int) Codec[[]T] {
	return arrayCodec[T, []T]{elem: elem, n: n}
}

func (c arrayCodec[T, A]) Size(v A) uint64 {
	var total uint64
	for _, e := range v {
		total += c.elem.Size(e)
	}
	return total
}

func (c arrayCodec[T, A]) Serialize(dst []byte, v A) uint64 {
	var off uint64
	for _, e := range v {
		off += c.elem.Serialize(dst[off:], e)
	}
	return off
}

func (c arrayCodec[T, A]) Deserialize(src []byte, n uint64) A {
	out := make([]T, 0, c.n)
	var off uint64
	for off < n {
		// Width is recovered by re-measuring a zero value; built-in
		// element codecs in this package are fixed-width, which holds
		// for every element codec this constructor is meant to wrap.
		var zero T
		w := c.elem.Size(zero)
		out = append(out, c.elem.Deserialize(src[off:off+w], w))
		off += w
	}
	return out
}
