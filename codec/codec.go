// Package codec implements the size/serialize/deserialize triple of
// spec.md §4.1: built-in integer, string and fixed-array codecs, a
// cursor-consuming read model, and concat for building multi-field
// payloads. Grounded on original_source/src/publish/nil/service/codec.hpp,
// consume.hpp and concat.hpp, re-expressed with Go generics in place of
// C++ template specialization.
package codec

// Codec is the (size, serialize, deserialize) triple for a type T.
// Implementations must round-trip: Deserialize(dst, Size(v)) == v for
// dst produced by Serialize(dst, v).
type Codec[T any] interface {
	// Size returns the number of bytes Serialize will write for v.
	Size(v T) uint64
	// Serialize writes v into dst (which must be at least Size(v) bytes
	// long) and returns the number of bytes written.
	Serialize(dst []byte, v T) uint64
	// Deserialize decodes a T from the first n bytes of src.
	Deserialize(src []byte, n uint64) T
}

// Of returns v encoded with c in a freshly allocated, exactly-sized buffer.
func Of[T any](c Codec[T], v T) []byte {
	buf := make([]byte, c.Size(v))
	c.Serialize(buf, v)
	return buf
}
