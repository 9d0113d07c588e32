package codec

// field erases a (value, codec) pair so Concat can mix heterogeneous
// types in one call, mirroring original_source/.../concat.hpp's
// variadic template.
type field interface {
	size() uint64
	write(dst []byte) uint64
}

type typedField[T any] struct {
	codec Codec[T]
	value T
}

func (f typedField[T]) size() uint64 { return f.codec.Size(f.value) }

func (f typedField[T]) write(dst []byte) uint64 { return f.codec.Serialize(dst, f.value) }

// Field builds one Concat argument from a value and its codec.
func Field[T any](c Codec[T], v T) field { //nolint:revive // intentionally unexported return, constructed only via Field
	return typedField[T]{codec: c, value: v}
}

// Concat computes the sum of each field's size, allocates a buffer of
// exactly that size, serializes every field contiguously into it, and
// returns the buffer. Matches spec.md §4.1 and §8's codec laws.
func Concat(fields ...field) []byte {
	var total uint64
	for _, f := range fields {
		total += f.size()
	}
	buf := make([]byte, total)
	var off uint64
	for _, f := range fields {
		off += f.write(buf[off:])
	}
	return buf
}
