package codec

// Consume decodes one T from the head of *data using c, then advances
// *data and shrinks *size by the bytes consumed. Grounded on
// original_source/.../consume.hpp's cursor-advancing consume<T>.
//
// Consume of a T that would need more bytes than *size holds is a
// programming error: per spec.md §4.1 this is a low-level primitive and
// the function does not defend against it, matching the original's
// documented undefined behavior at this layer. Callers that accept
// untrusted input must bounds-check before calling Consume; the
// transports deliver payloads without decoding them, and handler.Map
// passes a received payload to Consume without checking its length.
func Consume[T any](data *[]byte, size *uint64, c Codec[T]) T {
	var probe T
	n := c.Size(probe)
	if n == 0 {
		// Width-independent codecs (e.g. String) decode from everything
		// that remains; recompute against the live buffer.
		n = *size
	}
	v := c.Deserialize((*data)[:n], n)
	*data = (*data)[n:]
	*size -= n
	return v
}

// ConsumeN decodes one T from the head of *data using exactly n bytes,
// then advances the cursor by n. Use this instead of Consume for codecs
// whose width is not recoverable from a zero value — fixed-size arrays
// built with NewArrayCodec in particular, where Size(nil) is ambiguous
// with the whole-buffer string convention.
func ConsumeN[T any](data *[]byte, size *uint64, c Codec[T], n uint64) T {
	v := c.Deserialize((*data)[:n], n)
	*data = (*data)[n:]
	*size -= n
	return v
}
