package framing

import (
	"encoding/binary"
	"io"
)

// ReadFrame blocks until a complete length-prefixed frame is available
// on r, then returns its payload. It implements spec.md §4.6.1 steps 1-4:
// read the 8-byte header, read exactly that many payload bytes, and
// leave the stream positioned at the next frame's header.
//
// A truncated header or a payload cut short by EOF/reset is reported as
// the underlying io error (typically io.EOF or io.ErrUnexpectedEOF);
// callers treat that as a framing error per spec.md §7 and close the
// connection without delivering a partial message.
func ReadFrame(r io.Reader) ([]byte, error) {
	var header [HeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	n := binary.LittleEndian.Uint64(header[:])

	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return payload, nil
}
