// Package handler adapts the heterogeneous callback shapes a caller may
// supply into the canonical forms service.MessageHandler and
// service.LifecycleHandler (spec.md §4.2).
//
// The C++ original detects a user lambda's arity and argument types at
// compile time via template metaprogramming (spec.md §9, DESIGN NOTES
// "Compile-time argument-shape detection"). Go has no such reflection
// over closures, so this package follows option (a) from that section:
// one small adaptor constructor per accepted shape. The user picks the
// shape by calling the matching constructor, which makes the "ambiguous
// cases must fail at registration" rule unrepresentable rather than
// something to detect at runtime.
package handler

import (
	"github.com/momentics/nilservice/codec"
	"github.com/momentics/nilservice/service"
)

// IDBytes passes the decoded id, payload and length through unchanged.
// This is the canonical shape; every other adaptor in this file reduces
// to it.
func IDBytes(fn func(id service.ID, data []byte, length uint64)) service.MessageHandler {
	return service.MessageHandler(fn)
}

// IDOnly ignores the payload, observing only which peer sent a message.
func IDOnly(fn func(id service.ID)) service.MessageHandler {
	return func(id service.ID, _ []byte, _ uint64) { fn(id) }
}

// BytesOnly ignores the peer id.
func BytesOnly(fn func(data []byte, length uint64)) service.MessageHandler {
	return func(_ service.ID, data []byte, length uint64) { fn(data, length) }
}

// NoArgs ignores both the id and the payload.
func NoArgs(fn func()) service.MessageHandler {
	return func(service.ID, []byte, uint64) { fn() }
}

// Typed deserializes the whole payload as T via c and passes it with the
// sender's id. Per spec.md §4.2, T must have a codec — here that is
// enforced statically by requiring one as an argument.
func Typed[T any](c codec.Codec[T], fn func(id service.ID, v T)) service.MessageHandler {
	return func(id service.ID, data []byte, length uint64) {
		fn(id, c.Deserialize(data, length))
	}
}

// TypedOnly deserializes the whole payload as T via c, ignoring the id.
func TypedOnly[T any](c codec.Codec[T], fn func(v T)) service.MessageHandler {
	return func(_ service.ID, data []byte, length uint64) {
		fn(c.Deserialize(data, length))
	}
}

// Ready is the identity adaptor for lifecycle callbacks of shape (ID);
// provided for symmetry with the message adaptors above.
func Ready(fn func(id service.ID)) service.LifecycleHandler {
	return service.LifecycleHandler(fn)
}

// ReadyNoArgs adapts a lifecycle callback of shape () to the canonical
// (ID) form, discarding the id.
func ReadyNoArgs(fn func()) service.LifecycleHandler {
	return func(service.ID) { fn() }
}
