// Package service defines the transport-agnostic contracts every engine
// in this module implements: Runnable, Messaging, Observable and their
// compositions Service, StandaloneService and WebService.
//
// Author: momentics <momentics@gmail.com>
package service

// ID is the textual identity of a peer. For network transports it is the
// remote endpoint's "host:port". For the loopback engine it is always
// SelfID. IDs are immutable for the life of a connection and are never
// mixed across protocols within a single engine.
type ID string

// SelfID is the constant peer ID used by the loopback engine.
const SelfID ID = "self"

func (id ID) String() string { return string(id) }
