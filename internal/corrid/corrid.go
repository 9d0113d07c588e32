// Package corrid generates internal correlation ids for log lines that
// follow one peer across its connect → message → disconnect lifecycle.
// These ids are never the public peer ID (which stays the transport's
// address-derived service.ID); they only disambiguate repeated log lines
// for the same address across reconnects.
package corrid

import uuid "github.com/hashicorp/go-uuid"

// New returns a fresh correlation id, or "" if the system's random
// source is unavailable (logging degrades gracefully; this never fails
// a connection).
func New() string {
	id, err := uuid.GenerateUUID()
	if err != nil {
		return ""
	}
	return id
}
