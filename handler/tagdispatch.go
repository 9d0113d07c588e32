package handler

import (
	"github.com/momentics/nilservice/codec"
	"github.com/momentics/nilservice/service"
)

// Mapping binds one tag value to the handler that should receive the
// remainder of the payload when that tag is seen.
type Mapping[T comparable] struct {
	Tag     T
	Handler service.MessageHandler
}

// Map builds a composite MessageHandler that consumes a leading,
// codec-serialized tag of type T from the payload and dispatches the
// remainder to the mapping whose Tag compares equal. A tag with no
// matching mapping is silently dropped — no handler runs and no error
// is surfaced, matching spec.md §4.3 and the scenario in spec.md §8.5.
func Map[T comparable](c codec.Codec[T], mappings ...Mapping[T]) service.MessageHandler {
	byTag := make(map[T]service.MessageHandler, len(mappings))
	for _, m := range mappings {
		byTag[m.Tag] = m.Handler
	}
	return func(id service.ID, data []byte, length uint64) {
		rest := data
		size := length
		tag := codec.Consume(&rest, &size, c)
		h, ok := byTag[tag]
		if !ok {
			return
		}
		h(id, rest, size)
	}
}
