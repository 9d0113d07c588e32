package metrics_test

import (
	"testing"

	"github.com/momentics/nilservice/metrics"
)

func TestRegistryObservations(t *testing.T) {
	reg := metrics.NewRegistry("nilservice_test")
	reg.ObserveMessageIn("stream-server", 10)
	reg.ObserveMessageOut("stream-server", 4)
	reg.SetConnectedPeers("stream-server", 3)

	families, err := reg.Gatherer().Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	if len(families) == 0 {
		t.Fatal("expected at least one registered metric family")
	}
}
