package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/momentics/nilservice/metrics"
	"github.com/momentics/nilservice/service"
)

var (
	benchDuration   time.Duration
	benchPayload    int
	benchConcurrent int
)

// benchCmd drives one engine end-to-end for a fixed duration, publishing
// fixed-size payloads as fast as Publish will accept them and reporting
// throughput through a dedicated metrics.Registry — the CLI counterpart
// of benchmarks/performance_test.go's Go-benchmark-driven measurements,
// but run against a live client/server pair instead of in-process fakes.
var benchCmd = &cobra.Command{
	Use:   "bench <transport> <server|client>",
	Short: "Measure publish throughput for one engine over a fixed duration",
	Args:  cobra.ExactArgs(2),
	RunE:  runBench,
}

func init() {
	benchCmd.Flags().DurationVar(&benchDuration, "duration", 5*time.Second, "how long to drive the engine")
	benchCmd.Flags().IntVar(&benchPayload, "payload", 256, "payload size in bytes")
	benchCmd.Flags().IntVar(&benchConcurrent, "connections", 1, "how many peer connections to wait for before publishing begins")
	rootCmd.AddCommand(benchCmd)
}

func runBench(_ *cobra.Command, args []string) error {
	transport, mode := args[0], args[1]
	svc, err := buildEngine(transport, mode)
	if err != nil {
		return err
	}

	reg := metrics.NewRegistry("nilservice_bench")
	label := fmt.Sprintf("%s-%s", transport, mode)

	connected := make(chan struct{}, benchConcurrent)
	svc.OnConnect(func(service.ID) {
		select {
		case connected <- struct{}{}:
		default:
		}
	})
	svc.OnMessage(func(_ service.ID, data []byte, length uint64) {
		reg.ObserveMessageIn(label, int(length))
	})

	errCh := make(chan error, 1)
	go func() { errCh <- svc.Start() }()

	for i := 0; i < benchConcurrent; i++ {
		select {
		case <-connected:
		case err := <-errCh:
			return err
		case <-time.After(10 * time.Second):
			fmt.Println("bench: timed out waiting for peers, publishing anyway")
			goto publish
		}
	}

publish:
	payload := make([]byte, benchPayload)
	var sent int64
	deadline := time.Now().Add(benchDuration)
	for time.Now().Before(deadline) {
		if err := svc.Publish(payload); err != nil {
			break
		}
		reg.ObserveMessageOut(label, len(payload))
		sent++
	}

	svc.Stop()
	<-errCh

	elapsed := benchDuration.Seconds()
	fmt.Printf("bench %s: sent=%d elapsed=%.2fs rate=%.0f msg/s throughput=%.0f B/s\n",
		label, sent, elapsed, float64(sent)/elapsed, float64(sent*int64(benchPayload))/elapsed)
	return nil
}
