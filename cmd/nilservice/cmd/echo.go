package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/momentics/nilservice/codec"
	"github.com/momentics/nilservice/handler"
	"github.com/momentics/nilservice/service"
)

// tagText and tagBinary mirror the sandbox's alternating `type` variable:
// every line read from stdin is published with a leading uint8 tag so the
// far end's handler.Map can route it.
const (
	tagText   uint8 = 0
	tagBinary uint8 = 1
)

var echoCmd = &cobra.Command{
	Use:   "echo <transport> <server|client>",
	Short: "Run one engine, logging lifecycle events and echoing stdin lines to every peer",
	Args:  cobra.ExactArgs(2),
	RunE:  runEcho,
}

func init() {
	rootCmd.AddCommand(echoCmd)
}

func runEcho(_ *cobra.Command, args []string) error {
	transport, mode := args[0], args[1]
	svc, err := buildEngine(transport, mode)
	if err != nil {
		return err
	}

	label := fmt.Sprintf("[%s %s]", transport, mode)
	installLifecycleLogging(svc, label)

	svc.OnMessage(handler.Map(codec.Uint8,
		handler.Mapping[uint8]{Tag: tagText, Handler: handler.BytesOnly(func(data []byte, _ uint64) {
			fmt.Printf("%s recv text  : %s\n", label, string(data))
		})},
		handler.Mapping[uint8]{Tag: tagBinary, Handler: handler.IDBytes(func(id service.ID, data []byte, length uint64) {
			fmt.Printf("%s recv binary from %s (%d bytes)\n", label, id, length)
		})},
	))

	errCh := make(chan error, 1)
	go func() { errCh <- svc.Start() }()

	tag := tagText
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "reconnect" {
			svc.Stop()
			if err := <-errCh; err != nil {
				fmt.Printf("%s stopped with error: %v\n", label, err)
			}
			if err := svc.Restart(); err != nil {
				return err
			}
			go func() { errCh <- svc.Start() }()
			continue
		}
		if line == "quit" {
			break
		}

		payload := codec.Concat(codec.Field(codec.Uint8, tag), codec.Field(codec.String, line))
		if err := svc.Publish(payload); err != nil {
			fmt.Printf("%s publish error: %v\n", label, err)
		}
		tag ^= 1
	}

	svc.Stop()
	return <-errCh
}
