//go:build !linux
// +build !linux

package sockopt

import "syscall"

// Control is a no-op on every platform other than Linux (e.g. Windows);
// net.ListenConfig still binds normally without it.
func Control(network, address string, c syscall.RawConn) error {
	return nil
}
