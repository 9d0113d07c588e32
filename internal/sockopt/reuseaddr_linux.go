//go:build linux
// +build linux

// Package sockopt sets SO_REUSEADDR/SO_REUSEPORT on listening sockets
// before bind, generalizing the teacher's reactor/affinity/pool split of
// platform-specific syscalls (reactor/reactor_linux.go) to the plain
// net.ListenConfig.Control hook every stream/datagram listener uses.
package sockopt

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// Control sets SO_REUSEADDR and SO_REUSEPORT on the socket before bind,
// so a restarted engine can rebind its configured port immediately even
// while the previous socket lingers in TIME_WAIT.
func Control(network, address string, c syscall.RawConn) error {
	var sockErr error
	err := c.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
		if sockErr != nil {
			return
		}
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}
