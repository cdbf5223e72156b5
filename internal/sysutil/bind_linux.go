//go:build linux

package sysutil

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// BindToDevice returns a net.ListenConfig control function restricting the socket to the network interface iface.
// For an empty iface it returns nil, so the default control is used.
func BindToDevice(iface string) func(network, address string, c syscall.RawConn) error {
	if iface == "" {
		return nil
	}
	return func(_, _ string, c syscall.RawConn) error {
		var serr error
		if err := c.Control(func(fd uintptr) {
			serr = unix.BindToDevice(int(fd), iface)
		}); err != nil {
			return err
		}
		return serr
	}
}
