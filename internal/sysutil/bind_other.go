//go:build !linux

package sysutil

import (
	"fmt"
	"runtime"
	"syscall"
)

// BindToDevice returns a net.ListenConfig control function restricting the socket to the network interface iface.
// Binding to an interface is supported only on Linux, elsewhere the returned function always fails.
func BindToDevice(iface string) func(network, address string, c syscall.RawConn) error {
	if iface == "" {
		return nil
	}
	return func(_, _ string, _ syscall.RawConn) error {
		return fmt.Errorf("binding to interface %q is not supported on %s", iface, runtime.GOOS)
	}
}
