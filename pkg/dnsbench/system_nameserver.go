//go:build !(unix || windows)

package dnsbench

// DefaultNameServer returns the loopback resolver, system name server discovery is not supported on this platform.
func DefaultNameServer() string {
	return defaultNameServer
}

const defaultNameServer = "127.0.0.1"
