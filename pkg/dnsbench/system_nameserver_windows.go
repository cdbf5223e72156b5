//go:build windows

package dnsbench

import (
	"os/exec"
	"regexp"
)

const defaultNameServer = "127.0.0.1"

var nslookupServerRegexp = regexp.MustCompile(`Address:\s+([^\s]+)`)

// DefaultNameServer returns the name server reported by nslookup. If it fails, it returns 127.0.0.1 as default.
func DefaultNameServer() string {
	out, err := exec.Command("nslookup").Output()
	if err != nil {
		return defaultNameServer
	}

	matches := nslookupServerRegexp.FindStringSubmatch(string(out))
	if len(matches) != 2 {
		return defaultNameServer
	}
	return matches[1]
}
