//go:build unix

package dnsbench

import (
	"bufio"
	"io"
	"os"
	"strings"
)

const (
	defaultNameServer = "127.0.0.1"
	resolvConfPath    = "/etc/resolv.conf"
)

// DefaultNameServer returns the first name server configured in /etc/resolv.conf.
// If it fails, it returns 127.0.0.1 as default.
func DefaultNameServer() string {
	file, err := os.Open(resolvConfPath)
	if err != nil {
		return defaultNameServer
	}
	defer func() {
		_ = file.Close()
	}()
	return nameServerFromResolvConf(file)
}

func nameServerFromResolvConf(r io.Reader) string {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) > 0 && (line[0] == ';' || line[0] == '#') {
			// comment line, skip
			continue
		}

		fields := strings.Fields(line)
		if len(fields) == 2 && fields[0] == "nameserver" {
			return fields[1]
		}
	}
	return defaultNameServer
}
