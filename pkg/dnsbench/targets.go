package dnsbench

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"
)

const defaultDNSPort = "53"

var client = http.Client{
	Timeout: 120 * time.Second,
}

const fileScheme = "file://"

// loadTargets expands target sources into plain resolver addresses. A source is either an address,
// a local file referenced as file://<file-path> or @<file-path>, or an HTTP(S) URL. Files and URLs contain one address per line.
func loadTargets(sources []string) ([]string, error) {
	var targets []string
	for _, s := range sources {
		switch path, isFile := targetsFilePath(s); {
		case isFile:
			f, err := os.Open(path)
			if err != nil {
				return nil, fmt.Errorf("failed to open targets file '%s': %w", path, err)
			}
			lines, err := readTargets(f)
			f.Close()
			if err != nil {
				return nil, fmt.Errorf("failed to read targets file '%s': %w", path, err)
			}
			targets = append(targets, lines...)
		case isHTTPUrl(s):
			resp, err := client.Get(s)
			if err != nil {
				return nil, fmt.Errorf("failed to download file '%s' with error '%w'", s, err)
			}
			if resp.StatusCode < 200 || resp.StatusCode > 299 {
				resp.Body.Close()
				return nil, fmt.Errorf("failed to download file '%s' with status '%s'", s, resp.Status)
			}
			lines, err := readTargets(resp.Body)
			resp.Body.Close()
			if err != nil {
				return nil, fmt.Errorf("failed to read file '%s': %w", s, err)
			}
			targets = append(targets, lines...)
		default:
			if t := strings.TrimSpace(s); t != "" {
				targets = append(targets, t)
			}
		}
	}

	if len(targets) == 0 {
		return nil, errors.New("no targets to benchmark")
	}

	for i := range targets {
		targets[i] = addPortIfMissing(targets[i])
	}
	return targets, nil
}

// readTargets reads one target per line, skipping blank lines and comments starting with '#'.
func readTargets(r io.Reader) ([]string, error) {
	var res []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		res = append(res, line)
	}
	return res, scanner.Err()
}

func addPortIfMissing(target string) string {
	if _, _, err := net.SplitHostPort(target); err == nil {
		return target
	}
	host := strings.TrimSuffix(strings.TrimPrefix(target, "["), "]")
	return net.JoinHostPort(host, defaultDNSPort)
}

// targetsFilePath returns the path of a file target source. The @ form is not usable on the command line,
// where kingpin expands @<file> into arguments.
func targetsFilePath(s string) (string, bool) {
	if strings.HasPrefix(s, fileScheme) {
		return s[len(fileScheme):], true
	}
	if strings.HasPrefix(s, "@") {
		return s[1:], true
	}
	return "", false
}

func isHTTPUrl(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
