package dnsquery

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/miekg/dns"
)

const (
	// HeaderLen is the length of the fixed DNS message header.
	HeaderLen = 12

	// MaxLabelLen is the longest hostname label accepted by Encode.
	MaxLabelLen = 255

	// question trailer consisting of QTYPE and QCLASS
	questionTrailerLen = 4
)

// ErrLabelTooLong is returned when a hostname label exceeds MaxLabelLen bytes.
var ErrLabelTooLong = errors.New("hostname label exceeds 255 bytes")

// Query is a DNS query for the A record of Hostname.
type Query struct {
	// ID is the transaction ID copied verbatim into the header.
	ID uint16
	// Hostname is a dot separated ASCII name, trailing dot is optional.
	Hostname string
}

// Encode returns the wire format of the query.
func (q Query) Encode() ([]byte, error) {
	return Encode(q.ID, q.Hostname)
}

// Encode builds the wire format of a standard recursive query for the A/IN record of the hostname.
// Labels are lower-cased, empty labels are skipped, an empty hostname is the root.
// If any label is longer than MaxLabelLen, ErrLabelTooLong is returned and no bytes are produced.
func Encode(id uint16, hostname string) ([]byte, error) {
	labels, err := splitLabels(hostname)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 0, encodedLen(labels))

	buf = binary.BigEndian.AppendUint16(buf, id)
	flags := QueryFlags.Pack()
	buf = append(buf, flags[0], flags[1])
	// QDCOUNT, ANCOUNT, NSCOUNT, ARCOUNT
	buf = binary.BigEndian.AppendUint16(buf, 1)
	buf = binary.BigEndian.AppendUint16(buf, 0)
	buf = binary.BigEndian.AppendUint16(buf, 0)
	buf = binary.BigEndian.AppendUint16(buf, 0)

	for _, l := range labels {
		buf = append(buf, byte(len(l)))
		buf = appendLower(buf, l)
	}
	buf = append(buf, 0)

	buf = binary.BigEndian.AppendUint16(buf, dns.TypeA)
	buf = binary.BigEndian.AppendUint16(buf, dns.ClassINET)
	return buf, nil
}

// EncodedLen returns the length of the message Encode would produce for the hostname.
func EncodedLen(hostname string) (int, error) {
	labels, err := splitLabels(hostname)
	if err != nil {
		return 0, err
	}
	return encodedLen(labels), nil
}

func encodedLen(labels []string) int {
	n := HeaderLen + 1 + questionTrailerLen
	for _, l := range labels {
		n += 1 + len(l)
	}
	return n
}

func splitLabels(hostname string) ([]string, error) {
	var labels []string
	for i, l := range strings.Split(hostname, ".") {
		if len(l) == 0 {
			continue
		}
		if len(l) > MaxLabelLen {
			return nil, fmt.Errorf("%w: label %d is %d bytes long", ErrLabelTooLong, i, len(l))
		}
		labels = append(labels, l)
	}
	return labels, nil
}

// appendLower appends s lower-casing only ASCII letters, other bytes are copied as they are.
func appendLower(buf []byte, s string) []byte {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if 'A' <= c && c <= 'Z' {
			c += 'a' - 'A'
		}
		buf = append(buf, c)
	}
	return buf
}
