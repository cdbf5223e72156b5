package dnsquery

import "github.com/miekg/dns"

// Flags represents the second and third 16 bits of the DNS header.
//
//	  0  1  2  3  4  5  6  7  0  1  2  3  4  5  6  7
//	+--+-----------+--+--+--+--+--------+-----------+
//	|QR|  Opcode   |AA|TC|RD|RA|   Z    |   RCODE   |
//	+--+-----------+--+--+--+--+--------+-----------+
type Flags struct {
	Response           bool
	Opcode             uint8
	Authoritative      bool
	Truncated          bool
	RecursionDesired   bool
	RecursionAvailable bool
	Zero               uint8
	Rcode              uint8
}

// QueryFlags are the flags used for every encoded query. They pack to 0x05 0x00.
// Authoritative has no meaning in a query and servers ignore it, it is kept set so the first flags byte stays 0x05.
var QueryFlags = Flags{
	Opcode:           dns.OpcodeQuery,
	Authoritative:    true,
	RecursionDesired: true,
}

// Pack assembles the flags into the two header bytes. Fields wider than their bit range are masked.
func (f Flags) Pack() [2]byte {
	var b [2]byte
	if f.Response {
		b[0] |= 1 << 7
	}
	b[0] |= (f.Opcode & 0x0f) << 3
	if f.Authoritative {
		b[0] |= 1 << 2
	}
	if f.Truncated {
		b[0] |= 1 << 1
	}
	if f.RecursionDesired {
		b[0] |= 1
	}
	if f.RecursionAvailable {
		b[1] |= 1 << 7
	}
	b[1] |= (f.Zero & 0x07) << 4
	b[1] |= f.Rcode & 0x0f
	return b
}

// UnpackFlags is the inverse of Flags.Pack.
func UnpackFlags(b [2]byte) Flags {
	return Flags{
		Response:           b[0]&(1<<7) != 0,
		Opcode:             (b[0] >> 3) & 0x0f,
		Authoritative:      b[0]&(1<<2) != 0,
		Truncated:          b[0]&(1<<1) != 0,
		RecursionDesired:   b[0]&1 != 0,
		RecursionAvailable: b[1]&(1<<7) != 0,
		Zero:               (b[1] >> 4) & 0x07,
		Rcode:              b[1] & 0x0f,
	}
}
