package dnsquery_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tantalor93/dnsrtt/pkg/dnsquery"
)

func TestEncode(t *testing.T) {
	header := func(id0, id1 byte) []byte {
		return []byte{id0, id1, 0x05, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	}
	trailer := []byte{0x00, 0x01, 0x00, 0x01}
	concat := func(parts ...[]byte) []byte {
		var res []byte
		for _, p := range parts {
			res = append(res, p...)
		}
		return res
	}

	tests := []struct {
		name     string
		id       uint16
		hostname string
		want     []byte
	}{
		{
			name:     "two labels",
			id:       0xBABE,
			hostname: "shark.pm",
			want: concat(header(0xBA, 0xBE),
				[]byte{0x05, 0x73, 0x68, 0x61, 0x72, 0x6B, 0x02, 0x70, 0x6D, 0x00}, trailer),
		},
		{
			name:     "root as empty string",
			id:       0x0539,
			hostname: "",
			want:     concat(header(0x05, 0x39), []byte{0x00}, trailer),
		},
		{
			name:     "root as dot",
			id:       0x0539,
			hostname: ".",
			want:     concat(header(0x05, 0x39), []byte{0x00}, trailer),
		},
		{
			name:     "trailing dot",
			id:       1,
			hostname: "shark.pm.",
			want: concat(header(0x00, 0x01),
				[]byte{0x05, 's', 'h', 'a', 'r', 'k', 0x02, 'p', 'm', 0x00}, trailer),
		},
		{
			name:     "upper case is lowered",
			id:       1,
			hostname: "ShArK.PM",
			want: concat(header(0x00, 0x01),
				[]byte{0x05, 's', 'h', 'a', 'r', 'k', 0x02, 'p', 'm', 0x00}, trailer),
		},
		{
			name:     "empty labels are skipped",
			id:       1,
			hostname: "a..b",
			want:     concat(header(0x00, 0x01), []byte{0x01, 'a', 0x01, 'b', 0x00}, trailer),
		},
		{
			name:     "digits and hyphens are kept",
			id:       0xffff,
			hostname: "ns-1.x9",
			want: concat(header(0xff, 0xff),
				[]byte{0x04, 'n', 's', '-', '1', 0x02, 'x', '9', 0x00}, trailer),
		},
		{
			name:     "label of maximum length",
			id:       0,
			hostname: strings.Repeat("a", 255),
			want: concat(header(0x00, 0x00),
				[]byte{0xff}, []byte(strings.Repeat("a", 255)), []byte{0x00}, trailer),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := dnsquery.Encode(tt.id, tt.hostname)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncode_sharkpm(t *testing.T) {
	got, err := dnsquery.Query{ID: 0xBABE, Hostname: "shark.pm"}.Encode()

	require.NoError(t, err)
	assert.Equal(t, []byte{
		0xBA, 0xBE, 0x05, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x05, 's', 'h', 'a', 'r', 'k', 0x02, 'p', 'm', 0x00,
		0x00, 0x01, 0x00, 0x01,
	}, got)
	n, err := dnsquery.EncodedLen("shark.pm")
	require.NoError(t, err)
	assert.Equal(t, 26, n)
	assert.Len(t, got, n)
}

func TestEncode_root(t *testing.T) {
	got, err := dnsquery.Encode(0x0539, "")

	require.NoError(t, err)
	assert.Len(t, got, 17)
	assert.Equal(t, []byte{0x00, 0x00, 0x01, 0x00, 0x01}, got[12:])
}

func TestEncode_labelTooLong(t *testing.T) {
	tests := []struct {
		name     string
		hostname string
	}{
		{
			name:     "single label",
			hostname: strings.Repeat("a", 256),
		},
		{
			name:     "last label",
			hostname: "example." + strings.Repeat("b", 300),
		},
		{
			name:     "middle label",
			hostname: "www." + strings.Repeat("c", 256) + ".org",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := dnsquery.Encode(1, tt.hostname)

			require.ErrorIs(t, err, dnsquery.ErrLabelTooLong)
			assert.Nil(t, got)

			n, err := dnsquery.EncodedLen(tt.hostname)
			require.ErrorIs(t, err, dnsquery.ErrLabelTooLong)
			assert.Zero(t, n)
		})
	}
}

func TestEncode_length(t *testing.T) {
	hostnames := []string{
		"", ".", "a", "example.org", "example.org.", "www.example.co.uk",
		strings.Repeat("x", 63) + "." + strings.Repeat("y", 255), "a.b.c.d.e.f.g",
	}
	for _, h := range hostnames {
		want := 12 + 1 + 4
		for _, l := range strings.Split(h, ".") {
			if l != "" {
				want += 1 + len(l)
			}
		}

		got, err := dnsquery.Encode(42, h)
		require.NoError(t, err)
		assert.Len(t, got, want, "hostname %q", h)

		n, err := dnsquery.EncodedLen(h)
		require.NoError(t, err)
		assert.Equal(t, want, n, "hostname %q", h)
	}
}

func TestEncode_deterministic(t *testing.T) {
	first, err := dnsquery.Encode(0x1234, "example.org")
	require.NoError(t, err)

	second, err := dnsquery.Encode(0x1234, "example.org")
	require.NoError(t, err)

	assert.Equal(t, first, second)

	// modifying a returned buffer must not affect later encodings
	first[0] = 0
	third, err := dnsquery.Encode(0x1234, "example.org")
	require.NoError(t, err)
	assert.Equal(t, second, third)
}

func TestEncode_concurrent(t *testing.T) {
	q := dnsquery.Query{ID: 7, Hostname: "example.org"}
	want, err := q.Encode()
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([][]byte, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = q.Encode()
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, want, r)
	}
}

func TestEncode_wellFormed(t *testing.T) {
	buf, err := dnsquery.Encode(0xBABE, "Shark.PM")
	require.NoError(t, err)

	msg := dns.Msg{}
	require.NoError(t, msg.Unpack(buf))

	assert.Equal(t, uint16(0xBABE), msg.Id)
	assert.False(t, msg.Response)
	assert.Equal(t, dns.OpcodeQuery, msg.Opcode)
	assert.True(t, msg.RecursionDesired)
	assert.Empty(t, msg.Answer)
	assert.Empty(t, msg.Ns)
	assert.Empty(t, msg.Extra)
	if assert.Len(t, msg.Question, 1) {
		assert.Equal(t, "shark.pm.", msg.Question[0].Name)
		assert.Equal(t, dns.TypeA, msg.Question[0].Qtype)
		assert.Equal(t, uint16(dns.ClassINET), msg.Question[0].Qclass)
	}
}
