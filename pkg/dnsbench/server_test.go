package dnsbench_test

import (
	"errors"
	"net"
	"sync"
	"testing"

	"github.com/miekg/dns"
)

// Server represents simple DNS server.
type Server struct {
	Addr  string
	inner *dns.Server
}

// Close shuts down running DNS server instance.
func (s *Server) Close() {
	s.inner.Shutdown()
}

// NewServer creates and starts new DNS over UDP server instance.
func NewServer(f dns.HandlerFunc) *Server {
	ch := make(chan bool)
	s := &dns.Server{Net: "udp", Addr: "127.0.0.1:0", NotifyStartedFunc: func() { close(ch) }, Handler: f}

	go func() {
		if err := s.ListenAndServe(); err != nil {
			panic(err)
		}
	}()

	<-ch
	return &Server{inner: s, Addr: s.PacketConn.LocalAddr().String()}
}

// rawResponder is a UDP endpoint answering each received datagram with the datagrams returned by reply.
// It records every datagram it receives.
type rawResponder struct {
	Addr string

	conn     *net.UDPConn
	wg       sync.WaitGroup
	mu       sync.Mutex
	received [][]byte
}

func newRawResponder(t *testing.T, reply func(query []byte) [][]byte) *rawResponder {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	r := &rawResponder{Addr: conn.LocalAddr().String(), conn: conn}
	r.wg.Add(1)
	go r.loop(reply)
	t.Cleanup(r.Close)
	return r
}

func (r *rawResponder) loop(reply func(query []byte) [][]byte) {
	defer r.wg.Done()
	buf := make([]byte, dns.MaxMsgSize)
	for {
		n, addr, err := r.conn.ReadFromUDP(buf)
		if errors.Is(err, net.ErrClosed) {
			return
		}
		if err != nil {
			continue
		}
		query := append([]byte(nil), buf[:n]...)
		r.mu.Lock()
		r.received = append(r.received, query)
		r.mu.Unlock()

		if reply == nil {
			continue
		}
		for _, resp := range reply(query) {
			_, _ = r.conn.WriteToUDP(resp, addr)
		}
	}
}

// Received returns copies of all received datagrams.
func (r *rawResponder) Received() [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]byte(nil), r.received...)
}

// Close stops the responder.
func (r *rawResponder) Close() {
	_ = r.conn.Close()
	r.wg.Wait()
}

// asResponse returns a copy of the query with the QR bit set and the given transaction ID.
func asResponse(query []byte, id uint16) []byte {
	resp := append([]byte(nil), query...)
	resp[0] = byte(id >> 8)
	resp[1] = byte(id)
	resp[2] |= 0x80
	return resp
}
