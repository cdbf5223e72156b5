package dnsbench

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/net/dns/dnsmessage"
)

// attempt sends the query to the target once and waits for the first datagram until the timeout elapses.
// The duration is measured from just before sending until the datagram is read.
func (b *Benchmark) attempt(conn *net.UDPConn, target *net.UDPAddr, query, resp []byte) Attempt {
	start := time.Now()
	a := Attempt{Start: start}

	if err := conn.SetWriteDeadline(start.Add(b.Timeout)); err != nil {
		return a.failed(OutcomeSendFailed, ErrSendFailed, err)
	}
	if _, err := conn.WriteToUDP(query, target); err != nil {
		return a.failed(OutcomeSendFailed, ErrSendFailed, err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(b.Timeout)); err != nil {
		return a.failed(OutcomeRecvFailed, ErrRecvFailed, err)
	}
	for {
		n, from, err := conn.ReadFromUDP(resp)
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				return a.failed(OutcomeTimedOut, ErrTimedOut, err)
			}
			return a.failed(OutcomeRecvFailed, ErrRecvFailed, err)
		}
		if b.VerifyResponse && !answers(target, from, b.ID, resp[:n]) {
			a.Discarded++
			continue
		}
		a.Outcome = OutcomeCompleted
		a.Duration = time.Since(start)
		return a
	}
}

func (a Attempt) failed(outcome Outcome, kind, err error) Attempt {
	a.Outcome = outcome
	a.Duration = time.Since(a.Start)
	a.Err = fmt.Errorf("%w: %w", kind, err)
	return a
}

// answers reports whether msg came from the target and carries a response header echoing the transaction ID.
// Only the header is parsed, the rest of the message is not looked at.
func answers(target, from *net.UDPAddr, id uint16, msg []byte) bool {
	if from == nil || from.Port != target.Port || !from.IP.Equal(target.IP) {
		return false
	}
	var p dnsmessage.Parser
	h, err := p.Start(msg)
	if err != nil {
		return false
	}
	return h.Response && h.ID == id
}
