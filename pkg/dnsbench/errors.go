package dnsbench

import "errors"

var (
	// ErrSocketBind is returned by Benchmark.Run when the local UDP socket cannot be set up.
	ErrSocketBind = errors.New("unable to bind UDP socket")

	// ErrSendFailed is wrapped by errors of attempts that failed to transmit the query.
	ErrSendFailed = errors.New("send failed")

	// ErrTimedOut is wrapped by errors of attempts that did not receive any datagram in time.
	ErrTimedOut = errors.New("timed out")

	// ErrRecvFailed is wrapped by errors of attempts that failed to receive for a reason other than timeout.
	ErrRecvFailed = errors.New("receive failed")
)
