package dnsbench_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/tantalor93/dnsrtt/pkg/dnsbench"
)

type ResponseVerificationTestSuite struct {
	suite.Suite
}

func TestResponseVerificationTestSuite(t *testing.T) {
	suite.Run(t, new(ResponseVerificationTestSuite))
}

func (suite *ResponseVerificationTestSuite) TestBenchmark_Run() {
	const id = 0x1234

	wrongID := func(query []byte) [][]byte {
		return [][]byte{asResponse(query, id+1)}
	}
	wrongIDThenCorrect := func(query []byte) [][]byte {
		return [][]byte{asResponse(query, id+1), asResponse(query, id)}
	}
	garbageThenCorrect := func(query []byte) [][]byte {
		return [][]byte{{0x01}, asResponse(query, id)}
	}
	echoThenCorrect := func(query []byte) [][]byte {
		return [][]byte{append([]byte(nil), query...), asResponse(query, id)}
	}

	tests := []struct {
		name          string
		verify        bool
		reply         func(query []byte) [][]byte
		wantSuccess   int64
		wantTimedOut  int64
		wantDiscarded int64
	}{
		{
			name:        "any datagram completes the attempt without verification",
			verify:      false,
			reply:       wrongID,
			wantSuccess: 2,
		},
		{
			name:          "response with wrong ID is discarded",
			verify:        true,
			reply:         wrongIDThenCorrect,
			wantSuccess:   2,
			wantDiscarded: 2,
		},
		{
			name:          "only responses with wrong ID time out",
			verify:        true,
			reply:         wrongID,
			wantTimedOut:  2,
			wantDiscarded: 2,
		},
		{
			name:          "datagram that is not a DNS message is discarded",
			verify:        true,
			reply:         garbageThenCorrect,
			wantSuccess:   2,
			wantDiscarded: 2,
		},
		{
			name:          "datagram without response flag is discarded",
			verify:        true,
			reply:         echoThenCorrect,
			wantSuccess:   2,
			wantDiscarded: 2,
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			r := newRawResponder(suite.T(), tt.reply)

			bench := dnsbench.Benchmark{
				Targets:        []string{r.Addr},
				Hostname:       "example.org",
				ID:             id,
				Repetitions:    2,
				Timeout:        200 * time.Millisecond,
				Delay:          "0s",
				VerifyResponse: tt.verify,
				Silent:         true,
			}

			rs, err := bench.Run(context.Background())

			suite.Require().NoError(err)
			suite.Require().Len(rs, 1)
			c := rs[0].Counters
			suite.EqualValues(2, c.Total)
			suite.Equal(tt.wantSuccess, c.Success)
			suite.Equal(tt.wantTimedOut, c.TimedOut)
			suite.Equal(tt.wantDiscarded, c.Discarded)
			suite.Equal(c.Total, c.Success+c.Failures())
		})
	}
}

func (suite *ResponseVerificationTestSuite) TestBenchmark_Run_lateReply() {
	const (
		id      = 0x4242
		timeout = 100 * time.Millisecond
	)

	for _, verify := range []bool{false, true} {
		name := "without verification"
		if verify {
			name = "with verification"
		}
		suite.Run(name, func() {
			var queries atomic.Int32
			// only the first query is answered, after its attempt has already timed out
			r := newRawResponder(suite.T(), func(query []byte) [][]byte {
				if queries.Add(1) > 1 {
					return nil
				}
				time.Sleep(timeout + timeout/2)
				return [][]byte{asResponse(query, id)}
			})

			bench := dnsbench.Benchmark{
				Targets:        []string{r.Addr},
				Hostname:       "example.org",
				ID:             id,
				Repetitions:    2,
				Timeout:        timeout,
				Delay:          "0s",
				VerifyResponse: verify,
				Silent:         true,
			}

			rs, err := bench.Run(context.Background())

			suite.Require().NoError(err)
			suite.Require().Len(rs, 1)
			c := rs[0].Counters
			suite.EqualValues(1, c.TimedOut)
			suite.EqualValues(1, c.Success, "late reply is attributed to the following attempt")
			suite.Require().Len(rs[0].Timings, 1)
			suite.Less(rs[0].Timings[0].Duration, timeout)
		})
	}
}
