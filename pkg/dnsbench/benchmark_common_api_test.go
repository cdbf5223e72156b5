package dnsbench_test

import (
	"bufio"
	"encoding/json"
	"io"
	"testing"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tantalor93/dnsrtt/pkg/dnsbench"
)

func assertAllSucceeded(t *testing.T, rs *dnsbench.TargetResult, repetitions int64) {
	t.Helper()
	require.NotNil(t, rs, "Run(ctx) target result")
	assert.NotNil(t, rs.Hist, "Run(ctx) target result histogram")

	assert.Equal(t, repetitions, rs.Counters.Total, "Run(ctx) total counter")
	assert.Equal(t, repetitions, rs.Counters.Success, "Run(ctx) success counter")
	assert.Zero(t, rs.Counters.Failures(), "Run(ctx) failures")
	assert.Empty(t, rs.Errors, "Run(ctx) error datapoints")
	assert.EqualValues(t, repetitions, rs.Hist.TotalCount(), "Run(ctx) histogram count")

	if assert.Len(t, rs.Timings, int(repetitions), "Run(ctx) timings") {
		for _, tm := range rs.Timings {
			assert.NotZero(t, tm.Duration, "Run(ctx) timings duration")
			assert.NotZero(t, tm.Start, "Run(ctx) timings start")
		}
	}
}

type requestLogFields struct {
	Worker    uint32 `json:"worker"`
	Target    string `json:"target"`
	ReqID     uint16 `json:"reqid"`
	Qname     string `json:"qname"`
	Qtype     string `json:"qtype"`
	Outcome   string `json:"outcome"`
	Discarded int64  `json:"discarded"`
	Err       string `json:"err"`
	Duration  string `json:"duration"`
}

type requestLog struct {
	Fields  requestLogFields `json:"fields"`
	Level   string           `json:"level"`
	Message string           `json:"message"`
}

func readRequestLog(t *testing.T, reader io.Reader) []requestLog {
	t.Helper()
	var logs []requestLog
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		var l requestLog
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &l), "request log line %q", scanner.Text())
		logs = append(logs, l)
	}
	require.NoError(t, scanner.Err())
	return logs
}

// A returns resource record of type A parsed from the given zone line.
func A(rr string) *dns.A { r, _ := dns.NewRR(rr); return r.(*dns.A) }
