package reporter

import (
	"errors"
	"net"
	"sort"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/tantalor93/dnsrtt/pkg/dnsbench"
)

// BenchmarkResultStats represents merged results of all targets of the dnsbench.Benchmark execution.
type BenchmarkResultStats struct {
	Hist          *hdrhistogram.Histogram
	Timings       []dnsbench.Datapoint
	Counters      dnsbench.Counters
	Errors        []dnsbench.ErrorDatapoint
	GroupedErrors map[string]int
}

// Merge takes per target results of the executed dnsbench.Benchmark and merges them.
func Merge(b *dnsbench.Benchmark, results []*dnsbench.TargetResult) BenchmarkResultStats {
	totals := BenchmarkResultStats{
		Hist:          hdrhistogram.New(b.HistMin.Nanoseconds(), b.HistMax.Nanoseconds(), b.HistPre),
		GroupedErrors: make(map[string]int),
	}

	for _, r := range results {
		if r == nil {
			continue
		}
		for _, err := range r.Errors {
			totals.GroupedErrors[errString(err)]++
		}
		totals.Errors = append(totals.Errors, r.Errors...)

		if r.Hist != nil {
			totals.Hist.Merge(r.Hist)
		}
		totals.Timings = append(totals.Timings, r.Timings...)

		totals.Counters = dnsbench.Counters{
			Total:     totals.Counters.Total + r.Counters.Total,
			Success:   totals.Counters.Success + r.Counters.Success,
			TimedOut:  totals.Counters.TimedOut + r.Counters.TimedOut,
			SendError: totals.Counters.SendError + r.Counters.SendError,
			RecvError: totals.Counters.RecvError + r.Counters.RecvError,
			Discarded: totals.Counters.Discarded + r.Counters.Discarded,
		}
	}

	// sort data points from the oldest to the earliest, so we can better plot time dependant graphs (like line)
	sort.SliceStable(totals.Timings, func(i, j int) bool {
		return totals.Timings[i].Start.Before(totals.Timings[j].Start)
	})

	// sort error data points from the oldest to the earliest, so we can better plot time dependant graphs (like line)
	sort.SliceStable(totals.Errors, func(i, j int) bool {
		return totals.Errors[i].Start.Before(totals.Errors[j].Start)
	})
	return totals
}

// errString groups errors by outcome and the failed network operation, so errors differing only in
// the local port are counted together.
func errString(err dnsbench.ErrorDatapoint) string {
	var errorString string
	var netOpErr *net.OpError
	var resolveErr *net.DNSError
	var addrErr *net.AddrError

	switch {
	case err.Err == nil:
		errorString = "unknown error"
	case errors.As(err.Err, &resolveErr):
		errorString = resolveErr.Err + " " + resolveErr.Name
	case errors.As(err.Err, &addrErr):
		errorString = addrErr.Err + " " + addrErr.Addr
	case errors.As(err.Err, &netOpErr):
		errorString = netOpErr.Op + " " + netOpErr.Net
		if netOpErr.Addr != nil {
			errorString += " " + netOpErr.Addr.String()
		}
		if netOpErr.Err != nil {
			errorString += ": " + netOpErr.Err.Error()
		}
	default:
		errorString = err.Err.Error()
	}
	return err.Outcome.String() + ": " + errorString
}

type errorCount struct {
	err   string
	count int
}

// topErrors returns at most n most frequent errors, ties are ordered by the error text.
func topErrors(grouped map[string]int, n int) []errorCount {
	res := make([]errorCount, 0, len(grouped))
	for k, v := range grouped {
		res = append(res, errorCount{err: k, count: v})
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].count != res[j].count {
			return res[i].count > res[j].count
		}
		return res[i].err < res[j].err
	})
	if len(res) > n {
		res = res[:n]
	}
	return res
}
