package reporter

import (
	"time"

	"github.com/montanaflynn/stats"
	"github.com/tantalor93/dnsrtt/pkg/dnsbench"
)

// targetSummary holds latency statistics of a single target. Latency fields are meaningful only when HasData is set.
type targetSummary struct {
	Target   string
	Counters dnsbench.Counters
	HasData  bool
	Mean     time.Duration
	StdDev   time.Duration
	Min      time.Duration
	P50      time.Duration
	P95      time.Duration
	Max      time.Duration
}

func summarize(r *dnsbench.TargetResult) targetSummary {
	s := targetSummary{Target: r.Target, Counters: r.Counters}

	mean, ok := r.Mean()
	if !ok || len(r.Timings) == 0 {
		return s
	}
	s.HasData = true
	s.Mean = mean

	values := make(stats.Float64Data, 0, len(r.Timings))
	for _, t := range r.Timings {
		values = append(values, float64(t.Duration))
	}
	s.Min = statDuration(values.Min())
	s.Max = statDuration(values.Max())
	s.P50 = statDuration(values.Percentile(50))
	s.P95 = statDuration(values.Percentile(95))
	s.StdDev = statDuration(values.StandardDeviation())
	return s
}

func summarizeAll(results []*dnsbench.TargetResult) []targetSummary {
	res := make([]targetSummary, 0, len(results))
	for _, r := range results {
		if r == nil {
			continue
		}
		res = append(res, summarize(r))
	}
	return res
}
