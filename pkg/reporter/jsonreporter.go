package reporter

import (
	"encoding/json"
	"math"
	"time"
)

type jsonReporter struct{}

type latencyStats struct {
	MinMs  int64 `json:"minMs"`
	MeanMs int64 `json:"meanMs"`
	StdMs  int64 `json:"stdMs"`
	MaxMs  int64 `json:"maxMs"`
	P99Ms  int64 `json:"p99Ms"`
	P95Ms  int64 `json:"p95Ms"`
	P90Ms  int64 `json:"p90Ms"`
	P75Ms  int64 `json:"p75Ms"`
	P50Ms  int64 `json:"p50Ms"`
}

type histogramPoint struct {
	LatencyMs int64 `json:"latencyMs"`
	Count     int64 `json:"count"`
}

// targetLatency uses fractional milliseconds, round trips to nearby resolvers are often below a millisecond.
// Pointers are nil for targets without successful attempts.
type targetLatency struct {
	Target     string   `json:"target"`
	Attempts   int64    `json:"attempts"`
	Successes  int64    `json:"successes"`
	Failures   int64    `json:"failures"`
	Timeouts   int64    `json:"timeouts"`
	SendErrors int64    `json:"sendErrors"`
	RecvErrors int64    `json:"recvErrors"`
	Discarded  int64    `json:"discarded"`
	MeanMs     *float64 `json:"meanMs"`
	StdMs      *float64 `json:"stdMs"`
	MinMs      *float64 `json:"minMs"`
	P50Ms      *float64 `json:"p50Ms"`
	P95Ms      *float64 `json:"p95Ms"`
	MaxMs      *float64 `json:"maxMs"`
}

type jsonResult struct {
	TotalAttempts            int64            `json:"totalAttempts"`
	TotalSuccesses           int64            `json:"totalSuccesses"`
	TotalTimeouts            int64            `json:"totalTimeouts"`
	TotalSendErrors          int64            `json:"totalSendErrors"`
	TotalRecvErrors          int64            `json:"totalRecvErrors"`
	TotalDiscarded           int64            `json:"totalDiscarded"`
	AttemptsPerSecond        float64          `json:"attemptsPerSecond"`
	BenchmarkDurationSeconds float64          `json:"benchmarkDurationSeconds"`
	Targets                  []targetLatency  `json:"targets"`
	LatencyStats             latencyStats     `json:"latencyStats"`
	LatencyDistribution      []histogramPoint `json:"latencyDistribution,omitempty"`
}

func (s *jsonReporter) print(params reportParameters) error {
	var res []histogramPoint

	hist := params.totals.Hist
	if params.benchmark.HistDisplay {
		dist := hist.Distribution()
		for _, d := range dist {
			res = append(res, histogramPoint{
				LatencyMs: roundDuration(time.Duration(d.To/2 + d.From/2)).Milliseconds(),
				Count:     d.Count,
			})
		}

		var dedupRes []histogramPoint
		i := -1
		for _, r := range res {
			if i >= 0 && dedupRes[i].LatencyMs == r.LatencyMs {
				dedupRes[i].Count += r.Count
				continue
			}
			dedupRes = append(dedupRes, r)
			i++
		}
		res = dedupRes
	}

	targets := make([]targetLatency, 0, len(params.targets))
	for _, t := range params.targets {
		targets = append(targets, jsonTarget(t))
	}

	c := params.totals.Counters
	var qps float64
	if params.benchmarkDuration > 0 {
		qps = math.Round(float64(c.Total)/params.benchmarkDuration.Seconds()*100) / 100
	}
	result := jsonResult{
		TotalAttempts:            c.Total,
		TotalSuccesses:           c.Success,
		TotalTimeouts:            c.TimedOut,
		TotalSendErrors:          c.SendError,
		TotalRecvErrors:          c.RecvError,
		TotalDiscarded:           c.Discarded,
		AttemptsPerSecond:        qps,
		BenchmarkDurationSeconds: roundDuration(params.benchmarkDuration).Seconds(),
		Targets:                  targets,
		LatencyStats: latencyStats{
			MinMs:  roundDuration(time.Duration(hist.Min())).Milliseconds(),
			MeanMs: roundDuration(time.Duration(hist.Mean())).Milliseconds(),
			StdMs:  roundDuration(time.Duration(hist.StdDev())).Milliseconds(),
			MaxMs:  roundDuration(time.Duration(hist.Max())).Milliseconds(),
			P99Ms:  roundDuration(time.Duration(hist.ValueAtQuantile(99))).Milliseconds(),
			P95Ms:  roundDuration(time.Duration(hist.ValueAtQuantile(95))).Milliseconds(),
			P90Ms:  roundDuration(time.Duration(hist.ValueAtQuantile(90))).Milliseconds(),
			P75Ms:  roundDuration(time.Duration(hist.ValueAtQuantile(75))).Milliseconds(),
			P50Ms:  roundDuration(time.Duration(hist.ValueAtQuantile(50))).Milliseconds(),
		},
		LatencyDistribution: res,
	}

	return json.NewEncoder(params.outputWriter).Encode(result)
}

func jsonTarget(t targetSummary) targetLatency {
	c := t.Counters
	res := targetLatency{
		Target:     t.Target,
		Attempts:   c.Total,
		Successes:  c.Success,
		Failures:   c.Failures(),
		Timeouts:   c.TimedOut,
		SendErrors: c.SendError,
		RecvErrors: c.RecvError,
		Discarded:  c.Discarded,
	}
	if !t.HasData {
		return res
	}
	res.MeanMs = msPtr(t.Mean)
	res.StdMs = msPtr(t.StdDev)
	res.MinMs = msPtr(t.Min)
	res.P50Ms = msPtr(t.P50)
	res.P95Ms = msPtr(t.P95)
	res.MaxMs = msPtr(t.Max)
	return res
}

func msPtr(d time.Duration) *float64 {
	v := math.Round(ms(d)*1000) / 1000
	return &v
}
