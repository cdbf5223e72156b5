package reporter

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"
)

var csvHeader = []string{
	"target", "attempts", "successes", "failures", "timeouts", "send_errors", "recv_errors", "discarded",
	"mean_ms", "stddev_ms", "min_ms", "p50_ms", "p95_ms", "max_ms",
}

// writeCSV writes one row per target. Latency columns are left empty for targets without successful attempts.
func writeCSV(w io.Writer, targets []targetSummary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, t := range targets {
		c := t.Counters
		row := []string{
			t.Target,
			strconv.FormatInt(c.Total, 10),
			strconv.FormatInt(c.Success, 10),
			strconv.FormatInt(c.Failures(), 10),
			strconv.FormatInt(c.TimedOut, 10),
			strconv.FormatInt(c.SendError, 10),
			strconv.FormatInt(c.RecvError, 10),
			strconv.FormatInt(c.Discarded, 10),
		}
		for _, d := range []time.Duration{t.Mean, t.StdDev, t.Min, t.P50, t.P95, t.Max} {
			v := ""
			if t.HasData {
				v = strconv.FormatFloat(ms(d), 'f', 3, 64)
			}
			row = append(row, v)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
