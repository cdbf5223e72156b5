package reporter

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/olekukonko/tablewriter"
	"github.com/tantalor93/dnsrtt/pkg/dnsbench"
	"github.com/tantalor93/dnsrtt/pkg/printutils"
)

const noData = "no data"

type standardReporter struct{}

func (s *standardReporter) print(params reportParameters) error {
	printutils.NeutralFprintf(params.outputWriter, "\nLatency per target:\n")
	printTargets(params.outputWriter, params.targets)

	printProgress(params.outputWriter, params.totals.Counters)

	printutils.NeutralFprintf(params.outputWriter, "\nTime taken for tests:\t%s\n",
		printutils.HighlightSprint(roundDuration(params.benchmarkDuration)))
	if params.benchmarkDuration > 0 {
		printutils.NeutralFprintf(params.outputWriter, "Attempts per second:\t%s\n",
			printutils.HighlightSprintf("%0.1f", float64(params.totals.Counters.Total)/params.benchmarkDuration.Seconds()))
	}

	hist := params.totals.Hist
	if tc := hist.TotalCount(); tc > 0 {
		printutils.NeutralFprintf(params.outputWriter, "DNS timings, %s datapoints\n", printutils.HighlightSprint(tc))
		printutils.NeutralFprintf(params.outputWriter, "\t min:\t\t%s\n", printutils.HighlightSprint(roundDuration(time.Duration(hist.Min()))))
		printutils.NeutralFprintf(params.outputWriter, "\t mean:\t\t%s\n", printutils.HighlightSprint(roundDuration(time.Duration(hist.Mean()))))
		printutils.NeutralFprintf(params.outputWriter, "\t [+/-sd]:\t%s\n", printutils.HighlightSprint(roundDuration(time.Duration(hist.StdDev()))))
		printutils.NeutralFprintf(params.outputWriter, "\t max:\t\t%s\n", printutils.HighlightSprint(roundDuration(time.Duration(hist.Max()))))
		for _, q := range []float64{99, 95, 90, 75, 50} {
			printutils.NeutralFprintf(params.outputWriter, "\t p%d:\t\t%s\n", int(q),
				printutils.HighlightSprint(roundDuration(time.Duration(hist.ValueAtQuantile(q)))))
		}

		if params.benchmark.HistDisplay && tc > 1 {
			printutils.NeutralFprintf(params.outputWriter, "\nDNS distribution, %s datapoints\n", printutils.HighlightSprint(tc))
			printBars(params.outputWriter, hist.Distribution())
		}
	}

	if len(params.topErrs) > 0 {
		sumerrs := 0
		for _, v := range params.totals.GroupedErrors {
			sumerrs += v
		}
		printutils.ErrFprintf(params.outputWriter, "\nTotal Errors: %d\n", sumerrs)
		printutils.ErrFprintf(params.outputWriter, "Top errors:\n")
		for _, e := range params.topErrs {
			printutils.ErrFprintf(params.outputWriter, "%s\t%d (%.2f)%%\n", e.err, e.count,
				(float64(e.count)/float64(sumerrs))*100)
		}
	}

	return nil
}

func printTargets(w io.Writer, targets []targetSummary) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Target", "Success", "Failed", "Mean", "Min", "p50", "p95", "Max"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	for _, t := range targets {
		row := []string{
			t.Target,
			strconv.FormatInt(t.Counters.Success, 10),
			strconv.FormatInt(t.Counters.Failures(), 10),
		}
		if t.HasData {
			row = append(row,
				roundDuration(t.Mean).String(),
				roundDuration(t.Min).String(),
				roundDuration(t.P50).String(),
				roundDuration(t.P95).String(),
				roundDuration(t.Max).String(),
			)
		} else {
			row = append(row, noData, "-", "-", "-", "-")
		}
		table.Append(row)
	}
	table.Render()
}

func printProgress(w io.Writer, c dnsbench.Counters) {
	printutils.NeutralFprintf(w, "\nTotal attempts:\t\t%s\n", printutils.HighlightSprint(c.Total))

	if c.Success > 0 {
		printutils.SuccessFprintf(w, "Responses received:\t%d\n", c.Success)
	}
	if c.TimedOut > 0 {
		printutils.ErrFprintf(w, "Timeouts:\t\t%d\n", c.TimedOut)
	}
	if c.SendError > 0 {
		printutils.ErrFprintf(w, "Send errors:\t\t%d\n", c.SendError)
	}
	if c.RecvError > 0 {
		printutils.ErrFprintf(w, "Receive errors:\t\t%d\n", c.RecvError)
	}
	if c.Discarded > 0 {
		printutils.NeutralFprintf(w, "Discarded datagrams:\t%d\n", c.Discarded)
	}
}

func printBars(w io.Writer, bars []hdrhistogram.Bar) {
	counts := make([]int64, 0, len(bars))
	lines := make([][]string, 0, len(bars))
	added := false
	var max int64

	for _, b := range bars {
		if b.Count == 0 && !added {
			// trim the start
			continue
		}
		if b.Count > max {
			max = b.Count
		}

		added = true

		line := make([]string, 3)
		lines = append(lines, line)
		counts = append(counts, b.Count)

		line[0] = roundDuration(time.Duration(b.To/2 + b.From/2)).String()
		line[2] = strconv.FormatInt(b.Count, 10)
	}

	for i, l := range lines {
		l[1] = makeBar(counts[i], max)
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Latency", "", "Count"})
	table.SetBorder(false)
	table.AppendBulk(lines)
	table.Render()
}

func makeBar(c int64, max int64) string {
	if c == 0 {
		return ""
	}
	t := int((43 * float64(c) / float64(max)) + 0.5)
	return strings.Repeat(printutils.HighlightSprint("▄"), t)
}
