package reporter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/tantalor93/dnsrtt/pkg/dnsbench"
)

type reportParameters struct {
	benchmark         *dnsbench.Benchmark
	outputWriter      io.Writer
	targets           []targetSummary
	totals            BenchmarkResultStats
	topErrs           []errorCount
	benchmarkDuration time.Duration
}

type reportPrinter interface {
	print(params reportParameters) error
}

// PrintReport prints formatted benchmark result to the benchmark writer, exports graphs and generates CSV output if configured.
// Targets are reported in the order of results. If there is a fatal error while printing report, an error is returned.
func PrintReport(b *dnsbench.Benchmark, results []*dnsbench.TargetResult, benchStart time.Time, benchDuration time.Duration) error {
	totals := Merge(b, results)
	targets := summarizeAll(results)

	if len(b.PlotDir) != 0 {
		if err := directoryExists(b.PlotDir); err != nil {
			return fmt.Errorf("unable to plot results: %w", err)
		}

		now := time.Now().Format(time.RFC3339)
		dir := filepath.Join(b.PlotDir, "graphs-"+now)
		if err := os.Mkdir(dir, os.ModePerm); err != nil {
			return fmt.Errorf("unable to plot results: %w", err)
		}
		plotHistogramLatency(fileName(b, dir, "latency-histogram"), totals.Timings)
		plotBoxPlotLatency(fileName(b, dir, "latency-boxplot"), results)
		plotMeanLatency(fileName(b, dir, "mean-latency-barchart"), targets)
		plotLineLatencies(fileName(b, dir, "latency-lineplot"), benchStart, totals.Timings)
		plotErrorRate(fileName(b, dir, "errorrate-lineplot"), benchStart, totals.Errors)
	}

	if b.Csv != "" {
		f, err := os.Create(b.Csv)
		if err != nil {
			return fmt.Errorf("failed to create file for CSV export due to '%v'", err)
		}
		err = writeCSV(f, targets)
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return fmt.Errorf("failed to export CSV: %w", err)
		}
	}

	if b.Silent {
		return nil
	}

	w := b.Writer
	if w == nil {
		w = os.Stdout
	}
	params := reportParameters{
		benchmark:         b,
		outputWriter:      w,
		targets:           targets,
		totals:            totals,
		topErrs:           topErrors(totals.GroupedErrors, 3),
		benchmarkDuration: benchDuration,
	}
	return printer(b).print(params)
}

func directoryExists(plotDir string) error {
	stat, err := os.Stat(plotDir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("'%s' path does not point to an existing directory", plotDir)
		}
		return err
	} else if !stat.IsDir() {
		return fmt.Errorf("'%s' is not a path to a directory", plotDir)
	}
	return nil
}

func printer(b *dnsbench.Benchmark) reportPrinter {
	switch {
	case b.JSON:
		return &jsonReporter{}
	default:
		return &standardReporter{}
	}
}

func fileName(b *dnsbench.Benchmark, dir, name string) string {
	return filepath.Join(dir, name+"."+b.PlotFormat)
}
