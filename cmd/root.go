package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tantalor93/dnsrtt/pkg/dnsbench"
	"github.com/tantalor93/dnsrtt/pkg/printutils"
	"github.com/tantalor93/dnsrtt/pkg/reporter"
)

var (
	// Version is set during release of project during build process.
	Version = "development"

	author = "Ondrej Benkovsky <obenky@gmail.com>"

	plotFormats = []string{"svg", "png", "jpg", "pdf"}
)

type options struct {
	benchmark dnsbench.Benchmark

	config     string
	debug      bool
	prometheus string

	setByUser map[string]*bool
}

func newOptions() *options {
	return &options{setByUser: make(map[string]*bool)}
}

// flag registers the flag and tracks whether it was provided on the command line, so it takes precedence over the config file.
func (o *options) flag(app *kingpin.Application, name, help string) *kingpin.FlagClause {
	set := new(bool)
	o.setByUser[name] = set
	return app.Flag(name, help).IsSetByUser(set)
}

func (o *options) isSetByUser(name string) bool {
	set, ok := o.setByUser[name]
	return ok && *set
}

func newApp(o *options) *kingpin.Application {
	app := kingpin.New("dnsrtt", "A DNS over UDP round-trip latency benchmark.").Author(author)
	b := &o.benchmark

	o.flag(app, "server", "Resolver IP:port to benchmark, port 53 is used if omitted. IPv6 is also supported, for example '[fddd:dddd::]:53'. "+
		"Repeatable flag, targets are benchmarked in the given order. It can also be a local file referenced using file://<file-path> "+
		"or a resource accessible using HTTP, containing one resolver per line. The system resolver is used if no server is provided.").
		Short('s').StringsVar(&b.Targets)

	o.flag(app, "number", "How many times each target is queried.").
		Short('n').Default(strconv.Itoa(dnsbench.DefaultRepetitions)).Uint16Var(&b.Repetitions)

	o.flag(app, "id", "Transaction ID of the query.").
		Default(strconv.Itoa(dnsbench.DefaultTransactionID)).Uint16Var(&b.ID)

	o.flag(app, "timeout", "Send and receive timeout of a single attempt.").
		Default(dnsbench.DefaultTimeout.String()).DurationVar(&b.Timeout)

	o.flag(app, "bind", "Local address of the UDP socket. Port 0 means an ephemeral port.").
		Default(dnsbench.DefaultLocalBind).PlaceHolder("0.0.0.0:0").StringVar(&b.LocalBind)

	o.flag(app, "interface", "Bind the UDP socket to the network interface. Supported only on Linux.").
		PlaceHolder("eth0").StringVar(&b.Interface)

	o.flag(app, "delay", "Delay between two attempts against the same target. It can be a constant delay like 10ms, "+
		"or a random delay from the range like 10ms-50ms.").
		Default(dnsbench.DefaultDelay).StringVar(&b.Delay)

	o.flag(app, "rate-limit", "Apply a global attempts / second rate limit.").
		Short('l').Default("0").IntVar(&b.Rate)

	o.flag(app, "concurrency", "Number of targets benchmarked in parallel. Each worker uses its own socket, "+
		"so values higher than 1 require --bind with port 0.").
		Short('c').Default(strconv.Itoa(dnsbench.DefaultConcurrency)).Uint32Var(&b.Concurrency)

	o.flag(app, "verify", "Count only responses arriving from the target with the query transaction ID. "+
		"Other datagrams are discarded and the attempt keeps waiting.").
		Default("false").BoolVar(&b.VerifyResponse)

	o.flag(app, "log-requests", "Log every attempt as JSON line into the file specified by --log-requests-path.").
		Default("false").BoolVar(&b.RequestLogEnabled)

	o.flag(app, "log-requests-path", "Path to the file, where attempts are logged.").
		Default(dnsbench.DefaultRequestLogPath).StringVar(&b.RequestLogPath)

	o.flag(app, "progress", "Display progress bar on stderr.").
		Default("false").BoolVar(&b.ProgressBar)

	o.flag(app, "min", "Minimum value for timing histogram.").
		Default(dnsbench.DefaultHistMin.String()).DurationVar(&b.HistMin)

	o.flag(app, "max", "Maximum value for timing histogram, twice the --timeout by default.").DurationVar(&b.HistMax)

	o.flag(app, "precision", "Significant figure for histogram precision.").
		Default(strconv.Itoa(dnsbench.DefaultHistPrecision)).PlaceHolder("[1-5]").IntVar(&b.HistPre)

	o.flag(app, "distribution", "Display distribution histogram of timings to stdout. Enabled by default.").
		Default("true").BoolVar(&b.HistDisplay)

	o.flag(app, "csv", "Export results per target to CSV.").
		Default("").PlaceHolder("/path/to/file.csv").StringVar(&b.Csv)

	o.flag(app, "json", "Report benchmark results as JSON.").BoolVar(&b.JSON)

	o.flag(app, "silent", "Disable stdout.").Default("false").BoolVar(&b.Silent)

	o.flag(app, "color", "ANSI Color output. Enabled by default.").
		Default("true").BoolVar(&b.Color)

	o.flag(app, "plot", "Plot benchmark results and export them to the directory.").
		Default("").PlaceHolder("/path/to/folder").StringVar(&b.PlotDir)

	o.flag(app, "plotf", "Format of graphs. Supported formats: svg, png, jpg, pdf.").
		Default(dnsbench.DefaultPlotFormat).EnumVar(&b.PlotFormat, plotFormats...)

	app.Flag("debug", "Log diagnostics of the benchmark run to stderr.").BoolVar(&o.debug)

	app.Flag("prometheus", "Expose benchmark metrics on the address under /metrics path.").
		PlaceHolder(":8080").StringVar(&o.prometheus)

	app.Flag("config", "YAML file with benchmark options. Options provided on the command line take precedence.").
		PlaceHolder("/path/to/config.yaml").StringVar(&o.config)

	app.Arg("hostname", "Hostname to query for its A record.").
		StringVar(&b.Hostname)

	return app
}

// prepare merges the config file into the parsed options and fills in what is left unset.
func (o *options) prepare() error {
	if o.config != "" {
		cfg, err := loadConfig(o.config)
		if err != nil {
			return err
		}
		cfg.apply(&o.benchmark, o.isSetByUser)
	}

	if o.benchmark.Hostname == "" {
		o.benchmark.Hostname = dnsbench.DefaultHostname
	}

	color.NoColor = !o.benchmark.Color

	if o.debug {
		o.benchmark.Logger = &log.Logger{Handler: cli.New(os.Stderr), Level: log.DebugLevel}
	}
	return nil
}

// execute runs the benchmark and prints the report to w.
func (o *options) execute(ctx context.Context, w io.Writer) error {
	o.benchmark.Writer = w

	start := time.Now()
	res, err := o.benchmark.Run(ctx)
	end := time.Now()

	if err != nil {
		return fmt.Errorf("There was an error while starting benchmark: %w", err)
	}
	if err := reporter.PrintReport(&o.benchmark, res, start, end.Sub(start)); err != nil {
		return fmt.Errorf("There was an error while printing report: %w", err)
	}
	return nil
}

func servePrometheus(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			printutils.ErrFprintf(os.Stderr, "Failed to expose prometheus metrics: %s\n", err.Error())
		}
	}()
	return srv
}

// Execute starts main logic of command.
func Execute() {
	o := newOptions()
	app := newApp(o)
	app.Version(Version)
	kingpin.MustParse(app.Parse(os.Args[1:]))

	if err := o.prepare(); err != nil {
		printutils.ErrFprintf(os.Stderr, "%s\n", err.Error())
		os.Exit(1)
	}

	if o.prometheus != "" {
		srv := servePrometheus(o.prometheus)
		defer srv.Close()
	}

	sigsInt := make(chan os.Signal, 8)
	signal.Notify(sigsInt, syscall.SIGINT)

	defer close(sigsInt)
	defer signal.Stop(sigsInt)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		_, ok := <-sigsInt
		if !ok {
			// standard exit based on channel close
			return
		}
		fmt.Fprintf(os.Stderr, "\nCancelling benchmark ^C, again to terminate now.\n")
		cancel()
		<-sigsInt
		os.Exit(1)
	}()

	if err := o.execute(ctx, os.Stdout); err != nil {
		printutils.ErrFprintf(os.Stderr, "%s\n", err.Error())
		os.Exit(1)
	}
}
