package dnsbench

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/apex/log"
	"github.com/apex/log/handlers/discard"
	"github.com/miekg/dns"
	"github.com/schollz/progressbar/v3"
	"github.com/tantalor93/dnsrtt/internal/sysutil"
	"github.com/tantalor93/dnsrtt/pkg/dnsquery"
	"github.com/tantalor93/dnsrtt/pkg/printutils"
	"go.uber.org/ratelimit"
	"golang.org/x/sync/errgroup"
)

// UDPTransport is the only transport used for sending queries.
const UDPTransport = "udp"

// Benchmark is representation of the resolver latency benchmark scenario.
type Benchmark struct {
	// Targets are resolver addresses benchmarked in the given order. An address without port gets port 53.
	// An entry can also reference a local file as @<file-path> or an HTTP(S) URL, containing one address per line.
	// If empty, the system name server is used.
	Targets []string

	// Hostname is the name queried for its A record.
	Hostname string

	// ID is the transaction ID of the query.
	ID uint16

	// Repetitions is the number of attempts against each target.
	Repetitions uint16

	// Timeout bounds both sending and receiving of a single attempt.
	Timeout time.Duration

	// LocalBind is the local address of the UDP socket.
	LocalBind string

	// Interface optionally restricts the UDP socket to the given network interface, Linux only.
	Interface string

	// Delay between two attempts against the same target, either a constant like "10ms" or a random range like "10ms-50ms".
	Delay string

	// Rate limits the number of attempts per second across all workers, 0 means no limit.
	Rate int

	// Concurrency is the number of targets benchmarked in parallel. Every worker owns its own socket,
	// so a value higher than 1 requires LocalBind with an ephemeral port.
	Concurrency uint32

	// VerifyResponse counts an attempt as successful only once a datagram arrives from the target address
	// carrying a response header with the query transaction ID. Other datagrams are discarded.
	//
	// Without it any datagram completes the attempt. A reply to an earlier attempt that arrives after its timeout
	// is then read right after the next send and recorded as a near-zero latency success, which skews the mean
	// of lossy targets downwards. All repetitions share the transaction ID, so even with verification such
	// a late reply from the target itself is still accepted.
	VerifyResponse bool

	// RequestLogEnabled enables logging of every attempt as JSON line into RequestLogPath.
	RequestLogEnabled bool

	// RequestLogPath is a path to the file, where the attempts are logged.
	RequestLogPath string

	// ProgressBar shows progress of the benchmark on stderr.
	ProgressBar bool

	// Silent disables the standard output.
	Silent bool

	// JSON reports the results as JSON.
	JSON bool

	// Color enables ANSI colored output.
	Color bool

	// HistDisplay displays distribution histogram of timings.
	HistDisplay bool

	// HistMin is the minimum value for timing histogram.
	HistMin time.Duration

	// HistMax is the maximum value for timing histogram, defaults to twice the Timeout.
	HistMax time.Duration

	// HistPre is the significant figure for histogram precision.
	HistPre int

	// Csv is a path to the file, where per target results are exported.
	Csv string

	// PlotDir is a directory where the plots are exported.
	PlotDir string

	// PlotFormat is a format of the plots.
	PlotFormat string

	// Writer used for printing benchmark banner and report, defaults to os.Stdout.
	Writer io.Writer

	// Logger is used for diagnostics of the run, defaults to a logger discarding everything.
	Logger log.Interface

	// internal variables so we do not have to parse the delay with each attempt.
	delayStart time.Duration
	delayEnd   time.Duration

	requestLogger log.Interface
}

func (b *Benchmark) init() error {
	if b.Writer == nil {
		b.Writer = os.Stdout
	}

	if b.Logger == nil {
		b.Logger = &log.Logger{Handler: discard.New(), Level: log.InfoLevel}
	}

	if len(b.Targets) == 0 {
		b.Targets = []string{DefaultNameServer()}
	}
	targets, err := loadTargets(b.Targets)
	if err != nil {
		return err
	}
	b.Targets = targets

	if b.Repetitions == 0 {
		b.Repetitions = DefaultRepetitions
	}

	if b.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", b.Timeout)
	}
	if b.Timeout == 0 {
		b.Timeout = DefaultTimeout
	}

	if b.Concurrency == 0 {
		b.Concurrency = DefaultConcurrency
	}

	if b.LocalBind == "" {
		b.LocalBind = DefaultLocalBind
	}
	_, port, err := net.SplitHostPort(b.LocalBind)
	if err != nil {
		return fmt.Errorf("invalid local bind address '%s': %w", b.LocalBind, err)
	}
	p, err := strconv.ParseUint(port, 10, 16)
	if err != nil {
		return fmt.Errorf("invalid local bind port '%s'", port)
	}
	if p != 0 && b.Concurrency > 1 {
		return errors.New("concurrency higher than 1 requires local bind address with ephemeral port 0")
	}

	if b.Rate < 0 {
		return fmt.Errorf("rate limit must not be negative, got %d", b.Rate)
	}

	if b.Delay == "" {
		b.Delay = DefaultDelay
	}
	if err := b.parseDelay(); err != nil {
		return err
	}

	if b.HistMin == 0 {
		b.HistMin = DefaultHistMin
	}
	if b.HistMax == 0 {
		b.HistMax = 2 * b.Timeout
	}
	if b.HistPre == 0 {
		b.HistPre = DefaultHistPrecision
	}
	if b.HistPre < 1 || b.HistPre > 5 {
		return fmt.Errorf("histogram precision must be between 1 and 5, got %d", b.HistPre)
	}

	if b.RequestLogEnabled && b.RequestLogPath == "" {
		b.RequestLogPath = DefaultRequestLogPath
	}

	if b.PlotFormat == "" {
		b.PlotFormat = DefaultPlotFormat
	}
	return nil
}

func (b *Benchmark) parseDelay() error {
	startStr, endStr, isRange := strings.Cut(b.Delay, "-")
	start, err := time.ParseDuration(startStr)
	if err != nil {
		return fmt.Errorf("invalid delay '%s': %w", b.Delay, err)
	}
	if start < 0 {
		return fmt.Errorf("invalid delay '%s': must not be negative", b.Delay)
	}
	b.delayStart = start
	b.delayEnd = 0
	if !isRange {
		return nil
	}
	end, err := time.ParseDuration(endStr)
	if err != nil {
		return fmt.Errorf("invalid delay '%s': %w", b.Delay, err)
	}
	if end <= start {
		return fmt.Errorf("invalid delay '%s': end of the range must be greater than its start", b.Delay)
	}
	b.delayEnd = end
	return nil
}

// Run executes benchmark. If the benchmark is unable to start, for example because the hostname cannot be encoded
// or the UDP socket cannot be bound, an error is returned and no targets are attempted. Otherwise exactly one TargetResult
// per target is returned in the order of the targets. Failed attempts never abort the run, only cancellation of ctx does.
func (b *Benchmark) Run(ctx context.Context) ([]*TargetResult, error) {
	if err := b.init(); err != nil {
		return nil, err
	}

	query, err := dnsquery.Query{ID: b.ID, Hostname: b.Hostname}.Encode()
	if err != nil {
		return nil, err
	}

	workers := int(b.Concurrency)
	if workers > len(b.Targets) {
		workers = len(b.Targets)
	}

	conns, err := b.listen(ctx, workers)
	if err != nil {
		return nil, err
	}
	defer closeConns(conns)

	if b.RequestLogEnabled {
		file, err := os.OpenFile(b.RequestLogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open request log file '%s': %w", b.RequestLogPath, err)
		}
		defer file.Close()
		b.requestLogger = newRequestLogger(file)
	} else {
		b.requestLogger = nil
	}

	limits := ""
	limit := ratelimit.NewUnlimited()
	if b.Rate > 0 {
		limit = ratelimit.New(b.Rate)
		limits = fmt.Sprintf("(limited to %s QPS)", printutils.HighlightSprint(b.Rate))
	}

	if !b.Silent && !b.JSON {
		printutils.NeutralFprintf(b.Writer, "Using hostname %s\n", printutils.HighlightSprint(dns.Fqdn(b.Hostname)))
		printutils.NeutralFprintf(b.Writer, "Benchmarking %s targets via %s with %s repetitions %s\n",
			printutils.HighlightSprint(len(b.Targets)), printutils.HighlightSprint(UDPTransport),
			printutils.HighlightSprint(b.Repetitions), limits)
	}

	var bar *progressbar.ProgressBar
	if b.ProgressBar {
		bar = progressbar.NewOptions64(int64(len(b.Targets))*int64(b.Repetitions),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("Benchmarking"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		defer func() {
			_ = bar.Finish()
		}()
	}

	b.Logger.WithFields(log.Fields{
		"targets":     len(b.Targets),
		"repetitions": b.Repetitions,
		"timeout":     b.Timeout.String(),
		"local":       conns[0].LocalAddr().String(),
	}).Debug("starting benchmark")
	b.Logger.Debugf("query bytes: % x", query)

	results := make([]*TargetResult, len(b.Targets))
	jobs := make(chan int)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(jobs)
		for i := range b.Targets {
			select {
			case jobs <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for w, conn := range conns {
		workerID := uint32(w)
		g.Go(func() error {
			resp := make([]byte, dns.MaxMsgSize)
			for i := range jobs {
				res, err := b.benchmarkTarget(gctx, workerID, conn, b.Targets[i], query, resp, limit, bar)
				if err != nil {
					return err
				}
				results[i] = res
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (b *Benchmark) listen(ctx context.Context, n int) ([]*net.UDPConn, error) {
	lc := net.ListenConfig{Control: sysutil.BindToDevice(b.Interface)}
	conns := make([]*net.UDPConn, 0, n)
	for i := 0; i < n; i++ {
		pc, err := lc.ListenPacket(ctx, UDPTransport, b.LocalBind)
		if err != nil {
			closeConns(conns)
			return nil, fmt.Errorf("%w %s: %w", ErrSocketBind, b.LocalBind, err)
		}
		conns = append(conns, pc.(*net.UDPConn))
	}
	return conns, nil
}

func closeConns(conns []*net.UDPConn) {
	for _, c := range conns {
		_ = c.Close()
	}
}

func (b *Benchmark) benchmarkTarget(ctx context.Context, workerID uint32, conn *net.UDPConn, target string,
	query, resp []byte, limit ratelimit.Limiter, bar *progressbar.ProgressBar,
) (*TargetResult, error) {
	res := &TargetResult{
		Target: target,
		Hist:   hdrhistogram.New(b.HistMin.Nanoseconds(), b.HistMax.Nanoseconds(), b.HistPre),
	}
	logger := b.Logger.WithField("target", target)

	addr, resolveErr := net.ResolveUDPAddr(UDPTransport, target)
	if resolveErr != nil {
		logger.WithError(resolveErr).Warn("unable to resolve target address")
	}

	for i := uint16(0); i < b.Repetitions; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var a Attempt
		if resolveErr != nil {
			a = Attempt{Outcome: OutcomeSendFailed, Start: time.Now(), Err: fmt.Errorf("%w: %w", ErrSendFailed, resolveErr)}
		} else {
			limit.Take()
			a = b.attempt(conn, addr, query, resp)
		}

		res.record(a)
		observeAttempt(target, a)
		if b.requestLogger != nil {
			logRequest(b.requestLogger, workerID, target, b.ID, b.Hostname, a)
		}
		if a.Outcome == OutcomeCompleted {
			logger.WithDuration(a.Duration).Debug("response received")
		} else {
			logger.WithError(a.Err).Warnf("attempt %d failed", i+1)
		}
		if bar != nil {
			_ = bar.Add(1)
		}

		if i+1 < b.Repetitions {
			if err := b.sleep(ctx); err != nil {
				return nil, err
			}
		}
	}
	return res, nil
}

func (b *Benchmark) sleep(ctx context.Context) error {
	d := b.delayStart
	if b.delayEnd > b.delayStart {
		// nolint:gosec
		d += rand.N(b.delayEnd - b.delayStart)
	}
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
