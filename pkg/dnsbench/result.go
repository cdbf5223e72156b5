package dnsbench

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Outcome is the terminal state of a single attempt.
type Outcome int

const (
	// OutcomeCompleted means a datagram arrived before the timeout.
	OutcomeCompleted Outcome = iota
	// OutcomeTimedOut means no datagram arrived before the timeout.
	OutcomeTimedOut
	// OutcomeSendFailed means the query could not be transmitted.
	OutcomeSendFailed
	// OutcomeRecvFailed means receiving failed for a reason other than timeout.
	OutcomeRecvFailed
)

var outcomeNames = [...]string{
	OutcomeCompleted:  "completed",
	OutcomeTimedOut:   "timeout",
	OutcomeSendFailed: "send_error",
	OutcomeRecvFailed: "recv_error",
}

func (o Outcome) String() string {
	if o < 0 || int(o) >= len(outcomeNames) {
		return "unknown"
	}
	return outcomeNames[o]
}

// Attempt is the result of a single send and receive cycle.
type Attempt struct {
	Outcome  Outcome
	Start    time.Time
	Duration time.Duration
	// Discarded is the number of datagrams ignored because they did not answer the query.
	Discarded int64
	Err       error
}

// Datapoint one datapoint representing successful attempt.
type Datapoint struct {
	Duration time.Duration
	Start    time.Time
}

// ErrorDatapoint one datapoint representing failed attempt.
type ErrorDatapoint struct {
	Start   time.Time
	Outcome Outcome
	Err     error
}

// Counters represents various counters of benchmark results.
type Counters struct {
	Total     int64
	Success   int64
	TimedOut  int64
	SendError int64
	RecvError int64
	Discarded int64
}

// Failures returns number of failed attempts.
func (c Counters) Failures() int64 {
	return c.TimedOut + c.SendError + c.RecvError
}

// TargetResult is the aggregate of all attempts against a single target.
type TargetResult struct {
	Target   string
	Hist     *hdrhistogram.Histogram
	Timings  []Datapoint
	Errors   []ErrorDatapoint
	Counters Counters
	// Sum is the total duration of successful attempts.
	Sum time.Duration
}

// Mean returns the mean duration of successful attempts. If there was no successful attempt, false is returned.
func (r *TargetResult) Mean() (time.Duration, bool) {
	if r.Counters.Success == 0 {
		return 0, false
	}
	return r.Sum / time.Duration(r.Counters.Success), true
}

func (r *TargetResult) record(a Attempt) {
	r.Counters.Total++
	r.Counters.Discarded += a.Discarded

	switch a.Outcome {
	case OutcomeCompleted:
		r.Counters.Success++
		r.Sum += a.Duration
		r.Timings = append(r.Timings, Datapoint{Duration: a.Duration, Start: a.Start})
		if r.Hist != nil {
			// values above the histogram range are still counted in Sum and Timings
			_ = r.Hist.RecordValue(a.Duration.Nanoseconds())
		}
		return
	case OutcomeTimedOut:
		r.Counters.TimedOut++
	case OutcomeSendFailed:
		r.Counters.SendError++
	case OutcomeRecvFailed:
		r.Counters.RecvError++
	}
	r.Errors = append(r.Errors, ErrorDatapoint{Start: a.Start, Outcome: a.Outcome, Err: a.Err})
}
